// Package password はパスワードの一方向ハッシュ化と検証を提供します。
// bcrypt（デフォルト）とargon2idをサポートし、検証時はハッシュの形式から方式を判別します。
package password

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

const (
	// AlgoBcrypt selects bcrypt for new hashes.
	AlgoBcrypt = "bcrypt"
	// AlgoArgon2id selects argon2id for new hashes.
	AlgoArgon2id = "argon2id"

	argon2idPrefix = "$argon2id$"

	// bcryptMaxInput はbcryptが参照する入力の最大バイト数です。
	bcryptMaxInput = 72
)

// ErrUnknownAlgorithm is returned by New for an unsupported algorithm name.
var ErrUnknownAlgorithm = errors.New("unknown password hash algorithm")

// Hasher hashes new passwords with the configured algorithm and verifies
// hashes produced by any supported algorithm.
type Hasher struct {
	algo        string
	bcryptCost  int
	argonParams *argon2id.Params
}

// New はalgoで指定された方式のHasherを生成します。
// bcryptCostが範囲外の場合はbcrypt.DefaultCostを使用します。
func New(algo string, bcryptCost int) (*Hasher, error) {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	switch algo {
	case AlgoBcrypt, AlgoArgon2id:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algo)
	}
	return &Hasher{
		algo:        algo,
		bcryptCost:  bcryptCost,
		argonParams: argon2id.DefaultParams,
	}, nil
}

// Hash はソルト付きの一方向ハッシュを生成します。
// ソルトは呼び出しごとに異なるため、同じ入力でも結果は毎回変わります。
func (h *Hasher) Hash(plaintext string) (string, error) {
	if h.algo == AlgoArgon2id {
		hashed, err := argon2id.CreateHash(plaintext, h.argonParams)
		if err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}
		return hashed, nil
	}

	hashed, err := bcrypt.GenerateFromPassword(bcryptInput(plaintext), h.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hashed.
// A malformed hash is treated as a mismatch.
func (h *Hasher) Verify(plaintext, hashed string) bool {
	if strings.HasPrefix(hashed, argon2idPrefix) {
		match, err := argon2id.ComparePasswordAndHash(plaintext, hashed)
		return err == nil && match
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), bcryptInput(plaintext)) == nil
}

// bcryptInput は先頭72バイトのみを返します。それ以降はbcryptのハッシュに影響しません。
func bcryptInput(plaintext string) []byte {
	b := []byte(plaintext)
	if len(b) > bcryptMaxInput {
		b = b[:bcryptMaxInput]
	}
	return b
}
