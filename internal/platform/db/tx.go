package db

import (
	"context"

	"gorm.io/gorm"
)

// txKey is the context key under which the active transaction is stored.
type txKey struct{}

// txState は実行中のトランザクションとコミット後に実行する処理を保持します。
type txState struct {
	tx          *gorm.DB
	afterCommit []func()
}

// Transactor runs a function inside a single database transaction.
type Transactor struct {
	db *gorm.DB
}

// NewTransactor は指定された接続でTransactorを生成します。
func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTransaction はfnを1つのトランザクション内で実行します。
// fnがnilを返せばコミット、エラーを返すかpanicした場合はロールバックされます。
// 既にトランザクション中のコンテキストであれば、そのトランザクションをそのまま使用します。
// AfterCommitで登録された処理は、最も外側のトランザクションのコミット成功後に登録順で実行されます。
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTransaction(ctx) {
		return fn(ctx)
	}

	state := &txState{}
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state.tx = tx
		return fn(context.WithValue(ctx, txKey{}, state))
	})
	if err != nil {
		return err
	}
	for _, hook := range state.afterCommit {
		hook()
	}
	return nil
}

// AfterCommit はctxのトランザクションがコミットされた後にfnを実行するよう登録します。
// トランザクション外であれば即座に実行します。ロールバックされた場合fnは実行されません。
func AfterCommit(ctx context.Context, fn func()) {
	if state, ok := ctx.Value(txKey{}).(*txState); ok {
		state.afterCommit = append(state.afterCommit, fn)
		return
	}
	fn()
}

// Conn はコンテキストにトランザクションがあればそれを、なければ通常の接続を返します。
// リポジトリはすべてのクエリをこの関数経由で発行します。
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if state, ok := ctx.Value(txKey{}).(*txState); ok {
		return state.tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// InTransaction reports whether ctx carries an open transaction.
func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*txState)
	return ok
}
