package usecase

import (
	"context"
	"errors"
	"fmt"

	"task_backend/internal/feature/user/domain/entity"
)

// dummyHash はユーザーが存在しない場合のタイミング攻撃緩和用のbcryptハッシュです。
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーを保存します。メールアドレスが重複する場合はErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error
	// FindByEmail はメールアドレスでユーザーを取得します。存在しない場合はErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// FindByID はIDでユーザーを取得します。存在しない場合はErrUserNotFoundを返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)
	// ExistsByEmail はメールアドレスが登録済みかどうかを返します。
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// List は全ユーザーを返します。
	List(ctx context.Context) ([]entity.User, error)
	// Update は既存ユーザーの全カラムを書き戻します。
	Update(ctx context.Context, user *entity.User) error
	// Delete はユーザーを削除します。所有するタスクは外部キーによって削除されます。
	Delete(ctx context.Context, id uint) error
}

// PasswordHasher はパスワードの一方向ハッシュ化を定義します。
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hashed string) bool
}

// TokenIssuer はセッショントークンの発行を定義します。
type TokenIssuer interface {
	Issue(userID uint) (string, error)
}

// Transactor runs fn inside one database transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserPatch carries the fields of a partial update. A nil field was not supplied.
type UserPatch struct {
	Password *string
	Name     *string
}

// UserUsecase はユーザー登録・認証・管理のビジネスロジックを実装します。
type UserUsecase struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	tx     Transactor
}

// NewUserUsecase はUserUsecaseの新しいインスタンスを生成します。
func NewUserUsecase(users UserRepository, hasher PasswordHasher, tokens TokenIssuer, tx Transactor) *UserUsecase {
	return &UserUsecase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		tx:     tx,
	}
}

// Register はハッシュ化されたパスワードで新規ユーザーを登録します。
// メールアドレスの重複はアプリケーションで事前に確認し、同時登録の競合はユニーク制約で検出します。
func (u *UserUsecase) Register(ctx context.Context, email, password, name string) (*entity.User, error) {
	var created *entity.User
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := u.users.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailAlreadyExists
		}

		hashed, err := u.hasher.Hash(password)
		if err != nil {
			return err
		}

		user := &entity.User{Email: email, Password: hashed, Name: name, Active: true}
		if err := u.users.Create(ctx, user); err != nil {
			return err
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Login はユーザーを認証し、成功時にセッショントークンを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもハッシュ比較を実行します。
func (u *UserUsecase) Login(ctx context.Context, email, password string) (string, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return "", err
	}

	passwordHash := dummyHash
	if user != nil {
		passwordHash = user.Password
	}
	match := u.hasher.Verify(password, passwordHash)

	if user == nil {
		return "", ErrUserNotFound
	}
	if !match {
		return "", ErrInvalidCredentials
	}

	token, err := u.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// List は全ユーザーを返します。
func (u *UserUsecase) List(ctx context.Context) ([]entity.User, error) {
	return u.users.List(ctx)
}

// GetByID はIDでユーザーを取得します。
func (u *UserUsecase) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	return u.users.FindByID(ctx, id)
}

// Update はユーザーを部分更新します。
// パスワードは再ハッシュして保存し、空文字の項目は無視します。メールアドレスは変更できません。
func (u *UserUsecase) Update(ctx context.Context, id uint, patch UserPatch) (*entity.User, error) {
	var updated *entity.User
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := u.users.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if patch.Password != nil && *patch.Password != "" {
			hashed, err := u.hasher.Hash(*patch.Password)
			if err != nil {
				return err
			}
			user.Password = hashed
		}
		if patch.Name != nil && *patch.Name != "" {
			user.Name = *patch.Name
		}

		if err := u.users.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete はユーザーを削除します。存在しない場合はErrUserNotFoundを返します。
func (u *UserUsecase) Delete(ctx context.Context, id uint) error {
	return u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := u.users.FindByID(ctx, id); err != nil {
			return err
		}
		return u.users.Delete(ctx, id)
	})
}
