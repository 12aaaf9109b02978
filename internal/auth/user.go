package auth

import (
	"context"
	"errors"
)

// User は登録済みユーザーを表します。
// PasswordHash は bcrypt ハッシュであり、レスポンスには含めません。
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// ErrDuplicateUser はユーザー名が既に登録済みであることを示します。
var ErrDuplicateUser = errors.New("username already exists")

// UserStore はユーザーの永続化を提供するストアが実装します。
// 該当レコードが存在しない場合、検索系メソッドは (nil, nil) を返します。
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	FindUserByID(ctx context.Context, id int64) (*User, error)
}
