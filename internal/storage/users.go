package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yourusername/todo-forge/internal/auth"
)

// CreateUser はユーザーを作成します。ユーザー名が重複している場合は
// auth.ErrDuplicateUser を返します。
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (*auth.User, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		username, passwordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, auth.ErrDuplicateUser
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user last insert id: %w", err)
	}

	return &auth.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
	}, nil
}

// FindUserByUsername はユーザー名の完全一致でユーザーを検索します。
// 存在しない場合は (nil, nil) を返します。
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash FROM users WHERE username = ?`,
		username,
	))
}

// FindUserByID は ID でユーザーを検索します。存在しない場合は (nil, nil) を返します。
func (s *Store) FindUserByID(ctx context.Context, id int64) (*auth.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash FROM users WHERE id = ?`,
		id,
	))
}

func (s *Store) scanUser(row *sql.Row) (*auth.User, error) {
	var user auth.User
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}
