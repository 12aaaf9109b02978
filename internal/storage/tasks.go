package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yourusername/todo-forge/internal/todo"
)

// CreateTask は指定ユーザー所有のタスクを作成します。
func (s *Store) CreateTask(ctx context.Context, userID int64, name string) (*todo.Task, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (name, user_id) VALUES (?, ?)`,
		name, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("task last insert id: %w", err)
	}

	return &todo.Task{ID: id, Name: name, UserID: userID}, nil
}

// ListTasks は指定ユーザー所有のタスクを挿入順（ID昇順）で返します。
func (s *Store) ListTasks(ctx context.Context, userID int64) ([]todo.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, user_id FROM tasks WHERE user_id = ? ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []todo.Task{}
	for rows.Next() {
		var task todo.Task
		if err := rows.Scan(&task.ID, &task.Name, &task.UserID); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// FindTask は (id, 所有者) の組でタスクを検索します。
// 他ユーザー所有のタスクは存在しないものとして (nil, nil) を返します。
func (s *Store) FindTask(ctx context.Context, userID, id int64) (*todo.Task, error) {
	return scanTask(s.db.QueryRowContext(ctx,
		`SELECT id, name, user_id FROM tasks WHERE id = ? AND user_id = ?`,
		id, userID,
	))
}

// UpdateTaskName は所有者スコープでタスク名を更新し、更新前後のタスクを返します。
// 読み取りと書き込みを同一トランザクションで行い、更新の競合による
// lost update を防ぎます。該当タスクがない場合は (nil, nil, nil) を返します。
func (s *Store) UpdateTaskName(ctx context.Context, userID, id int64, name string) (*todo.Task, *todo.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	old, err := scanTask(tx.QueryRowContext(ctx,
		`SELECT id, name, user_id FROM tasks WHERE id = ? AND user_id = ?`,
		id, userID,
	))
	if err != nil {
		return nil, nil, err
	}
	if old == nil {
		return nil, nil, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE tasks SET name = ? WHERE id = ? AND user_id = ?`,
		name, id, userID,
	); err != nil {
		return nil, nil, fmt.Errorf("update task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit update: %w", err)
	}

	updated := &todo.Task{ID: old.ID, Name: name, UserID: old.UserID}
	return old, updated, nil
}

// DeleteTask は所有者スコープでタスクを削除し、削除したタスクを返します。
// 該当タスクがない場合は (nil, nil) を返します。
func (s *Store) DeleteTask(ctx context.Context, userID, id int64) (*todo.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	task, err := scanTask(tx.QueryRowContext(ctx,
		`SELECT id, name, user_id FROM tasks WHERE id = ? AND user_id = ?`,
		id, userID,
	))
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, nil
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`,
		id, userID,
	); err != nil {
		return nil, fmt.Errorf("delete task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete: %w", err)
	}

	return task, nil
}

func scanTask(row *sql.Row) (*todo.Task, error) {
	var task todo.Task
	if err := row.Scan(&task.ID, &task.Name, &task.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &task, nil
}
