package todo

// Task はユーザーが所有するToDoタスクを表します。
type Task struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	UserID int64  `json:"user_id"`
}
