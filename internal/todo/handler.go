// Package todo はタスクCRUDのHTTPハンドラーを提供します。
package todo

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/todo-forge/internal/auth"
	"github.com/yourusername/todo-forge/internal/validate"
)

// TaskStore はタスクを永続化するストアが実装します。
// 検索系は所有者スコープで動作し、他ユーザーのタスクは存在しないものとして
// nil を返します（存在を漏らさないため）。
type TaskStore interface {
	CreateTask(ctx context.Context, userID int64, name string) (*Task, error)
	ListTasks(ctx context.Context, userID int64) ([]Task, error)
	UpdateTaskName(ctx context.Context, userID, id int64, name string) (old, updated *Task, err error)
	DeleteTask(ctx context.Context, userID, id int64) (*Task, error)
}

// ListHandler は GET /todos のハンドラーを返します。
func ListHandler(store TaskStore, cache *ListCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token missing"})
			return
		}

		ctx := c.Request.Context()
		if tasks, ok := cache.Get(ctx, user.ID); ok {
			c.JSON(http.StatusOK, gin.H{"tasks": tasks})
			return
		}

		tasks, err := store.ListTasks(ctx, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		cache.Set(ctx, user.ID, tasks)

		c.JSON(http.StatusOK, gin.H{"tasks": tasks})
	}
}

// CreateHandler は POST /todos のハンドラーを返します。
func CreateHandler(store TaskStore, cache *ListCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token missing"})
			return
		}

		body, ok := bindTaskBody(c)
		if !ok {
			return
		}

		task, err := store.CreateTask(c.Request.Context(), user.ID, validate.StringField(body, "name"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		cache.Invalidate(c.Request.Context(), user.ID)

		c.JSON(http.StatusCreated, gin.H{"created_task": task})
	}
}

// UpdateHandler は PUT /todos/:id のハンドラーを返します。
// 更新前後のタスクを両方返します。
func UpdateHandler(store TaskStore, cache *ListCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token missing"})
			return
		}

		id, ok := parseTaskID(c)
		if !ok {
			return
		}

		body, ok := bindTaskBody(c)
		if !ok {
			return
		}

		old, updated, err := store.UpdateTaskName(c.Request.Context(), user.ID, id, validate.StringField(body, "name"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if old == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		cache.Invalidate(c.Request.Context(), user.ID)

		c.JSON(http.StatusOK, gin.H{
			"old_task":     old,
			"updated_task": updated,
		})
	}
}

// DeleteHandler は DELETE /todos/:id のハンドラーを返します。
func DeleteHandler(store TaskStore, cache *ListCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token missing"})
			return
		}

		id, ok := parseTaskID(c)
		if !ok {
			return
		}

		task, err := store.DeleteTask(c.Request.Context(), user.ID, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if task == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		cache.Invalidate(c.Request.Context(), user.ID)

		c.JSON(http.StatusOK, gin.H{"deleted_task": task})
	}
}

// parseTaskID はパスパラメーターのタスクIDを解析します。
// 数値でないIDは常に400で拒否します。
func parseTaskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return 0, false
	}
	return id, true
}

// bindTaskBody はタスク系リクエストのボディを解析し、name を検証します。
func bindTaskBody(c *gin.Context) (map[string]any, bool) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return nil, false
	}
	if field := validate.FirstEmpty(body, "name"); field != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": field + " is required"})
		return nil, false
	}
	return body, true
}
