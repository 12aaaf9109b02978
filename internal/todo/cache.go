package todo

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	listKeyPrefix = "todos:"
)

// ListCache はユーザーごとのタスク一覧を Redis にキャッシュします。
// nil の ListCache は全操作が no-op となり、キャッシュ無効時の分岐を
// 呼び出し側に持ち込まずに済みます。
type ListCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewListCache は ListCache を作成します。
func NewListCache(rdb *redis.Client, ttl time.Duration) *ListCache {
	return &ListCache{
		rdb: rdb,
		ttl: ttl,
	}
}

// Get はキャッシュ済みの一覧を取得します。ヒットしなかった場合や
// Redis 障害時は (nil, false) を返し、呼び出し側はストアへフォールバックします。
func (c *ListCache) Get(ctx context.Context, userID int64) ([]Task, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, listKey(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, false
	}
	return tasks, true
}

// Set は一覧をキャッシュに保存します。保存失敗は無視します。
func (c *ListCache) Set(ctx context.Context, userID int64, tasks []Task) {
	if c == nil || c.rdb == nil {
		return
	}
	payload, err := json.Marshal(tasks)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, listKey(userID), payload, c.ttl).Err()
}

// Invalidate はユーザーの一覧キャッシュを破棄します。
// タスクの作成・更新・削除のたびに呼び出します。
func (c *ListCache) Invalidate(ctx context.Context, userID int64) {
	if c == nil || c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, listKey(userID)).Err()
}

func listKey(userID int64) string {
	return listKeyPrefix + strconv.FormatInt(userID, 10)
}
