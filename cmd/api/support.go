package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/todo-forge/internal/config"
	"github.com/yourusername/todo-forge/internal/todo"
)

const requestIDHeader = "X-Request-Id"

// setupCache はタスク一覧キャッシュを初期化します。
// CACHE_REDIS_URL が未設定の場合は nil（no-opキャッシュ）を返します。
func setupCache(cfg *config.Config) *todo.ListCache {
	if cfg.CacheRedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(cfg.CacheRedisURL)
	if err != nil {
		log.Printf("invalid CACHE_REDIS_URL, cache disabled: %v", err)
		return nil
	}

	ttlSeconds := cfg.CacheTTLSeconds
	if ttlSeconds <= 0 {
		ttlSeconds = 300
	}
	return todo.NewListCache(redis.NewClient(opt), time.Duration(ttlSeconds)*time.Second)
}

// requestIDMiddleware はリクエストIDを付与するミドルウェアを返します。
// クライアント指定の X-Request-Id があればそのまま引き継ぎます。
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
