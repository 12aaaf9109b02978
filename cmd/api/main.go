// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/todo-forge/internal/auth"
	"github.com/yourusername/todo-forge/internal/config"
	"github.com/yourusername/todo-forge/internal/storage"
	"github.com/yourusername/todo-forge/internal/todo"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// ストアの初期化（起動時にスキーマを適用）
	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()
	router.Use(requestIDMiddleware())

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowOrigins = origins
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
	}
	router.Use(cors.New(corsConfig))

	// 認証とキャッシュの初期化
	issuer := auth.NewTokenIssuer(cfg.TokenSecret, time.Duration(cfg.TokenExpireHours)*time.Hour)
	authManager := auth.NewManager(store, issuer)
	cache := setupCache(cfg)

	// ルーティングの設定
	setupRoutes(router, authManager, store, cache)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// handleStatus は死活監視エンドポイントのハンドラーです。
func handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// setupRoutes は公開ルートと認証必須ルートの配線を行います。
func setupRoutes(router *gin.Engine, authManager *auth.Manager, store *storage.Store, cache *todo.ListCache) {
	// 誰でも叩けるルート
	router.GET("/status", handleStatus)
	router.POST("/register", authManager.Register)
	router.POST("/login", authManager.Login)

	// タスクAPIはベアラートークン必須
	todos := router.Group("/todos")
	todos.Use(authManager.RequireAuth())
	{
		todos.GET("", todo.ListHandler(store, cache))
		todos.POST("", todo.CreateHandler(store, cache))
		todos.PUT("/:id", todo.UpdateHandler(store, cache))
		todos.DELETE("/:id", todo.DeleteHandler(store, cache))
	}
}
