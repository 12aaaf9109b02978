// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// データベース設定
	DatabasePath string // SQLiteデータベースファイルのパス

	// 認証設定
	TokenSecret      string // ベアラートークン署名用の秘密鍵
	TokenExpireHours int    // トークンの有効期限（時間）

	// キャッシュ設定（任意）
	CacheRedisURL   string // タスク一覧キャッシュ用Redis接続URL（空なら無効）
	CacheTTLSeconds int    // キャッシュの有効期限（秒）
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		// データベース設定
		DatabasePath: getEnv("DATABASE_PATH", "todo.db"),

		// 認証設定
		TokenSecret:      getEnv("TOKEN_SECRET", ""),
		TokenExpireHours: getEnvAsInt("TOKEN_EXPIRE_HOURS", 24),

		// キャッシュ設定
		CacheRedisURL:   getEnv("CACHE_REDIS_URL", ""),
		CacheTTLSeconds: getEnvAsInt("CACHE_TTL_SECONDS", 300),
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	// 発行済みトークンの検証に必要なため秘密鍵は常に必須
	if c.TokenSecret == "" {
		return fmt.Errorf("TOKEN_SECRET is required")
	}
	if c.TokenExpireHours <= 0 {
		return fmt.Errorf("TOKEN_EXPIRE_HOURS must be positive")
	}

	if c.GinMode == "release" {
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is required in release mode")
		}
	}

	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
