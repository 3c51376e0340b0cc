// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// ユーザーストア設定
	DatabaseURL string // PostgreSQL接続URL（空の場合はインメモリストア）

	// セッション設定
	SessionRedisURL   string // セッションストア用Redis接続URL
	SessionCookieName string // セッショントークンを運ぶCookie名
	SessionTTLMinutes int    // セッションの有効期限（分）

	// パスワードポリシー
	BcryptCost        int // bcryptのコストファクター
	PasswordMinLength int // パスワードの最小文字数（「3文字より長い」= 4）

	// エラー診断
	DebugErrors bool // 500レスポンスにエラー詳細とスタックトレースを含めるか

	// 監査ログ設定
	QueueRedisURL string // 監査イベントキュー用Redis接続URL（空の場合は無効）
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	ginMode := getEnv("GIN_MODE", "debug")

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "8080"),
		GinMode: ginMode,

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		// ユーザーストア設定
		DatabaseURL: getEnv("DATABASE_URL", ""),

		// セッション設定
		SessionRedisURL:   getEnv("SESSION_REDIS_URL", "redis://127.0.0.1:6379/0"),
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "auth_session"),
		SessionTTLMinutes: getEnvAsInt("SESSION_TTL_MINUTES", 720), // 12時間

		// パスワードポリシー
		BcryptCost:        getEnvAsInt("BCRYPT_COST", 8),
		PasswordMinLength: getEnvAsInt("PASSWORD_MIN_LENGTH", 4),

		// エラー診断（本番では必ず無効にする）
		DebugErrors: getEnvAsBool("DEBUG_ERRORS", ginMode != "release"),

		// 監査ログ設定
		QueueRedisURL: getEnv("QUEUE_REDIS_URL", ""),
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
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.PasswordMinLength < 1 {
		return fmt.Errorf("PASSWORD_MIN_LENGTH must be at least 1")
	}
	if c.SessionTTLMinutes <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive")
	}

	// ローカル開発ではインメモリストアを許容する
	// 本番環境では厳格にチェックする想定
	if c.GinMode == "release" {
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required in release mode")
		}
		if c.SessionRedisURL == "" {
			return fmt.Errorf("SESSION_REDIS_URL is required in release mode")
		}
		if c.DebugErrors {
			// スタックトレースの露出は開発時のみ許す
			return fmt.Errorf("DEBUG_ERRORS must be disabled in release mode")
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

// getEnvAsBool は環境変数を真偽値として取得します。
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
