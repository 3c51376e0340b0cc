// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/gatehouse/internal/auth"
	"github.com/yourusername/gatehouse/internal/config"
	"github.com/yourusername/gatehouse/internal/httperr"
	"github.com/yourusername/gatehouse/internal/users"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// 予期しないエラーの応答方針（スタックトレースの露出は設定で制御）
	errs := httperr.NewResponder(cfg.DebugErrors, log.Default())

	// Ginルーターの初期化（Recovery は診断レスポンスを返す独自実装に差し替え）
	router := gin.New()
	router.Use(gin.Logger(), errs.Recovery())

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowOrigins = origins
	// セッションCookieを使うため資格情報付きリクエストを許可する
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
	}
	router.Use(cors.New(corsConfig))

	ctx := context.Background()

	// ユーザーストアの準備（DATABASE_URL 未設定時はインメモリ）
	store, pool, err := setupUserStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up user store: %v", err)
	}
	if pool != nil {
		defer pool.Close()
	}

	// セッションストアの準備
	sessionManager, err := setupSessions(cfg)
	if err != nil {
		log.Fatalf("Failed to set up session store: %v", err)
	}

	// 監査ログの準備（QUEUE_REDIS_URL 未設定時は無効）
	auditManager, err := setupAudit(ctx, cfg, pool)
	if err != nil {
		log.Fatalf("Failed to set up audit queue: %v", err)
	}
	if auditManager != nil {
		auditManager.StartWorkers()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = auditManager.Shutdown(shutdownCtx)
		}()
	}

	authManager := auth.NewManager(store, auth.NewPasswordHasher(cfg.BcryptCost), sessionManager, errs, auditManager, cfg.PasswordMinLength)

	// ルーティングの設定
	setupRoutes(router, authManager, store, errs)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "gatehouse-api",
		"version": "0.1.0",
	})
}

// setupRoutes は API グループと認証周りの配線を行います。
// ガードはフレームワークに隠さず、ルートごとに明示的に並べます。
func setupRoutes(router *gin.Engine, authManager *auth.Manager, store users.Store, errs *httperr.Responder) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			// ユーザー名の重複チェックをパスワード長チェックより先に置く
			// （両方に引っかかる場合は "Username taken" が勝つ）
			authRoutes.POST("/register",
				authManager.BindCredentials(),
				authManager.CheckUsernameFree(),
				authManager.CheckPasswordLength(),
				authManager.Register,
			)
			authRoutes.POST("/login",
				authManager.BindCredentials(),
				authManager.CheckUsernameExists(),
				authManager.Login,
			)
			authRoutes.GET("/logout", authManager.Logout)
		}

		// セッション必須のエンドポイント
		api.GET("/users", authManager.Restricted(), users.ListHandler(store, errs))
	}
}
