package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/gatehouse/internal/audit"
	"github.com/yourusername/gatehouse/internal/config"
	"github.com/yourusername/gatehouse/internal/session"
	"github.com/yourusername/gatehouse/internal/users"
)

// setupUserStore はユーザーストアを準備します。
// DATABASE_URL が未設定の場合はインメモリストアを返します（プロセス終了で消えます）。
func setupUserStore(ctx context.Context, cfg *config.Config) (users.Store, *pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		log.Printf("DATABASE_URL is not set; using in-memory user store")
		return users.NewMemoryStore(), nil, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	store := users.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool, nil
}

// setupSessions はRedisバックエンドのセッションマネージャーを準備します。
func setupSessions(cfg *config.Config) (*session.Manager, error) {
	opt, err := redis.ParseURL(cfg.SessionRedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session redis url: %w", err)
	}

	redisClient := redis.NewClient(opt)
	ttl := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	secure := cfg.GinMode == "release"
	return session.NewManager(redisClient, ttl, cfg.SessionCookieName, secure), nil
}

// setupAudit は監査イベントキューを準備します。
// QUEUE_REDIS_URL が未設定の場合は nil を返し、監査ログは無効になります。
// 保存先はデータベース接続があれば auth_audit テーブル、なければ標準ログです。
func setupAudit(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (*audit.Manager, error) {
	if cfg.QueueRedisURL == "" {
		return nil, nil
	}

	var sink audit.Sink
	if pool != nil {
		pgSink := audit.NewPostgresSink(pool)
		if err := pgSink.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		sink = pgSink
	} else {
		sink = &audit.LogSink{Logger: log.Default()}
	}

	return audit.NewManager(cfg.QueueRedisURL, sink, log.Default())
}
