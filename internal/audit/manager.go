package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const taskTypeAudit = "audit:record"

// Manager は監査イベントの投入とワーカー管理を担います。
type Manager struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
	sink   Sink
	logger *log.Logger
}

// NewManager は Manager を初期化します。
func NewManager(redisURL string, sink Sink, logger *log.Logger) (*Manager, error) {
	if sink == nil {
		return nil, errors.New("sink is nil")
	}
	if logger == nil {
		logger = log.Default()
	}

	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := asynq.NewClient(opt)
	server := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"audit": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	manager := &Manager{
		client: client,
		server: server,
		mux:    mux,
		sink:   sink,
		logger: logger,
	}
	mux.HandleFunc(taskTypeAudit, manager.handleRecordTask)
	return manager, nil
}

// StartWorkers は Asynq サーバーをバックグラウンドで起動します。
func (m *Manager) StartWorkers() {
	go func() {
		if err := m.server.Run(m.mux); err != nil && err != asynq.ErrServerClosed {
			m.logger.Printf("asynq server stopped with error: %v", err)
		}
	}()
}

// Shutdown はサーバーとクライアントを閉じます。
func (m *Manager) Shutdown(ctx context.Context) error {
	m.server.Shutdown()
	m.client.Close()
	return nil
}

// Record はイベントをキューに投入します。
// 投入に失敗してもログに残すだけで、呼び出し元のフローは止めません。
func (m *Manager) Record(ctx context.Context, entry *Entry) {
	if entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	body, err := json.Marshal(entry)
	if err != nil {
		m.logger.Printf("failed to encode audit event %s: %v", entry.Event, err)
		return
	}

	task := asynq.NewTask(taskTypeAudit, body, asynq.Queue("audit"))
	if _, err := m.client.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		m.logger.Printf("failed to enqueue audit event %s: %v", entry.Event, err)
	}
}

func (m *Manager) handleRecordTask(ctx context.Context, task *asynq.Task) error {
	var entry Entry
	if err := json.Unmarshal(task.Payload(), &entry); err != nil {
		return err
	}
	if entry.Event == "" {
		return fmt.Errorf("missing event in payload")
	}
	return m.sink.Write(ctx, &entry)
}
