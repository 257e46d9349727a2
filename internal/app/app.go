package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"hreviewer/backend/features/indexing"
	"hreviewer/backend/features/search"
	"hreviewer/backend/features/task"
	"hreviewer/backend/features/webhook"
	"hreviewer/backend/internal/command"
	"hreviewer/backend/internal/config"
	"hreviewer/backend/internal/middleware"
	"hreviewer/backend/internal/retrieval"
	"hreviewer/backend/internal/worker"
)

// VectorStore is the union of the query and upsert surfaces the features
// consume. The weaviate adapter satisfies it; tests swap in fakes.
type VectorStore interface {
	UpsertBatch(ctx context.Context, records []indexing.Record) error
	QueryByTenant(ctx context.Context, vector []float32, tenantID string, limit int) ([]retrieval.SearchResult, error)
	QueryByNamespace(ctx context.Context, vector []float32, namespace string, limit int) ([]retrieval.SearchResult, error)
}

type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type App struct {
	Handler      http.Handler
	TaskService  *task.Service
	TaskConsumer *worker.TaskConsumer

	addr string
}

func New(
	cfg *config.Config,
	db *sql.DB,
	vecStore VectorStore,
	embedder Embedder,
	generator worker.Generator,
	taskPub TaskPublisher,
) (*App, error) {

	// Feature: Task
	taskRepo := task.NewPostgresRepo(db)
	taskService := task.NewService(taskRepo, taskPub)
	taskHandler := task.NewHandler(taskService)

	// Feature: Webhook
	parser := command.NewParser(cfg.BotName)
	webhookService := webhook.NewService(parser, taskPub, &taskRecorderAdapter{svc: taskService})
	webhookHandler := webhook.NewHandler(webhookService)

	// Feature: Indexing
	indexingService := indexing.NewService(embedder, vecStore)
	indexingHandler := indexing.NewHandler(indexingService)

	// Feature: Search
	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}

	retrievalService := retrieval.NewService(embedder, vecStore, queryLogger)
	searchHandler := search.NewHandler(retrievalService)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-GitHub-Event, X-GitHub-Delivery")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /webhooks/github", middleware.CorrelationID(enableCORS(webhookHandler.Handle)))

	mux.Handle("POST /index", middleware.CorrelationID(enableCORS(indexingHandler.Index)))
	mux.Handle("POST /search", middleware.CorrelationID(enableCORS(searchHandler.Search)))

	mux.Handle("GET /tasks/failed", middleware.CorrelationID(enableCORS(taskHandler.ListFailed)))
	mux.Handle("POST /tasks/{id}/retry", middleware.CorrelationID(enableCORS(taskHandler.Retry)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	taskConsumer := worker.NewTaskConsumer(generator, taskService)

	return &App{
		Handler:      mux,
		TaskService:  taskService,
		TaskConsumer: taskConsumer,
		addr:         fmt.Sprintf(":%d", cfg.ServerPort),
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    a.addr,
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "addr", a.addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// taskRecorderAdapter narrows task.Service to the recorder surface the
// webhook service consumes, flattening the created row to its id.
type taskRecorderAdapter struct {
	svc *task.Service
}

func (a *taskRecorderAdapter) Record(ctx context.Context, kind, owner, repoName string, prNumber int) (string, error) {
	t, err := a.svc.Record(ctx, kind, owner, repoName, prNumber)
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

func (a *taskRecorderAdapter) MarkFailed(ctx context.Context, taskID, errMsg string) error {
	return a.svc.MarkFailed(ctx, taskID, errMsg)
}
