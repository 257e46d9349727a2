package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nsqio/go-nsq"

	"hreviewer/backend/internal/app"
	"hreviewer/backend/internal/config"
	"hreviewer/backend/internal/logger"
	"hreviewer/backend/internal/worker"
)

func main() {
	// Structured logger with correlation id propagation
	jsonHandler := slog.NewJSONHandler(os.Stdout, nil)
	slog.SetDefault(slog.New(logger.NewContextHandler(jsonHandler)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer deps.DB.Close()
	defer deps.Embedder.Close()
	defer deps.NSQProducer.Stop()

	a, err := app.New(cfg, deps.DB, deps.VectorStore, deps.Embedder, deps.Generator, deps.NSQProducer)
	if err != nil {
		slog.Error("failed to build app", "error", err)
		os.Exit(1)
	}

	consumers := startConsumers(cfg, a.TaskConsumer)
	defer func() {
		for _, c := range consumers {
			c.Stop()
		}
	}()

	if err := a.Run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func startConsumers(cfg *config.Config, tc *worker.TaskConsumer) []*nsq.Consumer {
	handlers := map[string]nsq.HandlerFunc{
		worker.TopicReview:  tc.HandleReview,
		worker.TopicSummary: tc.HandleSummary,
	}

	var consumers []*nsq.Consumer
	for topic, handler := range handlers {
		consumer, err := nsq.NewConsumer(topic, "backend", nsq.NewConfig())
		if err != nil {
			slog.Error("failed to create NSQ consumer", "topic", topic, "error", err)
			continue
		}
		consumer.AddHandler(handler)
		if err := consumer.ConnectToNSQLookupd(cfg.NSQLookupd); err != nil {
			slog.Error("failed to connect to NSQLookupd", "topic", topic, "error", err)
			continue
		}
		slog.Info("NSQ consumer connected", "topic", topic)
		consumers = append(consumers, consumer)
	}
	return consumers
}
