package backend

import (
	"context"
	"fmt"
	"log/slog"

	"ledger/internal/storage"
	"ledger/internal/store/memory"
)

type defaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &defaultFactory{logger: logger}
}

func (f *defaultFactory) CreateBackend(_ context.Context, config Config) (*Result, error) {
	switch config.Type {
	case SQLiteBackend:
		if config.SQLiteDBPath == "" {
			return nil, fmt.Errorf("sqlite backend requires a database path")
		}
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return &Result{Store: repo, Cleanup: repo.Close}, nil

	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return &Result{Store: memory.New()}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
