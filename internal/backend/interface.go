// Package backend selects and opens the persistence layer. Two backends
// exist: the default in-memory store and the SQLite store, which also
// carries the export bookkeeping used by the worker.
package backend

import (
	"context"
	"fmt"

	"ledger/internal/config"
	"ledger/internal/store"
)

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string { return string(bt) }

func (bt BackendType) IsValid() bool {
	return bt == SQLiteBackend || bt == MemoryBackend
}

// Config selects a backend and carries its backend-specific settings.
type Config struct {
	Type BackendType

	// SQLite only
	SQLiteDBPath string
}

// FromAppConfig derives the backend selection from the application config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	bt := BackendType(appConfig.DataBackend)
	if !bt.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}
	return Config{Type: bt, SQLiteDBPath: appConfig.SQLiteDBPath}, nil
}

// Result is an opened store plus an optional teardown hook.
type Result struct {
	Store   store.Store
	Cleanup func() error
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}
