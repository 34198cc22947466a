package storage

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/skilllink/skilllink/internal/config"
)

// Store is an opaque, possibly slow, fallible artifact sink. Save streams the
// payload and returns a reference that callers persist verbatim.
type Store interface {
	Save(ctx context.Context, r io.Reader, contentType string) (string, error)
}

// Module provides the artifact store to the Fx graph.
var Module = fx.Provide(NewStore)

// NewStore initialises the configured artifact store.
func NewStore(cfg config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.Storage.Driver {
	case "local":
		store, err := newLocalStore(cfg.Storage)
		if err != nil {
			return nil, err
		}
		if logger != nil {
			logger.Info("local artifact storage ready", zap.String("dir", cfg.Storage.LocalDir))
		}
		return store, nil
	case "memory":
		if logger != nil {
			logger.Info("using in-memory artifact storage")
		}
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}
