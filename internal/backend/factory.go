package backend

import (
	"context"
	"errors"
	"fmt"

	"arthasync/internal/amqp"
	"arthasync/internal/log"
	"arthasync/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend opens the configured key-value backend, wraps it in a Store
// and connects the optional AMQP client.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	kv, err := f.openBackend(config)
	if err != nil {
		return nil, err
	}
	store := storage.NewStore(kv, config.Namespace)

	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ping %s backend: %w", config.Type, err)
	}

	var events *amqp.Client
	if config.AMQPURL != "" {
		events, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			if config.RequireAMQP {
				store.Close()
				return nil, fmt.Errorf("initialize AMQP client: %w", err)
			}
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change events", log.FieldError, err.Error())
			events = nil
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	f.logger.InfoContext(ctx, "Initialized storage backend",
		"type", config.Type.String(),
		"namespace", config.Namespace,
		"events_enabled", events != nil)

	return &Result{
		Store:  store,
		Events: events,
		Cleanup: func() error {
			var errs []error
			if events != nil {
				errs = append(errs, events.Close())
			}
			errs = append(errs, store.Close())
			return errors.Join(errs...)
		},
	}, nil
}

func (f *DefaultFactory) openBackend(config Config) (storage.Backend, error) {
	switch config.Type {
	case SQLiteBackend:
		b, err := storage.NewSQLiteBackend(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite backend: %w", err)
		}
		f.logger.Info("Opened SQLite backend", "db_path", config.SQLiteDBPath)
		return b, nil
	case MemoryBackend:
		f.logger.Info("Opened in-memory backend")
		return storage.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
