package backend

import (
	"context"

	"arthasync/internal/amqp"
	"arthasync/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the store, the optional event client and a cleanup function.
type Result struct {
	Store *storage.Store
	// Events is nil when AMQP is not configured or the broker is unreachable.
	Events  *amqp.Client
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Key prefix for stored collections
	Namespace string

	// Optional change events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	// RequireAMQP makes a broker connection failure fatal, as the worker needs one.
	RequireAMQP bool
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
