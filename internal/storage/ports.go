package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned for absent keys and unknown record ids.
	ErrNotFound = errors.New("not found")
	// ErrCorruptRecord is returned when a stored value cannot be decoded.
	ErrCorruptRecord = errors.New("corrupt stored record")
)

// Backend is a whole-value key-value store. Set overwrites the entire value
// under key; there is no partial write.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

const DefaultNamespace = "arthasync"

// Collection names, suffixed to the namespace to build record keys.
const (
	CollectionIncome   = "income"
	CollectionExpense  = "expense"
	CollectionCategory = "category"
	CollectionBudget   = "budget"
	CollectionSettings = "settings"
)

// Keys maps collections to namespaced record keys, e.g. "arthasync_income".
type Keys struct {
	namespace string
}

func NewKeys(namespace string) Keys {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return Keys{namespace: namespace}
}

func (k Keys) For(collection string) string {
	return k.namespace + "_" + collection
}
