package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"arthasync/internal/core"
	"arthasync/internal/metrics"
)

// Store is the typed persistence layer over a Backend. Every mutation is a
// whole-collection read-modify-write, serialized by mu so that a single
// process never loses an update.
type Store struct {
	backend Backend
	keys    Keys
	newID   func() string

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the uuid generator, mostly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func NewStore(backend Backend, namespace string, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		keys:    NewKeys(namespace),
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend exposes the underlying backend for health checks and shutdown.
func (s *Store) Backend() Backend { return s.backend }

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Ping checks the backend if it supports health checks.
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.backend.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// read decodes the record under collection into T. An absent record yields
// def; an undecodable one fails with ErrCorruptRecord.
func read[T any](ctx context.Context, s *Store, collection string, def T) (T, error) {
	key := s.keys.For(collection)
	raw, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("read %s: %w", key, err)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return def, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		slog.ErrorContext(ctx, "Stored record cannot be decoded", "key", key, "error", err)
		return def, fmt.Errorf("%w %s: %v", ErrCorruptRecord, key, err)
	}
	return v, nil
}

func write[T any](ctx context.Context, s *Store, collection string, v T) error {
	key := s.keys.For(collection)
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func observe(collection, op string, err error) {
	metrics.StoreOperations.WithLabelValues(collection, op, metrics.Result(err)).Inc()
}

// Incomes returns all stored incomes.
func (s *Store) Incomes(ctx context.Context) (out []core.Income, err error) {
	defer func() { observe(CollectionIncome, "list", err) }()
	return read(ctx, s, CollectionIncome, []core.Income{})
}

// AddIncome assigns a fresh id, appends and persists. The caller's ID is ignored.
func (s *Store) AddIncome(ctx context.Context, in core.Income) (_ core.Income, err error) {
	defer func() { observe(CollectionIncome, "add", err) }()
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := read(ctx, s, CollectionIncome, []core.Income{})
	if err != nil {
		return core.Income{}, err
	}
	in.ID = s.newID()
	list = append(list, in)
	if err := write(ctx, s, CollectionIncome, list); err != nil {
		return core.Income{}, err
	}
	slog.InfoContext(ctx, "Income saved", "id", in.ID, "amount_cents", in.Amount.Cents, "month", in.Date.Month())
	return in, nil
}

// DeleteIncome removes exactly the income with id. Unknown ids return
// ErrNotFound and write nothing.
func (s *Store) DeleteIncome(ctx context.Context, id string) (err error) {
	defer func() { observe(CollectionIncome, "delete", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := read(ctx, s, CollectionIncome, []core.Income{})
	if err != nil {
		return err
	}
	kept, found := removeByID(list, id, func(in core.Income) string { return in.ID })
	if !found {
		return fmt.Errorf("income %s: %w", id, ErrNotFound)
	}
	return write(ctx, s, CollectionIncome, kept)
}

func (s *Store) Expenses(ctx context.Context) (out []core.Expense, err error) {
	defer func() { observe(CollectionExpense, "list", err) }()
	return read(ctx, s, CollectionExpense, []core.Expense{})
}

func (s *Store) AddExpense(ctx context.Context, ex core.Expense) (_ core.Expense, err error) {
	defer func() { observe(CollectionExpense, "add", err) }()
	if err := ex.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := read(ctx, s, CollectionExpense, []core.Expense{})
	if err != nil {
		return core.Expense{}, err
	}
	ex.ID = s.newID()
	list = append(list, ex)
	if err := write(ctx, s, CollectionExpense, list); err != nil {
		return core.Expense{}, err
	}
	slog.InfoContext(ctx, "Expense saved", "id", ex.ID, "amount_cents", ex.Amount.Cents, "month", ex.Date.Month())
	return ex, nil
}

func (s *Store) DeleteExpense(ctx context.Context, id string) (err error) {
	defer func() { observe(CollectionExpense, "delete", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := read(ctx, s, CollectionExpense, []core.Expense{})
	if err != nil {
		return err
	}
	kept, found := removeByID(list, id, func(ex core.Expense) string { return ex.ID })
	if !found {
		return fmt.Errorf("expense %s: %w", id, ErrNotFound)
	}
	return write(ctx, s, CollectionExpense, kept)
}

// Categories returns the stored categories, or the default seed when the
// record has never been written.
func (s *Store) Categories(ctx context.Context) (out []core.Category, err error) {
	defer func() { observe(CollectionCategory, "list", err) }()
	return read(ctx, s, CollectionCategory, core.DefaultCategories())
}

func (s *Store) AddCategory(ctx context.Context, c core.Category) (_ core.Category, err error) {
	defer func() { observe(CollectionCategory, "add", err) }()
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := read(ctx, s, CollectionCategory, core.DefaultCategories())
	if err != nil {
		return core.Category{}, err
	}
	c.ID = s.newID()
	list = append(list, c)
	if err := write(ctx, s, CollectionCategory, list); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

// DeleteCategory removes the category only. Transactions and budgets that
// reference it are left in place.
func (s *Store) DeleteCategory(ctx context.Context, id string) (err error) {
	defer func() { observe(CollectionCategory, "delete", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := read(ctx, s, CollectionCategory, core.DefaultCategories())
	if err != nil {
		return err
	}
	kept, found := removeByID(list, id, func(c core.Category) string { return c.ID })
	if !found {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return write(ctx, s, CollectionCategory, kept)
}

func (s *Store) Budgets(ctx context.Context) (out []core.Budget, err error) {
	defer func() { observe(CollectionBudget, "list", err) }()
	return read(ctx, s, CollectionBudget, []core.Budget{})
}

// SetBudget upserts on (categoryID, month): an existing budget keeps its id
// and position and gets the new amount; otherwise a new one is appended.
func (s *Store) SetBudget(ctx context.Context, categoryID string, month core.Month, amount core.Money) (_ core.Budget, err error) {
	defer func() { observe(CollectionBudget, "set", err) }()
	b := core.Budget{CategoryID: categoryID, Month: month, Amount: amount}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := read(ctx, s, CollectionBudget, []core.Budget{})
	if err != nil {
		return core.Budget{}, err
	}
	updated := false
	for i := range list {
		if list[i].CategoryID == categoryID && list[i].Month == month {
			list[i].Amount = amount
			b = list[i]
			updated = true
			break
		}
	}
	if !updated {
		b.ID = s.newID()
		list = append(list, b)
	}
	if err := write(ctx, s, CollectionBudget, list); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

// Settings returns the stored settings merged over the defaults.
func (s *Store) Settings(ctx context.Context) (_ core.AppSettings, err error) {
	defer func() { observe(CollectionSettings, "get", err) }()
	settings, err := read(ctx, s, CollectionSettings, core.DefaultSettings())
	return settings.WithDefaults(), err
}

// UpdateSettings applies a partial patch and persists the merged settings.
func (s *Store) UpdateSettings(ctx context.Context, patch core.SettingsPatch) (_ core.AppSettings, err error) {
	defer func() { observe(CollectionSettings, "update", err) }()
	if err := patch.Validate(); err != nil {
		return core.AppSettings{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := read(ctx, s, CollectionSettings, core.DefaultSettings())
	if err != nil {
		return core.AppSettings{}, err
	}
	next := patch.Apply(current.WithDefaults())
	if err := write(ctx, s, CollectionSettings, next); err != nil {
		return core.AppSettings{}, err
	}
	return next, nil
}

func removeByID[T any](list []T, id string, idOf func(T) string) ([]T, bool) {
	out := make([]T, 0, len(list))
	found := false
	for _, v := range list {
		if idOf(v) == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	return out, found
}
