// Package app owns the in-memory view of the user's finances. It loads every
// collection from the store once, applies mutations through the store and
// patches its copy afterwards, and guards access behind the PIN gate.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"arthasync/internal/advisor"
	"arthasync/internal/amqp"
	"arthasync/internal/core"
	"arthasync/internal/log"
)

// ErrNotLoaded is returned by every operation before Load succeeds.
var ErrNotLoaded = errors.New("controller not loaded")

// Store is the persistence the controller writes through.
type Store interface {
	Incomes(ctx context.Context) ([]core.Income, error)
	AddIncome(ctx context.Context, in core.Income) (core.Income, error)
	DeleteIncome(ctx context.Context, id string) error
	Expenses(ctx context.Context) ([]core.Expense, error)
	AddExpense(ctx context.Context, ex core.Expense) (core.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]core.Category, error)
	AddCategory(ctx context.Context, c core.Category) (core.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	Budgets(ctx context.Context) ([]core.Budget, error)
	SetBudget(ctx context.Context, categoryID string, month core.Month, amount core.Money) (core.Budget, error)
	Settings(ctx context.Context) (core.AppSettings, error)
	UpdateSettings(ctx context.Context, patch core.SettingsPatch) (core.AppSettings, error)
}

// Adviser turns the current data into advice text. It never fails.
type Adviser interface {
	Advise(ctx context.Context, in advisor.Input) string
}

// Publisher announces record changes to other processes.
type Publisher interface {
	PublishChange(ctx context.Context, ev *amqp.ChangeEvent) error
}

// Options wires the optional collaborators.
type Options struct {
	Adviser   Adviser
	Publisher Publisher
	Logger    *log.Logger
	// Now is the clock used for the current month. Defaults to time.Now.
	Now func() time.Time
}

// Controller is safe for concurrent use. Mutations are serialized by mu.
type Controller struct {
	store     Store
	adviser   Adviser
	publisher Publisher
	logger    *log.Logger
	records   *log.StructuredLogger
	now       func() time.Time

	mu         sync.RWMutex
	loaded     bool
	incomes    []core.Income
	expenses   []core.Expense
	categories []core.Category
	budgets    []core.Budget
	settings   core.AppSettings
	revision   int64
	gate       GateState
	advice     adviceState
}

func New(store Store, opts Options) *Controller {
	c := &Controller{
		store:     store,
		adviser:   opts.Adviser,
		publisher: opts.Publisher,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if c.logger == nil {
		c.logger = log.New(log.DefaultConfig())
	}
	c.logger = c.logger.WithComponent(log.ComponentApp)
	c.records = log.NewStructuredLogger(c.logger)
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Load reads all five records. The gate starts LOCKED iff a PIN is set.
// Calling Load again discards the cached copies and re-locks.
func (c *Controller) Load(ctx context.Context) error {
	var (
		incomes    []core.Income
		expenses   []core.Expense
		categories []core.Category
		budgets    []core.Budget
		settings   core.AppSettings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { incomes, err = c.store.Incomes(gctx); return })
	g.Go(func() (err error) { expenses, err = c.store.Expenses(gctx); return })
	g.Go(func() (err error) { categories, err = c.store.Categories(gctx); return })
	g.Go(func() (err error) { budgets, err = c.store.Budgets(gctx); return })
	g.Go(func() (err error) { settings, err = c.store.Settings(gctx); return })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load data: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.incomes = incomes
	c.expenses = expenses
	c.categories = categories
	c.budgets = budgets
	c.settings = settings
	c.loaded = true
	c.revision++
	c.gate = Unlocked
	if settings.Locked() {
		c.gate = Locked
	}

	c.logger.InfoContext(ctx, "Data loaded",
		"incomes", len(incomes),
		"expenses", len(expenses),
		"categories", len(categories),
		"budgets", len(budgets),
		"locked", c.gate == Locked)
	return nil
}

// Revision increases on every successful mutation.
func (c *Controller) Revision() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.revision
}

func (c *Controller) checkLoaded() error {
	if !c.loaded {
		return ErrNotLoaded
	}
	return nil
}

// changed bumps the revision and returns it. Caller holds mu.
func (c *Controller) changed() int64 {
	c.revision++
	return c.revision
}

// publish sends a change event. Failures are logged; the mutation has
// already been persisted.
func (c *Controller) publish(ctx context.Context, kind, op, id string, month core.Month, revision int64) {
	if c.publisher == nil {
		return
	}
	ev := amqp.NewChangeEvent(kind, op, id, string(month), revision)
	if err := c.publisher.PublishChange(ctx, ev); err != nil {
		c.logger.ErrorContext(ctx, "Failed to publish change event",
			log.FieldKind, kind,
			log.FieldRecordID, id,
			log.FieldRevision, revision,
			log.FieldError, err.Error())
	}
}

// currentMonth is the YYYY-MM key of the local clock.
func (c *Controller) currentMonth() core.Month {
	return core.MonthOf(c.now().Local())
}
