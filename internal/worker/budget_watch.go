// Package worker consumes record change events and keeps the budget overrun
// gauge current for the affected month.
package worker

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"arthasync/internal/amqp"
	"arthasync/internal/core"
	"arthasync/internal/log"
	"arthasync/internal/metrics"
)

// Record kinds that can move a budget.
const (
	KindExpense  = "expense"
	KindBudget   = "budget"
	KindCategory = "category"
)

// BudgetReader is the part of the store the watcher reads.
type BudgetReader interface {
	Categories(ctx context.Context) ([]core.Category, error)
	Expenses(ctx context.Context) ([]core.Expense, error)
	Budgets(ctx context.Context) ([]core.Budget, error)
}

// Report is the outcome of one budget check.
type Report struct {
	Month   core.Month
	Checked int
	Over    []core.BudgetStatus
}

// BudgetWatcher recomputes budget utilization when expenses, budgets or
// categories change.
type BudgetWatcher struct {
	store  BudgetReader
	logger *log.Logger
	now    func() time.Time
}

func NewBudgetWatcher(store BudgetReader, logger *log.Logger) *BudgetWatcher {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &BudgetWatcher{
		store:  store,
		logger: logger.WithComponent(log.ComponentWorker),
		now:    time.Now,
	}
}

// HandleChange processes one change event. Kinds that cannot affect a
// budget are acknowledged without work.
func (w *BudgetWatcher) HandleChange(ctx context.Context, ev *amqp.ChangeEvent) error {
	switch ev.Kind {
	case KindExpense, KindBudget, KindCategory:
	default:
		w.logger.DebugContext(ctx, "Ignoring change event", log.FieldKind, ev.Kind, log.FieldRecordID, ev.ID)
		return nil
	}

	month := core.Month(ev.Month)
	if month == "" || month.Validate() != nil {
		month = core.MonthOf(w.now())
	}

	_, err := w.Check(ctx, month)
	if err != nil {
		return fmt.Errorf("check budgets for %s event %s: %w", ev.Kind, ev.ID, err)
	}
	return nil
}

// Check computes utilization for month, logs every overrun and updates the
// gauge.
func (w *BudgetWatcher) Check(ctx context.Context, month core.Month) (Report, error) {
	var (
		categories []core.Category
		expenses   []core.Expense
		budgets    []core.Budget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { categories, err = w.store.Categories(gctx); return })
	g.Go(func() (err error) { expenses, err = w.store.Expenses(gctx); return })
	g.Go(func() (err error) { budgets, err = w.store.Budgets(gctx); return })
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	statuses := core.BudgetUtilization(month, categories, expenses, budgets)
	report := Report{Month: month, Checked: len(statuses)}
	for _, st := range statuses {
		if st.Status != core.OverBudget {
			continue
		}
		report.Over = append(report.Over, st)
		w.logger.WarnContext(ctx, "Category over budget",
			log.FieldMonth, string(month),
			log.FieldCategoryID, st.CategoryID,
			"category", st.Name,
			"spent_cents", st.Spent.Cents,
			"budget_cents", st.Budget.Cents,
			"percent", st.Percent)
	}

	metrics.BudgetOverruns.WithLabelValues(string(month)).Set(float64(len(report.Over)))
	w.logger.InfoContext(ctx, "Budget check complete",
		log.FieldMonth, string(month),
		"checked", report.Checked,
		"over", len(report.Over))
	return report, nil
}

// StartupCheck checks the current month once, so the gauge is populated
// before the first event arrives.
func (w *BudgetWatcher) StartupCheck(ctx context.Context) error {
	_, err := w.Check(ctx, core.MonthOf(w.now()))
	return err
}
