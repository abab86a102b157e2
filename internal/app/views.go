package app

import (
	"arthasync/internal/core"
	"arthasync/internal/format"
)

// RecentLimit is the number of transactions shown on the dashboard.
const RecentLimit = 5

// Snapshot is a copy of every cached collection at one revision.
type Snapshot struct {
	Revision   int64            `json:"revision"`
	Incomes    []core.Income    `json:"incomes"`
	Expenses   []core.Expense   `json:"expenses"`
	Categories []core.Category  `json:"categories"`
	Budgets    []core.Budget    `json:"budgets"`
	Settings   core.AppSettings `json:"-"`
}

// Snapshot copies the cache. Callers may keep it after further mutations.
func (c *Controller) Snapshot() (Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.checkLoaded(); err != nil {
		return Snapshot{}, err
	}
	return c.snapshotLocked(), nil
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Revision:   c.revision,
		Incomes:    append([]core.Income(nil), c.incomes...),
		Expenses:   append([]core.Expense(nil), c.expenses...),
		Categories: append([]core.Category(nil), c.categories...),
		Budgets:    append([]core.Budget(nil), c.budgets...),
		Settings:   c.settings,
	}
}

// Dashboard is the summary page.
type Dashboard struct {
	Revision  int64                `json:"revision"`
	Language  core.Language        `json:"language"`
	Currency  string               `json:"currency"`
	Totals    core.Totals          `json:"totals"`
	Formatted FormattedTotals      `json:"formatted"`
	Trend     []TrendPoint         `json:"trend"`
	Breakdown []core.CategorySlice `json:"breakdown"`
	Recent    []RecentTransaction  `json:"recent"`
}

type FormattedTotals struct {
	Income       string `json:"totalIncome"`
	Expense      string `json:"totalExpense"`
	Balance      string `json:"balance"`
	BalanceLabel string `json:"balanceLabel"`
}

type TrendPoint struct {
	core.MonthlyPoint
	Label string `json:"label"`
}

type RecentTransaction struct {
	core.Transaction
	DateText   string `json:"dateText"`
	AmountText string `json:"amountText"`
}

// Dashboard computes totals, the six-month trend, the expense breakdown and
// the most recent transactions, formatted with the current settings.
func (c *Controller) Dashboard() (Dashboard, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.checkLoaded(); err != nil {
		return Dashboard{}, err
	}

	s := c.settings
	totals := core.ComputeTotals(c.incomes, c.expenses)
	d := Dashboard{
		Revision: c.revision,
		Language: s.Language,
		Currency: s.Currency,
		Totals:   totals,
		Formatted: FormattedTotals{
			Income:       format.Currency(totals.Income, s.Currency, s.Language),
			Expense:      format.Currency(totals.Expense, s.Currency, s.Language),
			Balance:      format.Currency(totals.Balance, s.Currency, s.Language),
			BalanceLabel: format.BalanceLabel(totals.Balance, s.Language),
		},
		Breakdown: core.CategoryBreakdown(c.categories, c.expenses),
	}

	for _, p := range core.MonthlyTrend(c.incomes, c.expenses) {
		d.Trend = append(d.Trend, TrendPoint{MonthlyPoint: p, Label: format.MonthName(p.Month, s.Language)})
	}

	recent := core.MergeTransactions(c.incomes, c.expenses, c.categories)
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	for _, t := range recent {
		d.Recent = append(d.Recent, RecentTransaction{
			Transaction: t,
			DateText:    format.Date(t.Date, s.Language),
			AmountText:  format.Currency(t.Amount, s.Currency, s.Language),
		})
	}
	return d, nil
}
