package app

import (
	"context"
	"fmt"
	"strings"

	"arthasync/internal/amqp"
	"arthasync/internal/core"
	"arthasync/internal/format"
)

// BudgetInput sets the ceiling for one EXPENSE category in one month.
type BudgetInput struct {
	CategoryID string `json:"categoryId"`
	Month      string `json:"month"`
	Amount     string `json:"amount"`
}

// SetBudget upserts the budget for (category, month) and re-reads the
// budget collection. An empty month means the current one.
func (c *Controller) SetBudget(ctx context.Context, in BudgetInput) (core.Budget, error) {
	c.mu.Lock()
	if err := c.checkLoaded(); err != nil {
		c.mu.Unlock()
		return core.Budget{}, err
	}

	b, err := c.setBudgetLocked(ctx, in)
	if err != nil {
		c.mu.Unlock()
		return core.Budget{}, err
	}
	rev := c.changed()
	c.mu.Unlock()

	c.publish(ctx, KindBudget, amqp.OpUpdated, b.ID, b.Month, rev)
	return b, nil
}

func (c *Controller) setBudgetLocked(ctx context.Context, in BudgetInput) (core.Budget, error) {
	categoryID := strings.TrimSpace(in.CategoryID)
	if categoryID == "" {
		return core.Budget{}, fieldError("categoryId", core.ErrMissingCategory)
	}
	if cat, ok := core.FindCategory(c.categories, categoryID); !ok || cat.Type != core.CategoryExpense {
		return core.Budget{}, fieldError("categoryId", ErrUnknownCategory)
	}
	month := c.currentMonth()
	if strings.TrimSpace(in.Month) != "" {
		m, err := core.ParseMonth(in.Month)
		if err != nil {
			return core.Budget{}, fieldError("month", err)
		}
		month = m
	}
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Budget{}, fieldError("amount", err)
	}

	b, err := c.store.SetBudget(ctx, categoryID, month, amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("set budget: %w", err)
	}
	budgets, err := c.store.Budgets(ctx)
	if err != nil {
		return core.Budget{}, fmt.Errorf("reload budgets: %w", err)
	}
	c.budgets = budgets
	c.logger.InfoContext(ctx, "Budget set", "category_id", categoryID, "month", string(month), "amount_cents", amount.Cents)
	return b, nil
}

// BudgetView is the budget page for one month.
type BudgetView struct {
	Month     core.Month   `json:"month"`
	MonthName string       `json:"monthName"`
	Items     []BudgetItem `json:"items"`
}

// BudgetItem adds display strings to a core.BudgetStatus.
type BudgetItem struct {
	core.BudgetStatus
	DisplayPercent float64 `json:"displayPercent"`
	SpentText      string  `json:"spentText"`
	BudgetText     string  `json:"budgetText"`
	StatusLabel    string  `json:"statusLabel"`
}

// Budgets returns utilization for month. An empty month means the current one.
func (c *Controller) Budgets(month core.Month) (BudgetView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.checkLoaded(); err != nil {
		return BudgetView{}, err
	}
	if month == "" {
		month = c.currentMonth()
	} else if err := month.Validate(); err != nil {
		return BudgetView{}, fieldError("month", err)
	}

	s := c.settings
	statuses := core.BudgetUtilization(month, c.categories, c.expenses, c.budgets)
	view := BudgetView{
		Month:     month,
		MonthName: format.MonthName(month, s.Language),
		Items:     make([]BudgetItem, 0, len(statuses)),
	}
	for _, st := range statuses {
		view.Items = append(view.Items, BudgetItem{
			BudgetStatus:   st,
			DisplayPercent: st.DisplayPercent(),
			SpentText:      format.Currency(st.Spent, s.Currency, s.Language),
			BudgetText:     format.Currency(st.Budget, s.Currency, s.Language),
			StatusLabel:    format.BudgetLabel(st.Status, s.Language),
		})
	}
	return view, nil
}
