package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"arthasync/internal/amqp"
	"arthasync/internal/core"
	"arthasync/internal/log"
)

// Change event kinds.
const (
	KindIncome   = "income"
	KindExpense  = "expense"
	KindCategory = "category"
	KindBudget   = "budget"
	KindSettings = "settings"
)

var (
	ErrUnknownCategory      = errors.New("unknown category")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

// TransactionInput is a transaction as entered by the user. Amount is kept
// as text so that "12,50" and "12.50" parse the same way.
type TransactionInput struct {
	Kind            core.TransactionKind `json:"type"`
	Date            string               `json:"date"`
	Label           string               `json:"label"`
	CategoryID      string               `json:"categoryId"`
	PaymentMethodID string               `json:"paymentMethodId"`
	Amount          string               `json:"amount"`
	Note            string               `json:"note"`
}

// TransactionFilter narrows the transaction list.
type TransactionFilter struct {
	Query string
	Kind  core.TransactionKind
}

func fieldError(field string, err error) error {
	return &core.ValidationError{Field: field, Err: err}
}

// AddTransaction validates in, persists it and appends it to the cache.
// Invalid input is rejected with a *core.ValidationError.
func (c *Controller) AddTransaction(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	c.mu.Lock()
	if err := c.checkLoaded(); err != nil {
		c.mu.Unlock()
		return core.Transaction{}, err
	}

	tx, err := c.addTransactionLocked(ctx, in)
	if err != nil {
		c.mu.Unlock()
		return core.Transaction{}, err
	}
	rev := c.changed()
	c.mu.Unlock()

	kind := KindIncome
	if tx.Kind == core.KindExpense {
		kind = KindExpense
	}
	c.publish(ctx, kind, amqp.OpCreated, tx.ID, tx.Date.Month(), rev)
	return tx, nil
}

func (c *Controller) addTransactionLocked(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	kind := core.TransactionKind(strings.ToUpper(strings.TrimSpace(string(in.Kind))))
	if kind != core.KindIncome && kind != core.KindExpense {
		return core.Transaction{}, fieldError("type", core.ErrInvalidType)
	}
	labelField := "source"
	catType := core.CategoryIncome
	if kind == core.KindExpense {
		labelField = "title"
		catType = core.CategoryExpense
	}

	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, fieldError("amount", err)
	}
	label := strings.TrimSpace(in.Label)
	if label == "" {
		return core.Transaction{}, fieldError(labelField, core.ErrMissingLabel)
	}
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return core.Transaction{}, fieldError("date", err)
	}

	categoryID := strings.TrimSpace(in.CategoryID)
	if categoryID == "" {
		categoryID = c.firstCategory(catType)
	} else if cat, ok := core.FindCategory(c.categories, categoryID); !ok || cat.Type != catType {
		return core.Transaction{}, fieldError("categoryId", ErrUnknownCategory)
	}
	note := strings.TrimSpace(in.Note)

	if kind == core.KindIncome {
		saved, err := c.store.AddIncome(ctx, core.Income{
			Date:       date,
			Source:     label,
			CategoryID: categoryID,
			Amount:     amount,
			Note:       note,
		})
		if err != nil {
			return core.Transaction{}, fmt.Errorf("add income: %w", err)
		}
		c.incomes = append(c.incomes, saved)
		c.records.LogRecordChanged(ctx, log.OpCreate, KindIncome, saved.ID, saved.Amount.Cents, string(saved.Date.Month()))
		return core.MergeTransactions([]core.Income{saved}, nil, c.categories)[0], nil
	}

	pm := strings.TrimSpace(in.PaymentMethodID)
	if pm == "" {
		pm = core.PaymentMethods()[0].ID
	} else if !core.IsPaymentMethod(pm) {
		return core.Transaction{}, fieldError("paymentMethodId", ErrUnknownPaymentMethod)
	}
	saved, err := c.store.AddExpense(ctx, core.Expense{
		Date:            date,
		Title:           label,
		CategoryID:      categoryID,
		PaymentMethodID: pm,
		Amount:          amount,
		Note:            note,
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add expense: %w", err)
	}
	c.expenses = append(c.expenses, saved)
	c.records.LogRecordChanged(ctx, log.OpCreate, KindExpense, saved.ID, saved.Amount.Cents, string(saved.Date.Month()))
	return core.MergeTransactions(nil, []core.Expense{saved}, c.categories)[0], nil
}

func (c *Controller) firstCategory(t core.CategoryType) string {
	for _, cat := range c.categories {
		if cat.Type == t {
			return cat.ID
		}
	}
	return ""
}

// DeleteTransaction removes one income or expense by id.
func (c *Controller) DeleteTransaction(ctx context.Context, kind core.TransactionKind, id string) error {
	c.mu.Lock()
	if err := c.checkLoaded(); err != nil {
		c.mu.Unlock()
		return err
	}

	var (
		month     core.Month
		eventKind string
	)
	switch kind {
	case core.KindIncome:
		if err := c.store.DeleteIncome(ctx, id); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("delete income: %w", err)
		}
		c.incomes = filterOut(c.incomes, id, func(in core.Income) string { return in.ID }, func(in core.Income) { month = in.Date.Month() })
		eventKind = KindIncome
	case core.KindExpense:
		if err := c.store.DeleteExpense(ctx, id); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("delete expense: %w", err)
		}
		c.expenses = filterOut(c.expenses, id, func(ex core.Expense) string { return ex.ID }, func(ex core.Expense) { month = ex.Date.Month() })
		eventKind = KindExpense
	default:
		c.mu.Unlock()
		return fieldError("type", core.ErrInvalidType)
	}
	rev := c.changed()
	c.mu.Unlock()

	c.records.LogRecordChanged(ctx, log.OpDelete, eventKind, id, 0, string(month))
	c.publish(ctx, eventKind, amqp.OpDeleted, id, month, rev)
	return nil
}

// Transactions returns the merged list, newest first, narrowed by f.
func (c *Controller) Transactions(f TransactionFilter) ([]core.Transaction, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.checkLoaded(); err != nil {
		return nil, err
	}
	all := core.MergeTransactions(c.incomes, c.expenses, c.categories)
	return core.FilterTransactions(all, f.Query, f.Kind), nil
}

// filterOut returns list without the element whose id matches, calling
// removed for it.
func filterOut[T any](list []T, id string, idOf func(T) string, removed func(T)) []T {
	out := make([]T, 0, len(list))
	for _, v := range list {
		if idOf(v) == id {
			if removed != nil {
				removed(v)
			}
			continue
		}
		out = append(out, v)
	}
	return out
}
