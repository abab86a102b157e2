package core

import (
	"sort"
	"strings"
)

const (
	KindIncome  TransactionKind = "INCOME"
	KindExpense TransactionKind = "EXPENSE"
	KindAll     TransactionKind = "ALL"
)

type TransactionKind string

// ParseKind maps user input to a kind. An empty string means KindAll.
func ParseKind(s string) (TransactionKind, error) {
	switch TransactionKind(strings.ToUpper(strings.TrimSpace(s))) {
	case "", KindAll:
		return KindAll, nil
	case KindIncome:
		return KindIncome, nil
	case KindExpense:
		return KindExpense, nil
	default:
		return "", ErrInvalidType
	}
}

// Transaction is the unified list view over incomes and expenses.
type Transaction struct {
	ID              string          `json:"id"`
	Kind            TransactionKind `json:"type"`
	Date            Date            `json:"date"`
	Label           string          `json:"label"`
	CategoryID      string          `json:"categoryId"`
	CategoryName    string          `json:"categoryName"`
	PaymentMethodID string          `json:"paymentMethodId,omitempty"`
	Amount          Money           `json:"amount"`
	Note            string          `json:"note"`
}

// MergeTransactions returns incomes and expenses as one list, newest first.
func MergeTransactions(incomes []Income, expenses []Expense, categories []Category) []Transaction {
	out := make([]Transaction, 0, len(incomes)+len(expenses))
	for _, in := range incomes {
		out = append(out, Transaction{
			ID:           in.ID,
			Kind:         KindIncome,
			Date:         in.Date,
			Label:        in.Source,
			CategoryID:   in.CategoryID,
			CategoryName: CategoryName(categories, in.CategoryID),
			Amount:       in.Amount,
			Note:         in.Note,
		})
	}
	for _, ex := range expenses {
		out = append(out, Transaction{
			ID:              ex.ID,
			Kind:            KindExpense,
			Date:            ex.Date,
			Label:           ex.Title,
			CategoryID:      ex.CategoryID,
			CategoryName:    CategoryName(categories, ex.CategoryID),
			PaymentMethodID: ex.PaymentMethodID,
			Amount:          ex.Amount,
			Note:            ex.Note,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

// FilterTransactions keeps entries of the given kind whose label, note or
// amount contains query, case-insensitively.
func FilterTransactions(list []Transaction, query string, kind TransactionKind) []Transaction {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Transaction, 0, len(list))
	for _, t := range list {
		if kind != "" && kind != KindAll && t.Kind != kind {
			continue
		}
		if q != "" && !t.matches(q) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (t Transaction) matches(q string) bool {
	return strings.Contains(strings.ToLower(t.Label), q) ||
		strings.Contains(strings.ToLower(t.Note), q) ||
		strings.Contains(t.Amount.String(), q)
}
