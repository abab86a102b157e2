package core

import (
	"sort"
)

// TrendMonths is how many of the most recent months MonthlyTrend keeps.
const TrendMonths = 6

const UnknownCategory = "Unknown"

type (
	Totals struct {
		Income  Money `json:"totalIncome"`
		Expense Money `json:"totalExpense"`
		// Balance may be negative.
		Balance Money `json:"balance"`
	}

	MonthlyPoint struct {
		Month   Month `json:"month"`
		Income  Money `json:"income"`
		Expense Money `json:"expense"`
	}

	// CategorySlice represents an amount aggregated by expense category.
	CategorySlice struct {
		CategoryID string `json:"categoryId"`
		Name       string `json:"name"`
		Color      string `json:"color,omitempty"`
		Amount     Money  `json:"value"`
	}
)

// ComputeTotals sums incomes and expenses.
func ComputeTotals(incomes []Income, expenses []Expense) Totals {
	var t Totals
	for _, in := range incomes {
		t.Income = t.Income.Add(in.Amount)
	}
	for _, ex := range expenses {
		t.Expense = t.Expense.Add(ex.Amount)
	}
	t.Balance = t.Income.Sub(t.Expense)
	return t
}

// MonthlyTrend groups transactions by month, ascending, keeping the last
// TrendMonths buckets.
func MonthlyTrend(incomes []Income, expenses []Expense) []MonthlyPoint {
	buckets := make(map[Month]*MonthlyPoint)
	bucket := func(m Month) *MonthlyPoint {
		p, ok := buckets[m]
		if !ok {
			p = &MonthlyPoint{Month: m}
			buckets[m] = p
		}
		return p
	}
	for _, in := range incomes {
		p := bucket(in.Date.Month())
		p.Income = p.Income.Add(in.Amount)
	}
	for _, ex := range expenses {
		p := bucket(ex.Date.Month())
		p.Expense = p.Expense.Add(ex.Amount)
	}

	points := make([]MonthlyPoint, 0, len(buckets))
	for _, p := range buckets {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Month < points[j].Month })

	if len(points) > TrendMonths {
		points = points[len(points)-TrendMonths:]
	}
	return points
}

// CategoryBreakdown sums expenses per EXPENSE category in category order,
// dropping categories with nothing spent.
func CategoryBreakdown(categories []Category, expenses []Expense) []CategorySlice {
	sums := make(map[string]Money, len(categories))
	for _, ex := range expenses {
		sums[ex.CategoryID] = sums[ex.CategoryID].Add(ex.Amount)
	}

	var out []CategorySlice
	for _, c := range categories {
		if c.Type != CategoryExpense {
			continue
		}
		amount := sums[c.ID]
		if amount.IsZero() {
			continue
		}
		out = append(out, CategorySlice{
			CategoryID: c.ID,
			Name:       c.Name,
			Color:      c.Color,
			Amount:     amount,
		})
	}
	return out
}

// TopExpenseCategories returns the breakdown sorted by amount, largest first.
// A limit <= 0 returns every entry.
func TopExpenseCategories(categories []Category, expenses []Expense, limit int) []CategorySlice {
	slices := CategoryBreakdown(categories, expenses)
	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].Amount.Cents > slices[j].Amount.Cents
	})
	if limit > 0 && len(slices) > limit {
		slices = slices[:limit]
	}
	return slices
}

// CategoryName resolves a category id, falling back to UnknownCategory for
// ids that no longer exist.
func CategoryName(categories []Category, id string) string {
	if c, ok := FindCategory(categories, id); ok {
		return c.Name
	}
	return UnknownCategory
}

func FindCategory(categories []Category, id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
