package core

const (
	WithinBudget BudgetState = "WITHIN_BUDGET"
	OverBudget   BudgetState = "OVER_BUDGET"
)

type BudgetState string

// BudgetStatus is the spend-versus-budget view of one EXPENSE category in one month.
type BudgetStatus struct {
	CategoryID string      `json:"categoryId"`
	Name       string      `json:"name"`
	Color      string      `json:"color,omitempty"`
	Month      Month       `json:"month"`
	Spent      Money       `json:"spent"`
	Budget     Money       `json:"budget"`
	Percent    float64     `json:"percent"`
	Status     BudgetState `json:"status"`
}

// DisplayPercent clamps Percent to 100 for progress bars.
func (b BudgetStatus) DisplayPercent() float64 {
	if b.Percent > 100 {
		return 100
	}
	return b.Percent
}

// FindBudget returns the budget for (categoryID, month), if any.
func FindBudget(budgets []Budget, categoryID string, month Month) (Budget, bool) {
	for _, b := range budgets {
		if b.CategoryID == categoryID && b.Month == month {
			return b, true
		}
	}
	return Budget{}, false
}

// BudgetUtilization computes spend against budget for every EXPENSE category
// in the given month.
func BudgetUtilization(month Month, categories []Category, expenses []Expense, budgets []Budget) []BudgetStatus {
	spent := make(map[string]Money)
	for _, ex := range expenses {
		if ex.Date.Month() != month {
			continue
		}
		spent[ex.CategoryID] = spent[ex.CategoryID].Add(ex.Amount)
	}

	var out []BudgetStatus
	for _, c := range categories {
		if c.Type != CategoryExpense {
			continue
		}
		st := BudgetStatus{
			CategoryID: c.ID,
			Name:       c.Name,
			Color:      c.Color,
			Month:      month,
			Spent:      spent[c.ID],
			Status:     WithinBudget,
		}
		if b, ok := FindBudget(budgets, c.ID, month); ok {
			st.Budget = b.Amount
		}
		if st.Budget.Cents > 0 {
			st.Percent = float64(st.Spent.Cents) * 100 / float64(st.Budget.Cents)
		}
		if st.Percent > 100 {
			st.Status = OverBudget
		}
		out = append(out, st)
	}
	return out
}
