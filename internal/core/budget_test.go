package core

import "testing"

func TestBudgetUtilization(t *testing.T) {
	expenses := []Expense{
		{Date: NewDate(2024, 5, 15), CategoryID: "exp1", Amount: Cents(120000)},
		{Date: NewDate(2024, 4, 30), CategoryID: "exp1", Amount: Cents(999999)}, // other month
		{Date: NewDate(2024, 5, 2), CategoryID: "exp2", Amount: Cents(60000)},
	}
	budgets := []Budget{
		{ID: "b1", CategoryID: "exp1", Month: "2024-05", Amount: Cents(150000)},
		{ID: "b2", CategoryID: "exp2", Month: "2024-05", Amount: Cents(50000)},
		{ID: "b3", CategoryID: "exp3", Month: "2024-04", Amount: Cents(50000)},
	}

	got := BudgetUtilization("2024-05", DefaultCategories(), expenses, budgets)
	if len(got) != 4 {
		t.Fatalf("expected one status per expense category, got %d", len(got))
	}

	byID := make(map[string]BudgetStatus)
	for _, s := range got {
		byID[s.CategoryID] = s
	}

	food := byID["exp1"]
	if food.Spent.Cents != 120000 || food.Budget.Cents != 150000 {
		t.Fatalf("unexpected food status %+v", food)
	}
	if food.Percent != 80 || food.Status != WithinBudget {
		t.Fatalf("expected 80%% within budget, got %v %s", food.Percent, food.Status)
	}

	rent := byID["exp2"]
	if rent.Percent != 120 || rent.Status != OverBudget {
		t.Fatalf("expected 120%% over budget, got %v %s", rent.Percent, rent.Status)
	}
	if rent.DisplayPercent() != 100 {
		t.Fatalf("display percent should clamp to 100, got %v", rent.DisplayPercent())
	}

	transport := byID["exp3"]
	if transport.Budget.Cents != 0 || transport.Percent != 0 || transport.Status != WithinBudget {
		t.Fatalf("budget from another month must not apply: %+v", transport)
	}
}

func TestBudgetUtilizationExactlyFull(t *testing.T) {
	expenses := []Expense{{Date: NewDate(2024, 5, 1), CategoryID: "exp1", Amount: Cents(1000)}}
	budgets := []Budget{{CategoryID: "exp1", Month: "2024-05", Amount: Cents(1000)}}

	got := BudgetUtilization("2024-05", DefaultCategories(), expenses, budgets)
	if got[0].CategoryID != "exp1" {
		t.Fatalf("unexpected ordering %+v", got)
	}
	if got[0].Percent != 100 || got[0].Status != WithinBudget {
		t.Fatalf("100%% must still be within budget, got %+v", got[0])
	}
}

func TestBudgetUtilizationNoBudgetOverspend(t *testing.T) {
	expenses := []Expense{{Date: NewDate(2024, 5, 1), CategoryID: "exp1", Amount: Cents(1000)}}
	got := BudgetUtilization("2024-05", DefaultCategories(), expenses, nil)
	if got[0].Percent != 0 || got[0].Status != WithinBudget {
		t.Fatalf("spending without a budget is 0%%, got %+v", got[0])
	}
}

func TestBudgetUtilizationLargeAmounts(t *testing.T) {
	top, err := ParseAmount("10000000000000")
	if err != nil {
		t.Fatalf("largest amount rejected: %v", err)
	}
	expenses := make([]Expense, 1000)
	for i := range expenses {
		expenses[i] = Expense{Date: NewDate(2024, 5, 1), CategoryID: "exp1", Amount: top}
	}
	budgets := []Budget{{CategoryID: "exp1", Month: "2024-05", Amount: top}}

	got := BudgetUtilization("2024-05", DefaultCategories(), expenses, budgets)
	if got[0].Spent.Cents != 1000*top.Cents {
		t.Fatalf("spent = %d, want %d", got[0].Spent.Cents, 1000*top.Cents)
	}
	if got[0].Percent != 100000 || got[0].Status != OverBudget {
		t.Fatalf("expected 100000%% over budget, got %+v", got[0])
	}
}
