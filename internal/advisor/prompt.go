package advisor

import (
	"fmt"
	"strings"

	"arthasync/internal/core"
)

// Persona is the fixed system instruction sent with every request.
const Persona = "You are a senior financial advisor who helps individuals and small business owners manage their money better. " +
	"You provide simple, encouraging, and highly practical advice based on income/expense trends."

// Input is the data advice is generated from.
type Input struct {
	Incomes    []core.Income
	Expenses   []core.Expense
	Categories []core.Category
	Language   core.Language
}

// HasTransactions reports whether there is anything to advise on.
func (in Input) HasTransactions() bool {
	return len(in.Incomes) > 0 || len(in.Expenses) > 0
}

func languageName(lang core.Language) string {
	if lang == core.LangBengali {
		return "Bengali"
	}
	return "English"
}

// BuildPrompt renders the plain-text summary: totals and spend per expense
// category, largest first.
func BuildPrompt(in Input) string {
	totals := core.ComputeTotals(in.Incomes, in.Expenses)
	top := core.TopExpenseCategories(in.Categories, in.Expenses, 0)

	parts := make([]string, 0, len(top))
	for _, c := range top {
		parts = append(parts, fmt.Sprintf("%s: %s", c.Name, c.Amount))
	}

	var b strings.Builder
	b.WriteString("Context: Financial summary of a user.\n")
	fmt.Fprintf(&b, "Language: %s.\n", languageName(in.Language))
	fmt.Fprintf(&b, "Total Income: %s\n", totals.Income)
	fmt.Fprintf(&b, "Total Expense: %s\n", totals.Expense)
	fmt.Fprintf(&b, "Top Expenses: %s\n\n", strings.Join(parts, ", "))
	b.WriteString("Analyze this data and provide 3-4 short, actionable pieces of advice for the user to improve their financial health or save money. Be friendly and concise.")
	return b.String()
}
