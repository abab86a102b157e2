package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"arthasync/internal/app"
	"arthasync/internal/core"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "budget",
		Aliases: []string{"budgets"},
		Short:   "Show or set monthly category budgets",
	}
	cmd.AddCommand(showBudgetCmd())
	cmd.AddCommand(setBudgetCmd())
	return cmd
}

func showBudgetCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show spending against budget for every expense category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), openOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			view, err := s.ctrl.Budgets(core.Month(month))
			if err != nil {
				return describe(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(view.MonthName))
			if len(view.Items) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No expense categories."))
				return nil
			}

			t := newTable(out, "Category", "Spent", "Budget", "Used", "Status")
			for _, it := range view.Items {
				style := budgetStyle(it.Status)
				budget := it.BudgetText
				if it.Budget.IsZero() {
					budget = mutedStyle.Render("not set")
				}
				t.Row(it.Name, it.SpentText, budget,
					fmt.Sprintf("%s %3.0f%%", style.Render(progressBar(it.DisplayPercent, 20)), it.Percent),
					style.Render(it.StatusLabel))
			}
			return t.Flush()
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "month as YYYY-MM (default current month)")

	return cmd
}

func setBudgetCmd() *cobra.Command {
	var in app.BudgetInput

	cmd := &cobra.Command{
		Use:   "set <category-id> <amount>",
		Short: "Set the budget for a category in a month",
		Long:  `Set the budget for an expense category. Setting it again for the same month replaces the amount.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.CategoryID = args[0]
			in.Amount = args[1]

			s, err := openSession(cmd.Context(), openOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			b, err := s.ctrl.SetBudget(cmd.Context(), in)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s for %s in %s\n",
				successStyle.Render("✓ Budget set:"), b.Amount.String(), b.CategoryID, b.Month)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Month, "month", "m", "", "month as YYYY-MM (default current month)")

	return cmd
}
