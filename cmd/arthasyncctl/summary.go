package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"arthasync/internal/format"
)

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show totals, the monthly trend and spending by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), openOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			d, err := s.ctrl.Dashboard()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			balance := successStyle
			if d.Totals.Balance.Cents < 0 {
				balance = errorStyle
			}
			fmt.Fprintln(out, boxStyle.Render(fmt.Sprintf("%s %s\n%s %s\n%s %s",
				headerStyle.Render(format.T("totalIncome", d.Language)+":"), d.Formatted.Income,
				headerStyle.Render(format.T("totalExpenses", d.Language)+":"), d.Formatted.Expense,
				headerStyle.Render(d.Formatted.BalanceLabel+":"), balance.Render(d.Formatted.Balance),
			)))

			if len(d.Trend) > 0 {
				fmt.Fprintln(out, titleStyle.Render("\n"+format.T("monthlyTrend", d.Language)))
				t := newTable(out, "Month", "Income", "Expense")
				for _, p := range d.Trend {
					t.Row(p.Label,
						format.Currency(p.Income, d.Currency, d.Language),
						format.Currency(p.Expense, d.Currency, d.Language))
				}
				if err := t.Flush(); err != nil {
					return err
				}
			}

			if len(d.Breakdown) > 0 {
				fmt.Fprintln(out, titleStyle.Render("\n"+format.T("expenseBreakdown", d.Language)))
				t := newTable(out, "Category", "Amount")
				for _, c := range d.Breakdown {
					t.Row(c.Name, format.Currency(c.Amount, d.Currency, d.Language))
				}
				if err := t.Flush(); err != nil {
					return err
				}
			}

			if len(d.Recent) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("\nNo transactions yet. Use 'arthasyncctl add' to record one."))
				return nil
			}
			fmt.Fprintln(out, titleStyle.Render("\n"+format.T("recentTransactions", d.Language)))
			t := newTable(out, "Date", "Type", "Label", "Category", "Amount")
			for _, r := range d.Recent {
				t.Row(r.DateText, string(r.Kind), r.Label, r.CategoryName, r.AmountText)
			}
			return t.Flush()
		},
	}
}
