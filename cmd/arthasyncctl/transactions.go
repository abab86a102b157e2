package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"arthasync/internal/app"
	"arthasync/internal/core"
	"arthasync/internal/format"
)

func transactionsCmd() *cobra.Command {
	var (
		query string
		kind  string
	)

	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "List transactions, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := core.ParseKind(kind)
			if err != nil {
				return fmt.Errorf("invalid --type %q: use income, expense or all", kind)
			}

			s, err := openSession(cmd.Context(), openOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			list, err := s.ctrl.Transactions(app.TransactionFilter{Query: query, Kind: k})
			if err != nil {
				return err
			}
			settings, err := s.ctrl.Settings()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, mutedStyle.Render(format.T("noData", settings.Language)))
				return nil
			}

			t := newTable(out, "ID", "Date", "Type", "Label", "Category", "Amount", "Note")
			for _, tx := range list {
				amount := format.Currency(tx.Amount, settings.Currency, settings.Language)
				if tx.Kind == core.KindExpense {
					amount = errorStyle.Render("-" + amount)
				} else {
					amount = successStyle.Render("+" + amount)
				}
				t.Row(tx.ID, format.Date(tx.Date, settings.Language), string(tx.Kind),
					tx.Label, tx.CategoryName, amount, orNone(tx.Note))
			}
			if err := t.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("\n%d transaction(s)", len(list))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive search over label, note and amount")
	cmd.Flags().StringVarP(&kind, "type", "t", "all", "income, expense or all")

	return cmd
}

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income or an expense",
	}
	cmd.AddCommand(addTransactionCmd(core.KindIncome))
	cmd.AddCommand(addTransactionCmd(core.KindExpense))
	return cmd
}

func addTransactionCmd(kind core.TransactionKind) *cobra.Command {
	var in app.TransactionInput
	in.Kind = kind

	name := strings.ToLower(string(kind))
	labelName := "source"
	if kind == core.KindExpense {
		labelName = "title"
	}

	cmd := &cobra.Command{
		Use:   name + " <amount> <" + labelName + ">",
		Short: "Record an " + name,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Amount = args[0]
			in.Label = args[1]
			if in.Date == "" {
				in.Date = time.Now().Format(time.DateOnly)
			}

			s, err := openSession(cmd.Context(), openOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			tx, err := s.ctrl.AddTransaction(cmd.Context(), in)
			if err != nil {
				return describe(err)
			}
			settings, err := s.ctrl.Settings()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s (%s)\n",
				successStyle.Render("✓ Recorded"), name,
				format.Currency(tx.Amount, settings.Currency, settings.Language),
				tx.Label, mutedStyle.Render(tx.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Date, "date", "d", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&in.CategoryID, "category", "c", "", "category ID (default first "+name+" category)")
	cmd.Flags().StringVarP(&in.Note, "note", "n", "", "free-text note")
	if kind == core.KindExpense {
		cmd.Flags().StringVarP(&in.PaymentMethodID, "payment-method", "p", "", "payment method ID (default cash)")
	}

	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <income|expense> <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := core.ParseKind(args[0])
			if err != nil || kind == core.KindAll {
				return fmt.Errorf("invalid kind %q: use income or expense", args[0])
			}

			s, err := openSession(cmd.Context(), openOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.ctrl.DeleteTransaction(cmd.Context(), kind, args[1]); err != nil {
				return describe(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ Deleted "+args[1]))
			return nil
		},
	}
}
