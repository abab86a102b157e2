package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"arthasync/internal/core"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage income and expense categories",
	}
	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())
	cmd.AddCommand(paymentMethodsCmd())
	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), openOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			cats, err := s.ctrl.Categories()
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout(), "ID", "Name", "Type", "Color")
			for _, c := range cats {
				color := orNone(c.Color)
				if c.Color != "" {
					color = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render("● " + c.Color)
				}
				t.Row(c.ID, c.Name, string(c.Type), color)
			}
			return t.Flush()
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var (
		catType string
		color   string
		icon    string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), openOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			saved, err := s.ctrl.AddCategory(cmd.Context(), core.Category{
				Name:  strings.TrimSpace(args[0]),
				Type:  core.CategoryType(strings.ToUpper(catType)),
				Color: color,
				Icon:  icon,
			})
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", successStyle.Render("✓ Added category"), saved.Name, mutedStyle.Render(saved.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&catType, "type", "t", "expense", "income or expense")
	cmd.Flags().StringVar(&color, "color", "", "hex color, e.g. #3b82f6")
	cmd.Flags().StringVar(&icon, "icon", "", "icon name")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Long:  `Delete a category. Transactions that used it are kept and listed under "Unknown".`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), openOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.ctrl.DeleteCategory(cmd.Context(), args[0]); err != nil {
				return describe(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ Deleted category "+args[0]))
			return nil
		},
	}
}

func paymentMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "payment-methods",
		Short: "List the payment methods an expense can use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := newTable(cmd.OutOrStdout(), "ID", "Name")
			for _, pm := range core.PaymentMethods() {
				t.Row(pm.ID, pm.Name)
			}
			return t.Flush()
		},
	}
}
