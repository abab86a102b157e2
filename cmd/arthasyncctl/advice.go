package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func adviceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advice",
		Short: "Ask the configured model for spending advice",
		Long: `Summarize your incomes and expenses and ask the configured provider
(ADVICE_PROVIDER, ADVICE_API_KEY) for short, actionable advice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), openOptions{withAdvice: true})
			if err != nil {
				return err
			}
			defer s.Close()

			adv, err := s.ctrl.RefreshAdvice(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), boxStyle.Width(72).Render(adv.Text))
			return nil
		},
	}
}
