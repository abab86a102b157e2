package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"arthasync/internal/app"
	"arthasync/internal/core"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change language, currency, theme and PIN",
	}
	cmd.AddCommand(showSettingsCmd())
	cmd.AddCommand(setSettingsCmd())
	return cmd
}

func showSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), openOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			view, err := s.ctrl.Settings()
			if err != nil {
				return err
			}
			printSettings(cmd, view)
			return nil
		},
	}
}

func printSettings(cmd *cobra.Command, view app.SettingsView) {
	pin := mutedStyle.Render("off")
	if view.PINEnabled {
		pin = warnStyle.Render("on")
	}
	fmt.Fprintln(cmd.OutOrStdout(), boxStyle.Render(fmt.Sprintf("%s %s\n%s %s\n%s %t\n%s %s",
		headerStyle.Render("Language:"), view.Language,
		headerStyle.Render("Currency:"), view.Currency,
		headerStyle.Render("Dark mode:"), view.DarkMode,
		headerStyle.Render("PIN:"), pin,
	)))
}

// settingsPatch builds a patch from the flags the user actually set.
func settingsPatch(cmd *cobra.Command) (core.SettingsPatch, error) {
	var patch core.SettingsPatch
	flags := cmd.Flags()

	if flags.Changed("language") {
		v, _ := flags.GetString("language")
		lang := core.Language(strings.ToLower(strings.TrimSpace(v)))
		patch.Language = &lang
	}
	if flags.Changed("currency") {
		v, _ := flags.GetString("currency")
		v = strings.ToUpper(strings.TrimSpace(v))
		patch.Currency = &v
	}
	if flags.Changed("dark-mode") {
		v, _ := flags.GetString("dark-mode")
		b, err := strconv.ParseBool(v)
		if err != nil {
			return patch, fmt.Errorf("invalid --dark-mode %q: use true or false", v)
		}
		patch.DarkMode = &b
	}
	if flags.Changed("new-pin") {
		v, _ := flags.GetString("new-pin")
		patch.PIN = &v
	}
	if flags.Changed("clear-pin") {
		empty := ""
		patch.PIN = &empty
	}
	return patch, nil
}

func setSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change one or more settings",
		Example: `  arthasyncctl settings set --language bn --currency BDT
  arthasyncctl settings set --new-pin 1234
  arthasyncctl --pin 1234 settings set --clear-pin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			patch, err := settingsPatch(cmd)
			if err != nil {
				return err
			}
			if patch.IsEmpty() {
				return fmt.Errorf("nothing to change: pass at least one flag")
			}

			s, err := openSession(cmd.Context(), openOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			view, err := s.ctrl.UpdateSettings(cmd.Context(), patch)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ Settings saved"))
			printSettings(cmd, view)
			return nil
		},
	}

	cmd.Flags().String("language", "", "display language (en or bn)")
	cmd.Flags().String("currency", "", "ISO 4217 currency code, e.g. BDT or USD")
	cmd.Flags().String("dark-mode", "", "true or false")
	cmd.Flags().String("new-pin", "", "set a 4-digit PIN")
	cmd.Flags().Bool("clear-pin", false, "remove the PIN")
	cmd.MarkFlagsMutuallyExclusive("new-pin", "clear-pin")

	return cmd
}
