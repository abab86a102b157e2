package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"arthasync/internal/advisor"
	"arthasync/internal/app"
	"arthasync/internal/backend"
	"arthasync/internal/cli"
	"arthasync/internal/config"
	"arthasync/internal/log"
)

var (
	version = "dev"
	pinFlag string
	logger  = log.Discard()
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "arthasyncctl",
		Short: "Manage your ArthaSync ledger from the terminal",
		Long: `arthasyncctl reads and edits the same data store as the arthasync server:
record incomes and expenses, set monthly budgets, change settings and ask for advice.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initEnv,
	}

	root.PersistentFlags().StringVar(&pinFlag, "pin", "", "PIN used to unlock a protected ledger")
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(summaryCmd())
	root.AddCommand(transactionsCmd())
	root.AddCommand(addCmd())
	root.AddCommand(deleteCmd())
	root.AddCommand(categoriesCmd())
	root.AddCommand(budgetCmd())
	root.AddCommand(settingsCmd())
	root.AddCommand(adviceCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(versionCmd())

	return root
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}

func initEnv(cmd *cobra.Command, _ []string) error {
	cli.LoadEnvFile()

	level, _ := cmd.Flags().GetString("log-level")
	logger = log.New(log.Config{
		Level:     log.ParseLevel(level),
		Format:    log.FormatConsole,
		Component: log.ComponentApp,
		Output:    os.Stderr,
	})
	log.SetDefault(logger)
	return nil
}

var errLocked = errors.New("ledger is locked: pass --pin")

// session is an opened ledger. Close releases the store and event client.
type session struct {
	ctrl    *app.Controller
	cleanup func() error
}

func (s *session) Close() {
	if err := s.cleanup(); err != nil {
		logger.Warn("Backend cleanup failed", log.FieldError, err.Error())
	}
}

type openOptions struct {
	withAdvice bool
}

func openSession(ctx context.Context, opts openOptions) (*session, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := backend.NewFactory(logger).CreateBackend(initCtx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	ctrlOpts := app.Options{Logger: logger}
	if res.Events != nil {
		ctrlOpts.Publisher = res.Events
	}
	if opts.withAdvice {
		gen, err := advisor.NewGenerator(initCtx, advisor.Config{
			Provider: cfg.AdviceProvider,
			APIKey:   cfg.AdviceAPIKey,
			Model:    cfg.AdviceModel,
			BaseURL:  cfg.AdviceBaseURL,
		})
		if err != nil && !errors.Is(err, advisor.ErrNotConfigured) {
			_ = res.Cleanup()
			return nil, fmt.Errorf("failed to initialize advice provider: %w", err)
		}
		ctrlOpts.Adviser = advisor.New(gen, advisor.Options{
			Timeout:  cfg.AdviceTimeout,
			CacheTTL: cfg.AdviceCacheTTL,
			Logger:   logger,
		})
	}

	ctrl := app.New(res.Store, ctrlOpts)
	if err := ctrl.Load(initCtx); err != nil {
		_ = res.Cleanup()
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	if err := unlock(ctx, ctrl, pinFlag); err != nil {
		_ = res.Cleanup()
		return nil, err
	}
	return &session{ctrl: ctrl, cleanup: res.Cleanup}, nil
}

func unlock(ctx context.Context, ctrl *app.Controller, pin string) error {
	if !ctrl.IsLocked() {
		return nil
	}
	if pin == "" {
		return errLocked
	}
	return ctrl.Unlock(ctx, pin)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "arthasyncctl %s\n", version)
		},
	}
}
