// Command culturegen serves the Culture Générale site and runs its
// maintenance tasks.
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
	"go.uber.org/zap"

	"github.com/eringen/culturegen"
	"github.com/eringen/culturegen/views"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:           "culturegen",
		Short:         "Culture Générale publishing site",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configDir)
		},
	}
	cmd.PersistentFlags().StringVarP(&configDir, "config", "c", ".", "Directory holding config.yaml")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configDir)
		},
	})

	var dryRun bool
	normalize := &cobra.Command{
		Use:   "normalize",
		Short: "Rewrite stored article content into canonical form",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(configDir, dryRun)
		},
	}
	normalize.Flags().BoolVar(&dryRun, "dry-run", false, "Report changes without writing them")
	cmd.AddCommand(normalize)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the culturegen version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("culturegen %s\n", version)
		},
	})
	return cmd
}

func serve(ctx context.Context, configDir string) error {
	cfg, err := culturegen.LoadConfig(configDir)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := culturegen.New(cfg, views.New(cfg))
	defer app.Close()
	if err := app.Init(ctx); err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- app.Serve() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	app.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return <-errc
}

func runNormalize(configDir string, dryRun bool) error {
	cfg, err := culturegen.LoadConfig(configDir)
	if err != nil {
		return err
	}
	logger, err := culturegen.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := culturegen.NewStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := culturegen.NormalizeContent(store, logger, dryRun)
	if err != nil {
		return err
	}
	logger.Info("normalize done", zap.Int("scanned", report.Scanned), zap.Int("rewritten", report.Rewritten),
		zap.Int("failed", report.Failed), zap.Bool("dry_run", dryRun))
	if report.Failed > 0 {
		return fmt.Errorf("%d articles have content that does not decode; fix them in the admin", report.Failed)
	}
	return nil
}
