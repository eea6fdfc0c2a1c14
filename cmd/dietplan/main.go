// Command dietplan generates TCM weekly diet plans from the command line,
// either in-process or against a running API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shiliao/dietplan/internal/infrastructure/config"
	"github.com/shiliao/dietplan/internal/infrastructure/container"
	"github.com/shiliao/dietplan/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath string
	verbose    bool
	timeout    time.Duration

	// Logger
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dietplan",
	Short: "Seven-day TCM diet plans",
	Long: `dietplan builds a seven-day menu from a constitution profile.

Plans are generated in-process against the configured catalog, or remotely
when --server points at a running dietplan API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		var err error
		log, err = logger.New(logger.Config{
			Level:       level,
			Format:      "console",
			OutputPaths: []string{"stderr"},
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "overall command timeout")

	rootCmd.AddCommand(generateCmd, assessCmd, constitutionsCmd, catalogCmd)
	catalogCmd.AddCommand(catalogImportCmd, catalogStatsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// startCore builds the storage, catalog and planning graph without the HTTP
// servers and fills targets from it. The returned func stops the app.
func startCore(ctx context.Context, targets ...interface{}) (func(), error) {
	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			if !verbose {
				return fxevent.NopLogger
			}
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Supply(container.ConfigPath(configPath)),
		container.CoreModule,
		// Logs go to stderr so stdout carries only the command output.
		fx.Decorate(func(_ *zap.Logger, cfg *config.Config) (*zap.Logger, error) {
			level := cfg.App.LogLevel
			if verbose {
				level = "debug"
			} else if level == "info" || level == "debug" {
				level = "warn"
			}
			return logger.New(logger.Config{
				Level:       level,
				Format:      "console",
				Development: cfg.App.Debug,
				OutputPaths: []string{"stderr"},
			})
		}),
		fx.Populate(targets...),
	)

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return nil, fmt.Errorf("failed to start: %w", err)
	}

	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Stop(stopCtx); err != nil {
			log.Warn("Shutdown was not clean", zap.Error(err))
		}
	}, nil
}
