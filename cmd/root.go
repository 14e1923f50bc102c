package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/tariffopt/app"
	"github.com/kilianp07/tariffopt/config"
	"github.com/kilianp07/tariffopt/core/store"
	"github.com/kilianp07/tariffopt/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "tariffopt",
	Short:         "Time-of-use appliance scheduling advisor",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and background workers",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the configuration. A missing default file falls back to
// defaults and environment overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := cfgPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := app.Setup(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withCatalog opens the configured repository for a one-shot command.
func withCatalog(cmd *cobra.Command, fn func(ctx context.Context, cat *store.Catalog) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cat, err := app.OpenCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := cat.Repository().Close(); err != nil {
			logger.New("cli").Errorf("close repository: %v", err)
		}
	}()
	return fn(ctx, cat)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}
