package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/tariffopt/app"
	"github.com/kilianp07/tariffopt/core/model"
	"github.com/kilianp07/tariffopt/core/store"
)

var tariffCmd = &cobra.Command{
	Use:   "tariff",
	Short: "Inspect and replace the tariff plan",
}

var tariffShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored tariff as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCatalog(cmd, func(ctx context.Context, cat *store.Catalog) error {
			t, err := cat.Tariff(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "    ")
			return enc.Encode(t)
		})
	},
}

var tariffImportCmd = &cobra.Command{
	Use:   "import <file.yaml|file.json>",
	Short: "Validate and store a tariff plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := readTariff(args[0])
		if err != nil {
			return err
		}
		return withCatalog(cmd, func(ctx context.Context, cat *store.Catalog) error {
			if err := cat.SetTariff(ctx, t); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "imported tariff %q with %d slots\n", t.Plan, len(t.Slots))
			return err
		})
	},
}

var tariffSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the tariff from the configured feed",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		svc, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer svc.Close()
		return svc.SyncTariff(ctx)
	},
}

// readTariff decodes a tariff file, as YAML for .yaml/.yml and JSON otherwise.
func readTariff(path string) (model.TariffTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.TariffTable{}, err
	}
	defer f.Close()
	return decodeTariff(f, filepath.Ext(path))
}

func decodeTariff(r io.Reader, ext string) (model.TariffTable, error) {
	var t model.TariffTable
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(r).Decode(&t); err != nil {
			return t, fmt.Errorf("decode yaml tariff: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&t); err != nil {
			return t, fmt.Errorf("decode json tariff: %w", err)
		}
	}
	return t, nil
}

func init() {
	tariffCmd.AddCommand(tariffShowCmd, tariffImportCmd, tariffSyncCmd)
	rootCmd.AddCommand(tariffCmd)
}
