package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/tariffopt/core/advisor"
	"github.com/kilianp07/tariffopt/core/model"
	"github.com/kilianp07/tariffopt/core/store"
	"github.com/kilianp07/tariffopt/pkg/export"
)

var (
	optimizeIDs    []int
	optimizeFormat string
	savingsInput   string
	rateHour       int
	rateMinute     int
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Rank start hours for appliances",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCatalog(cmd, func(ctx context.Context, cat *store.Catalog) error {
			t, apps, err := cat.Snapshot(ctx)
			if err != nil {
				return err
			}
			ids := optimizeIDs
			if len(ids) == 0 {
				for _, a := range apps {
					ids = append(ids, a.ID)
				}
			}
			recs := advisor.New(t, apps).Optimize(ids, nil)
			return export.Write(cmd.OutOrStdout(), export.Format(optimizeFormat), recs)
		})
	},
}

var savingsCmd = &cobra.Command{
	Use:   "savings",
	Short: "Compare a current and an optimized schedule",
	RunE: func(cmd *cobra.Command, _ []string) error {
		in := cmd.InOrStdin()
		if savingsInput != "-" {
			f, err := os.Open(savingsInput)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		var data model.ScheduleComparison
		if err := json.NewDecoder(in).Decode(&data); err != nil {
			return fmt.Errorf("decode comparison: %w", err)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(advisor.CalculateSavings(data))
	},
}

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Show the tariff rate at a time of day",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if rateHour < 0 || rateHour > 23 || rateMinute < 0 || rateMinute > 59 {
			return fmt.Errorf("time %02d:%02d out of range", rateHour, rateMinute)
		}
		return withCatalog(cmd, func(ctx context.Context, cat *store.Catalog) error {
			t, err := cat.Tariff(ctx)
			if err != nil {
				return err
			}
			rate, kind := advisor.New(t, nil).RateFor(rateHour, rateMinute)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%02d:%02d %v %s %s\n", rateHour, rateMinute, rate, t.Currency, kind)
			return err
		})
	},
}

func init() {
	optimizeCmd.Flags().IntSliceVarP(&optimizeIDs, "appliances", "a", nil, "appliance ids (default: all)")
	optimizeCmd.Flags().StringVarP(&optimizeFormat, "format", "f", string(export.FormatJSON), "output format: json or csv")
	savingsCmd.Flags().StringVarP(&savingsInput, "input", "i", "-", "comparison JSON file, - for stdin")
	rateCmd.Flags().IntVar(&rateHour, "hour", 0, "hour of day (0-23)")
	rateCmd.Flags().IntVar(&rateMinute, "minute", 0, "minute (0-59)")
	rootCmd.AddCommand(optimizeCmd, savingsCmd, rateCmd)
}
