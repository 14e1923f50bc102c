package cmd

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/tariffopt/core/model"
	"github.com/kilianp07/tariffopt/core/store"
)

var newAppliance model.NewAppliance

var applianceCmd = &cobra.Command{
	Use:   "appliance",
	Short: "Manage the appliance catalog",
}

var applianceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List appliances",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCatalog(cmd, func(ctx context.Context, cat *store.Catalog) error {
			apps, err := cat.List(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPOWER_KW\tDURATION_H")
			for _, a := range apps {
				fmt.Fprintf(tw, "%d\t%s\t%v\t%v\n", a.ID, a.Name, a.PowerKW, a.DurationHours)
			}
			return tw.Flush()
		})
	},
}

var applianceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an appliance",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCatalog(cmd, func(ctx context.Context, cat *store.Catalog) error {
			app, err := cat.Add(ctx, newAppliance)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "added appliance %d (%s)\n", app.ID, app.Name)
			return err
		})
	},
}

var applianceRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an appliance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid appliance id %q", args[0])
		}
		return withCatalog(cmd, func(ctx context.Context, cat *store.Catalog) error {
			return cat.Delete(ctx, id)
		})
	},
}

func init() {
	applianceAddCmd.Flags().StringVar(&newAppliance.Name, "name", "", "appliance name")
	applianceAddCmd.Flags().Float64Var(&newAppliance.PowerKW, "power", 0, "power draw in kW")
	applianceAddCmd.Flags().Float64Var(&newAppliance.DurationHours, "duration", 0, "run duration in hours")
	applianceCmd.AddCommand(applianceListCmd, applianceAddCmd, applianceRmCmd)
	rootCmd.AddCommand(applianceCmd)
}
