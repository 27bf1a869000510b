package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

func NewMetraCmd(app *TransitCtlApp) *cobra.Command {
	var stop, route string

	cmd := &cobra.Command{
		Use:   "metra",
		Short: "Show upcoming Metra trains at a stop",
		RunE: func(cmd *cobra.Command, args []string) error {
			if stop == "" {
				return errors.New("--stop is required")
			}
			arrivals, err := app.Client().MetraArrivals(cmd.Context(), stop, route)
			if err != nil {
				return err
			}
			renderMetraArrivals(cmd.OutOrStdout(), stop, arrivals)
			return nil
		},
	}

	cmd.Flags().StringVar(&stop, "stop", "", "GTFS stop id, e.g. OTC")
	cmd.Flags().StringVar(&route, "route", "", "Only show one line, e.g. UP-N")

	return cmd
}

func NewAlertsCmd(app *TransitCtlApp) *cobra.Command {
	var routes []string

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Show active Metra service alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			alerts, err := app.Client().Alerts(cmd.Context(), routes)
			if err != nil {
				return err
			}
			renderAlerts(cmd.OutOrStdout(), alerts)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&routes, "routes", nil, "Only alerts for these lines, e.g. UP-N,BNSF")

	return cmd
}
