package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/randytsao24/transitdash/internal/dashboard"
)

func NewBusCmd(app *TransitCtlApp) *cobra.Command {
	var route, direction, stop string

	cmd := &cobra.Command{
		Use:   "bus",
		Short: "Walk the route, direction and stop selectors and show predictions",
		Long: "With no flags, lists routes. Each flag narrows the selection one level;\n" +
			"when route, direction and stop are all given, shows predictions.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cascade := dashboard.NewBusCascade(app.Client())
			defer cascade.Close()
			w := cmd.OutOrStdout()

			cascade.Start(cmd.Context())
			cascade.Wait()
			snap := cascade.Snapshot()
			if route == "" {
				return listOrFail(snap, func() {
					rows := make([][2]string, 0, len(snap.Routes.Options))
					for _, r := range snap.Routes.Options {
						rows = append(rows, [2]string{r.Code, r.Name})
					}
					renderOptions(w, "Routes", snap.Placeholder(dashboard.LevelRoutes), rows)
				})
			}

			cascade.SelectRoute(route)
			cascade.Wait()
			snap = cascade.Snapshot()
			if direction == "" {
				return listOrFail(snap, func() {
					rows := make([][2]string, 0, len(snap.Directions.Options))
					for _, d := range snap.Directions.Options {
						rows = append(rows, [2]string{"", d.Label})
					}
					renderOptions(w, "Directions for route "+route, snap.Placeholder(dashboard.LevelDirections), rows)
				})
			}

			if err := cascade.SelectDirection(direction); err != nil {
				return err
			}
			cascade.Wait()
			snap = cascade.Snapshot()
			if stop == "" {
				return listOrFail(snap, func() {
					rows := make([][2]string, 0, len(snap.Stops.Options))
					for _, s := range snap.Stops.Options {
						rows = append(rows, [2]string{s.ID, s.Name})
					}
					renderOptions(w, "Stops for route "+route+" "+direction, snap.Placeholder(dashboard.LevelStops), rows)
				})
			}

			if err := cascade.SelectStop(stop); err != nil {
				return err
			}
			cascade.Wait()
			snap = cascade.Snapshot()
			return listOrFail(snap, func() { renderPredictions(w, snap) })
		},
	}

	cmd.Flags().StringVar(&route, "route", "", "Route code, e.g. 22")
	cmd.Flags().StringVar(&direction, "direction", "", "Direction label, e.g. Northbound")
	cmd.Flags().StringVar(&stop, "stop", "", "Stop id")

	return cmd
}

func NewVehiclesCmd(app *TransitCtlApp) *cobra.Command {
	var route string

	cmd := &cobra.Command{
		Use:   "vehicles",
		Short: "Show live bus positions on a route",
		RunE: func(cmd *cobra.Command, args []string) error {
			if route == "" {
				return errors.New("--route is required")
			}
			vehicles, err := app.Client().Vehicles(cmd.Context(), route)
			if err != nil {
				return err
			}
			renderVehicles(cmd.OutOrStdout(), route, vehicles)
			return nil
		},
	}

	cmd.Flags().StringVar(&route, "route", "", "Route code, e.g. 22")

	return cmd
}

// listOrFail renders the current level, or reports the cascade's shared error
func listOrFail(snap dashboard.BusSnapshot, render func()) error {
	if snap.Err != "" {
		return errors.New(snap.Err)
	}
	render()
	return nil
}
