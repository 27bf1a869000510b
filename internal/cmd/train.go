package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/randytsao24/transitdash/internal/dashboard"
)

func NewTrainCmd(app *TransitCtlApp) *cobra.Command {
	var station, line, near string
	var watch bool

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Show arrivals at a CTA rail station",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := dashboard.DefaultStations()
			if err != nil {
				return err
			}

			selected, err := resolveStation(table, station, near, app.Profile.DefaultStation)
			if err != nil {
				return err
			}

			poller := dashboard.NewTrainPoller(app.Client(), app.Profile.PollInterval(), line)
			w := cmd.OutOrStdout()

			if !watch {
				snap, err := firstResult(cmd.Context(), poller, selected.ID)
				if err != nil {
					return err
				}
				renderArrivals(w, selected.Name, snap)
				if snap.Err != "" {
					return errors.New(snap.Err)
				}
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			poller.Bind(ctx)
			poller.Subscribe(func(s dashboard.TrainSnapshot) {
				if s.StationID == selected.ID && !s.Loading {
					renderArrivals(w, selected.Name, s)
					fmt.Fprintln(w)
				}
			})
			poller.Select(selected.ID)
			<-ctx.Done()
			poller.Stop()
			return nil
		},
	}

	cmd.Flags().StringVar(&station, "station", "", "Station name or map id (default from profile)")
	cmd.Flags().StringVar(&line, "line", "", "Only show one line, e.g. Red or Brn")
	cmd.Flags().StringVar(&near, "near", "", "Pick the station nearest to lat,lng")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep refreshing until interrupted")
	cmd.MarkFlagsMutuallyExclusive("station", "near")

	return cmd
}

func NewStationsCmd(app *TransitCtlApp) *cobra.Command {
	var near string
	var limit int

	cmd := &cobra.Command{
		Use:   "stations",
		Short: "List the stations the train view offers",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := dashboard.DefaultStations()
			if err != nil {
				return err
			}

			var rows []dashboard.StationWithDistance
			if near != "" {
				lat, lng, err := parseLatLng(near)
				if err != nil {
					return err
				}
				rows = table.FindClosest(lat, lng, limit)
			} else {
				for _, s := range table.All() {
					rows = append(rows, dashboard.StationWithDistance{Station: s})
				}
			}

			renderStations(cmd.OutOrStdout(), rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&near, "near", "", "Sort by distance from lat,lng")
	cmd.Flags().IntVar(&limit, "limit", 5, "Stations to show with --near")

	return cmd
}

// resolveStation picks the station from --near, --station, or the profile
func resolveStation(table *dashboard.StationTable, station, near, fallback string) (dashboard.Station, error) {
	if near != "" {
		lat, lng, err := parseLatLng(near)
		if err != nil {
			return dashboard.Station{}, err
		}
		return table.FindClosest(lat, lng, 1)[0].Station, nil
	}

	if station == "" {
		station = fallback
	}
	if station == "" {
		return dashboard.Station{}, errors.New("no station given; use --station, --near, or default_station in the profile")
	}

	if s, ok := table.Find(station); ok {
		return s, nil
	}
	if _, err := strconv.Atoi(station); err == nil {
		return dashboard.Station{ID: station, Name: "station " + station}, nil
	}
	return dashboard.Station{}, fmt.Errorf("unknown station %q; see transitctl stations", station)
}

func parseLatLng(s string) (float64, float64, error) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("invalid coordinates %q, want lat,lng", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("invalid latitude %q", latStr)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil || lng < -180 || lng > 180 {
		return 0, 0, fmt.Errorf("invalid longitude %q", lngStr)
	}
	return lat, lng, nil
}

// firstResult polls once and returns the first settled snapshot
func firstResult(ctx context.Context, poller *dashboard.TrainPoller, stationID string) (dashboard.TrainSnapshot, error) {
	settled := make(chan dashboard.TrainSnapshot, 1)
	poller.Bind(ctx)
	poller.Subscribe(func(s dashboard.TrainSnapshot) {
		if s.StationID == stationID && !s.Loading {
			select {
			case settled <- s:
			default:
			}
		}
	})

	poller.Select(stationID)
	defer poller.Stop()

	select {
	case snap := <-settled:
		return snap, nil
	case <-ctx.Done():
		return dashboard.TrainSnapshot{}, ctx.Err()
	}
}
