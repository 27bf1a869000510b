package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/randytsao24/transitdash/internal/dashboard"
	"github.com/randytsao24/transitdash/internal/models"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C0392B")).Bold(true)
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B5998"))

	statusStyles = map[string]lipgloss.Style{
		"Approaching": lipgloss.NewStyle().Foreground(lipgloss.Color("#6BAE75")).Bold(true),
		"Delayed":     lipgloss.NewStyle().Foreground(lipgloss.Color("#C0392B")),
		"Scheduled":   mutedStyle,
		"Live":        lipgloss.NewStyle().Foreground(lipgloss.Color("#6BAE75")),
	}
)

func lineStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}

func renderTitle(w io.Writer, title string) {
	fmt.Fprintln(w, titleStyle.Render(title))
}

func renderError(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render("Error: ")+msg)
}

func renderOptions(w io.Writer, title, placeholder string, rows [][2]string) {
	renderTitle(w, title)
	if len(rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  "+placeholder))
		return
	}
	fmt.Fprintln(w, mutedStyle.Render("  "+placeholder+":"))
	for _, row := range rows {
		fmt.Fprintf(w, "  %-10s %s\n", row[0], row[1])
	}
}

func renderPredictions(w io.Writer, snap dashboard.BusSnapshot) {
	renderTitle(w, "Predictions for stop "+snap.Stops.Value)
	if len(snap.Predictions.Options) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  "+snap.Placeholder(dashboard.LevelPredictions)))
		return
	}
	for _, p := range snap.Predictions.Options {
		countdown := p.Countdown
		if countdown != "DUE" && countdown != "DLY" {
			countdown += " min"
		}
		line := fmt.Sprintf("  %-5s %-28s %-8s bus %s", p.Route, p.Destination, countdown, p.VehicleID)
		if p.Delayed {
			line += " " + statusStyles["Delayed"].Render("Delayed")
		}
		fmt.Fprintln(w, line)
	}
}

func renderVehicles(w io.Writer, route string, vehicles []models.Vehicle) {
	renderTitle(w, "Vehicles on route "+route)
	if len(vehicles) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  No vehicles reporting"))
		return
	}
	for _, v := range vehicles {
		fmt.Fprintf(w, "  bus %-6s to %-24s at %s,%s heading %s\n", v.ID, v.Destination, v.Lat, v.Lon, v.Heading)
	}
}

func renderArrivals(w io.Writer, stationName string, snap dashboard.TrainSnapshot) {
	renderTitle(w, "Arrivals at "+stationName)
	switch {
	case snap.Err != "":
		renderError(w, snap.Err)
		return
	case snap.Message != "":
		fmt.Fprintln(w, messageStyle.Render("  "+snap.Message))
		return
	case len(snap.Arrivals) == 0:
		fmt.Fprintln(w, mutedStyle.Render("  No arrivals"))
		return
	}

	for _, a := range snap.Arrivals {
		status := a.Status()
		fmt.Fprintf(w, "  %s  %-8s to %-24s run %-4s %s\n",
			lineStyle(a.LineColor).Render(fmt.Sprintf("%-12s", a.LineFullName)),
			a.ArrivalTime,
			a.Destination,
			a.RunNumber,
			statusStyles[status].Render(status))
	}
	if !snap.LastUpdated.IsZero() {
		fmt.Fprintln(w, mutedStyle.Render("  updated "+snap.LastUpdated.Format("3:04:05 PM")))
	}
}

func renderStations(w io.Writer, stations []dashboard.StationWithDistance) {
	renderTitle(w, "Stations")
	for _, s := range stations {
		line := fmt.Sprintf("  %-6s %s", s.ID, s.Name)
		if s.DistanceMeters > 0 {
			line += mutedStyle.Render(fmt.Sprintf("  %.2f mi", s.DistanceMiles))
		}
		fmt.Fprintln(w, line)
	}
}

func renderMetraArrivals(w io.Writer, stopID string, arrivals []models.MetraArrival) {
	renderTitle(w, "Metra arrivals at "+stopID)
	if len(arrivals) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  No upcoming trains"))
		return
	}
	for _, a := range arrivals {
		delay := ""
		if a.DelaySeconds >= 60 {
			delay = " " + statusStyles["Delayed"].Render(fmt.Sprintf("+%d min", a.DelaySeconds/60))
		}
		fmt.Fprintf(w, "  %-8s %-8s %3d min  trip %s%s\n", a.RouteID, a.ArrivalTime, a.MinutesAway, a.TripID, delay)
	}
}

func renderAlerts(w io.Writer, alerts []models.ServiceAlert) {
	renderTitle(w, "Metra service alerts")
	if len(alerts) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  No active alerts"))
		return
	}
	for _, a := range alerts {
		fmt.Fprintf(w, "  [%s] %s\n", strings.Join(a.Routes, ", "), a.Header)
		if a.Description != "" {
			fmt.Fprintln(w, mutedStyle.Render("    "+a.Description))
		}
	}
}
