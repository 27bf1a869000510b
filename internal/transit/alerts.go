package transit

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"

	"github.com/randytsao24/transitdash/internal/models"
)

// Alerts returns active Metra service alerts, optionally filtered by route
func (s *MetraService) Alerts(ctx context.Context, routes []string) ([]models.ServiceAlert, error) {
	feed, err := s.feed(ctx, alertsFeed)
	if err != nil {
		return nil, err
	}

	all := parseAlerts(feed, s.now())
	if len(routes) == 0 {
		return all, nil
	}

	filtered := []models.ServiceAlert{}
	for _, alert := range all {
		if slices.ContainsFunc(alert.Routes, func(r string) bool {
			return slices.ContainsFunc(routes, func(want string) bool { return strings.EqualFold(r, want) })
		}) {
			filtered = append(filtered, alert)
		}
	}
	return filtered, nil
}

func parseAlerts(feed *gtfs.FeedMessage, now time.Time) []models.ServiceAlert {
	alerts := []models.ServiceAlert{}
	for _, entity := range feed.GetEntity() {
		alert := entity.GetAlert()
		if alert == nil || !alertActive(alert, now) {
			continue
		}

		header := translatedText(alert.GetHeaderText())
		if header == "" {
			continue
		}

		alerts = append(alerts, models.ServiceAlert{
			ID:          entity.GetId(),
			Routes:      informedRoutes(alert),
			Header:      header,
			Description: translatedText(alert.GetDescriptionText()),
		})
	}
	return alerts
}

// alertActive reports whether now falls in one of the alert's periods.
// An alert without periods is always active; a zero end is open ended.
func alertActive(alert *gtfs.Alert, now time.Time) bool {
	periods := alert.GetActivePeriod()
	if len(periods) == 0 {
		return true
	}
	ts := uint64(now.Unix())
	return slices.ContainsFunc(periods, func(p *gtfs.TimeRange) bool {
		return ts >= p.GetStart() && (p.GetEnd() == 0 || ts < p.GetEnd())
	})
}

// informedRoutes lists the distinct routes an alert names, in feed order
func informedRoutes(alert *gtfs.Alert) []string {
	routes := []string{}
	for _, ie := range alert.GetInformedEntity() {
		if id := ie.GetRouteId(); id != "" && !slices.Contains(routes, id) {
			routes = append(routes, id)
		}
	}
	return routes
}

// translatedText prefers English, then the untagged translation, then the first one
func translatedText(ts *gtfs.TranslatedString) string {
	if ts == nil {
		return ""
	}
	for _, t := range ts.GetTranslation() {
		if t.GetLanguage() == "en" || t.GetLanguage() == "" {
			return t.GetText()
		}
	}
	if len(ts.GetTranslation()) > 0 {
		return ts.GetTranslation()[0].GetText()
	}
	return ""
}
