package transit

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/randytsao24/transitdash/internal/cache"
	"github.com/randytsao24/transitdash/internal/logging"
	"github.com/randytsao24/transitdash/internal/metrics"
	"github.com/randytsao24/transitdash/internal/models"
)

const (
	tripUpdatesFeed = "tripupdates"
	alertsFeed      = "alerts"
)

// chicago is the zone Metra arrival times are displayed in
var chicago = mustLoadLocation("America/Chicago")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}

// MetraService reads Metra's GTFS-realtime feeds. Feeds cover the whole
// system, so decoded snapshots are shared across requests for the cache TTL.
type MetraService struct {
	token   string
	baseURL string
	http    upstream
	timeout time.Duration
	feeds   *cache.Cache[*gtfs.FeedMessage]
	now     func() time.Time
}

// NewMetraService creates a new Metra service
func NewMetraService(token, baseURL string, timeout, cacheTTL time.Duration, m *metrics.Metrics) *MetraService {
	return &MetraService{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newUpstream(timeout, m),
		timeout: timeout,
		feeds:   cache.New[*gtfs.FeedMessage](cacheTTL),
		now:     time.Now,
	}
}

// Close releases the feed cache
func (s *MetraService) Close() {
	s.feeds.Close()
}

// Arrivals returns upcoming arrivals at a stop, soonest first
func (s *MetraService) Arrivals(ctx context.Context, stopID, routeID string) ([]models.MetraArrival, error) {
	feed, err := s.feed(ctx, tripUpdatesFeed)
	if err != nil {
		return nil, err
	}
	return parseMetraArrivals(feed, stopID, routeID, s.now()), nil
}

func (s *MetraService) feed(ctx context.Context, name string) (*gtfs.FeedMessage, error) {
	if s.token == "" {
		return nil, ErrMissingAPIKey
	}

	// The load is shared by every request waiting on this feed, so it must
	// outlive the request that happened to start it.
	return s.feeds.GetOrLoad(name, func() (*gtfs.FeedMessage, error) {
		loadCtx := context.WithoutCancel(ctx)
		if s.timeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(loadCtx, s.timeout)
			defer cancel()
		}

		start := time.Now()
		params := url.Values{}
		params.Set("api_token", s.token)
		body, err := s.http.get(loadCtx, "metra_"+name, s.baseURL+"/"+name+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}

		feed := &gtfs.FeedMessage{}
		if err := proto.Unmarshal(body, feed); err != nil {
			return nil, fmt.Errorf("parsing %s protobuf: %w", name, err)
		}

		logging.LogOperation(logging.FromContext(loadCtx), "metra_feed_refreshed",
			slog.String("feed", name),
			slog.Int("entities", len(feed.GetEntity())),
			slog.Duration("duration", time.Since(start)))
		return feed, nil
	})
}

func parseMetraArrivals(feed *gtfs.FeedMessage, stopID, routeID string, now time.Time) []models.MetraArrival {
	arrivals := []models.MetraArrival{}

	for _, entity := range feed.GetEntity() {
		tripUpdate := entity.GetTripUpdate()
		if tripUpdate == nil {
			continue
		}

		trip := tripUpdate.GetTrip()
		if routeID != "" && !strings.EqualFold(trip.GetRouteId(), routeID) {
			continue
		}

		for _, stu := range tripUpdate.GetStopTimeUpdate() {
			if stu.GetStopId() != stopID {
				continue
			}

			event := stu.GetArrival()
			if event.GetTime() == 0 {
				event = stu.GetDeparture()
			}
			if event.GetTime() == 0 {
				continue
			}

			arrTime := time.Unix(event.GetTime(), 0)
			if arrTime.Before(now) {
				continue
			}

			arrivals = append(arrivals, models.MetraArrival{
				TripID:       trip.GetTripId(),
				RouteID:      trip.GetRouteId(),
				StopID:       stopID,
				ArrivalTime:  arrTime.In(chicago).Format("3:04 PM"),
				DelaySeconds: event.GetDelay(),
				MinutesAway:  int(arrTime.Sub(now).Minutes()),
				ArrivalUnix:  event.GetTime(),
			})
		}
	}

	slices.SortStableFunc(arrivals, func(a, b models.MetraArrival) int {
		return cmp.Compare(a.ArrivalUnix, b.ArrivalUnix)
	})
	return arrivals
}
