package transit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/randytsao24/transitdash/internal/metrics"
	"github.com/randytsao24/transitdash/internal/models"
)

// NoArrivalsCode is the Train Tracker errCd answered for a station with
// nothing scheduled; it is an empty result, not a failure
const NoArrivalsCode = "404"

const trainTimeLayout = "2006-01-02T15:04:05"

// TrainArrivals is the reshaped result for one station
type TrainArrivals struct {
	Arrivals []models.Arrival `json:"arrivals"`
	Message  string           `json:"message,omitempty"`
}

// TrainService proxies the CTA Train Tracker arrivals API
type TrainService struct {
	apiKey  string
	baseURL string
	http    upstream
}

// NewTrainService creates a new train service
func NewTrainService(apiKey, baseURL string, timeout time.Duration, m *metrics.Metrics) *TrainService {
	return &TrainService{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newUpstream(timeout, m),
	}
}

// Arrivals fetches fresh arrivals for a station (map id), optionally filtered
// to one route code
func (s *TrainService) Arrivals(ctx context.Context, stationID, route string) (*TrainArrivals, error) {
	if s.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("key", s.apiKey)
	params.Set("mapid", stationID)
	if route != "" {
		params.Set("rt", route)
	}
	params.Set("outputType", "JSON")
	apiURL := s.baseURL + "/ttarrivals.aspx?" + params.Encode()

	header := http.Header{}
	header.Set("Cache-Control", "no-cache")
	header.Set("Pragma", "no-cache")

	body, err := s.http.get(ctx, "ttarrivals", apiURL, header)
	if err != nil {
		return nil, err
	}

	return parseTrainResponse(body)
}

type ttResponse struct {
	CTATT struct {
		Timestamp string   `json:"tmst"`
		ErrCode   ctaValue `json:"errCd"`
		ErrName   *string  `json:"errNm"`
		ETA       []ttETA  `json:"eta"`
	} `json:"ctatt"`
}

type ttETA struct {
	StationID       string   `json:"staId"`
	StationName     string   `json:"staNm"`
	StopDescription string   `json:"stpDe"`
	RunNumber       string   `json:"rn"`
	Route           string   `json:"rt"`
	DestinationName string   `json:"destNm"`
	PredictedAt     string   `json:"prdt"`
	ArrivalTime     string   `json:"arrT"`
	IsApproaching   ctaValue `json:"isApp"`
	IsScheduled     ctaValue `json:"isSch"`
	IsDelayed       ctaValue `json:"isDly"`
}

// ctaValue tolerates the API emitting scalars as strings, numbers, booleans or null
type ctaValue string

func (v *ctaValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = ctaValue(s)
	case bytes.Equal(data, []byte("true")):
		*v = "1"
	case bytes.Equal(data, []byte("false")):
		*v = "0"
	default:
		*v = ctaValue(data)
	}
	return nil
}

func (v ctaValue) flag() bool {
	return v == "1"
}

func parseTrainResponse(body []byte) (*TrainArrivals, error) {
	var resp ttResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing train response: %w", err)
	}

	message := ""
	if resp.CTATT.ErrName != nil {
		message = *resp.CTATT.ErrName
	}

	switch code := string(resp.CTATT.ErrCode); code {
	case "", "0":
	case NoArrivalsCode:
		return &TrainArrivals{Arrivals: []models.Arrival{}, Message: message}, nil
	default:
		if message == "" {
			message = "Error from CTA Train Tracker API (code " + code + ")."
		}
		entry, _ := json.Marshal(map[string]string{"code": code, "message": message})
		return nil, &UpstreamAPIError{Message: message, Errors: []json.RawMessage{entry}}
	}

	arrivals := make([]models.Arrival, 0, len(resp.CTATT.ETA))
	for _, eta := range resp.CTATT.ETA {
		line := LookupLine(eta.Route)
		arrivals = append(arrivals, models.Arrival{
			RunNumber:      eta.RunNumber,
			Line:           eta.Route,
			LineFullName:   line.Name,
			LineColor:      line.Color,
			Destination:    eta.DestinationName,
			ArrivalTime:    FormatArrivalTime(eta.ArrivalTime),
			IsApproaching:  eta.IsApproaching.flag(),
			IsDelayed:      eta.IsDelayed.flag(),
			IsScheduled:    eta.IsScheduled.flag(),
			RawArrivalTime: eta.ArrivalTime,
		})
	}
	SortArrivals(arrivals)

	return &TrainArrivals{Arrivals: arrivals, Message: message}, nil
}

// FormatArrivalTime turns a Train Tracker timestamp into "h:mm AM"
func FormatArrivalTime(raw string) string {
	t, err := time.Parse(trainTimeLayout, raw)
	if err != nil {
		return "N/A"
	}
	return t.Format("3:04 PM")
}

// SortArrivals orders arrivals by raw timestamp. Entries without a usable
// timestamp go last, keeping their original relative order.
func SortArrivals(arrivals []models.Arrival) {
	key := func(a models.Arrival) (time.Time, bool) {
		t, err := time.Parse(trainTimeLayout, a.RawArrivalTime)
		return t, err == nil
	}
	slices.SortStableFunc(arrivals, func(a, b models.Arrival) int {
		ta, okA := key(a)
		tb, okB := key(b)
		switch {
		case okA && okB:
			return ta.Compare(tb)
		case okA:
			return -1
		case okB:
			return 1
		default:
			return 0
		}
	})
}

