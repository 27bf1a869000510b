package transit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/randytsao24/transitdash/internal/metrics"
)

// BusService proxies the CTA Bus Tracker API. Every call goes upstream;
// nothing is cached or retried.
type BusService struct {
	apiKey  string
	baseURL string
	http    upstream
}

// NewBusService creates a new bus service
func NewBusService(apiKey, baseURL string, timeout time.Duration, m *metrics.Metrics) *BusService {
	return &BusService{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newUpstream(timeout, m),
	}
}

// Routes returns the bustime-response body of getroutes
func (s *BusService) Routes(ctx context.Context) (json.RawMessage, error) {
	return s.call(ctx, "getroutes", url.Values{})
}

// Directions returns the bustime-response body of getdirections for a route
func (s *BusService) Directions(ctx context.Context, route string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("rt", route)
	return s.call(ctx, "getdirections", params)
}

// Stops returns the bustime-response body of getstops for a route and direction
func (s *BusService) Stops(ctx context.Context, route, direction string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("rt", route)
	params.Set("dir", direction)
	return s.call(ctx, "getstops", params)
}

// Predictions returns the bustime-response body of getpredictions for a stop,
// optionally narrowed to one route
func (s *BusService) Predictions(ctx context.Context, stopID, route string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("stpid", stopID)
	if route != "" {
		params.Set("rt", route)
	}
	return s.call(ctx, "getpredictions", params)
}

// Vehicles returns the bustime-response body of getvehicles for a route
func (s *BusService) Vehicles(ctx context.Context, route string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("rt", route)
	return s.call(ctx, "getvehicles", params)
}

func (s *BusService) call(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	if s.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	params.Set("key", s.apiKey)
	params.Set("format", "json")
	apiURL := s.baseURL + "/" + endpoint + "?" + params.Encode()

	body, err := s.http.get(ctx, endpoint, apiURL, nil)
	if err != nil {
		return nil, err
	}

	return parseBustimeResponse(body)
}

// parseBustimeResponse unwraps the bustime-response envelope and surfaces an
// embedded error list. Both "error" and "errors" spellings are accepted.
func parseBustimeResponse(body []byte) (json.RawMessage, error) {
	var envelope struct {
		Response json.RawMessage `json:"bustime-response"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parsing bus response: %w", err)
	}
	if len(envelope.Response) == 0 || bytes.Equal(envelope.Response, []byte("null")) {
		return nil, fmt.Errorf("parsing bus response: missing bustime-response")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(envelope.Response, &fields); err != nil {
		return nil, fmt.Errorf("parsing bustime-response: %w", err)
	}

	for _, key := range []string{"error", "errors"} {
		if errs := errorList(fields[key]); len(errs) > 0 {
			return nil, &UpstreamAPIError{Message: "Error from CTA API.", Errors: errs}
		}
	}

	return envelope.Response, nil
}

// errorList accepts either a list of error objects or a single object
func errorList(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	return []json.RawMessage{raw}
}
