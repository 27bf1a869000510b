// Package client is a typed HTTP client for the transitdash proxy.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/randytsao24/transitdash/internal/models"
)

const maxBodyBytes = 8 << 20

// APIError is a non-2xx answer from the proxy, or a 2xx body that still
// carries an upstream error list
type APIError struct {
	Status  int
	Message string
	Errors  []json.RawMessage
}

func (e *APIError) Error() string {
	details := e.Details()
	switch {
	case e.Message == "" && len(details) == 0:
		return fmt.Sprintf("request failed with status %d", e.Status)
	case len(details) == 0:
		return e.Message
	case e.Message == "":
		return strings.Join(details, "; ")
	default:
		return e.Message + " " + strings.Join(details, "; ")
	}
}

// Details returns the human readable text of each upstream error entry
func (e *APIError) Details() []string {
	var out []string
	for _, raw := range e.Errors {
		var entry struct {
			Msg     string `json:"msg"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		switch {
		case entry.Msg != "":
			out = append(out, entry.Msg)
		case entry.Message != "" && entry.Message != e.Message:
			out = append(out, entry.Message)
		}
	}
	return out
}

// Client calls the proxy endpoints and decodes their payloads
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the proxy rooted at baseURL
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Routes lists every bus route
func (c *Client) Routes(ctx context.Context) ([]models.Route, error) {
	var out struct {
		Routes []models.Route `json:"routes"`
	}
	err := c.bus(ctx, url.Values{"action": {"routes"}}, &out)
	return out.Routes, err
}

// Directions lists the directions served by a route
func (c *Client) Directions(ctx context.Context, route string) ([]models.Direction, error) {
	var out struct {
		Directions []models.Direction `json:"directions"`
	}
	err := c.bus(ctx, url.Values{"action": {"directions"}, "rt": {route}}, &out)
	return out.Directions, err
}

// Stops lists the stops for a route and direction
func (c *Client) Stops(ctx context.Context, route, direction string) ([]models.Stop, error) {
	var out struct {
		Stops []models.Stop `json:"stops"`
	}
	err := c.bus(ctx, url.Values{"action": {"stops"}, "rt": {route}, "dir": {direction}}, &out)
	return out.Stops, err
}

// Predictions lists upcoming arrivals at a stop. route may be empty.
func (c *Client) Predictions(ctx context.Context, route, stopID string) ([]models.Prediction, error) {
	params := url.Values{"action": {"predictions"}, "stpid": {stopID}}
	if route != "" {
		params.Set("rt", route)
	}
	var out struct {
		Predictions []models.Prediction `json:"prd"`
	}
	err := c.bus(ctx, params, &out)
	return out.Predictions, err
}

// Vehicles lists live vehicles on a route
func (c *Client) Vehicles(ctx context.Context, route string) ([]models.Vehicle, error) {
	var out struct {
		Vehicles []models.Vehicle `json:"vehicle"`
	}
	err := c.bus(ctx, url.Values{"action": {"vehicles"}, "rt": {route}}, &out)
	return out.Vehicles, err
}

// TrainArrivals returns arrivals for a station. An empty list may come
// with an explanatory message, which is not an error.
func (c *Client) TrainArrivals(ctx context.Context, stationID, route string) ([]models.Arrival, string, error) {
	params := url.Values{"mapid": {stationID}}
	if route != "" {
		params.Set("rt", route)
	}
	var out struct {
		Arrivals []models.Arrival `json:"arrivals"`
		Message  string           `json:"message"`
	}
	if err := c.get(ctx, "/train", params, &out); err != nil {
		return nil, "", err
	}
	if out.Arrivals == nil {
		out.Arrivals = []models.Arrival{}
	}
	return out.Arrivals, out.Message, nil
}

// MetraArrivals returns upcoming Metra arrivals at a stop. route may be empty.
func (c *Client) MetraArrivals(ctx context.Context, stopID, route string) ([]models.MetraArrival, error) {
	params := url.Values{"stop": {stopID}}
	if route != "" {
		params.Set("route", route)
	}
	var out struct {
		Arrivals []models.MetraArrival `json:"arrivals"`
	}
	err := c.get(ctx, "/metra", params, &out)
	return out.Arrivals, err
}

// Alerts returns active Metra alerts, optionally limited to routes
func (c *Client) Alerts(ctx context.Context, routes []string) ([]models.ServiceAlert, error) {
	params := url.Values{}
	if len(routes) > 0 {
		params.Set("routes", strings.Join(routes, ","))
	}
	var out struct {
		Alerts []models.ServiceAlert `json:"alerts"`
	}
	err := c.get(ctx, "/alerts", params, &out)
	return out.Alerts, err
}

// bus calls /bus and also rejects 2xx bodies carrying an error list
func (c *Client) bus(ctx context.Context, params url.Values, out any) error {
	var raw json.RawMessage
	if err := c.get(ctx, "/bus", params, &raw); err != nil {
		return err
	}
	if errs := embeddedErrors(raw); len(errs) > 0 {
		return &APIError{Status: http.StatusOK, Message: "Error from CTA API.", Errors: errs}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding bus response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("reading %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	var payload struct {
		Message string            `json:"message"`
		Errors  []json.RawMessage `json:"errors"`
		Error   string            `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(http.StatusText(status))
		return apiErr
	}
	apiErr.Message = payload.Message
	apiErr.Errors = payload.Errors
	if payload.Error != "" {
		entry, _ := json.Marshal(map[string]string{"message": payload.Error})
		apiErr.Errors = append(apiErr.Errors, entry)
	}
	return apiErr
}

// embeddedErrors finds an "error" or "errors" list in a bus payload
func embeddedErrors(raw json.RawMessage) []json.RawMessage {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	for _, key := range []string{"error", "errors"} {
		value, ok := fields[key]
		if !ok || string(value) == "null" {
			continue
		}
		var list []json.RawMessage
		if err := json.Unmarshal(value, &list); err == nil {
			if len(list) > 0 {
				return list
			}
			continue
		}
		return []json.RawMessage{value}
	}
	return nil
}
