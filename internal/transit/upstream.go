package transit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/randytsao24/transitdash/internal/logging"
	"github.com/randytsao24/transitdash/internal/metrics"
)

// maxBodyBytes caps how much of an upstream response is read
const maxBodyBytes = 8 << 20

// upstream performs instrumented one-shot GETs against a transit API
type upstream struct {
	client  *http.Client
	metrics *metrics.Metrics
}

func newUpstream(timeout time.Duration, m *metrics.Metrics) upstream {
	return upstream{
		client:  &http.Client{Timeout: timeout},
		metrics: m,
	}
}

// get fetches rawURL and returns the body of a 2xx response
func (u upstream) get(ctx context.Context, endpoint, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", endpoint, stripURL(err))
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	logger := logging.FromContext(ctx)
	start := time.Now()
	resp, err := u.client.Do(req)
	if err != nil {
		u.metrics.ObserveRequest(endpoint, 0, time.Since(start))
		u.metrics.ObserveError(endpoint, "transport")
		return nil, &TransportError{Endpoint: endpoint, Err: stripURL(err)}
	}
	defer logging.SafeClose(resp.Body, logger, endpoint)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	u.metrics.ObserveRequest(endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		u.metrics.ObserveError(endpoint, "read")
		return nil, fmt.Errorf("reading %s response: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		u.metrics.ObserveError(endpoint, "status")
		logger.Warn("upstream request failed",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode),
			slog.String("body", truncate(string(body), 512)))
		return nil, &UpstreamStatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// stripURL drops the request URL from err. Upstream URLs carry the API key
// in their query string and must not reach logs or clients.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
