package transit

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingAPIKey is returned when the credential for an upstream API is not configured
var ErrMissingAPIKey = errors.New("API key configuration error")

// UpstreamStatusError is returned when an upstream API answers with a non-2xx status
type UpstreamStatusError struct {
	Endpoint   string
	StatusCode int
	Status     string
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("%s returned status %s", e.Endpoint, e.Status)
}

// StatusText is the reason phrase without the numeric code
func (e *UpstreamStatusError) StatusText() string {
	if text, ok := strings.CutPrefix(e.Status, fmt.Sprintf("%d ", e.StatusCode)); ok {
		return text
	}
	return e.Status
}

// TransportError is returned when no response was received from upstream
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("calling %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamAPIError carries the error list or error code an upstream API
// embedded in an otherwise successful response
type UpstreamAPIError struct {
	Message string
	// Errors is the upstream error list, preserved verbatim
	Errors []json.RawMessage
}

func (e *UpstreamAPIError) Error() string {
	msgs := e.Messages()
	if len(msgs) == 0 {
		return e.Message
	}
	return e.Message + " " + strings.Join(msgs, "; ")
}

// Messages extracts the human-readable text of each upstream error entry
func (e *UpstreamAPIError) Messages() []string {
	var msgs []string
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
			msgs = append(msgs, entry.Msg)
		case entry.Message != "":
			msgs = append(msgs, entry.Message)
		}
	}
	return msgs
}
