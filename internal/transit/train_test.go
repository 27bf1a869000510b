package transit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randytsao24/transitdash/internal/models"
)

const clarkLakeResponse = `{"ctatt":{"tmst":"2026-10-15T08:00:00","errCd":"0","errNm":null,"eta":[
 {"staId":"40380","staNm":"Clark/Lake","rn":"812","rt":"Brn","destNm":"Kimball","arrT":"2026-10-15T08:09:00","isApp":"0","isSch":"1","isDly":"0"},
 {"staId":"40380","staNm":"Clark/Lake","rn":"123","rt":"Blue","destNm":"O'Hare","arrT":"2026-10-15T08:01:30","isApp":"1","isSch":"0","isDly":"0"},
 {"staId":"40380","staNm":"Clark/Lake","rn":"999","rt":"N","destNm":"Nowhere","arrT":"","isApp":"0","isSch":"0","isDly":"1"},
 {"staId":"40380","staNm":"Clark/Lake","rn":"604","rt":"G","destNm":"Harlem/Lake","arrT":"2026-10-15T13:05:00","isApp":"0","isSch":"0","isDly":"1"}
]}}`

func newTrainUpstream(t *testing.T, handler http.HandlerFunc) *TrainService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewTrainService("train-key", srv.URL, 2*time.Second, nil)
}

func TestTrainArrivalsRequest(t *testing.T) {
	var r *http.Request
	svc := newTrainUpstream(t, func(w http.ResponseWriter, req *http.Request) {
		r = req
		_, _ = w.Write([]byte(`{"ctatt":{"errCd":"0","eta":[]}}`))
	})

	_, err := svc.Arrivals(context.Background(), "40380", "Blue")
	require.NoError(t, err)

	assert.Equal(t, "/ttarrivals.aspx", r.URL.Path)
	q := r.URL.Query()
	assert.Equal(t, "train-key", q.Get("key"))
	assert.Equal(t, "40380", q.Get("mapid"))
	assert.Equal(t, "Blue", q.Get("rt"))
	assert.Equal(t, "JSON", q.Get("outputType"))
	assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
	assert.Equal(t, "no-cache", r.Header.Get("Pragma"))
}

func TestTrainArrivalsMappingAndOrder(t *testing.T) {
	svc := newTrainUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(clarkLakeResponse))
	})

	result, err := svc.Arrivals(context.Background(), "40380", "")
	require.NoError(t, err)
	require.Len(t, result.Arrivals, 4)
	assert.Empty(t, result.Message)

	runs := make([]string, len(result.Arrivals))
	for i, a := range result.Arrivals {
		runs[i] = a.RunNumber
	}
	assert.Equal(t, []string{"123", "812", "604", "999"}, runs, "sorted by time, missing timestamp last")

	blue := result.Arrivals[0]
	assert.Equal(t, models.Arrival{
		RunNumber:      "123",
		Line:           "Blue",
		LineFullName:   "Blue Line",
		LineColor:      "#3B5998",
		Destination:    "O'Hare",
		ArrivalTime:    "8:01 AM",
		IsApproaching:  true,
		RawArrivalTime: "2026-10-15T08:01:30",
	}, blue)

	assert.Equal(t, "1:05 PM", result.Arrivals[2].ArrivalTime)
	assert.True(t, result.Arrivals[2].IsDelayed)

	unknown := result.Arrivals[3]
	assert.Equal(t, "N", unknown.LineFullName)
	assert.Equal(t, DefaultLineColor, unknown.LineColor)
	assert.Equal(t, "N/A", unknown.ArrivalTime)
}

func TestTrainNoArrivalsIsEmptySuccess(t *testing.T) {
	svc := newTrainUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ctatt":{"errCd":"` + NoArrivalsCode + `","errNm":"No scheduled trains at this station.","eta":null}}`))
	})

	result, err := svc.Arrivals(context.Background(), "40380", "")
	require.NoError(t, err)
	assert.NotNil(t, result.Arrivals)
	assert.Empty(t, result.Arrivals)
	assert.Equal(t, "No scheduled trains at this station.", result.Message)
}

func TestTrainNumericAndNullErrorCodes(t *testing.T) {
	for name, code := range map[string]string{"numeric zero": `0`, "null": `null`} {
		t.Run(name, func(t *testing.T) {
			svc := newTrainUpstream(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"ctatt":{"errCd":` + code + `,"errNm":null,"eta":[]}}`))
			})

			result, err := svc.Arrivals(context.Background(), "40380", "")
			require.NoError(t, err)
			assert.Empty(t, result.Arrivals)
		})
	}
}

func TestTrainUpstreamErrorCode(t *testing.T) {
	svc := newTrainUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ctatt":{"errCd":"101","errNm":"Invalid API key.","eta":null}}`))
	})

	_, err := svc.Arrivals(context.Background(), "40380", "")

	var apiErr *UpstreamAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid API key.", apiErr.Message)
	require.Len(t, apiErr.Errors, 1)
	assert.JSONEq(t, `{"code":"101","message":"Invalid API key."}`, string(apiErr.Errors[0]))
}

func TestTrainMissingAPIKey(t *testing.T) {
	svc := NewTrainService("", "http://127.0.0.1:1", time.Second, nil)
	_, err := svc.Arrivals(context.Background(), "40380", "")
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
}

func TestTrainUpstreamStatus(t *testing.T) {
	svc := newTrainUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := svc.Arrivals(context.Background(), "40380", "")
	var statusErr *UpstreamStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

func TestLookupLine(t *testing.T) {
	assert.Equal(t, LineDetails{Name: "Purple Line", Color: "#5E4A82"}, LookupLine("P"))
	assert.Equal(t, LineDetails{Name: "N", Color: DefaultLineColor}, LookupLine("N"))
}

func TestSortArrivalsKeepsOrderOfUntimedEntries(t *testing.T) {
	arrivals := []models.Arrival{
		{RunNumber: "a"},
		{RunNumber: "b", RawArrivalTime: "2026-10-15T09:00:00"},
		{RunNumber: "c", RawArrivalTime: "garbage"},
		{RunNumber: "d", RawArrivalTime: "2026-10-15T08:00:00"},
	}

	SortArrivals(arrivals)

	var runs []string
	for _, a := range arrivals {
		runs = append(runs, a.RunNumber)
	}
	assert.Equal(t, []string{"d", "b", "a", "c"}, runs)
}
