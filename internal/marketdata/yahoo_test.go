package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const chartBody = `{
	"chart": {
		"result": [{
			"timestamp": [1767352800, 1767353100, 1767353400],
			"indicators": {
				"quote": [{
					"open":   [20000, 20010, 0],
					"high":   [20020, 20030, 0],
					"low":    [19990, 20000, 0],
					"close":  [20010, 20020, 0],
					"volume": [1500, 1200, 0]
				}]
			}
		}],
		"error": null
	}
}`

// TestGetCandles tests parsing of the chart payload, including the
// dropped zero-padded bar.
func TestGetCandles(t *testing.T) {
	var gotPath, gotInterval, gotRange string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotInterval = r.URL.Query().Get("interval")
		gotRange = r.URL.Query().Get("range")
		fmt.Fprint(w, chartBody)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.UTC, zerolog.Nop())
	candles, err := client.GetCandles(context.Background(), "NQ=F", "5m", "60d")
	if err != nil {
		t.Fatalf("GetCandles failed: %v", err)
	}

	if gotPath != "/v8/finance/chart/NQ=F" {
		t.Errorf("Unexpected request path %q", gotPath)
	}
	if gotInterval != "5m" || gotRange != "60d" {
		t.Errorf("Unexpected query interval=%q range=%q", gotInterval, gotRange)
	}

	if len(candles) != 2 {
		t.Fatalf("Expected 2 candles after dropping the padded bar, got %d", len(candles))
	}
	if candles[0].Open != 20000 || candles[0].Close != 20010 {
		t.Errorf("Unexpected first candle %+v", candles[0])
	}
	if candles[0].Volume != 1500 {
		t.Errorf("Expected volume 1500, got %f", candles[0].Volume)
	}
	if !candles[0].Time.Equal(time.Unix(1767352800, 0)) {
		t.Errorf("Unexpected first candle time %s", candles[0].Time)
	}
}

// TestGetCandlesAPIError tests the chart-level error payload.
func TestGetCandlesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart": {"result": null, "error": {"code": "Not Found", "description": "No data found"}}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.UTC, zerolog.Nop())
	if _, err := client.GetCandles(context.Background(), "BOGUS", "1d", "60d"); err == nil {
		t.Error("Expected an error for the error payload")
	}
}

// TestGetCandlesHTTPError tests non-200 handling.
func TestGetCandlesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.UTC, zerolog.Nop())
	if _, err := client.GetCandles(context.Background(), "NQ=F", "5m", "60d"); err == nil {
		t.Error("Expected an error for HTTP 429")
	}
}

// TestGetCandlesCancelledContext tests that a cancelled context aborts
// before the request is made.
func TestGetCandlesCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("http://127.0.0.1:0", time.UTC, zerolog.Nop())
	if _, err := client.GetCandles(ctx, "NQ=F", "5m", "60d"); err == nil {
		t.Error("Expected an error for a cancelled context")
	}
}
