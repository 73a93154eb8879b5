package twelvedata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
	}
	return NewClient(cfg, server.Client(), zap.NewNop())
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{APIKey: "k"}, &http.Client{}, zap.NewNop())

	if c.cfg.BaseURL != DefaultBaseURL {
		t.Errorf("expected base URL %q, got %q", DefaultBaseURL, c.cfg.BaseURL)
	}
	if c.cfg.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", c.cfg.Timeout)
	}
}

func TestClient_DailyCloses_Success(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/time_series" {
			t.Errorf("expected path /time_series, got %s", r.URL.Path)
		}
		// Verify request parameters
		if r.URL.Query().Get("symbol") != "AAPL" {
			t.Errorf("expected symbol AAPL, got %s", r.URL.Query().Get("symbol"))
		}
		if r.URL.Query().Get("interval") != "1day" {
			t.Errorf("expected interval 1day, got %s", r.URL.Query().Get("interval"))
		}
		if r.URL.Query().Get("start_date") != "2026-09-30" {
			t.Errorf("expected start_date 2026-09-30, got %s", r.URL.Query().Get("start_date"))
		}
		if r.URL.Query().Get("apikey") != "test-key" {
			t.Errorf("expected apikey test-key, got %s", r.URL.Query().Get("apikey"))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"meta": {"symbol": "AAPL", "interval": "1day"},
			"status": "ok",
			"values": [
				{"datetime": "2026-10-12", "close": "250.10"},
				{"datetime": "2026-10-13 00:00:00", "close": "252.35"}
			]
		}`))
	})

	start := time.Date(2026, 9, 30, 15, 0, 0, 0, time.UTC)
	closes, err := c.DailyCloses(context.Background(), "AAPL", start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(closes) != 2 {
		t.Fatalf("expected 2 closes, got %d", len(closes))
	}
	if closes[0].Close != 250.10 {
		t.Errorf("expected close 250.10, got %f", closes[0].Close)
	}
	if !closes[1].Date.Equal(time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date %v", closes[1].Date)
	}
}

func TestClient_DailyCloses_NoDataIsEmpty(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code": 400, "message": "No data is available on the specified dates.", "status": "error"}`))
	})

	closes, err := c.DailyCloses(context.Background(), "AAPL", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(closes) != 0 {
		t.Errorf("expected 0 closes, got %d", len(closes))
	}
}

func TestClient_DailyCloses_HTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
	}{
		{"bad request", http.StatusBadRequest},
		{"unauthorized", http.StatusUnauthorized},
		{"too many requests", http.StatusTooManyRequests},
		{"internal server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			})

			_, err := c.DailyCloses(context.Background(), "AAPL", time.Now())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), "twelvedata http") {
				t.Errorf("expected HTTP error message, got %v", err)
			}
		})
	}
}

func TestClient_DailyCloses_APIError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code": 401, "status": "error", "message": "Invalid API key"}`))
	})

	_, err := c.DailyCloses(context.Background(), "AAPL", time.Now())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "Invalid API key") {
		t.Errorf("expected API error message, got %v", err)
	}
}

func TestClient_DailyCloses_InvalidPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		errField string
	}{
		{"invalid json", `{invalid json`, "decode"},
		{"invalid datetime", `{"status": "ok", "values": [{"datetime": "yesterday", "close": "1"}]}`, "parse time"},
		{"invalid close", `{"status": "ok", "values": [{"datetime": "2026-10-13", "close": "abc"}]}`, "parse close"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.response))
			})

			_, err := c.DailyCloses(context.Background(), "AAPL", time.Now())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errField) {
				t.Errorf("expected error containing %q, got %v", tt.errField, err)
			}
		})
	}
}

func TestClient_DailyCloses_ContextCancellation(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.DailyCloses(ctx, "AAPL", time.Now())
	if err == nil {
		t.Fatal("expected error due to context cancellation, got nil")
	}
}

func TestClient_ListStocks_Success(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stocks" {
			t.Errorf("expected path /stocks, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("exchange") != "NASDAQ" {
			t.Errorf("expected exchange NASDAQ, got %s", r.URL.Query().Get("exchange"))
		}
		_, _ = w.Write([]byte(`{
			"data": [
				{"symbol": "AAPL", "name": "Apple Inc", "currency": "USD", "exchange": "NASDAQ", "country": "United States", "type": "Common Stock"},
				{"symbol": "", "name": "broken row"},
				{"symbol": "MSFT", "name": "Microsoft Corp", "currency": "USD", "exchange": "NASDAQ", "country": "United States", "type": "Common Stock"}
			],
			"status": "ok"
		}`))
	})

	symbols, err := c.ListStocks(context.Background(), "NASDAQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(symbols) != 2 {
		t.Fatalf("expected 2 symbols, got %d", len(symbols))
	}
	if symbols[0].Code != "AAPL" || symbols[0].Name != "Apple Inc" {
		t.Errorf("unexpected first symbol %+v", symbols[0])
	}
	if symbols[1].Market != "" {
		t.Errorf("expected market to be left for the caller, got %q", symbols[1].Market)
	}
}

func TestClient_ListStocks_APIError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "error", "message": "exchange not found"}`))
	})

	_, err := c.ListStocks(context.Background(), "NOPE")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "exchange not found") {
		t.Errorf("expected API error message, got %v", err)
	}
}
