package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/etnz/portfolio-dashboard"
	"github.com/etnz/portfolio-dashboard/dashboard"
	"github.com/etnz/portfolio-dashboard/simulator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func inr(v float64) portfolio.Money { return portfolio.M(v, "INR") }

func sbin() []portfolio.StockData {
	return []portfolio.StockData{{
		Ticker:        "NSE:SBIN",
		Name:          "State Bank of India",
		Shares:        10,
		AvgCost:       inr(100),
		CurrentPrice:  inr(120),
		PreviousClose: inr(110),
	}}
}

func newTestServer(t *testing.T, sim simulator.Simulator) (*Server, *dashboard.Store) {
	t.Helper()
	store := dashboard.New(sim, portfolio.DefaultPortfolio(), zerolog.Nop())
	s := New(Config{
		Dashboard: store,
		Purchase:  portfolio.PurchaseDate,
		Valuation: portfolio.ValuationDate,
		Registry:  prometheus.NewRegistry(),
		Log:       zerolog.Nop(),
	})
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s, store
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) dashboard.State {
	t.Helper()
	var st dashboard.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	return st
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, simulator.Fixed{})
	rec := do(t, s.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","state":"idle"}`, rec.Body.String())
}

func TestRefresh(t *testing.T) {
	s, _ := newTestServer(t, simulator.Fixed{Stocks: sbin()})

	rec := do(t, s.Handler(), http.MethodPost, "/api/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	st := decodeState(t, rec)
	assert.Equal(t, dashboard.Success, st.Status)
	require.Len(t, st.Stocks, 1)
	assert.Equal(t, "NSE:SBIN", st.Stocks[0].Ticker)

	rec = do(t, s.Handler(), http.MethodGet, "/api/state", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(1), decodeState(t, rec).Generation)
}

func TestRefreshFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing key", &simulator.ConfigurationError{Reason: "missing API key"}, http.StatusServiceUnavailable},
		{"schema", &simulator.SchemaError{Path: "$[0].shares", Reason: "missing required field"}, http.StatusBadGateway},
		{"empty", simulator.ErrEmptyResponse, http.StatusBadGateway},
		{"transport", &simulator.TransportError{Err: errors.New("connection reset")}, http.StatusBadGateway},
		{"timeout", &simulator.TransportError{Err: context.DeadlineExceeded}, http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, simulator.Fixed{Err: tt.err})
			rec := do(t, s.Handler(), http.MethodPost, "/api/refresh", "")
			assert.Equal(t, tt.want, rec.Code)

			var body struct {
				Error string          `json:"error"`
				State dashboard.State `json:"state"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.err.Error(), body.Error)
			assert.Equal(t, dashboard.Error, body.State.Status)
		})
	}
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusOf(dashboard.ErrSuperseded))
	assert.Equal(t, http.StatusBadRequest, statusOf(fmt.Errorf("%w: no stocks", dashboard.ErrInvalidConfig)))
	assert.Equal(t, http.StatusInternalServerError, statusOf(errors.New("boom")))
}

func TestAsyncRefresh(t *testing.T) {
	s, store := newTestServer(t, simulator.Fixed{Stocks: sbin()})
	rec := do(t, s.Handler(), http.MethodPost, "/api/refresh?async=true", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	assert.Eventually(t, func() bool {
		return store.Snapshot().Status == dashboard.Success
	}, time.Second, 10*time.Millisecond)
}

func TestConfig(t *testing.T) {
	s, store := newTestServer(t, simulator.Fixed{Stocks: sbin()})

	rec := do(t, s.Handler(), http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Currency   string                 `json:"currency"`
		Stocks     []portfolio.StockConfig `json:"stocks"`
		Allocation []portfolio.Allocation `json:"allocation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "INR", got.Currency)
	assert.Len(t, got.Stocks, 9)
	assert.Len(t, got.Allocation, 9)

	rec = do(t, s.Handler(), http.MethodPut, "/api/config",
		`{"currency":"INR","totalInvestment":5000,"stocks":[{"ticker":"NSE:SBIN","targetAmount":1000}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	st := store.Snapshot()
	assert.Equal(t, []string{"NSE:SBIN"}, st.Config.Tickers())
	assert.True(t, st.Config.TotalInvestment.Equal(inr(5000)))
	assert.Equal(t, dashboard.Success, st.Status, "saving refreshes the simulation")
}

func TestPutConfigInvalid(t *testing.T) {
	s, store := newTestServer(t, simulator.Fixed{Stocks: sbin()})

	rec := do(t, s.Handler(), http.MethodPut, "/api/config", `{"currency":"INR","totalInvestment":5000,"stocks":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at least one stock")
	assert.Contains(t, rec.Body.String(), `"saved":false`)

	rec = do(t, s.Handler(), http.MethodPut, "/api/config", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Len(t, store.Snapshot().Config.Stocks, 9, "configuration unchanged")
}

func TestPutConfigSavedDespiteFailedRefresh(t *testing.T) {
	failure := &simulator.SchemaError{Path: "$[0].shares", Reason: "missing required field"}
	s, store := newTestServer(t, simulator.Fixed{Err: failure})

	rec := do(t, s.Handler(), http.MethodPut, "/api/config",
		`{"currency":"INR","totalInvestment":5000,"stocks":[{"ticker":"NSE:SBIN"}]}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body struct {
		Error string          `json:"error"`
		Saved bool            `json:"saved"`
		State dashboard.State `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Saved, "the configuration was saved before the refresh failed")
	assert.Equal(t, failure.Error(), body.Error)
	assert.Equal(t, dashboard.Error, body.State.Status)
	assert.Equal(t, []string{"NSE:SBIN"}, body.State.Config.Tickers())
	assert.Equal(t, []string{"NSE:SBIN"}, store.Snapshot().Config.Tickers())
}

func TestDashboardPage(t *testing.T) {
	s, _ := newTestServer(t, simulator.Fixed{Stocks: sbin()})
	do(t, s.Handler(), http.MethodPost, "/api/refresh", "")

	rec := do(t, s.Handler(), http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<h2>Holdings</h2>")
	assert.Contains(t, rec.Body.String(), `<form id="config">`)
	assert.Contains(t, rec.Body.String(), `<input name="ticker" required value="NSE:TRENT"`)
	assert.Contains(t, rec.Body.String(), `method: "PUT"`)

	rec = do(t, s.Handler(), http.MethodGet, "/?format=md", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "## Holdings")
	assert.Contains(t, rec.Body.String(), "₹1,200.00")
}

func TestMetrics(t *testing.T) {
	s, _ := newTestServer(t, simulator.Fixed{})
	do(t, s.Handler(), http.MethodGet, "/healthz", "")
	do(t, s.Handler(), http.MethodGet, "/healthz", "")

	assert.Equal(t, float64(2), testutil.ToFloat64(s.metrics.requests.WithLabelValues("GET", "/healthz", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(s.metrics.duration))

	rec := do(t, s.Handler(), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "portfolio_http_requests_total")
}

func TestWebsocket(t *testing.T) {
	s, store := newTestServer(t, simulator.Fixed{Stocks: sbin()})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/api/ws", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	var st dashboard.State
	require.NoError(t, wsjson.Read(ctx, conn, &st))
	assert.Equal(t, dashboard.Idle, st.Status)

	go func() { _ = store.Refresh(context.Background()) }()

	// intermediate states may be skipped, success is the last one
	for st.Status != dashboard.Success {
		require.NoError(t, wsjson.Read(ctx, conn, &st))
	}
	assert.Len(t, st.Stocks, 1)
}
