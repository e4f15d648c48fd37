package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aristath/bankdash/internal/clients/bankapi"
	"github.com/aristath/bankdash/internal/dashboard"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

// newBankAPI serves a minimal banking API.
func newBankAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	reply := func(path, body string) {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, body)
		})
	}
	reply("/api/stats/overview", `{"total_transactions": 3, "fraud_rate": 0.33}`)
	reply("/api/transactions/recent", `[]`)
	reply("/api/system/health", `{"status": "healthy"}`)
	reply("/api/system/metadata", `{"version": "1.0.0"}`)
	reply("/api/transactions", `{"transactions": [{"id": "1", "client_id": 2, "date": "2010-01-01", "amount": 5.5, "isFraud": 0}], "total": 1}`)
	reply("/api/transactions/search", `{"transactions": [{"id": "7", "client_id": 3, "date": "2010-01-02", "amount": 42, "isFraud": 1}, {"id": "8", "client_id": 3, "date": "2010-01-02", "amount": 8, "isFraud": 0}], "total": 2}`)
	reply("/api/fraud/predict", `{"isFraud": 1, "probability": 0.9}`)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type testServer struct {
	server   *Server
	sessions *SessionRegistry
}

func newTestServer(t *testing.T, opts SessionOptions) *testServer {
	t.Helper()
	bank := newBankAPI(t)
	log := zerolog.Nop()
	client := bankapi.NewClient(bank.URL, 2*time.Second, log)

	sessions := NewSessionRegistry(func() *dashboard.Orchestrator {
		return dashboard.New(client, nil, nil, nil, log, dashboard.Options{PageSize: dashboard.DefaultPageSize})
	}, opts, log)

	srv := New(Config{Log: log, Sessions: sessions, APIBaseURL: bank.URL, DevMode: true})
	srv.systemHandlers.hostStats = func() (float64, float64) { return 12.5, 40 }
	return &testServer{server: srv, sessions: sessions}
}

func (ts *testServer) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) createSession(t *testing.T) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp["session_id"]
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var state map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	return state
}

func TestCreateSession(t *testing.T) {
	ts := newTestServer(t, SessionOptions{})

	id := ts.createSession(t)

	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, 1, ts.sessions.Len())
}

func TestState_ETag(t *testing.T) {
	ts := newTestServer(t, SessionOptions{})
	id := ts.createSession(t)

	rec := ts.do(t, http.MethodGet, "/api/sessions/"+id+"/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	tag := rec.Header().Get("ETag")
	require.NotEmpty(t, tag)
	state := decodeState(t, rec)
	assert.Equal(t, false, state["is_loading"])
	assert.Equal(t, "", state["error_message"])

	rec = ts.do(t, http.MethodGet, "/api/sessions/"+id+"/state", "", "If-None-Match", tag)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}

func TestState_ETagChangesAfterAction(t *testing.T) {
	ts := newTestServer(t, SessionOptions{})
	id := ts.createSession(t)
	tag := ts.do(t, http.MethodGet, "/api/sessions/"+id+"/state", "").Header().Get("ETag")

	rec := ts.do(t, http.MethodPost, "/api/sessions/"+id+"/dashboard/load", "")
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)
	overview, ok := state["stats_overview"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), overview["total_transactions"])

	rec = ts.do(t, http.MethodGet, "/api/sessions/"+id+"/state", "", "If-None-Match", tag)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, tag, rec.Header().Get("ETag"))
}

func TestState_Msgpack(t *testing.T) {
	ts := newTestServer(t, SessionOptions{})
	id := ts.createSession(t)
	ts.do(t, http.MethodPost, "/api/sessions/"+id+"/transactions/load", "")

	rec := ts.do(t, http.MethodGet, "/api/sessions/"+id+"/state", "", "Accept", "application/msgpack")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeMsgpack, rec.Header().Get("Content-Type"))
	var state map[string]any
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &state))
	assert.Contains(t, state, "transactions")
	assert.EqualValues(t, 1, state["total_transactions"])
}

func TestUnknownSession(t *testing.T) {
	ts := newTestServer(t, SessionOptions{})

	rec := ts.do(t, http.MethodGet, "/api/sessions/does-not-exist/state", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/sessions/does-not-exist/dashboard/load", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteSession(t *testing.T) {
	ts := newTestServer(t, SessionOptions{})
	id := ts.createSession(t)

	rec := ts.do(t, http.MethodDelete, "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, ts.sessions.Len())

	rec = ts.do(t, http.MethodGet, "/api/sessions/"+id+"/state", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, SessionOptions{Rate: 0.001, Burst: 2})
	id := ts.createSession(t)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/sessions/"+id+"/state", "").Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/sessions/"+id+"/state", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, ts.do(t, http.MethodGet, "/api/sessions/"+id+"/state", "").Code)

	other := ts.createSession(t)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/sessions/"+other+"/state", "").Code, "limits are per session")
}

func TestSetFiltersThenLoad(t *testing.T) {
	ts := newTestServer(t, SessionOptions{})
	id := ts.createSession(t)

	rec := ts.do(t, http.MethodPut, "/api/sessions/"+id+"/transactions/filters",
		`{"use_chip": "All", "is_fraud": "Fraudulent", "min_amount": "abc", "merchant_state": "CA"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	query := decodeState(t, rec)["transactions_query"].(map[string]any)
	filters := query["filters"].(map[string]any)
	assert.Equal(t, float64(1), filters["is_fraud"])
	assert.Equal(t, "", filters["use_chip"])
	assert.Equal(t, "CA", filters["merchant_state"])

	rec = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/transactions/load", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Invalid minimum amount", decodeState(t, rec)["error_message"])

	rec = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/transactions/filters/reset", "")
	filters = decodeState(t, rec)["transactions_query"].(map[string]any)["filters"].(map[string]any)
	assert.Nil(t, filters["is_fraud"])
	assert.Equal(t, "", filters["min_amount"])
}

func TestSetFilters_BadBody(t *testing.T) {
	ts := newTestServer(t, SessionOptions{})
	id := ts.createSession(t)

	rec := ts.do(t, http.MethodPut, "/api/sessions/"+id+"/transactions/filters", `{"unknown": 1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictFraud(t *testing.T) {
	ts := newTestServer(t, SessionOptions{})
	id := ts.createSession(t)

	rec := ts.do(t, http.MethodPost, "/api/sessions/"+id+"/fraud/predict", `{"amount": "", "mcc": "5411", "merchant_state": "CA"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dashboard.ErrAmountRequired.Error(), decodeState(t, rec)["error_message"])

	rec = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/fraud/predict", `{"amount": "12.5", "mcc": "5411", "merchant_state": "CA"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)
	assert.Equal(t, "", state["error_message"])
	assert.Equal(t, 0.9, state["fraud_prediction"].(map[string]any)["probability"])

	rec = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/fraud/predict", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchTransactions(t *testing.T) {
	ts := newTestServer(t, SessionOptions{})
	id := ts.createSession(t)

	rec := ts.do(t, http.MethodPost, "/api/sessions/"+id+"/transactions/search", `{"merchant_state": "CA", "min_amount": 5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)
	assert.Equal(t, "", state["error_message"])
	assert.Len(t, state["transactions"], 2)
	assert.Equal(t, float64(2), state["total_transactions"])

	rec = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/transactions/search", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dashboard.ErrSearchCriteriaRequired.Error(), decodeState(t, rec)["error_message"])

	rec = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/transactions/search", `[1, 2]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchCustomer_Validation(t *testing.T) {
	ts := newTestServer(t, SessionOptions{})
	id := ts.createSession(t)

	rec := ts.do(t, http.MethodPost, "/api/sessions/"+id+"/customers/search", `{"customer_id": "abc"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)
	assert.Equal(t, dashboard.ErrCustomerIDNotNumeric.Error(), state["error_message"])
	assert.Equal(t, "abc", state["search_customer_id"])
}

func TestInvalidateCache(t *testing.T) {
	ts := newTestServer(t, SessionOptions{})
	id := ts.createSession(t)
	rec := ts.do(t, http.MethodPost, "/api/sessions/"+id+"/dashboard/load", "")
	require.Len(t, decodeState(t, rec)["cache"], 1)

	rec = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/cache/invalidate", `{"keys": ["dashboard"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeState(t, rec)["cache"])
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, SessionOptions{})
	ts.createSession(t)

	rec := ts.do(t, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 1, resp.Sessions)
	assert.Equal(t, 12.5, resp.CPUPercent)
	assert.Equal(t, 40.0, resp.MemoryPercent)
	assert.NotEmpty(t, resp.APIBaseURL)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, SessionOptions{})
	ts.createSession(t)

	rec := ts.do(t, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bankdash_sessions_active")
}

func TestEventsStream(t *testing.T) {
	ts := newTestServer(t, SessionOptions{})
	id := ts.createSession(t)
	httpServer := httptest.NewServer(ts.server.Handler())
	t.Cleanup(httpServer.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, httpServer.URL+"/api/sessions/"+id+"/events?types=SECTION_LOADED", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	first := readEvent(t, reader)
	assert.Equal(t, "connected", first["type"])

	ts.do(t, http.MethodPost, "/api/sessions/"+id+"/dashboard/load", "")

	event := readEvent(t, reader)
	assert.Equal(t, "SECTION_LOADED", event["type"])
	assert.Equal(t, dashboard.SectionDashboard, event["module"])
}

func readEvent(t *testing.T, r *bufio.Reader) map[string]any {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var event map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event))
		return event
	}
}
