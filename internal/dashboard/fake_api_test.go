package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aristath/bankdash/internal/cache"
	"github.com/aristath/bankdash/internal/clients/bankapi"
	"github.com/aristath/bankdash/internal/events"
	"github.com/aristath/bankdash/internal/normalizer"
	"github.com/rs/zerolog"
)

// fakeAPI is an in-process stand-in for the banking API that counts requests.
type fakeAPI struct {
	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	hits     map[string]int
	queries  map[string][]string
	server   *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		handlers: make(map[string]http.HandlerFunc),
		hits:     make(map[string]int),
		queries:  make(map[string][]string),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	f.mu.Lock()
	f.hits[key]++
	f.queries[key] = append(f.queries[key], r.URL.RawQuery)
	h, ok := f.handlers[key]
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func (f *fakeAPI) handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method+" "+path] = h
}

// reply serves body as JSON. A string body is written verbatim.
func (f *fakeAPI) reply(method, path string, body any) {
	f.handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if s, ok := body.(string); ok {
			w.Write([]byte(s))
			return
		}
		json.NewEncoder(w).Encode(body)
	})
}

func (f *fakeAPI) get(path string, body any) {
	f.reply(http.MethodGet, path, body)
}

func (f *fakeAPI) fail(method, path string, status int) {
	f.handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "unavailable"}`, status)
	})
}

func (f *fakeAPI) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[method+" "+path]
}

func (f *fakeAPI) lastQuery(method, path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := f.queries[method+" "+path]
	if len(q) == 0 {
		return ""
	}
	return q[len(q)-1]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.hits {
		n += c
	}
	return n
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	api   *fakeAPI
	orch  *Orchestrator
	clock *testClock
	bus   *events.Bus
}

func newHarness(t *testing.T) *harness {
	return newHarnessWithPageSize(t, DefaultPageSize)
}

func newHarnessWithPageSize(t *testing.T, pageSize int) *harness {
	t.Helper()
	api := newFakeAPI(t)
	clock := &testClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	bus := events.NewBus()
	log := zerolog.Nop()

	orch := New(
		bankapi.NewClient(api.server.URL, 2*time.Second, log),
		cache.NewRegistry(cache.DefaultTTL, cache.WithClock(clock.Now)),
		normalizer.New(4, log),
		events.NewManager(bus, log),
		log,
		Options{PageSize: pageSize},
	)
	return &harness{api: api, orch: orch, clock: clock, bus: bus}
}

const (
	txFixture1 = `{"id": "7475327", "client_id": 1556, "card_id": 2972, "date": "2010-01-01 00:01:00", "amount": -77.0, "use_chip": "Swipe Transaction", "merchant_state": "ND", "mcc": 5499, "isFraud": 0}`
	txFixture2 = `{"id": "7475328", "client_id": 561, "date": "2010-01-01 00:02:00", "amount": 14.57, "use_chip": "Chip Transaction", "merchant_state": "IA", "mcc": 5311, "isFraud": 1}`
	txFixture3 = `{"id": "7475329", "client_id": 1129, "date": "2010-01-01 00:02:00", "amount": 80.0, "use_chip": "Online Transaction", "merchant_state": "ZZ", "mcc": 4829, "isFraud": 0}`
)

func txPage(total int, txs ...string) string {
	body := `{"transactions": [`
	for i, tx := range txs {
		if i > 0 {
			body += ","
		}
		body += tx
	}
	return body + `], "total": ` + itoa(total) + `}`
}

func txList(txs ...string) string {
	body := `[`
	for i, tx := range txs {
		if i > 0 {
			body += ","
		}
		body += tx
	}
	return body + `]`
}

func itoa(n int) string {
	data, _ := json.Marshal(n)
	return string(data)
}

// watchFresh reports whether key was fresh in the cache when the most recent
// state change was emitted.
func (h *harness) watchFresh(key string) func() bool {
	var (
		mu    sync.Mutex
		fresh bool
	)
	h.bus.Subscribe(events.StateChanged, func(events.Event) {
		f := h.orch.cache.IsFresh(key)
		mu.Lock()
		fresh = f
		mu.Unlock()
	})
	return func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fresh
	}
}
