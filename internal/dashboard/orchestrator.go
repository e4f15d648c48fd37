// Package dashboard is the data-fetch orchestrator behind the banking dashboard.
//
// Each section (dashboard, transactions, customers, fraud, stats) has a load
// operation that decides between serving cached state and fetching, fans out
// independent API calls, tolerates partial failure and publishes the outcome
// as State. Operations never return errors; failures end up in
// State.ErrorMessage and IsLoading is always false once every operation has
// returned.
//
// Concurrent operations are allowed. The last one to complete wins and
// in-flight loads are not cancelled by newer ones.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/aristath/bankdash/internal/cache"
	"github.com/aristath/bankdash/internal/clients/bankapi"
	"github.com/aristath/bankdash/internal/domain"
	"github.com/aristath/bankdash/internal/events"
	"github.com/aristath/bankdash/internal/normalizer"
	"github.com/rs/zerolog"
)

// API is the subset of the banking API client the orchestrator uses.
type API interface {
	normalizer.ProfileFetcher

	GetTransactions(ctx context.Context, q bankapi.TransactionQuery) (*bankapi.TransactionPage, error)
	SearchTransactions(ctx context.Context, criteria domain.Document, page, limit int) (*bankapi.TransactionPage, error)
	GetTransactionTypes(ctx context.Context) ([]string, error)
	GetRecentTransactions(ctx context.Context, n int) ([]json.RawMessage, error)
	GetTransactionsByCustomer(ctx context.Context, customerID, page, limit int) (*bankapi.TransactionPage, error)
	GetTransaction(ctx context.Context, id string) (json.RawMessage, error)
	DeleteTransaction(ctx context.Context, id string) (domain.Document, error)

	GetCustomers(ctx context.Context, page, limit int) (*bankapi.CustomerPage, error)
	GetTopCustomers(ctx context.Context, n int) (json.RawMessage, error)

	GetStatsOverview(ctx context.Context) (domain.Document, error)
	GetAmountDistribution(ctx context.Context, bins int) (domain.Document, error)
	GetStatsByType(ctx context.Context) ([]json.RawMessage, error)
	GetDailyStats(ctx context.Context, limit int) ([]json.RawMessage, error)

	GetFraudSummary(ctx context.Context) (domain.Document, error)
	GetFraudByType(ctx context.Context) ([]json.RawMessage, error)
	PredictFraud(ctx context.Context, req domain.PredictionRequest) (domain.Document, error)

	GetHealth(ctx context.Context) (domain.Document, error)
	GetMetadata(ctx context.Context) (domain.Document, error)
}

// Section names used for events and logs.
const (
	SectionDashboard    = "dashboard"
	SectionTransactions = "transactions"
	SectionCustomers    = "customers"
	SectionFraud        = "fraud"
	SectionStats        = "stats"
)

// Options tunes an Orchestrator.
type Options struct {
	PageSize int
}

// Orchestrator owns the published State of one user session.
type Orchestrator struct {
	api        API
	cache      *cache.Registry
	normalizer *normalizer.Normalizer
	events     *events.Manager
	log        zerolog.Logger

	mu       sync.RWMutex
	state    State
	inFlight int
}

// New creates an orchestrator. A nil events manager gets a private bus.
func New(api API, registry *cache.Registry, norm *normalizer.Normalizer, em *events.Manager, log zerolog.Logger, opts Options) *Orchestrator {
	if em == nil {
		em = events.NewManager(events.NewBus(), log)
	}
	if registry == nil {
		registry = cache.NewRegistry(cache.DefaultTTL)
	}
	if norm == nil {
		norm = normalizer.New(normalizer.DefaultConcurrency, log)
	}
	return &Orchestrator{
		api:        api,
		cache:      registry,
		normalizer: norm,
		events:     em,
		log:        log.With().Str("component", "orchestrator").Logger(),
		state:      newState(opts.PageSize),
	}
}

// Events returns the manager state changes are emitted through.
func (o *Orchestrator) Events() *events.Manager {
	return o.events
}

// Snapshot returns a copy of the published state.
func (o *Orchestrator) Snapshot() State {
	o.mu.RLock()
	s := o.state
	s.IsLoading = o.inFlight > 0
	o.mu.RUnlock()

	s.Cache = o.cache.Entries()
	return s
}

// IsLoading reports whether any load is in flight.
func (o *Orchestrator) IsLoading() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.inFlight > 0
}

// ErrorMessage returns the current error message, empty when there is none.
func (o *Orchestrator) ErrorMessage() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state.ErrorMessage
}

// InvalidateCache drops the given cache keys, or every key when none are given.
func (o *Orchestrator) InvalidateCache(keys ...string) {
	o.cache.Invalidate(keys...)
	o.events.Emit("cache", &events.CacheInvalidatedData{Keys: keys})
	o.changed("cache")
}

// read runs fn with the state read-locked.
func (o *Orchestrator) read(fn func(s *State)) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	fn(&o.state)
}

// update runs fn with the state locked.
func (o *Orchestrator) update(fn func(s *State)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(&o.state)
}

// mutate applies a synchronous state change and notifies observers.
func (o *Orchestrator) mutate(section string, fn func(s *State)) {
	o.update(fn)
	o.changed(section)
}

// begin marks a load as in flight and clears the previous error.
// Every begin must be paired with a deferred end.
func (o *Orchestrator) begin(section string) time.Time {
	o.update(func(s *State) {
		o.inFlight++
		s.ErrorMessage = ""
	})
	o.events.Emit(section, &events.SectionLoadingData{Section: section})
	o.changed(section)
	return time.Now()
}

func (o *Orchestrator) end(section string) {
	o.update(func(s *State) {
		o.inFlight--
	})
	o.changed(section)
}

// fail publishes a user-facing error for section.
func (o *Orchestrator) fail(section, message string) {
	o.update(func(s *State) {
		s.ErrorMessage = message
	})
	o.log.Error().Str("section", section).Msg(message)
	o.events.Emit(section, &events.SectionFailedData{Section: section, Error: message})
	o.events.EmitError(section, errors.New(message), map[string]interface{}{"section": section})
}

// reject publishes a validation failure. No request was made.
func (o *Orchestrator) reject(section string, err error) {
	o.update(func(s *State) {
		s.ErrorMessage = err.Error()
	})
	o.log.Debug().Str("section", section).Err(err).Msg("Rejected invalid input")
	o.events.Emit(section, &events.SectionFailedData{Section: section, Error: err.Error()})
	o.changed(section)
}

// loaded records a completed load.
func (o *Orchestrator) loaded(section string, start time.Time, calls int, failed []string) {
	if len(failed) > 0 {
		o.log.Warn().Str("section", section).Strs("failed", failed).Msg("Section loaded with partial failures")
	} else {
		o.log.Debug().Str("section", section).Int("calls", calls).Msg("Section loaded")
	}
	o.events.Emit(section, &events.SectionLoadedData{
		Section:    section,
		Calls:      calls,
		Failed:     failed,
		DurationMs: time.Since(start).Milliseconds(),
	})
}

// settle finishes a gathered batch: total failure publishes an error, anything
// else refreshes the cache key.
func (o *Orchestrator) settle(section, cacheKey, what string, start time.Time, b *batch) {
	if b.allFailed() {
		o.fail(section, loadError(what, b.firstErr()))
		return
	}
	if cacheKey != "" {
		o.cache.Touch(cacheKey)
	}
	o.loaded(section, start, len(b.calls), b.failed())
}

func (o *Orchestrator) changed(section string) {
	o.mu.RLock()
	data := &events.StateChangedData{
		Section:   section,
		IsLoading: o.inFlight > 0,
		Error:     o.state.ErrorMessage,
	}
	o.mu.RUnlock()
	o.events.Emit(section, data)
}
