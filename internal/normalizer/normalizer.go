// Package normalizer turns raw API payloads into typed domain records.
//
// Records that fail to decode or fail required-field validation are dropped.
// A shorter or empty result is a valid outcome, never an error.
package normalizer

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/aristath/bankdash/internal/domain"
	"github.com/aristath/bankdash/pkg/validator"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds profile lookups during fan-out.
const DefaultConcurrency = 8

// ProfileFetcher looks up a single customer profile.
type ProfileFetcher interface {
	GetCustomerProfile(ctx context.Context, customerID int) (domain.Document, error)
}

// Normalizer decodes and validates API records.
type Normalizer struct {
	validate    *validator.Validator
	concurrency int
	log         zerolog.Logger
}

// New creates a Normalizer. concurrency bounds profile fan-out; non-positive means DefaultConcurrency.
func New(concurrency int, log zerolog.Logger) *Normalizer {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Normalizer{
		validate:    validator.New(),
		concurrency: concurrency,
		log:         log.With().Str("component", "normalizer").Logger(),
	}
}

// Transaction decodes a single transaction.
func (n *Normalizer) Transaction(raw json.RawMessage) (domain.Transaction, error) {
	var rec transactionRecord
	if err := n.decode(raw, &rec); err != nil {
		return domain.Transaction{}, err
	}
	return rec.toDomain(), nil
}

// Transactions decodes a list of transactions, dropping invalid entries.
func (n *Normalizer) Transactions(raws []json.RawMessage) []domain.Transaction {
	return decodeAll(n, "transaction", raws, transactionRecord.toDomain)
}

// Customer decodes a single customer record, filling the average amount if absent.
func (n *Normalizer) Customer(raw json.RawMessage) (domain.Customer, error) {
	var rec customerRecord
	if err := n.decode(raw, &rec); err != nil {
		return domain.Customer{}, err
	}
	return rec.toDomain(), nil
}

// Customers turns a collection into customer records. ID collections are resolved
// through fetcher concurrently; failed lookups are dropped and results keep
// completion order.
func (n *Normalizer) Customers(ctx context.Context, coll CustomerCollection, fetcher ProfileFetcher) []domain.Customer {
	switch coll.Kind {
	case KindRecords:
		return decodeAll(n, "customer", coll.Records, customerRecord.toDomain)
	case KindIDs:
		profiles := n.ResolveProfiles(ctx, coll.IDs, fetcher)
		raws := make([]json.RawMessage, 0, len(profiles))
		for _, profile := range profiles {
			data, err := json.Marshal(profile)
			if err != nil {
				continue
			}
			raws = append(raws, data)
		}
		return decodeAll(n, "customer", raws, customerRecord.toDomain)
	default:
		return []domain.Customer{}
	}
}

// ResolveProfiles fetches one profile per ID with bounded concurrency.
// Failed and empty lookups are dropped. A profile without an "id" gets the requested ID.
func (n *Normalizer) ResolveProfiles(ctx context.Context, ids []int, fetcher ProfileFetcher) []domain.Document {
	var (
		mu       sync.Mutex
		profiles = make([]domain.Document, 0, len(ids))
		failed   int
	)

	var g errgroup.Group
	g.SetLimit(n.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			profile, err := fetcher.GetCustomerProfile(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil || len(profile) == 0 {
				failed++
				n.log.Debug().Err(err).Int("customer_id", id).Msg("Dropping customer profile")
				return nil
			}
			if _, ok := profile["id"]; !ok {
				profile = profile.Clone()
				profile["id"] = strconv.Itoa(id)
			}
			profiles = append(profiles, profile)
			return nil
		})
	}
	_ = g.Wait()

	if failed > 0 {
		n.log.Debug().
			Int("requested", len(ids)).
			Int("failed", failed).
			Msg("Customer profile fan-out completed with failures")
	}
	return profiles
}

// FraudStats decodes fraud-by-type rows.
func (n *Normalizer) FraudStats(raws []json.RawMessage) []domain.FraudStat {
	return decodeAll(n, "fraud_stat", raws, fraudStatRecord.toDomain)
}

// TypeStats decodes stats-by-type rows.
func (n *Normalizer) TypeStats(raws []json.RawMessage) []domain.TypeStat {
	return decodeAll(n, "type_stat", raws, typeStatRecord.toDomain)
}

// DailyStats decodes daily rows, filling the average amount if absent.
func (n *Normalizer) DailyStats(raws []json.RawMessage) []domain.DailyStat {
	return decodeAll(n, "daily_stat", raws, dailyStatRecord.toDomain)
}

func (n *Normalizer) decode(raw json.RawMessage, rec any) error {
	if err := json.Unmarshal(raw, rec); err != nil {
		return err
	}
	return n.validate.Validate(rec)
}

func decodeAll[R any, T any](n *Normalizer, kind string, raws []json.RawMessage, convert func(R) T) []T {
	out := make([]T, 0, len(raws))
	dropped := 0
	var firstErr error
	for _, raw := range raws {
		var rec R
		if err := n.decode(raw, &rec); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			dropped++
			continue
		}
		out = append(out, convert(rec))
	}
	if dropped > 0 {
		n.log.Debug().
			Err(firstErr).
			Str("kind", kind).
			Int("dropped", dropped).
			Int("kept", len(out)).
			Msg("Dropped invalid records")
	}
	return out
}
