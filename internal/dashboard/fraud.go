package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aristath/bankdash/internal/cache"
	"github.com/aristath/bankdash/internal/clients/bankapi"
	"github.com/aristath/bankdash/internal/domain"
	"github.com/aristath/bankdash/pkg/validator"
)

// LoadFraudData fetches the fraud summary and per-type breakdown. A sample of
// recent transactions is fetched alongside to extend the merchant state and
// MCC options; the sample is best effort and never causes an error message.
func (o *Orchestrator) LoadFraudData(ctx context.Context) {
	var cached bool
	o.read(func(s *State) {
		cached = len(s.FraudSummary) > 0
	})
	if cached && o.cache.IsFresh(cache.KeyFraud) {
		return
	}

	start := o.begin(SectionFraud)
	defer o.end(SectionFraud)

	var (
		summary domain.Document
		byType  []json.RawMessage
		sample  *bankapi.TransactionPage
	)
	b := gather(ctx,
		call{name: "fraud_summary", run: func(ctx context.Context) (err error) {
			summary, err = o.api.GetFraudSummary(ctx)
			return err
		}},
		call{name: "fraud_by_type", run: func(ctx context.Context) (err error) {
			byType, err = o.api.GetFraudByType(ctx)
			return err
		}},
		call{name: "option_sample", optional: true, run: func(ctx context.Context) (err error) {
			sample, err = o.api.GetTransactions(ctx, bankapi.TransactionQuery{Page: 1, Limit: OptionSampleSize})
			return err
		}},
	)

	var stats []domain.FraudStat
	if b.ok("fraud_by_type") {
		stats = o.normalizer.FraudStats(byType)
	}
	var sampled []domain.Transaction
	if b.ok("option_sample") && sample != nil {
		sampled = o.normalizer.Transactions(sample.Transactions)
	}

	o.update(func(s *State) {
		if b.ok("fraud_summary") {
			s.FraudSummary = summary
		}
		if b.ok("fraud_by_type") {
			s.FraudByType = stats
		}
		if len(sampled) > 0 {
			s.MerchantStates = mergeOptions(s.MerchantStates, merchantStates(sampled))
			s.MCCCodes = mergeOptions(s.MCCCodes, mccCodes(sampled))
		}
	})
	o.settle(SectionFraud, cache.KeyFraud, "fraud data", start, b)
}

func merchantStates(txs []domain.Transaction) []string {
	var out []string
	for _, tx := range txs {
		if tx.MerchantState != nil && *tx.MerchantState != "" {
			out = append(out, *tx.MerchantState)
		}
	}
	return out
}

func mccCodes(txs []domain.Transaction) []string {
	var out []string
	for _, tx := range txs {
		if tx.MCC != nil && *tx.MCC != 0 {
			out = append(out, strconv.Itoa(*tx.MCC))
		}
	}
	return out
}

// mergeOptions returns the sorted union of current and found. When found adds
// nothing new, returns current unchanged.
func mergeOptions(current, found []string) []string {
	seen := make(map[string]struct{}, len(current))
	for _, v := range current {
		seen[v] = struct{}{}
	}

	merged := append([]string(nil), current...)
	added := false
	for _, v := range found {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		merged = append(merged, v)
		added = true
	}
	if !added {
		return current
	}
	sort.Strings(merged)
	return merged
}

// PredictFraud scores a transaction with the remote model. The previous
// prediction is cleared first. Predictions are never cached.
func (o *Orchestrator) PredictFraud(ctx context.Context, req domain.PredictionRequest) {
	start := o.begin(SectionFraud)
	defer o.end(SectionFraud)

	o.update(func(s *State) {
		s.FraudPrediction = nil
	})

	prediction, err := o.api.PredictFraud(ctx, req)
	if err != nil {
		o.fail(SectionFraud, fmt.Sprintf("Error predicting fraud: %v", err))
		return
	}
	o.update(func(s *State) {
		s.FraudPrediction = prediction
	})
	o.loaded(SectionFraud, start, 1, nil)
}

// PredictionForm is the raw prediction form input.
// Field order sets which missing field is reported first.
type PredictionForm struct {
	Amount        string `json:"amount" validate:"required"`
	MCC           string `json:"mcc" validate:"required"`
	MerchantState string `json:"merchant_state" validate:"required"`
	UseChip       string `json:"use_chip"`
}

var formValidator = validator.New()

// Request validates the form and converts it into a prediction request.
func (f PredictionForm) Request() (domain.PredictionRequest, error) {
	f.Amount = strings.TrimSpace(f.Amount)
	f.MCC = strings.TrimSpace(f.MCC)
	f.MerchantState = strings.TrimSpace(f.MerchantState)

	if err := formValidator.Struct(f); err != nil {
		field, _ := validator.FirstInvalidField(err)
		switch field {
		case "Amount":
			return domain.PredictionRequest{}, ErrAmountRequired
		case "MCC":
			return domain.PredictionRequest{}, ErrMCCRequired
		default:
			return domain.PredictionRequest{}, ErrMerchantStateRequired
		}
	}

	amount, err := domain.ParseMoney(f.Amount)
	if err != nil {
		return domain.PredictionRequest{}, ErrInvalidPredictionInput
	}
	mcc, err := strconv.Atoi(f.MCC)
	if err != nil {
		return domain.PredictionRequest{}, ErrInvalidPredictionInput
	}

	useChip := f.UseChip
	if useChip == "" {
		useChip = DefaultUseChip
	}
	return domain.PredictionRequest{
		Amount:        amount,
		UseChip:       useChip,
		MerchantState: f.MerchantState,
		MCC:           mcc,
	}, nil
}

// SubmitPrediction validates the form before calling PredictFraud. Invalid
// input publishes an error without any request.
func (o *Orchestrator) SubmitPrediction(ctx context.Context, form PredictionForm) {
	req, err := form.Request()
	if err != nil {
		o.reject(SectionFraud, err)
		return
	}
	o.PredictFraud(ctx, req)
}
