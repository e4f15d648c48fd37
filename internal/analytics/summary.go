// Package analytics derives summaries from published dashboard collections.
package analytics

import (
	"math"

	"github.com/aristath/bankdash/internal/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the amounts of one page of transactions.
type Summary struct {
	Count      int     `json:"count"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Total      float64 `json:"total"`
	FraudCount int     `json:"fraud_count"`
}

// SummarizeAmounts computes amount statistics. Empty input yields a zero Summary.
// StdDev is the sample standard deviation, zero for fewer than two transactions.
func SummarizeAmounts(txs []domain.Transaction) Summary {
	if len(txs) == 0 {
		return Summary{}
	}

	amounts := make([]float64, len(txs))
	s := Summary{Count: len(txs)}
	for i, tx := range txs {
		amounts[i] = tx.Amount.Float()
		if tx.IsFraud.IsFraud() {
			s.FraudCount++
		}
	}

	s.Mean, s.StdDev = stat.MeanStdDev(amounts, nil)
	if len(amounts) < 2 || math.IsNaN(s.StdDev) {
		s.StdDev = 0
	}
	s.Min = floats.Min(amounts)
	s.Max = floats.Max(amounts)
	s.Total = floats.Sum(amounts)
	return s
}
