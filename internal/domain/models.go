// Package domain provides the typed records published by the dashboard.
package domain

// Document is a JSON object passed through without a fixed schema
// (stats overview, health, metadata, fraud summary, customer profile).
type Document map[string]any

// Clone returns a shallow copy.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Transaction is a single card transaction. Records are immutable once received.
type Transaction struct {
	ID            FlexString `json:"id"`
	ClientID      int        `json:"client_id"`
	CardID        *int       `json:"card_id,omitempty"`
	Date          string     `json:"date"`
	Amount        Money      `json:"amount"`
	UseChip       *string    `json:"use_chip,omitempty"`
	MerchantID    *int       `json:"merchant_id,omitempty"`
	MerchantCity  *string    `json:"merchant_city,omitempty"`
	MerchantState *string    `json:"merchant_state,omitempty"`
	Zip           *float64   `json:"zip,omitempty"`
	MCC           *int       `json:"mcc,omitempty"`
	Errors        *string    `json:"errors,omitempty"`
	IsFraud       FraudFlag  `json:"isFraud"`
}

// Customer aggregates a client's transactions.
type Customer struct {
	ID                FlexString `json:"id"`
	TransactionsCount int        `json:"transactions_count"`
	TotalAmount       Money      `json:"total_amount"`
	AvgAmount         Money      `json:"avg_amount"`
	FraudCount        int        `json:"fraud_count"`
}

// FraudStat is the fraud breakdown for one transaction type.
type FraudStat struct {
	Type       string  `json:"type"`
	TotalCount int     `json:"total_count"`
	FraudCount int     `json:"fraud_count"`
	FraudRate  float64 `json:"fraud_rate"`
}

// TypeStat holds volume statistics for one transaction type.
type TypeStat struct {
	Type        string  `json:"type"`
	Count       int     `json:"count"`
	TotalAmount Money   `json:"total_amount"`
	AvgAmount   Money   `json:"avg_amount"`
	FraudRate   float64 `json:"fraud_rate"`
}

// DailyStat holds volume statistics for one day bucket.
type DailyStat struct {
	Step        FlexString `json:"step"`
	Count       int        `json:"count"`
	TotalAmount Money      `json:"total_amount"`
	FraudCount  int        `json:"fraud_count"`
	AvgAmount   Money      `json:"avg_amount"`
}

// PredictionRequest is the payload for the fraud model.
type PredictionRequest struct {
	Amount        Money  `json:"amount"`
	UseChip       string `json:"use_chip"`
	MerchantState string `json:"merchant_state"`
	MCC           int    `json:"mcc"`
}
