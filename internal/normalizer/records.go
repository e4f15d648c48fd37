package normalizer

import (
	"github.com/aristath/bankdash/internal/domain"
	"github.com/shopspring/decimal"
)

// Wire records use pointers so that "required" means present, zero values included.

type transactionRecord struct {
	ID            *domain.FlexString `json:"id" validate:"required,min=1"`
	ClientID      *int               `json:"client_id" validate:"required"`
	CardID        *int               `json:"card_id"`
	Date          *string            `json:"date" validate:"required"`
	Amount        *domain.Money      `json:"amount" validate:"required"`
	UseChip       *string            `json:"use_chip"`
	MerchantID    *int               `json:"merchant_id"`
	MerchantCity  *string            `json:"merchant_city"`
	MerchantState *string            `json:"merchant_state"`
	Zip           *float64           `json:"zip"`
	MCC           *int               `json:"mcc"`
	Errors        *string            `json:"errors"`
	IsFraud       *domain.FraudFlag  `json:"isFraud" validate:"required"`
}

func (r transactionRecord) toDomain() domain.Transaction {
	return domain.Transaction{
		ID:            *r.ID,
		ClientID:      *r.ClientID,
		CardID:        r.CardID,
		Date:          *r.Date,
		Amount:        *r.Amount,
		UseChip:       r.UseChip,
		MerchantID:    r.MerchantID,
		MerchantCity:  r.MerchantCity,
		MerchantState: r.MerchantState,
		Zip:           r.Zip,
		MCC:           r.MCC,
		Errors:        r.Errors,
		IsFraud:       *r.IsFraud,
	}
}

type customerRecord struct {
	ID                *domain.FlexString `json:"id" validate:"required,min=1"`
	TransactionsCount *int               `json:"transactions_count" validate:"required,gte=0"`
	TotalAmount       *domain.Money      `json:"total_amount" validate:"required"`
	AvgAmount         *domain.Money      `json:"avg_amount"`
	FraudCount        *int               `json:"fraud_count" validate:"omitempty,gte=0"`
}

func (r customerRecord) toDomain() domain.Customer {
	c := domain.Customer{
		ID:                *r.ID,
		TransactionsCount: *r.TransactionsCount,
		TotalAmount:       *r.TotalAmount,
	}
	if r.AvgAmount != nil {
		c.AvgAmount = *r.AvgAmount
	} else {
		c.AvgAmount = Average(c.TotalAmount, c.TransactionsCount)
	}
	if r.FraudCount != nil {
		c.FraudCount = *r.FraudCount
	}
	return c
}

type fraudStatRecord struct {
	Type       *string  `json:"type" validate:"required"`
	TotalCount *int     `json:"total_count" validate:"required,gte=0"`
	FraudCount *int     `json:"fraud_count" validate:"required,gte=0"`
	FraudRate  *float64 `json:"fraud_rate" validate:"required,gte=0,lte=1"`
}

func (r fraudStatRecord) toDomain() domain.FraudStat {
	return domain.FraudStat{
		Type:       *r.Type,
		TotalCount: *r.TotalCount,
		FraudCount: *r.FraudCount,
		FraudRate:  *r.FraudRate,
	}
}

type typeStatRecord struct {
	Type        *string       `json:"type" validate:"required"`
	Count       *int          `json:"count" validate:"required,gte=0"`
	TotalAmount *domain.Money `json:"total_amount" validate:"required"`
	AvgAmount   *domain.Money `json:"avg_amount" validate:"required"`
	FraudRate   *float64      `json:"fraud_rate" validate:"omitempty,gte=0,lte=1"`
}

func (r typeStatRecord) toDomain() domain.TypeStat {
	s := domain.TypeStat{
		Type:        *r.Type,
		Count:       *r.Count,
		TotalAmount: *r.TotalAmount,
		AvgAmount:   *r.AvgAmount,
	}
	if r.FraudRate != nil {
		s.FraudRate = *r.FraudRate
	}
	return s
}

type dailyStatRecord struct {
	Step        *domain.FlexString `json:"step" validate:"required"`
	Count       *int               `json:"count" validate:"required,gte=0"`
	TotalAmount *domain.Money      `json:"total_amount" validate:"required"`
	FraudCount  *int               `json:"fraud_count" validate:"required,gte=0"`
	AvgAmount   *domain.Money      `json:"avg_amount"`
}

func (r dailyStatRecord) toDomain() domain.DailyStat {
	s := domain.DailyStat{
		Step:        *r.Step,
		Count:       *r.Count,
		TotalAmount: *r.TotalAmount,
		FraudCount:  *r.FraudCount,
	}
	if r.AvgAmount != nil {
		s.AvgAmount = *r.AvgAmount
	} else {
		s.AvgAmount = Average(s.TotalAmount, s.Count)
	}
	return s
}

// Average returns total/count rounded to cents, or zero when count is not positive.
func Average(total domain.Money, count int) domain.Money {
	if count <= 0 {
		return domain.Money{Decimal: decimal.Zero}
	}
	return domain.Money{Decimal: total.Decimal.Div(decimal.NewFromInt(int64(count))).Round(2)}
}
