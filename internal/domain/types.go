package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
)

// Money is a currency amount with two-decimal semantics.
// It decodes from JSON numbers or numeric strings and encodes as a JSON number
// rounded to cents.
type Money struct {
	decimal.Decimal
}

// NewMoney creates a Money value from a float.
func NewMoney(amount float64) Money {
	return Money{Decimal: decimal.NewFromFloat(amount)}
}

// ParseMoney parses user input such as "12.50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Decimal: d}, nil
}

// Float returns the amount as float64 for numeric aggregation.
func (m Money) Float() float64 {
	f, _ := m.Decimal.Float64()
	return f
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	return m.Decimal.UnmarshalJSON(data)
}

func (m Money) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeFloat64(m.Decimal.Round(2).InexactFloat64())
}

func (m *Money) DecodeMsgpack(dec *msgpack.Decoder) error {
	f, err := dec.DecodeFloat64()
	if err != nil {
		return err
	}
	m.Decimal = decimal.NewFromFloat(f)
	return nil
}

// FlexString is a string identifier the API sometimes sends as a number.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("identifier is null")
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("identifier %s is neither string nor number", data)
	}
	*s = FlexString(data)
	return nil
}

// FraudFlag is the 0/1 fraud marker. The API has been observed to send it as an
// integer, a boolean or a quoted digit; all are normalized to 0 or 1.
type FraudFlag int

const (
	Legitimate FraudFlag = 0
	Fraudulent FraudFlag = 1
)

func (f *FraudFlag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "0", "false", `"0"`:
		*f = Legitimate
	case "1", "true", `"1"`:
		*f = Fraudulent
	default:
		return fmt.Errorf("invalid fraud flag %s", data)
	}
	return nil
}

// IsFraud reports whether the flag marks fraud.
func (f FraudFlag) IsFraud() bool {
	return f == Fraudulent
}
