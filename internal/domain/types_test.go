package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestMoney_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "number", input: `12.5`, expected: "12.5"},
		{name: "negative", input: `-77.03`, expected: "-77.03"},
		{name: "quoted", input: `"104.10"`, expected: "104.1"},
		{name: "integer", input: `3`, expected: "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Money
			require.NoError(t, json.Unmarshal([]byte(tt.input), &m))
			assert.Equal(t, tt.expected, m.String())
		})
	}
}

func TestMoney_UnmarshalJSON_Invalid(t *testing.T) {
	var m Money
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &m))
}

func TestMoney_MarshalJSON_TwoDecimals(t *testing.T) {
	data, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{Amount: NewMoney(12.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount": 12.50}`, string(data))
}

func TestMoney_Msgpack(t *testing.T) {
	data, err := msgpack.Marshal(NewMoney(19.99))
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, msgpack.Unmarshal(data, &decoded))
	assert.InDelta(t, 19.99, decoded.Float(), 1e-9)
}

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney("150.75")
	require.NoError(t, err)
	assert.Equal(t, 150.75, m.Float())

	_, err = ParseMoney("abc")
	assert.Error(t, err)
}

func TestFlexString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected FlexString
		wantErr  bool
	}{
		{name: "string", input: `"7475327"`, expected: "7475327"},
		{name: "integer", input: `101`, expected: "101"},
		{name: "null", input: `null`, wantErr: true},
		{name: "object", input: `{"id": 1}`, wantErr: true},
		{name: "bool", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s FlexString
			err := json.Unmarshal([]byte(tt.input), &s)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s)
		})
	}
}

func TestFraudFlag_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input    string
		expected FraudFlag
		wantErr  bool
	}{
		{input: `0`, expected: Legitimate},
		{input: `1`, expected: Fraudulent},
		{input: `false`, expected: Legitimate},
		{input: `true`, expected: Fraudulent},
		{input: `"0"`, expected: Legitimate},
		{input: `"1"`, expected: Fraudulent},
		{input: `2`, wantErr: true},
		{input: `"yes"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var f FraudFlag
			err := json.Unmarshal([]byte(tt.input), &f)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}
}

func TestTransaction_FraudFlagStaysInteger(t *testing.T) {
	var tx Transaction
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","client_id":5,"date":"2010-01-01","amount":10,"isFraud":true}`), &tx))
	assert.Equal(t, Fraudulent, tx.IsFraud)
	assert.True(t, tx.IsFraud.IsFraud())

	data, err := json.Marshal(tx)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, float64(1), raw["isFraud"])
}

func TestDocument_Clone(t *testing.T) {
	var nilDoc Document
	assert.Nil(t, nilDoc.Clone())

	doc := Document{"version": "1.0.0"}
	clone := doc.Clone()
	clone["version"] = "2.0.0"
	assert.Equal(t, "1.0.0", doc["version"])
}
