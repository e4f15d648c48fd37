package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty string", "", nil},
		{"only spaces", "   ", nil},
		{"comma only", ",", nil},
		{"single value", "STATE_CHANGED", []string{"STATE_CHANGED"}},
		{"two values", "SECTION_LOADED, SECTION_FAILED", []string{"SECTION_LOADED", "SECTION_FAILED"}},
		{"varied spacing", "dashboard,  fraud , stats", []string{"dashboard", "fraud", "stats"}},
		{"trailing comma", "fraud,", []string{"fraud"}},
		{"repeated commas", ",,transaction_types,,top_customers,,", []string{"transaction_types", "top_customers"}},
		{"internal spaces preserved", "Swipe Transaction, Chip Transaction", []string{"Swipe Transaction", "Chip Transaction"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCSV(tt.input))
		})
	}
}
