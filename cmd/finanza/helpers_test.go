package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finanza/finanza/internal/model"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedError bool
		expectedValue float64
	}{
		{
			name:          "valid amount",
			input:         "100.50",
			expectedValue: 100.50,
		},
		{
			name:          "zero is allowed",
			input:         "0",
			expectedValue: 0,
		},
		{
			name:          "negative amount",
			input:         "-50",
			expectedError: true,
		},
		{
			name:          "not a number",
			input:         "abc",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseAmount(tt.input)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedValue, result)
			}
		})
	}
}

func TestParseDateFlag(t *testing.T) {
	date, err := parseDateFlag("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, model.NewDate(2024, time.March, 15), date)

	today, err := parseDateFlag("")
	require.NoError(t, err)
	assert.Equal(t, model.DateOf(time.Now()), today, "empty flag defaults to today")

	_, err = parseDateFlag("15/03/2024")
	assert.Error(t, err)
}
