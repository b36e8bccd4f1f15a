package tokenCreation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals int
		want     uint64
		wantErr  error
	}{
		{name: "whole supply with 9 decimals", amount: "1000", decimals: 9, want: 1_000_000_000_000},
		{name: "zero decimals", amount: "42", decimals: 0, want: 42},
		{name: "fraction within decimals", amount: "0.000000001", decimals: 9, want: 1},
		{name: "no float rounding", amount: "0.3", decimals: 18, want: 300_000_000_000_000_000},
		{name: "fraction beyond decimals", amount: "1.5", decimals: 0, wantErr: ErrSupplyFractional},
		{name: "negative", amount: "-1", decimals: 0, wantErr: ErrSupplyNegative},
		{name: "empty", amount: "", decimals: 0, wantErr: ErrSupplyNotNumber},
		{name: "overflow", amount: "18446744073709551616", decimals: 0, wantErr: ErrSupplyOverflow},
		{name: "exponent notation", amount: "1e3", decimals: 0, wantErr: ErrSupplyNotNumber},
		{name: "negative exponent uppercase", amount: "1E-2", decimals: 9, wantErr: ErrSupplyNotNumber},
		{name: "max u64", amount: "18446744073709551615", decimals: 0, want: 18446744073709551615},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BaseUnits(tt.amount, tt.decimals)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateAmount_RejectsExponent(t *testing.T) {
	_, err := ValidateAmount("2e1", 6)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, InvalidAmount, ve.Kind)

	units, err := ValidateAmount("20", 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(20_000_000), units)
}
