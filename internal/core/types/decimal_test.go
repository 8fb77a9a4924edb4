package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "whole units", in: "2", want: "2"},
		{name: "fractional kilograms", in: "1.25", want: "1.25"},
		{name: "zero", in: "0", wantErr: true},
		{name: "negative", in: "-1", wantErr: true},
		{name: "too precise", in: "0.125", wantErr: true},
		{name: "garbage", in: "two", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuantity(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(MustDecimal(tt.want)), "got %s", got)
		})
	}
}

func TestLineTotal(t *testing.T) {
	assert.Equal(t, "200", LineTotal(MustDecimal("2"), MustDecimal("100.00")).String())
	assert.Equal(t, "18.75", LineTotal(MustDecimal("1.5"), MustDecimal("12.50")).String())
	// 0.33 kg at 9.99 = 3.2967 -> 3.30
	assert.Equal(t, "3.3", LineTotal(MustDecimal("0.33"), MustDecimal("9.99")).String())
}

func TestSum(t *testing.T) {
	got := Sum(MustDecimal("0.1"), MustDecimal("0.2"), MustDecimal("0.3"))
	assert.True(t, got.Equal(MustDecimal("0.6")))
	assert.True(t, Sum().IsZero())
}
