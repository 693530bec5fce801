package money

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr error
	}{
		{in: "1", want: 100},
		{in: "1.0", want: 100},
		{in: "1.23", want: 123},
		{in: " 2.50 ", want: 250},
		{in: "0.01", want: 1},
		{in: "100.00", want: 10000},
		{in: "1.230", want: 123},
		{in: "-0.5", want: -50},
		{in: "1.005", wantErr: ErrInvalidAmount},
		{in: "abc", wantErr: ErrInvalidAmount},
		{in: "", wantErr: ErrInvalidAmount},
		{in: "99999999999999999999", wantErr: ErrAmountOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Minor())
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		minor int64
		want  string
	}{
		{0, "0.00"},
		{1, "0.01"},
		{10000, "100.00"},
		{10003, "100.03"},
		{-250, "-2.50"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FromMinor(tt.minor).String())
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name          string
		total         int64
		n             int
		wantBase      int64
		wantRemainder int64
	}{
		{"hundred three ways", 10000, 3, 3333, 1},
		{"ninety four ways", 9000, 4, 2250, 0},
		{"remainder three", 10003, 4, 2500, 3},
		{"single share", 777, 1, 777, 0},
		{"fewer cents than shares", 2, 5, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, rem, err := FromMinor(tt.total).Split(tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBase, base.Minor())
			assert.Equal(t, tt.wantRemainder, rem)
			assert.Equal(t, tt.total, base.Minor()*int64(tt.n)+rem)
		})
	}

	_, _, err := FromMinor(100).Split(0)
	assert.ErrorIs(t, err, ErrInvalidDivisor)
}

func TestArithmetic(t *testing.T) {
	a := MustParse("10.25")
	b := MustParse("0.75")

	assert.Equal(t, "11.00", a.Add(b).String())
	assert.Equal(t, "9.50", a.Sub(b).String())
	assert.True(t, b.Sub(a).IsNegative())
	assert.True(t, Sum(a, b, b).Equal(MustParse("11.75")))
	assert.True(t, Zero.IsZero())
	assert.False(t, Zero.IsPositive())
}

func TestJSON(t *testing.T) {
	type payload struct {
		Amount Money `json:"amount"`
	}

	data, err := json.Marshal(payload{Amount: FromMinor(10003)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"100.03"}`, string(data))

	var fromString payload
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"12.34"}`), &fromString))
	assert.Equal(t, int64(1234), fromString.Amount.Minor())

	var fromNumber payload
	require.NoError(t, json.Unmarshal([]byte(`{"amount":90}`), &fromNumber))
	assert.Equal(t, int64(9000), fromNumber.Amount.Minor())

	var bad payload
	assert.Error(t, json.Unmarshal([]byte(`{"amount":"1.999"}`), &bad))
}
