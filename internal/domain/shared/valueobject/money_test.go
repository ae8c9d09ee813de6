package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(decimal.NewFromFloat(125.50), USD)
	require.NoError(t, err)
	assert.Equal(t, "125.50", m.StringFixed(2))
	assert.Equal(t, USD, m.Currency())

	_, err = NewMoney(decimal.NewFromInt(1), "")
	assert.Error(t, err)
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyUSDFromFloat(100.25)
	b := NewMoneyUSDFromFloat(49.75)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "150.00", sum.StringFixed(2))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, "50.50", diff.StringFixed(2))

	product := a.MultiplyByInt(3)
	assert.Equal(t, "300.75", product.StringFixed(2))
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	usd := NewMoneyUSDFromFloat(10)
	cad, err := NewMoney(decimal.NewFromInt(10), CAD)
	require.NoError(t, err)

	_, err = usd.Add(cad)
	assert.Error(t, err)

	_, err = usd.Subtract(cad)
	assert.Error(t, err)

	_, err = usd.LessThan(cad)
	assert.Error(t, err)
}

func TestMoney_Round(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{"round half up", 81.255, "81.26"},
		{"round down", 81.254, "81.25"},
		{"no change", 81.25, "81.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMoneyUSDFromFloat(tt.amount).Round(2)
			assert.Equal(t, tt.expected, m.StringFixed(2))
		})
	}
}

func TestMoney_Min(t *testing.T) {
	a := NewMoneyUSDFromFloat(600)
	b := NewMoneyUSDFromFloat(812.50)

	capped, err := b.Min(a)
	require.NoError(t, err)
	assert.True(t, capped.Equals(a))

	uncapped, err := a.Min(b)
	require.NoError(t, err)
	assert.True(t, uncapped.Equals(a))
}

func TestMoney_Predicates(t *testing.T) {
	assert.True(t, ZeroUSD().IsZero())
	assert.True(t, NewMoneyUSDFromFloat(1).IsPositive())
	assert.True(t, NewMoneyUSDFromFloat(-1).IsNegative())
	assert.False(t, NewMoneyUSDFromFloat(-1).IsPositive())
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := NewMoneyUSDFromFloat(1234.56)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"1234.56","currency":"USD"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoney_Scan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("75.00"))
	assert.Equal(t, "75.00", m.StringFixed(2))
	assert.Equal(t, DefaultCurrency, m.Currency())

	var fromBytes Money
	require.NoError(t, fromBytes.Scan([]byte("-12.30")))
	assert.True(t, fromBytes.IsNegative())

	var fromNil Money
	require.NoError(t, fromNil.Scan(nil))
	assert.True(t, fromNil.IsZero())

	var bad Money
	assert.Error(t, bad.Scan(42))
}

func TestMoney_CalculatePercentage(t *testing.T) {
	m := NewMoneyUSDFromFloat(1000)
	tax := m.CalculatePercentage(decimal.NewFromFloat(8.75))
	assert.Equal(t, "87.50", tax.StringFixed(2))
}
