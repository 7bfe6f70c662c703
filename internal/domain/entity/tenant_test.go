package entity

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantSettingsWithDefaults(t *testing.T) {
	defaults := DefaultTenantSettings()

	filled := TenantSettings{Currency: "EUR"}.WithDefaults(defaults)
	assert.Equal(t, "EUR", filled.Currency)
	assert.Equal(t, "VAT", filled.TaxLabel)
	assert.Equal(t, "QUO-", filled.QuotePrefix)
	assert.Equal(t, 30, filled.QuoteValidityDays)
	assert.True(t, filled.TaxRate.Decimal.Equal(decimal.NewFromInt(25)))

	// an explicit zero rate is a real setting
	zero := TenantSettings{TaxRate: decimal.NewNullDecimal(decimal.Zero)}.WithDefaults(defaults)
	assert.True(t, zero.TaxRate.Valid)
	assert.True(t, zero.TaxRate.Decimal.IsZero())
}

func TestTenantSettingsScanValue(t *testing.T) {
	in := DefaultTenantSettings()
	in.Address = "Storgatan 1"

	raw, err := in.Value()
	require.NoError(t, err)

	var out TenantSettings
	require.NoError(t, out.Scan(raw))
	assert.Equal(t, "Storgatan 1", out.Address)
	assert.True(t, out.TaxRate.Decimal.Equal(decimal.NewFromInt(25)))

	require.NoError(t, out.Scan(string(raw.([]byte))))
	require.NoError(t, out.Scan(nil))
	assert.Equal(t, TenantSettings{}, out)
	assert.Error(t, out.Scan(42))

	var asJSON map[string]interface{}
	require.NoError(t, json.Unmarshal(raw.([]byte), &asJSON))
	assert.Equal(t, "SEK", asJSON["currency"])
}
