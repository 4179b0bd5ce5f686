package pricing

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSellPricing_SkinResolution(t *testing.T) {
	p := New()
	p.SetBasePrice("rifle.ak", d("10"))
	p.SetSkinMultiplier("rifle.ak", d("2"))
	p.SetSkinOverride("rifle.ak", 555, d("7"))

	price, ok := p.TryGetSellPrice("rifle.ak", 0)
	require.True(t, ok)
	assert.True(t, price.Equal(d("10")))

	price, _ = p.TryGetSellPrice("rifle.ak", 555)
	assert.True(t, price.Equal(d("7")), "override wins")

	price, _ = p.TryGetSellPrice("rifle.ak", 42)
	assert.True(t, price.Equal(d("20")), "base times multiplier")

	_, ok = p.TryGetSellPrice("unknown", 0)
	assert.False(t, ok)
}

func TestSellPricing_TryAddDoesNotOverwrite(t *testing.T) {
	p := New()
	assert.True(t, p.TryAdd("wood", d("1")))
	assert.False(t, p.TryAdd("wood", d("5")))

	info, ok := p.Info("wood")
	require.True(t, ok)
	assert.True(t, info.Price.Equal(d("1")))
	assert.True(t, info.SkinMultiplier.Equal(DefaultSkinMultiplier))
}

func TestSellPricing_SkinZeroSetsBase(t *testing.T) {
	p := New()
	p.SetSkinOverride("stones", 0, d("3"))

	info, _ := p.Info("stones")
	assert.True(t, info.Price.Equal(d("3")))
	assert.Empty(t, info.SkinOverrides)
}

func TestSellPricing_MultiplierCreatesEntry(t *testing.T) {
	p := New()
	p.SetSkinMultiplier("metal.fragments", d("3"))

	info, ok := p.Info("metal.fragments")
	require.True(t, ok)
	assert.True(t, info.Price.IsZero())
	assert.True(t, info.SkinMultiplier.Equal(d("3")))
}

func TestSellPricing_Reconcile(t *testing.T) {
	p := New()
	p.SetBasePrice("wood", d("2"))

	assert.True(t, p.Reconcile([]string{"wood", "stones"}))
	assert.False(t, p.Reconcile([]string{"wood", "stones"}))
	assert.Equal(t, []string{"stones", "wood"}, p.Shortnames())

	price, _ := p.TryGetSellPrice("wood", 0)
	assert.True(t, price.Equal(d("2")))
}

func TestUnitSellPriceAndTotal(t *testing.T) {
	unit := UnitSellPrice(d("10"), 0.875)
	assert.True(t, unit.Equal(d("8.75")))
	assert.Equal(t, 26, SaleTotal(unit, 3))

	assert.Equal(t, 2, SaleTotal(d("0.5"), 5), "2.5 rounds to even")
	assert.Equal(t, 4, SaleTotal(d("0.5"), 7), "3.5 rounds to even")
	assert.Equal(t, 0, SaleTotal(d("0.1"), 1))
}

func TestSellPricing_JSONRoundTrip(t *testing.T) {
	p := New()
	p.SetBasePrice("rifle.ak", d("10"))
	p.SetSkinOverride("rifle.ak", 99, d("12.5"))

	data, err := json.Marshal(p)
	require.NoError(t, err)

	restored := New()
	require.NoError(t, json.Unmarshal(data, restored))
	price, ok := restored.TryGetSellPrice("rifle.ak", 99)
	require.True(t, ok)
	assert.True(t, price.Equal(d("12.5")))
}
