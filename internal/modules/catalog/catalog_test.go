package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogCoversAllKeys(t *testing.T) {
	cat := Default()

	for _, key := range cat.EquityKeys() {
		inst, ok := cat.Lookup(key)
		require.True(t, ok, "equity key %s missing from universe", key)
		assert.NotEmpty(t, inst.Name)
		assert.NotEmpty(t, inst.ISIN)
	}

	for _, key := range cat.ReserveKeys() {
		if key == Cash {
			continue // synthetic, not an ETF
		}
		_, ok := cat.Lookup(key)
		require.True(t, ok, "reserve key %s missing from universe", key)
	}
}

func TestDefaultWeightSums(t *testing.T) {
	cat := Default()

	equitySum := 0.0
	for _, w := range cat.EquityWeights() {
		equitySum += w
	}
	// The published regional weights do not sum to exactly 1; the allocator
	// normalizes them.
	assert.InDelta(t, 0.8816, equitySum, 1e-9)

	reserveSum := 0.0
	for _, w := range cat.ReserveWeights() {
		reserveSum += w
	}
	assert.InDelta(t, 1.0, reserveSum, 1e-9)
}

func TestWeightsAccessorsReturnCopies(t *testing.T) {
	cat := Default()

	weights := cat.EquityWeights()
	weights[NorthAmerica] = 0.99

	fresh := cat.EquityWeights()
	assert.InDelta(t, 0.4848, fresh[NorthAmerica], 1e-9, "mutating a returned map must not change the catalog")
}

func TestSimpleModelOrder(t *testing.T) {
	cat := Default()

	keys := cat.SimpleKeys()
	require.Equal(t, []Key{ACWIIMI, SmallCaps, Cash}, keys)

	acwi, ok := cat.SimpleLookup(ACWIIMI)
	require.True(t, ok)
	assert.InDelta(t, 0.70, acwi.Weight, 1e-9)
}

func TestLoaderNoPath(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	cat, err := loader.Load("")
	require.NoError(t, err)
	assert.InDelta(t, 0.4848, cat.EquityWeights()[NorthAmerica], 1e-9)
}

func TestLoaderOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.toml")

	content := `
[equity_weights]
north_america = 0.5
europe = 0.5

[[instruments]]
key = "gold"
name = "Some Other Gold ETC"
isin = "DE0000000001"
ticker = "GLD.DE"
ter = 0.0012
index = "Gold Spot"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	loader := NewLoader(zerolog.Nop())
	cat, err := loader.Load(path)
	require.NoError(t, err)

	weights := cat.EquityWeights()
	assert.InDelta(t, 0.5, weights[NorthAmerica], 1e-9)
	assert.InDelta(t, 0.5, weights[Europe], 1e-9)
	assert.Len(t, weights, 2, "override replaces the whole group")

	gold, ok := cat.Lookup(Gold)
	require.True(t, ok)
	assert.Equal(t, "Some Other Gold ETC", gold.Name)
	assert.InDelta(t, 0.0012, gold.TER, 1e-9)
}

func TestLoaderPartialInstrumentOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.toml")

	// A row that only changes the TER keeps every other built-in field
	content := `
[[instruments]]
key = "gold"
ter = 0.0012
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	loader := NewLoader(zerolog.Nop())
	cat, err := loader.Load(path)
	require.NoError(t, err)

	gold, ok := cat.Lookup(Gold)
	require.True(t, ok)
	assert.InDelta(t, 0.0012, gold.TER, 1e-9)
	assert.Equal(t, "Xtrackers IE Physical Gold ETC", gold.Name)
	assert.Equal(t, "DE000A2T0VU5", gold.ISIN)
	assert.Equal(t, "Gold Spot", gold.Index)
}

func TestLoaderRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{
			name: "unknown weight key",
			content: `
[equity_weights]
atlantis = 1.0
`,
		},
		{
			name: "unknown instrument key",
			content: `
[[instruments]]
key = "atlantis"
name = "Atlantis Total Market"
isin = "XX0000000000"
ticker = "ATL.DE"
ter = 0.001
index = "Atlantis All Share"
`,
		},
		{
			name: "negative weight",
			content: `
[reserve_weights]
gold = -0.5
`,
		},
	}

	loader := NewLoader(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := loader.Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoaderMissingFile(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	_, err := loader.Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
