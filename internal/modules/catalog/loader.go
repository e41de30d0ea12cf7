package catalog

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// fileConfig mirrors the optional catalog override file. Every section is
// optional; anything absent keeps its built-in value.
type fileConfig struct {
	Instruments    []Instrument        `toml:"instruments"`
	EquityWeights  map[string]float64  `toml:"equity_weights"`
	ReserveWeights map[string]float64  `toml:"reserve_weights"`
}

// Loader reads catalog overrides from a TOML file.
type Loader struct {
	log zerolog.Logger
}

// NewLoader creates a new catalog loader.
func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{
		log: log.With().Str("component", "catalog_loader").Logger(),
	}
}

// Load returns the default catalog with any overrides from path applied.
// An empty path returns the built-in catalog unchanged.
func (l *Loader) Load(path string) (*Catalog, error) {
	cat := Default()

	if path == "" {
		return cat, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("catalog file not found: %s", path)
	}

	var cfg fileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse catalog TOML: %w", err)
	}

	// Instrument rows may only refine instruments already in the universe.
	// Unknown keys are rejected here instead of being dropped silently.
	for _, inst := range cfg.Instruments {
		existing, ok := cat.instruments[inst.Key]
		if !ok {
			return nil, fmt.Errorf("unknown instrument key in catalog file: %s", inst.Key)
		}
		cat.instruments[inst.Key] = mergeInstrument(existing, inst)
	}

	if len(cfg.EquityWeights) > 0 {
		weights, err := cat.toKnownWeights(cfg.EquityWeights, cat.equityOrder)
		if err != nil {
			return nil, fmt.Errorf("equity_weights: %w", err)
		}
		cat.equityWeights = weights
	}

	if len(cfg.ReserveWeights) > 0 {
		weights, err := cat.toKnownWeights(cfg.ReserveWeights, cat.reserveOrder)
		if err != nil {
			return nil, fmt.Errorf("reserve_weights: %w", err)
		}
		cat.reserveWeights = weights
	}

	l.log.Info().
		Str("path", path).
		Int("instrument_overrides", len(cfg.Instruments)).
		Msg("Catalog overrides loaded")

	return cat, nil
}

// mergeInstrument overlays the non-zero fields of an override row onto the
// built-in instrument, so a partial row keeps the fields it omits.
func mergeInstrument(base, override Instrument) Instrument {
	if override.Name != "" {
		base.Name = override.Name
	}
	if override.ISIN != "" {
		base.ISIN = override.ISIN
	}
	if override.Ticker != "" {
		base.Ticker = override.Ticker
	}
	if override.TER != 0 {
		base.TER = override.TER
	}
	if override.Index != "" {
		base.Index = override.Index
	}
	return base
}

// toKnownWeights validates that every weight key belongs to the given group.
func (c *Catalog) toKnownWeights(src map[string]float64, allowed []Key) (map[Key]float64, error) {
	known := make(map[Key]bool, len(allowed))
	for _, k := range allowed {
		known[k] = true
	}

	out := make(map[Key]float64, len(src))
	for k, v := range src {
		key := Key(k)
		if !known[key] {
			return nil, fmt.Errorf("unknown key %q", k)
		}
		if v < 0 {
			return nil, fmt.Errorf("negative weight for %q", k)
		}
		out[key] = v
	}
	return out, nil
}
