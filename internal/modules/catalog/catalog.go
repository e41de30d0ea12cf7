package catalog

// Key identifies an instrument in the ETF universe.
type Key string

// Equity region keys
const (
	NorthAmerica    Key = "north_america"
	Europe          Key = "europe"
	EmergingMarkets Key = "emerging_markets"
	SmallCaps       Key = "small_caps"
	Japan           Key = "japan"
	PacificExJapan  Key = "pacific_ex_jp"
)

// Reserve component keys
const (
	InflationLinked Key = "inflation_linked"
	MoneyMarket     Key = "money_market"
	Gold            Key = "gold"
	Cash            Key = "cash"
)

// Simplified model keys
const (
	ACWIIMI Key = "acwi_imi"
)

// Instrument describes a single ETF in the universe.
type Instrument struct {
	Key    Key     `json:"key" toml:"key"`
	Name   string  `json:"name" toml:"name"`
	ISIN   string  `json:"isin" toml:"isin"`
	Ticker string  `json:"ticker" toml:"ticker"`
	TER    float64 `json:"ter" toml:"ter"`     // annual cost as a fraction, e.g. 0.0007
	Index  string  `json:"index" toml:"index"` // tracked index
}

// SimpleInstrument is an entry in the simplified 3-ETF model. Weight is the
// baseline portfolio weight under the normal 80/20 regime.
type SimpleInstrument struct {
	Instrument
	Weight float64 `json:"weight" toml:"weight"`
}

// Catalog holds the instrument universe and the default weight groups.
// It is built once at startup and treated as immutable afterwards.
type Catalog struct {
	instruments map[Key]Instrument

	equityOrder  []Key
	reserveOrder []Key
	simpleOrder  []Key

	equityWeights  map[Key]float64
	reserveWeights map[Key]float64
	simple         map[Key]SimpleInstrument
}

// Default returns the built-in catalog: the UCITS ETF universe with the
// equal-value regional weights and the standard reserve composition.
func Default() *Catalog {
	return &Catalog{
		instruments: map[Key]Instrument{
			NorthAmerica: {
				Key:    NorthAmerica,
				Name:   "iShares Core S&P 500 UCITS ETF",
				ISIN:   "IE00B5BMR087",
				Ticker: "SXR8.DE",
				TER:    0.0007,
				Index:  "S&P 500",
			},
			Europe: {
				Key:    Europe,
				Name:   "Lyxor Core STOXX Europe 600 UCITS ETF",
				ISIN:   "LU0908500753",
				Ticker: "MEUD.PA",
				TER:    0.0007,
				Index:  "STOXX Europe 600",
			},
			EmergingMarkets: {
				Key:    EmergingMarkets,
				Name:   "iShares Core MSCI EM IMI UCITS ETF",
				ISIN:   "IE00BKM4GZ66",
				Ticker: "IS3N.DE",
				TER:    0.0018,
				Index:  "MSCI EM IMI",
			},
			SmallCaps: {
				Key:    SmallCaps,
				Name:   "iShares MSCI World Small Cap UCITS ETF",
				ISIN:   "IE00BF4RFH31",
				Ticker: "IUSN.DE",
				TER:    0.0035,
				Index:  "MSCI World Small Cap",
			},
			Japan: {
				Key:    Japan,
				Name:   "Amundi Prime Japan UCITS ETF",
				ISIN:   "LU1931974775",
				Ticker: "PRIJ.DE",
				TER:    0.0005,
				Index:  "MSCI Japan",
			},
			PacificExJapan: {
				Key:    PacificExJapan,
				Name:   "iShares MSCI Pacific ex-Japan UCITS ETF",
				ISIN:   "IE00B52MJY50",
				Ticker: "IQQP.DE",
				TER:    0.0020,
				Index:  "MSCI Pacific ex-Japan",
			},
			InflationLinked: {
				Key:    InflationLinked,
				Name:   "iShares Euro Inflation Linked Govt Bond UCITS ETF",
				ISIN:   "IE00B0M62X26",
				Ticker: "IBCI.DE",
				TER:    0.0020,
				Index:  "Bloomberg Euro Govt Inflation-Linked",
			},
			MoneyMarket: {
				Key:    MoneyMarket,
				Name:   "Xtrackers II EUR Overnight Rate Swap UCITS ETF",
				ISIN:   "LU0290358497",
				Ticker: "XEON.DE",
				TER:    0.0010,
				Index:  "EUR Overnight Rate",
			},
			Gold: {
				Key:    Gold,
				Name:   "Xtrackers IE Physical Gold ETC",
				ISIN:   "DE000A2T0VU5",
				Ticker: "XAD5.DE",
				TER:    0.0015,
				Index:  "Gold Spot",
			},
		},
		equityOrder:  []Key{NorthAmerica, Europe, EmergingMarkets, SmallCaps, Japan, PacificExJapan},
		reserveOrder: []Key{InflationLinked, MoneyMarket, Gold, Cash},
		simpleOrder:  []Key{ACWIIMI, SmallCaps, Cash},
		equityWeights: map[Key]float64{
			NorthAmerica:    0.4848,
			Europe:          0.1615,
			EmergingMarkets: 0.0814,
			SmallCaps:       0.0777,
			Japan:           0.0587,
			PacificExJapan:  0.0175,
		},
		reserveWeights: map[Key]float64{
			InflationLinked: 0.50,
			MoneyMarket:     0.40,
			Gold:            0.05,
			Cash:            0.05,
		},
		simple: map[Key]SimpleInstrument{
			ACWIIMI: {
				Instrument: Instrument{
					Key:    ACWIIMI,
					Name:   "SPDR MSCI ACWI IMI UCITS ETF",
					ISIN:   "IE00B3YLTY66",
					Ticker: "SPYI.DE",
					TER:    0.0017,
				},
				Weight: 0.70,
			},
			SmallCaps: {
				Instrument: Instrument{
					Key:    SmallCaps,
					Name:   "iShares MSCI World Small Cap UCITS ETF",
					ISIN:   "IE00BF4RFH31",
					Ticker: "IUSN.DE",
					TER:    0.0035,
				},
				Weight: 0.10,
			},
			Cash: {
				Instrument: Instrument{
					Key:    Cash,
					Name:   "High-Yield Savings / Money Market",
					ISIN:   "N/A",
					Ticker: "N/A",
					TER:    0.0,
				},
				Weight: 0.20,
			},
		},
	}
}

// Lookup returns the instrument for a key, or false when the key is not in
// the universe.
func (c *Catalog) Lookup(key Key) (Instrument, bool) {
	inst, ok := c.instruments[key]
	return inst, ok
}

// Keys returns every key in the universe in declared order, equity regions
// before reserve components.
func (c *Catalog) Keys() []Key {
	out := make([]Key, 0, len(c.equityOrder)+len(c.reserveOrder))
	out = append(out, c.equityOrder...)
	out = append(out, c.reserveOrder...)
	return out
}

// EquityKeys returns the equity region keys in declared order.
func (c *Catalog) EquityKeys() []Key {
	return append([]Key(nil), c.equityOrder...)
}

// ReserveKeys returns the reserve component keys in declared order.
func (c *Catalog) ReserveKeys() []Key {
	return append([]Key(nil), c.reserveOrder...)
}

// SimpleKeys returns the simplified-model keys in declared order.
func (c *Catalog) SimpleKeys() []Key {
	return append([]Key(nil), c.simpleOrder...)
}

// SimpleLookup returns the simplified-model entry for a key.
func (c *Catalog) SimpleLookup(key Key) (SimpleInstrument, bool) {
	inst, ok := c.simple[key]
	return inst, ok
}

// EquityWeights returns a copy of the default equity region weights.
func (c *Catalog) EquityWeights() map[Key]float64 {
	return copyWeights(c.equityWeights)
}

// ReserveWeights returns a copy of the default reserve component weights.
func (c *Catalog) ReserveWeights() map[Key]float64 {
	return copyWeights(c.reserveWeights)
}

// Instruments returns all full-model instruments keyed by instrument key.
func (c *Catalog) Instruments() map[Key]Instrument {
	out := make(map[Key]Instrument, len(c.instruments))
	for k, v := range c.instruments {
		out[k] = v
	}
	return out
}

// SimpleInstruments returns the simplified-model table keyed by instrument key.
func (c *Catalog) SimpleInstruments() map[Key]SimpleInstrument {
	out := make(map[Key]SimpleInstrument, len(c.simple))
	for k, v := range c.simple {
		out[k] = v
	}
	return out
}

func copyWeights(src map[Key]float64) map[Key]float64 {
	out := make(map[Key]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
