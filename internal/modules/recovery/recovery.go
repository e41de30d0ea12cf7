package recovery

import "math"

// Rally thresholds for stepping back out of crisis regimes. The second rally
// compounds on top of the first, not on the trough directly.
const (
	RallyCToB = 0.50 // +50% from trough exits regime C
	RallyBToA = 0.25 // further +25% exits regime B
)

// Levels holds the recovery price targets for the current drawdown episode.
// All fields except CurrentRegime are nil when the trough is unknown.
type Levels struct {
	CurrentRegime   string   `json:"current_regime"`
	TroughPrice     *float64 `json:"trough_price"`
	RegimeCToBPrice *float64 `json:"regime_c_to_b_price"`
	RegimeBToAPrice *float64 `json:"regime_b_to_a_price"`
	CurrentPrice    *float64 `json:"current_price"`
	ProgressToB     *float64 `json:"progress_to_b"` // 0-100, capped
	ProgressToA     *float64 `json:"progress_to_a"` // 0-100, capped
}

// Compute derives the price targets for each recovery phase from the trough
// of the current drawdown. A missing or non-positive trough yields a result
// with every threshold and progress field nil.
func Compute(currentRegime string, troughPrice, currentPrice *float64) Levels {
	if troughPrice == nil || *troughPrice <= 0 {
		return Levels{
			CurrentRegime: currentRegime,
			TroughPrice:   troughPrice,
			CurrentPrice:  currentPrice,
		}
	}

	trough := *troughPrice
	cToB := trough * (1 + RallyCToB)
	bToA := cToB * (1 + RallyBToA)

	var progressB, progressA *float64
	if currentPrice != nil && *currentPrice > trough {
		gained := *currentPrice - trough
		progressB = ptr(math.Min(100.0, round1(gained/(cToB-trough)*100)))
		progressA = ptr(math.Min(100.0, round1(gained/(bToA-trough)*100)))
	}

	levels := Levels{
		CurrentRegime:   currentRegime,
		TroughPrice:     ptr(round2(trough)),
		RegimeCToBPrice: ptr(round2(cToB)),
		RegimeBToAPrice: ptr(round2(bToA)),
		ProgressToB:     progressB,
		ProgressToA:     progressA,
	}
	// A non-positive current price means the quote is unknown
	if currentPrice != nil && *currentPrice > 0 {
		levels.CurrentPrice = ptr(round2(*currentPrice))
	}
	return levels
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ptr(v float64) *float64 {
	return &v
}
