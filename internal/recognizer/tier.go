package recognizer

// Tier is a display bucket for a confidence value.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// TierFor classifies a confidence percentage.
func TierFor(confidence int) Tier {
	switch {
	case confidence >= 90:
		return TierHigh
	case confidence >= 70:
		return TierMedium
	default:
		return TierLow
	}
}
