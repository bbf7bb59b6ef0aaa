package recurring

import "math"

// Frequency labels how often a recurring charge repeats.
type Frequency string

const (
	// FrequencyWeekly covers average gaps under 10 days.
	FrequencyWeekly Frequency = "Weekly"
	// FrequencyMonthly covers average gaps under 35 days.
	FrequencyMonthly Frequency = "Monthly"
	// FrequencyQuarterly covers average gaps under 100 days.
	FrequencyQuarterly Frequency = "Quarterly"
	// FrequencyYearly covers everything longer.
	FrequencyYearly Frequency = "Yearly"
	// FrequencyUnknown is used when no interval can be classified.
	FrequencyUnknown Frequency = "Unknown"
)

// Bucket maps average gaps strictly below MaxDays to a Frequency.
type Bucket struct {
	Frequency Frequency
	MaxDays   float64
}

// DefaultBuckets returns the gap table, ordered by MaxDays ascending.
// Sub-day gaps fall in the first bucket; there is no lower bound.
func DefaultBuckets() []Bucket {
	return []Bucket{
		{MaxDays: 10, Frequency: FrequencyWeekly},
		{MaxDays: 35, Frequency: FrequencyMonthly},
		{MaxDays: 100, Frequency: FrequencyQuarterly},
		{MaxDays: math.Inf(1), Frequency: FrequencyYearly},
	}
}

// Classify returns the first bucket whose MaxDays exceeds gapDays.
func Classify(gapDays float64, buckets []Bucket) Frequency {
	if math.IsNaN(gapDays) {
		return FrequencyUnknown
	}
	for _, b := range buckets {
		if gapDays < b.MaxDays {
			return b.Frequency
		}
	}
	return FrequencyUnknown
}

// periodsPerYear is used to normalise a charge to a monthly cost.
func (f Frequency) periodsPerYear() float64 {
	switch f {
	case FrequencyWeekly:
		return 52
	case FrequencyMonthly:
		return 12
	case FrequencyQuarterly:
		return 4
	case FrequencyYearly:
		return 1
	default:
		return 0
	}
}
