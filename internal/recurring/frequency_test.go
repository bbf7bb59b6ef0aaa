package recurring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		gap  float64
		want Frequency
	}{
		{name: "zero gap", gap: 0, want: FrequencyWeekly},
		{name: "just under weekly bound", gap: 9.99, want: FrequencyWeekly},
		{name: "weekly bound is exclusive", gap: 10, want: FrequencyMonthly},
		{name: "monthly", gap: 30, want: FrequencyMonthly},
		{name: "monthly bound is exclusive", gap: 35, want: FrequencyQuarterly},
		{name: "quarterly", gap: 99.5, want: FrequencyQuarterly},
		{name: "yearly", gap: 100, want: FrequencyYearly},
		{name: "very long", gap: 1000, want: FrequencyYearly},
		{name: "undefined gap", gap: math.NaN(), want: FrequencyUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.gap, DefaultBuckets()))
		})
	}
}

func TestClassify_CustomTableWithoutCatchAll(t *testing.T) {
	buckets := []Bucket{{MaxDays: 8, Frequency: FrequencyWeekly}}
	assert.Equal(t, FrequencyWeekly, Classify(7, buckets))
	assert.Equal(t, FrequencyUnknown, Classify(30, buckets))
}

func TestSummarize(t *testing.T) {
	charges := []Charge{
		{Merchant: "Rent Co", AverageAmount: 1200, Frequency: FrequencyMonthly},
		{Merchant: "Cleaner", AverageAmount: 60, Frequency: FrequencyWeekly},
		{Merchant: "Insurance", AverageAmount: 300, Frequency: FrequencyQuarterly},
		{Merchant: "Domain", AverageAmount: 24, Frequency: FrequencyYearly},
		{Merchant: "Mystery", AverageAmount: 50, Frequency: FrequencyUnknown},
	}

	assert.InDelta(t, 260.0, MonthlyEquivalent(charges[1]), 1e-9)
	assert.InDelta(t, 100.0, MonthlyEquivalent(charges[2]), 1e-9)
	assert.InDelta(t, 2.0, MonthlyEquivalent(charges[3]), 1e-9)
	assert.Zero(t, MonthlyEquivalent(charges[4]))

	s := Summarize(charges)
	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 1562.0, s.MonthlyTotal, 1e-9)
	assert.InDelta(t, 18744.0, s.YearlyTotal, 1e-6)
}

func TestNewDetector_FillsDefaults(t *testing.T) {
	d := NewDetector(Options{AmountTolerance: -1})
	assert.InDelta(t, 0.10, d.opts.AmountTolerance, 1e-12)
	assert.Equal(t, 2, d.opts.MinOccurrences)
	assert.Equal(t, 1, d.opts.Workers)
	assert.Len(t, d.opts.Buckets, 4)

	assert.Zero(t, NewDetector(Options{}).opts.AmountTolerance)
}
