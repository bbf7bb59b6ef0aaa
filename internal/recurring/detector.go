// Package recurring detects repeating card charges in a snapshot of transactions.
//
// Transactions are grouped by merchant name, and a group is reported only when every
// amount sits close to the group average. Groups with one outlier are dropped whole,
// never partially matched.
package recurring

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/bankpulse/internal/model"
	"github.com/montanaflynn/stats"
	"github.com/sourcegraph/conc/iter"
)

// Charge is a recurring charge derived from one merchant's transactions.
type Charge struct {
	NextDate            time.Time `json:"projected_next_date"`
	LastDate            time.Time `json:"last_date"`
	Merchant            string    `json:"merchant"`
	Frequency           Frequency `json:"frequency"`
	TransactionIDs      []string  `json:"transaction_ids"`
	AverageAmount       float64   `json:"average_amount"`
	TotalPaid           float64   `json:"total_paid"`
	AverageIntervalDays float64   `json:"average_interval_days"`
	OccurrenceCount     int       `json:"occurrence_count"`
}

// Options tunes the detector. The defaults are the long-standing heuristics;
// the tolerance and gap thresholds carry no deeper domain meaning.
type Options struct {
	Buckets []Bucket
	// AmountTolerance is the maximum relative deviation from the group average.
	// Zero requires identical amounts; a negative value selects the default.
	AmountTolerance float64
	// MinOccurrences is the smallest group size that can form a pattern.
	MinOccurrences int
	// Workers evaluates merchant groups concurrently when greater than 1.
	Workers int
	// FoldMerchantCase groups merchants by trimmed, lower-cased name.
	FoldMerchantCase bool
}

// DefaultOptions returns the standard detector settings.
func DefaultOptions() Options {
	return Options{
		AmountTolerance: 0.10,
		MinOccurrences:  2,
		Buckets:         DefaultBuckets(),
		Workers:         1,
	}
}

// Detector finds recurring charges. It holds no state between calls.
type Detector struct {
	opts Options
}

// NewDetector creates a detector, filling unset options with defaults.
func NewDetector(opts Options) *Detector {
	defaults := DefaultOptions()
	if opts.AmountTolerance < 0 {
		opts.AmountTolerance = defaults.AmountTolerance
	}
	if opts.MinOccurrences < 2 {
		opts.MinOccurrences = defaults.MinOccurrences
	}
	if len(opts.Buckets) == 0 {
		opts.Buckets = defaults.Buckets
	}
	if opts.Workers < 1 {
		opts.Workers = defaults.Workers
	}
	return &Detector{opts: opts}
}

// Detect runs the default detector over transactions.
func Detect(transactions []model.Transaction) []Charge {
	return NewDetector(DefaultOptions()).Detect(transactions)
}

// merchantGroup holds one merchant's qualifying transactions.
type merchantGroup struct {
	key  string
	txns []model.Transaction
}

// Detect returns recurring charges sorted by average amount, largest first.
// It never fails; empty input yields an empty slice.
func (d *Detector) Detect(transactions []model.Transaction) []Charge {
	groups := d.group(transactions)

	var evaluated []*Charge
	if d.opts.Workers > 1 && len(groups) > 1 {
		mapper := iter.Mapper[merchantGroup, *Charge]{MaxGoroutines: d.opts.Workers}
		evaluated = mapper.Map(groups, func(g *merchantGroup) *Charge {
			return d.evaluate(g.txns)
		})
	} else {
		evaluated = make([]*Charge, 0, len(groups))
		for i := range groups {
			evaluated = append(evaluated, d.evaluate(groups[i].txns))
		}
	}

	charges := make([]Charge, 0, len(evaluated))
	for _, c := range evaluated {
		if c != nil {
			charges = append(charges, *c)
		}
	}

	sort.Slice(charges, func(i, j int) bool {
		if charges[i].AverageAmount != charges[j].AverageAmount {
			return charges[i].AverageAmount > charges[j].AverageAmount
		}
		return charges[i].Merchant < charges[j].Merchant
	})

	return charges
}

// group filters to completed purchases and buckets them by merchant.
func (d *Detector) group(transactions []model.Transaction) []merchantGroup {
	index := make(map[string]int)
	var groups []merchantGroup

	for _, txn := range transactions {
		if !txn.IsCompletedPurchase() {
			continue
		}
		key := txn.MerchantName
		if d.opts.FoldMerchantCase {
			key = strings.ToLower(strings.TrimSpace(key))
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, merchantGroup{key: key})
		}
		groups[i].txns = append(groups[i].txns, txn)
	}

	qualifying := groups[:0]
	for _, g := range groups {
		if len(g.txns) >= d.opts.MinOccurrences {
			qualifying = append(qualifying, g)
		}
	}
	return qualifying
}

// evaluate returns nil when the group does not form a regular pattern.
func (d *Detector) evaluate(txns []model.Transaction) *Charge {
	sorted := make([]model.Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	amounts := make(stats.Float64Data, len(sorted))
	ids := make([]string, len(sorted))
	for i, txn := range sorted {
		amounts[i] = math.Abs(txn.Amount)
		ids[i] = txn.ID
	}

	average, err := stats.Mean(amounts)
	if err != nil {
		return nil
	}
	for _, amount := range amounts {
		if math.Abs(amount-average) > d.opts.AmountTolerance*average {
			return nil
		}
	}

	gaps := make(stats.Float64Data, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, daysBetween(sorted[i-1].Date, sorted[i].Date))
	}
	averageGap, err := stats.Mean(gaps)
	if err != nil {
		return nil
	}

	total, err := stats.Sum(amounts)
	if err != nil {
		return nil
	}

	last := sorted[len(sorted)-1]
	return &Charge{
		Merchant:            last.MerchantName,
		AverageAmount:       average,
		Frequency:           Classify(averageGap, d.opts.Buckets),
		OccurrenceCount:     len(sorted),
		TotalPaid:           total,
		AverageIntervalDays: averageGap,
		LastDate:            last.Date,
		NextDate:            addDays(last.Date, averageGap),
		TransactionIDs:      ids,
	}
}

// daysBetween measures in Unix seconds so spans beyond time.Duration's
// ~292 year range do not saturate.
func daysBetween(from, to time.Time) float64 {
	seconds := to.Unix() - from.Unix()
	nanos := to.Nanosecond() - from.Nanosecond()
	return (float64(seconds) + float64(nanos)/1e9) / 86400
}

// addDays moves t forward by whole calendar days, then by the fractional remainder.
func addDays(t time.Time, days float64) time.Time {
	whole := math.Floor(days)
	return t.AddDate(0, 0, int(whole)).Add(time.Duration((days - whole) * float64(24*time.Hour)))
}
