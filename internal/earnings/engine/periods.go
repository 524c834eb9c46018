package engine

import (
	"time"

	"parcel-hub/internal/earnings/domain"
)

// PeriodAggregator buckets completed deliveries into reporting windows and
// folds the earnings calculation across each bucket.
type PeriodAggregator struct {
	calculator *EarningsCalculator
}

func NewPeriodAggregator(calculator *EarningsCalculator) *PeriodAggregator {
	return &PeriodAggregator{calculator: calculator}
}

// PeriodBuckets holds the delivered subsets for the three standard windows.
// The buckets are not mutually exclusive: today is expected to be a subset
// of week, and week of month.
type PeriodBuckets struct {
	Today []domain.DeliveryRecord
	Week  []domain.DeliveryRecord
	Month []domain.DeliveryRecord
}

// Bucket selects the delivered records whose reference timestamp falls in
// each window: today since local midnight, week as a rolling 7x24h window,
// month since the first of the calendar month. Deliveries without any
// parseable timestamp are excluded from every bucket.
func (a *PeriodAggregator) Bucket(deliveries []domain.DeliveryRecord, now time.Time) PeriodBuckets {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := now.Add(-7 * 24 * time.Hour)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var buckets PeriodBuckets
	for _, d := range deliveries {
		if d.Status != domain.StatusDelivered {
			continue
		}
		ref := d.ReferenceTime()
		if !ref.Present() {
			continue
		}

		if !ref.Time.Before(midnight) {
			buckets.Today = append(buckets.Today, d)
		}
		if !ref.Time.Before(weekStart) {
			buckets.Week = append(buckets.Week, d)
		}
		if !ref.Time.Before(monthStart) {
			buckets.Month = append(buckets.Month, d)
		}
	}
	return buckets
}

// SinceDays returns the deliveries whose reference timestamp falls within
// the last n days, regardless of status. Performance analytics needs the
// failed and cancelled ones too, so this filters by time only.
func (a *PeriodAggregator) SinceDays(deliveries []domain.DeliveryRecord, now time.Time, n int) []domain.DeliveryRecord {
	cutoff := now.Add(-time.Duration(n) * 24 * time.Hour)

	var window []domain.DeliveryRecord
	for _, d := range deliveries {
		ref := d.ReferenceTime()
		if !ref.Present() {
			continue
		}
		if !ref.Time.Before(cutoff) {
			window = append(window, d)
		}
	}
	return window
}

// Fold computes a bucket's earnings, item count and total distance.
func (a *PeriodAggregator) Fold(bucket []domain.DeliveryRecord, tiers []domain.DriverPricingTier) (domain.PeriodEarnings, []SkippedItem) {
	var period domain.PeriodEarnings
	var skipped []SkippedItem

	for i := range bucket {
		earned := a.calculator.DeliveryEarning(&bucket[i], tiers)
		period.Amount += earned.Amount
		period.Deliveries += earned.ItemCount
		period.Distance += earned.DistanceKm
		skipped = append(skipped, earned.Skipped...)
	}
	return period, skipped
}

// Summarize builds the full earnings summary for a driver's deliveries.
// Skips are deduplicated across buckets (a rolling week can reach into the
// previous calendar month, so no single bucket covers the others).
func (a *PeriodAggregator) Summarize(deliveries []domain.DeliveryRecord, tiers []domain.DriverPricingTier, now time.Time) (domain.EarningsSummary, []SkippedItem) {
	buckets := a.Bucket(deliveries, now)

	var summary domain.EarningsSummary
	var todaySkips, weekSkips, monthSkips []SkippedItem
	summary.Today, todaySkips = a.Fold(buckets.Today, tiers)
	summary.Week, weekSkips = a.Fold(buckets.Week, tiers)
	summary.Month, monthSkips = a.Fold(buckets.Month, tiers)

	seen := make(map[string]struct{})
	var skipped []SkippedItem
	for _, s := range [][]SkippedItem{todaySkips, weekSkips, monthSkips} {
		for _, item := range s {
			key := item.DeliveryID + "/" + item.ParcelID
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			skipped = append(skipped, item)
		}
	}

	return summary, skipped
}
