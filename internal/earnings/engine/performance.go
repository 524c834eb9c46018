package engine

import (
	"parcel-hub/internal/earnings/domain"
)

// PerformanceEngine derives windowed performance metrics from a delivery
// set that has already been filtered to a time window (see SinceDays).
// Every function is total: empty sets and missing timestamps yield zeroed
// metrics, never NaN and never an error.
type PerformanceEngine struct {
	calculator      *EarningsCalculator
	baselineMinutes float64
}

func NewPerformanceEngine(calculator *EarningsCalculator, baselineMinutes float64) *PerformanceEngine {
	if baselineMinutes <= 0 {
		baselineMinutes = DefaultFallbackPolicy().BaselineMinutesPerDelivery
	}
	return &PerformanceEngine{
		calculator:      calculator,
		baselineMinutes: baselineMinutes,
	}
}

// Compute builds the full metrics report for a window of deliveries.
func (p *PerformanceEngine) Compute(window []domain.DeliveryRecord, tiers []domain.DriverPricingTier) domain.PerformanceMetrics {
	var metrics domain.PerformanceMetrics

	var completed []domain.DeliveryRecord
	for _, d := range window {
		if d.Status == domain.StatusDelivered {
			completed = append(completed, d)
		}
	}

	metrics.CompletionRate = completionRate(len(completed), len(window))
	metrics.OnTimeDelivery = onTimeRate(completed)
	metrics.DeliveryEfficiency = p.efficiency(completed)
	metrics.DistanceMetrics = p.distance(window)
	metrics.EarningsMetrics = p.earnings(completed, tiers)

	return metrics
}

func completionRate(completed, total int) domain.CompletionRate {
	rate := domain.CompletionRate{Total: total, Completed: completed}
	if total > 0 {
		rate.RatePercent = float64(completed) / float64(total) * 100
	}
	return rate
}

// onTimeRate counts a completed delivery as on-time when no ETA was set,
// or when it was delivered at or before the ETA. A delivery with an ETA
// but no parseable delivery time does not count as on-time.
func onTimeRate(completed []domain.DeliveryRecord) domain.OnTimeDelivery {
	result := domain.OnTimeDelivery{Completed: len(completed)}
	for _, d := range completed {
		switch {
		case !d.EstimatedDeliveryTime.Present():
			result.OnTime++
		case d.ActualDeliveryTime.Present() && !d.ActualDeliveryTime.Time.After(d.EstimatedDeliveryTime.Time):
			result.OnTime++
		}
	}
	if result.Completed > 0 {
		result.RatePercent = float64(result.OnTime) / float64(result.Completed) * 100
	}
	return result
}

// efficiency averages pickup-to-delivery minutes over the completed
// deliveries that carry both timestamps, then compares against the
// baseline. Positive comparison means faster than baseline. With no
// eligible deliveries both figures stay 0.
func (p *PerformanceEngine) efficiency(completed []domain.DeliveryRecord) domain.DeliveryEfficiency {
	eff := domain.DeliveryEfficiency{BaselineMinutes: p.baselineMinutes}

	var totalMinutes float64
	var eligible int
	for _, d := range completed {
		if !d.ActualPickupTime.Present() || !d.ActualDeliveryTime.Present() {
			continue
		}
		delta := d.ActualDeliveryTime.Time.Sub(d.ActualPickupTime.Time)
		if delta < 0 {
			continue
		}
		totalMinutes += delta.Minutes()
		eligible++
	}

	if eligible == 0 {
		return eff
	}

	eff.AvgTimePerDeliveryMinutes = totalMinutes / float64(eligible)
	eff.ComparisonPercent = (p.baselineMinutes - eff.AvgTimePerDeliveryMinutes) / p.baselineMinutes * 100
	return eff
}

func (p *PerformanceEngine) distance(window []domain.DeliveryRecord) domain.DistanceMetrics {
	var metrics domain.DistanceMetrics
	for i := range window {
		metrics.TotalKm += p.calculator.estimator.Estimate(&window[i])
	}
	if len(window) > 0 {
		metrics.AvgKmPerDelivery = metrics.TotalKm / float64(len(window))
	}
	return metrics
}

func (p *PerformanceEngine) earnings(completed []domain.DeliveryRecord, tiers []domain.DriverPricingTier) domain.EarningsMetrics {
	var metrics domain.EarningsMetrics
	for i := range completed {
		metrics.Total += p.calculator.DeliveryEarning(&completed[i], tiers).Amount
	}
	if len(completed) > 0 {
		metrics.AvgPerDelivery = metrics.Total / float64(len(completed))
	}
	return metrics
}
