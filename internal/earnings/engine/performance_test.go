package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"parcel-hub/internal/earnings/domain"
)

func newTestPerformanceEngine() *PerformanceEngine {
	return NewPerformanceEngine(newTestCalculator(), 30)
}

func completedWithTimes(id string, pickup, delivered time.Time) domain.DeliveryRecord {
	d := deliveredAt(id, delivered)
	d.ActualPickupTime = ft(pickup)
	return d
}

func TestCompletionRate(t *testing.T) {
	perf := newTestPerformanceEngine()
	base := time.Date(2026, 3, 18, 10, 0, 0, 0, time.UTC)

	t.Run("empty window is zero not NaN", func(t *testing.T) {
		metrics := perf.Compute(nil, testTiers())
		assert.Equal(t, 0.0, metrics.CompletionRate.RatePercent)
		assert.Equal(t, 0, metrics.CompletionRate.Total)
	})

	t.Run("four of five delivered", func(t *testing.T) {
		var window []domain.DeliveryRecord
		for _, id := range []string{"d1", "d2", "d3", "d4"} {
			window = append(window, deliveredAt(id, base))
		}
		failed := deliveredAt("d5", base)
		failed.Status = domain.StatusFailed
		window = append(window, failed)

		metrics := perf.Compute(window, testTiers())
		assert.InDelta(t, 80, metrics.CompletionRate.RatePercent, 1e-9)
		assert.Equal(t, 5, metrics.CompletionRate.Total)
		assert.Equal(t, 4, metrics.CompletionRate.Completed)
	})

	t.Run("100 only when everything delivered", func(t *testing.T) {
		window := []domain.DeliveryRecord{deliveredAt("d1", base), deliveredAt("d2", base)}
		metrics := perf.Compute(window, testTiers())
		assert.InDelta(t, 100, metrics.CompletionRate.RatePercent, 1e-9)

		cancelled := deliveredAt("d3", base)
		cancelled.Status = domain.StatusCancelled
		metrics = perf.Compute(append(window, cancelled), testTiers())
		assert.Less(t, metrics.CompletionRate.RatePercent, 100.0)
		assert.GreaterOrEqual(t, metrics.CompletionRate.RatePercent, 0.0)
	})
}

func TestOnTimeRate(t *testing.T) {
	perf := newTestPerformanceEngine()
	eta := time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)

	withETA := func(id string, delivered time.Time) domain.DeliveryRecord {
		d := deliveredAt(id, delivered)
		d.EstimatedDeliveryTime = ft(eta)
		return d
	}

	t.Run("on time at or before the ETA", func(t *testing.T) {
		window := []domain.DeliveryRecord{
			withETA("early", eta.Add(-time.Hour)),
			withETA("exact", eta),
		}
		metrics := perf.Compute(window, testTiers())
		assert.InDelta(t, 100, metrics.OnTimeDelivery.RatePercent, 1e-9)
	})

	t.Run("late delivery counts against", func(t *testing.T) {
		window := []domain.DeliveryRecord{
			withETA("early", eta.Add(-time.Hour)),
			withETA("late", eta.Add(time.Hour)),
		}
		metrics := perf.Compute(window, testTiers())
		assert.InDelta(t, 50, metrics.OnTimeDelivery.RatePercent, 1e-9)
	})

	t.Run("no ETA counts as on time", func(t *testing.T) {
		window := []domain.DeliveryRecord{deliveredAt("no-eta", eta)}
		metrics := perf.Compute(window, testTiers())
		assert.InDelta(t, 100, metrics.OnTimeDelivery.RatePercent, 1e-9)
	})

	t.Run("ETA set but delivery time unparseable is not on time", func(t *testing.T) {
		d := withETA("broken", time.Time{})
		d.ActualDeliveryTime = domain.FlexTime{}
		metrics := perf.Compute([]domain.DeliveryRecord{d}, testTiers())
		assert.InDelta(t, 0, metrics.OnTimeDelivery.RatePercent, 1e-9)
	})

	t.Run("no completed deliveries is zero", func(t *testing.T) {
		failed := deliveredAt("f", eta)
		failed.Status = domain.StatusFailed
		metrics := perf.Compute([]domain.DeliveryRecord{failed}, testTiers())
		assert.Equal(t, 0.0, metrics.OnTimeDelivery.RatePercent)
	})
}

func TestDeliveryEfficiency(t *testing.T) {
	perf := newTestPerformanceEngine()
	pickup := time.Date(2026, 3, 18, 10, 0, 0, 0, time.UTC)

	t.Run("averages eligible deliveries only", func(t *testing.T) {
		window := []domain.DeliveryRecord{
			completedWithTimes("d1", pickup, pickup.Add(20*time.Minute)),
			completedWithTimes("d2", pickup, pickup.Add(40*time.Minute)),
			deliveredAt("no-pickup", pickup.Add(time.Hour)), // missing pickup time, excluded
		}

		metrics := perf.Compute(window, testTiers())
		assert.InDelta(t, 30, metrics.DeliveryEfficiency.AvgTimePerDeliveryMinutes, 1e-9)
		assert.InDelta(t, 0, metrics.DeliveryEfficiency.ComparisonPercent, 1e-9)
	})

	t.Run("faster than baseline is positive", func(t *testing.T) {
		window := []domain.DeliveryRecord{
			completedWithTimes("d1", pickup, pickup.Add(15*time.Minute)),
		}
		metrics := perf.Compute(window, testTiers())
		assert.InDelta(t, 50, metrics.DeliveryEfficiency.ComparisonPercent, 1e-9)
	})

	t.Run("no eligible deliveries stays zeroed", func(t *testing.T) {
		metrics := perf.Compute([]domain.DeliveryRecord{deliveredAt("d1", pickup)}, testTiers())
		assert.Equal(t, 0.0, metrics.DeliveryEfficiency.AvgTimePerDeliveryMinutes)
		assert.Equal(t, 0.0, metrics.DeliveryEfficiency.ComparisonPercent)
	})
}

func TestDistanceAndEarningsMetrics(t *testing.T) {
	perf := newTestPerformanceEngine()
	base := time.Date(2026, 3, 18, 10, 0, 0, 0, time.UTC)

	failed := deliveredAt("failed", base)
	failed.Status = domain.StatusFailed

	window := []domain.DeliveryRecord{
		deliveredAt("d1", base), // 10 km, earns 102
		deliveredAt("d2", base), // 10 km, earns 102
		failed,                  // 10 km, earns nothing
	}

	metrics := perf.Compute(window, testTiers())

	// Distance covers the whole window; earnings only completed deliveries.
	assert.InDelta(t, 30, metrics.DistanceMetrics.TotalKm, 1e-9)
	assert.InDelta(t, 10, metrics.DistanceMetrics.AvgKmPerDelivery, 1e-9)
	assert.InDelta(t, 204, metrics.EarningsMetrics.Total, 1e-9)
	assert.InDelta(t, 102, metrics.EarningsMetrics.AvgPerDelivery, 1e-9)
}
