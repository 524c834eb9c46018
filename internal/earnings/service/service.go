package service

import (
	"context"
	"fmt"
	"time"

	"parcel-hub/internal/earnings/domain"
	"parcel-hub/internal/earnings/engine"
	"parcel-hub/pkg/logger"
)

// earningsService orchestrates a computation pass: fetch a consistent
// snapshot of deliveries and tiers, run the pure engine over it, report
// fail-soft skips to the operational log. It holds no state between
// calls, so overlapping invocations never interfere.
type earningsService struct {
	deliveries  domain.DeliverySource
	tiers       domain.TierSource
	cache       domain.TierCache // may be nil
	aggregator  *engine.PeriodAggregator
	performance *engine.PerformanceEngine
	log         logger.Logger
}

// New wires the computation engine with its data sources. The cache is
// optional; pass nil to fetch tiers from the source on every call.
func New(
	deliveries domain.DeliverySource,
	tiers domain.TierSource,
	cache domain.TierCache,
	policy engine.FallbackPolicy,
	baselineMinutes float64,
	log logger.Logger,
) domain.EarningsService {
	estimator := engine.NewDistanceEstimator(policy)
	calculator := engine.NewEarningsCalculator(estimator)

	return &earningsService{
		deliveries:  deliveries,
		tiers:       tiers,
		cache:       cache,
		aggregator:  engine.NewPeriodAggregator(calculator),
		performance: engine.NewPerformanceEngine(calculator, baselineMinutes),
		log:         log,
	}
}

// EarningsSummary computes the today/week/month earnings breakdown for a
// driver from a fresh delivery snapshot.
func (s *earningsService) EarningsSummary(ctx context.Context, driverID string, now time.Time) (*domain.EarningsSummary, error) {
	deliveries, tiers, err := s.snapshot(ctx, driverID)
	if err != nil {
		return nil, err
	}

	summary, skipped := s.aggregator.Summarize(deliveries, tiers, now)
	summary.DriverID = driverID
	s.logSkipped(driverID, skipped)

	return &summary, nil
}

// PerformanceMetrics computes the windowed performance report for a driver.
func (s *earningsService) PerformanceMetrics(ctx context.Context, driverID string, days int, now time.Time) (*domain.PerformanceMetrics, error) {
	deliveries, tiers, err := s.snapshot(ctx, driverID)
	if err != nil {
		return nil, err
	}

	window := s.aggregator.SinceDays(deliveries, now, days)
	metrics := s.performance.Compute(window, tiers)
	metrics.DriverID = driverID
	metrics.WindowDays = days

	return &metrics, nil
}

// snapshot fetches the delivery list and pricing tiers for one
// computation pass.
func (s *earningsService) snapshot(ctx context.Context, driverID string) ([]domain.DeliveryRecord, []domain.DriverPricingTier, error) {
	deliveries, err := s.deliveries.DeliveriesForDriver(ctx, driverID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch deliveries for driver %s: %w", driverID, err)
	}

	tiers, err := s.loadTiers(ctx)
	if err != nil {
		return nil, nil, err
	}

	return deliveries, tiers, nil
}

// loadTiers is cache-aside: the tier table changes rarely, so a cached
// list is served until its TTL lapses. Cache failures degrade to a
// source fetch.
func (s *earningsService) loadTiers(ctx context.Context) ([]domain.DriverPricingTier, error) {
	if s.cache != nil {
		cached, err := s.cache.GetTiers(ctx)
		if err == nil {
			return cached, nil
		}
		if err != domain.ErrTiersNotCached {
			s.log.Warn("tier_cache_read_failed", fmt.Sprintf("falling back to tier source: %v", err))
		}
	}

	tiers, err := s.tiers.ActiveTiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pricing tiers: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetTiers(ctx, tiers); err != nil {
			s.log.Warn("tier_cache_write_failed", err.Error())
		}
	}
	return tiers, nil
}

// logSkipped surfaces every parcel excluded for missing pricing. The
// warning is operational only; the end user still gets a summary.
func (s *earningsService) logSkipped(driverID string, skipped []engine.SkippedItem) {
	for _, item := range skipped {
		s.log.WithFields(logger.LogFields{
			"driver_id":   driverID,
			"delivery_id": item.DeliveryID,
			"parcel_id":   item.ParcelID,
			"parcel_type": item.ParcelType,
		}).Warn("pricing_tier_missing", "parcel excluded from earnings: no pricing tier resolved")
	}
}
