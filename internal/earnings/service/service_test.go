package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parcel-hub/internal/earnings/domain"
	"parcel-hub/internal/earnings/engine"
	"parcel-hub/pkg/logger"
)

type fakeDeliverySource struct {
	deliveries []domain.DeliveryRecord
	err        error
	calls      int
}

func (f *fakeDeliverySource) DeliveriesForDriver(ctx context.Context, driverID string) ([]domain.DeliveryRecord, error) {
	f.calls++
	return f.deliveries, f.err
}

type fakeTierSource struct {
	tiers []domain.DriverPricingTier
	err   error
	calls int
}

func (f *fakeTierSource) ActiveTiers(ctx context.Context) ([]domain.DriverPricingTier, error) {
	f.calls++
	return f.tiers, f.err
}

type memoryTierCache struct {
	tiers []domain.DriverPricingTier
	set   bool
}

func (m *memoryTierCache) GetTiers(ctx context.Context) ([]domain.DriverPricingTier, error) {
	if !m.set {
		return nil, domain.ErrTiersNotCached
	}
	return m.tiers, nil
}

func (m *memoryTierCache) SetTiers(ctx context.Context, tiers []domain.DriverPricingTier) error {
	m.tiers = tiers
	m.set = true
	return nil
}

func standardTiers() []domain.DriverPricingTier {
	return []domain.DriverPricingTier{
		{ParcelType: "Standard", DriverBaseEarning: 50, DriverEarningPerKm: 5, DriverEarningPerKg: 2, UrgentDeliveryBonus: 20, IsActive: true},
	}
}

func deliveredRecord(id string, when time.Time) domain.DeliveryRecord {
	dist := 10.0
	return domain.DeliveryRecord{
		ID:                 id,
		DeliveryItemType:   domain.ItemTypeParcel,
		Status:             domain.StatusDelivered,
		Distance:           &dist,
		ActualDeliveryTime: domain.FlexTime{Time: when},
		Parcels: []domain.ParcelItem{
			{ID: id + "-p1", ParcelType: "Standard", Weight: &domain.Weight{Value: 1}},
		},
	}
}

func newService(deliveries *fakeDeliverySource, tiers *fakeTierSource, cache domain.TierCache) domain.EarningsService {
	return New(deliveries, tiers, cache, engine.DefaultFallbackPolicy(), 30, logger.NewLogger("test"))
}

func TestEarningsSummary(t *testing.T) {
	now := time.Date(2026, 3, 18, 15, 0, 0, 0, time.UTC)

	deliveries := &fakeDeliverySource{deliveries: []domain.DeliveryRecord{
		deliveredRecord("d1", now.Add(-time.Hour)),
		deliveredRecord("d2", now.Add(-3*24*time.Hour)),
	}}
	tiers := &fakeTierSource{tiers: standardTiers()}

	svc := newService(deliveries, tiers, nil)
	summary, err := svc.EarningsSummary(context.Background(), "driver-1", now)
	require.NoError(t, err)

	assert.Equal(t, "driver-1", summary.DriverID)
	assert.Equal(t, 1, summary.Today.Deliveries)
	assert.Equal(t, 2, summary.Week.Deliveries)
	assert.InDelta(t, 204, summary.Week.Amount, 1e-9)
}

func TestEarningsSummaryUpstreamFailure(t *testing.T) {
	deliveries := &fakeDeliverySource{err: errors.New("gateway timeout")}
	tiers := &fakeTierSource{tiers: standardTiers()}

	svc := newService(deliveries, tiers, nil)
	_, err := svc.EarningsSummary(context.Background(), "driver-1", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "driver-1")
}

func TestTierCacheAside(t *testing.T) {
	now := time.Date(2026, 3, 18, 15, 0, 0, 0, time.UTC)
	deliveries := &fakeDeliverySource{deliveries: []domain.DeliveryRecord{deliveredRecord("d1", now)}}
	tiers := &fakeTierSource{tiers: standardTiers()}
	cache := &memoryTierCache{}

	svc := newService(deliveries, tiers, cache)

	_, err := svc.EarningsSummary(context.Background(), "driver-1", now)
	require.NoError(t, err)
	assert.Equal(t, 1, tiers.calls)
	assert.True(t, cache.set)

	// Second pass hits the cache, not the source.
	_, err = svc.EarningsSummary(context.Background(), "driver-1", now)
	require.NoError(t, err)
	assert.Equal(t, 1, tiers.calls)
}

func TestPerformanceMetricsWindow(t *testing.T) {
	now := time.Date(2026, 3, 18, 15, 0, 0, 0, time.UTC)

	failed := deliveredRecord("failed", now.Add(-24*time.Hour))
	failed.Status = domain.StatusFailed

	deliveries := &fakeDeliverySource{deliveries: []domain.DeliveryRecord{
		deliveredRecord("d1", now.Add(-time.Hour)),
		deliveredRecord("d2", now.Add(-2*24*time.Hour)),
		deliveredRecord("old", now.Add(-60*24*time.Hour)), // outside every window
		failed,
	}}
	tiers := &fakeTierSource{tiers: standardTiers()}

	svc := newService(deliveries, tiers, nil)
	metrics, err := svc.PerformanceMetrics(context.Background(), "driver-1", 7, now)
	require.NoError(t, err)

	assert.Equal(t, 7, metrics.WindowDays)
	assert.Equal(t, 3, metrics.CompletionRate.Total)
	assert.Equal(t, 2, metrics.CompletionRate.Completed)
	assert.InDelta(t, 200.0/3, metrics.CompletionRate.RatePercent, 1e-6)
}
