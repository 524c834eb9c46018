package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"parcel-hub/internal/earnings/domain"
)

func floatPtr(v float64) *float64 { return &v }

func geoEvent(lat, lng float64) domain.StatusEvent {
	p := domain.NewGeoPoint(lat, lng)
	return domain.StatusEvent{Location: &p}
}

func TestEstimateExplicitDistance(t *testing.T) {
	est := NewDistanceEstimator(DefaultFallbackPolicy())

	// An explicit positive distance is authoritative even when geo
	// history exists.
	d := &domain.DeliveryRecord{
		Distance: floatPtr(12.34),
		StatusHistory: []domain.StatusEvent{
			geoEvent(43.0, 76.0),
			geoEvent(44.0, 76.0),
		},
	}
	assert.Equal(t, 12.34, est.Estimate(d))
}

func TestEstimateFromStatusHistory(t *testing.T) {
	est := NewDistanceEstimator(DefaultFallbackPolicy())

	t.Run("sums consecutive geo-tagged legs", func(t *testing.T) {
		d := &domain.DeliveryRecord{
			StatusHistory: []domain.StatusEvent{
				geoEvent(40.0, 30.0),
				geoEvent(41.0, 30.0),
				geoEvent(42.0, 30.0),
			},
		}
		// Two one-degree-latitude legs, ~111.19 km each.
		assert.InDelta(t, 222.39, est.Estimate(d), 0.1)
	})

	t.Run("entries without location are skipped", func(t *testing.T) {
		d := &domain.DeliveryRecord{
			StatusHistory: []domain.StatusEvent{
				geoEvent(40.0, 30.0),
				{Status: domain.StatusInTransit}, // no location
				geoEvent(41.0, 30.0),
			},
		}
		assert.InDelta(t, 111.19, est.Estimate(d), 0.05)
	})

	t.Run("single geo point falls through to heuristic", func(t *testing.T) {
		d := &domain.DeliveryRecord{
			StatusHistory: []domain.StatusEvent{geoEvent(40.0, 30.0)},
			FromLocation:  domain.Location{Type: domain.LocationWarehouse},
			ToLocation:    domain.Location{Type: domain.LocationWarehouse},
		}
		assert.Equal(t, 15.0, est.Estimate(d))
	})

	t.Run("zero recorded distance is not authoritative", func(t *testing.T) {
		d := &domain.DeliveryRecord{
			Distance: floatPtr(0),
			StatusHistory: []domain.StatusEvent{
				geoEvent(40.0, 30.0),
				geoEvent(41.0, 30.0),
			},
		}
		assert.InDelta(t, 111.19, est.Estimate(d), 0.05)
	})
}

func TestEstimateRouteTypeHeuristic(t *testing.T) {
	est := NewDistanceEstimator(DefaultFallbackPolicy())

	tests := []struct {
		name string
		from domain.LocationType
		to   domain.LocationType
		want float64
	}{
		{"warehouse to warehouse", domain.LocationWarehouse, domain.LocationWarehouse, 15},
		{"warehouse to address", domain.LocationWarehouse, domain.LocationAddress, 8},
		{"address to warehouse", domain.LocationAddress, domain.LocationWarehouse, 8},
		{"address to address", domain.LocationAddress, domain.LocationAddress, 5},
		{"unknown endpoint types", "", "", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &domain.DeliveryRecord{
				FromLocation: domain.Location{Type: tt.from},
				ToLocation:   domain.Location{Type: tt.to},
			}
			assert.Equal(t, tt.want, est.Estimate(d))
		})
	}
}

func TestEstimateNeverNegative(t *testing.T) {
	est := NewDistanceEstimator(DefaultFallbackPolicy())

	assert.GreaterOrEqual(t, est.Estimate(nil), 0.0)
	assert.GreaterOrEqual(t, est.Estimate(&domain.DeliveryRecord{}), 0.0)
	assert.GreaterOrEqual(t, est.Estimate(&domain.DeliveryRecord{Distance: floatPtr(-4)}), 0.0)
}
