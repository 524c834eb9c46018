package engine

import (
	"parcel-hub/internal/earnings/domain"
)

// DistanceEstimator resolves the distance a delivery covered. It never
// fails: a delivery with no usable data still yields a policy estimate.
type DistanceEstimator struct {
	policy FallbackPolicy
}

func NewDistanceEstimator(policy FallbackPolicy) *DistanceEstimator {
	return &DistanceEstimator{policy: policy}
}

// Estimate returns the delivery's distance in kilometers, in strict
// priority order:
//
//  1. An explicit positive recorded distance is authoritative.
//  2. Otherwise, with at least two geo-tagged status history entries, the
//     sum of haversine legs between consecutive tagged entries (entries
//     without a location are skipped).
//  3. Otherwise, a heuristic based on the endpoint types.
//
// The result is always >= 0.
func (e *DistanceEstimator) Estimate(d *domain.DeliveryRecord) float64 {
	if d == nil {
		return 0
	}

	if d.Distance != nil && *d.Distance > 0 {
		return *d.Distance
	}

	if km, ok := e.historyDistance(d.StatusHistory); ok {
		return km
	}

	return e.heuristic(d.FromLocation.Type, d.ToLocation.Type)
}

// historyDistance sums the legs between consecutive geo-tagged history
// entries. It reports false when fewer than two entries carry coordinates.
func (e *DistanceEstimator) historyDistance(history []domain.StatusEvent) (float64, bool) {
	var points []*domain.GeoPoint
	for i := range history {
		if history[i].Location.Valid() {
			points = append(points, history[i].Location)
		}
	}
	if len(points) < 2 {
		return 0, false
	}

	var total float64
	for i := 1; i < len(points); i++ {
		total += points[i-1].DistanceKm(points[i])
	}
	return total, true
}

func (e *DistanceEstimator) heuristic(from, to domain.LocationType) float64 {
	switch {
	case from == domain.LocationWarehouse && to == domain.LocationWarehouse:
		return e.policy.WarehouseToWarehouseKm
	case from == domain.LocationWarehouse && to == domain.LocationAddress,
		from == domain.LocationAddress && to == domain.LocationWarehouse:
		return e.policy.WarehouseToAddressKm
	case from == domain.LocationAddress && to == domain.LocationAddress:
		return e.policy.AddressToAddressKm
	default:
		return e.policy.DefaultKm
	}
}
