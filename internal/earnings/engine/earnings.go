package engine

import (
	"parcel-hub/internal/earnings/domain"
)

// EarningsCalculator turns deliveries into driver earnings using the
// tiered rate cards. It is pure: fail-soft conditions are reported back
// to the caller instead of being logged here.
type EarningsCalculator struct {
	estimator *DistanceEstimator
}

func NewEarningsCalculator(estimator *DistanceEstimator) *EarningsCalculator {
	return &EarningsCalculator{estimator: estimator}
}

// SkippedItem records a parcel that contributed nothing because no pricing
// tier resolved for its type, even after fallbacks.
type SkippedItem struct {
	DeliveryID string
	ParcelID   string
	ParcelType string
}

// DeliveryEarnings is the outcome of pricing one delivery.
type DeliveryEarnings struct {
	Amount     float64
	ItemCount  int     // items that resolved a tier
	DistanceKm float64 // total estimated distance for the delivery
	Skipped    []SkippedItem
}

// ItemEarning prices a single parcel:
//
//	base + distance*perKm + weight*perKg, plus the urgent bonus when the
//	delivery is urgent and the tier carries a positive bonus.
func ItemEarning(item domain.ParcelItem, distancePerItemKm float64, tier *domain.DriverPricingTier, priority domain.Priority) float64 {
	earning := tier.DriverBaseEarning +
		distancePerItemKm*tier.DriverEarningPerKm +
		item.WeightValue()*tier.DriverEarningPerKg

	if priority == domain.PriorityUrgent && tier.UrgentDeliveryBonus > 0 {
		earning += tier.UrgentDeliveryBonus
	}
	return earning
}

// DeliveryEarning prices every parcel of a delivery. The delivery's total
// distance is split equally across its items (no per-leg routing data is
// available upstream). Items whose parcel type resolves no tier contribute
// 0 and are excluded from the item count.
func (c *EarningsCalculator) DeliveryEarning(d *domain.DeliveryRecord, tiers []domain.DriverPricingTier) DeliveryEarnings {
	result := DeliveryEarnings{}
	if d == nil {
		return result
	}

	items := d.Items()
	result.DistanceKm = c.estimator.Estimate(d)

	divisor := len(items)
	if divisor < 1 {
		divisor = 1
	}
	distancePerItem := result.DistanceKm / float64(divisor)

	for _, item := range items {
		tier := ResolveTier(item.ParcelType, tiers)
		if tier == nil {
			result.Skipped = append(result.Skipped, SkippedItem{
				DeliveryID: d.ID,
				ParcelID:   item.ID,
				ParcelType: item.ParcelType,
			})
			continue
		}

		result.Amount += ItemEarning(item, distancePerItem, tier, d.Priority)
		result.ItemCount++
	}

	return result
}
