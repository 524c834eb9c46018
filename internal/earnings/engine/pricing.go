package engine

import (
	"strings"

	"parcel-hub/internal/earnings/domain"
)

// ResolveTier maps a free-text parcel type to a driver pricing tier.
// Lookup precedence among active tiers: exact match, then case-insensitive
// match, then the reserved "Standard" tier. A nil result means no pricing
// is available for the item; callers treat that as a fail-soft skip, not
// an error.
func ResolveTier(parcelType string, tiers []domain.DriverPricingTier) *domain.DriverPricingTier {
	for i := range tiers {
		if tiers[i].IsActive && tiers[i].ParcelType == parcelType {
			return &tiers[i]
		}
	}

	for i := range tiers {
		if tiers[i].IsActive && strings.EqualFold(tiers[i].ParcelType, parcelType) {
			return &tiers[i]
		}
	}

	for i := range tiers {
		if tiers[i].IsActive && tiers[i].ParcelType == domain.DefaultTierName {
			return &tiers[i]
		}
	}

	return nil
}
