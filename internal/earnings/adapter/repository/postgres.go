package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"parcel-hub/internal/earnings/domain"
)

// PostgresTierRepository reads the driver rate cards straight from the
// platform database. Deployments that co-locate this service with the
// staff dashboard's pricing table use it instead of the gateway round
// trip (TIER_SOURCE=postgres).
type PostgresTierRepository struct {
	db *pgxpool.Pool
}

func NewPostgresTierRepository(db *pgxpool.Pool) domain.TierSource {
	return &PostgresTierRepository{db: db}
}

// ActiveTiers returns every active pricing tier.
func (r *PostgresTierRepository) ActiveTiers(ctx context.Context) ([]domain.DriverPricingTier, error) {
	query := `
		SELECT parcel_type, driver_base_earning, driver_earning_per_km,
		       driver_earning_per_kg, urgent_delivery_bonus,
		       commission_percentage, is_active
		FROM driver_pricing_tiers
		WHERE is_active = true
		ORDER BY parcel_type
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pricing tiers: %w", err)
	}
	defer rows.Close()

	var tiers []domain.DriverPricingTier
	for rows.Next() {
		var t domain.DriverPricingTier
		if err := rows.Scan(
			&t.ParcelType,
			&t.DriverBaseEarning,
			&t.DriverEarningPerKm,
			&t.DriverEarningPerKg,
			&t.UrgentDeliveryBonus,
			&t.CommissionPercentage,
			&t.IsActive,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pricing tier: %w", err)
		}
		tiers = append(tiers, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pricing tiers: %w", err)
	}
	return tiers, nil
}
