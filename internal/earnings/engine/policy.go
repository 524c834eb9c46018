package engine

// FallbackPolicy names every estimation constant the engine falls back on
// when a delivery lacks authoritative data. The three dashboards used to
// carry their own diverging literals for these; keeping them in one struct
// makes the fallback behavior a single documented decision.
type FallbackPolicy struct {
	// Heuristic distances by route type, in kilometers.
	WarehouseToWarehouseKm float64
	WarehouseToAddressKm   float64
	AddressToAddressKm     float64
	// DefaultKm applies when the endpoint types are missing or unknown.
	// This also absorbs the flat per-delivery estimate some callers used.
	DefaultKm float64

	// BaselineMinutesPerDelivery anchors the efficiency comparison.
	BaselineMinutesPerDelivery float64
}

// DefaultFallbackPolicy returns the production constants.
func DefaultFallbackPolicy() FallbackPolicy {
	return FallbackPolicy{
		WarehouseToWarehouseKm:     15,
		WarehouseToAddressKm:       8,
		AddressToAddressKm:         5,
		DefaultKm:                  5,
		BaselineMinutesPerDelivery: 30,
	}
}
