package domain

// DeliveryStatus represents the lifecycle status of a delivery as reported
// by the delivery-tracking service. This service never transitions statuses;
// it only classifies them.
type DeliveryStatus string

const (
	StatusAssigned        DeliveryStatus = "assigned"
	StatusAccepted        DeliveryStatus = "accepted"
	StatusInProgress      DeliveryStatus = "in_progress"
	StatusPickedUp        DeliveryStatus = "picked_up"
	StatusInTransit       DeliveryStatus = "in_transit"
	StatusNearDestination DeliveryStatus = "near_destination"
	StatusDelivered       DeliveryStatus = "delivered"
	StatusFailed          DeliveryStatus = "failed"
	StatusCancelled       DeliveryStatus = "cancelled"
)

// IsTerminal reports whether the status ends a delivery's lifecycle.
func (s DeliveryStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusFailed || s == StatusCancelled
}

// Priority of a delivery. Urgent deliveries may carry a tier bonus.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// LocationType distinguishes warehouse endpoints from street addresses.
type LocationType string

const (
	LocationWarehouse LocationType = "warehouse"
	LocationAddress   LocationType = "address"
)

// Location is a delivery endpoint (fromLocation/toLocation).
type Location struct {
	Type         LocationType `json:"type"`
	Address      string       `json:"address,omitempty"`
	WarehouseID  string       `json:"warehouseId,omitempty"`
	LocationName string       `json:"locationName,omitempty"`
	Latitude     *float64     `json:"latitude,omitempty"`
	Longitude    *float64     `json:"longitude,omitempty"`
}

// StatusEvent is one entry in a delivery's ordered status history.
// History is sorted ascending by timestamp upstream.
type StatusEvent struct {
	Status    DeliveryStatus `json:"status"`
	Timestamp FlexTime       `json:"timestamp"`
	Location  *GeoPoint      `json:"location,omitempty"`
}

// Weight of a parcel. Unit is informational; values are kilograms in
// practice and are consumed as-is by the earnings math.
type Weight struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// Receiver identifies the recipient of a parcel.
type Receiver struct {
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// ParcelItem is a single parcel. ParcelType is a free-text label resolved
// against the driver pricing tiers.
type ParcelItem struct {
	ID             string    `json:"id"`
	TrackingNumber string    `json:"trackingNumber"`
	Weight         *Weight   `json:"weight,omitempty"`
	ParcelType     string    `json:"parcelType"`
	Receiver       *Receiver `json:"receiver,omitempty"`
}

// WeightValue returns the parcel's weight, or 0 when none was recorded.
func (p ParcelItem) WeightValue() float64 {
	if p.Weight == nil {
		return 0
	}
	return p.Weight.Value
}

// Consolidation groups parcels shipped together under one delivery.
type Consolidation struct {
	ID      string       `json:"id,omitempty"`
	Parcels []ParcelItem `json:"parcels"`
}

// DeliveryItemType tells which field carries a delivery's parcels.
type DeliveryItemType string

const (
	ItemTypeParcel        DeliveryItemType = "parcel"
	ItemTypeConsolidation DeliveryItemType = "consolidation"
)

// DeliveryRecord is a read-only snapshot of one driver assignment, as
// served by the delivery-tracking service. Nothing in this service
// mutates it.
type DeliveryRecord struct {
	ID                    string           `json:"id"`
	DeliveryNumber        string           `json:"deliveryNumber"`
	DeliveryItemType      DeliveryItemType `json:"deliveryItemType"`
	Parcels               []ParcelItem     `json:"parcels,omitempty"`
	Consolidation         *Consolidation   `json:"consolidation,omitempty"`
	AssignedDriver        string           `json:"assignedDriver"`
	FromLocation          Location         `json:"fromLocation"`
	ToLocation            Location         `json:"toLocation"`
	Status                DeliveryStatus   `json:"status"`
	Priority              Priority         `json:"priority"`
	Distance              *float64         `json:"distance,omitempty"`
	EstimatedDeliveryTime FlexTime         `json:"estimatedDeliveryTime,omitempty"`
	ActualPickupTime      FlexTime         `json:"actualPickupTime,omitempty"`
	ActualDeliveryTime    FlexTime         `json:"actualDeliveryTime,omitempty"`
	CreatedTimestamp      FlexTime         `json:"createdTimestamp"`
	UpdatedTimestamp      FlexTime         `json:"updatedTimestamp,omitempty"`
	StatusHistory         []StatusEvent    `json:"statusHistory,omitempty"`
}

// Items returns the delivery's parcels, looking through the consolidation
// when the delivery carries one.
func (d *DeliveryRecord) Items() []ParcelItem {
	if d.DeliveryItemType == ItemTypeConsolidation && d.Consolidation != nil {
		return d.Consolidation.Parcels
	}
	return d.Parcels
}

// ReferenceTime is the timestamp used to place a delivery in a reporting
// window: actual delivery time, then last update, then creation.
func (d *DeliveryRecord) ReferenceTime() FlexTime {
	if d.ActualDeliveryTime.Present() {
		return d.ActualDeliveryTime
	}
	if d.UpdatedTimestamp.Present() {
		return d.UpdatedTimestamp
	}
	return d.CreatedTimestamp
}

// DriverPricingTier is the rate card for one parcel type.
type DriverPricingTier struct {
	ParcelType           string  `json:"parcelType"`
	DriverBaseEarning    float64 `json:"driverBaseEarning"`
	DriverEarningPerKm   float64 `json:"driverEarningPerKm"`
	DriverEarningPerKg   float64 `json:"driverEarningPerKg"`
	UrgentDeliveryBonus  float64 `json:"urgentDeliveryBonus"`
	CommissionPercentage float64 `json:"commissionPercentage"`
	IsActive             bool    `json:"isActive"`
}

// DefaultTierName is the reserved tier used when a parcel type has no
// dedicated rate card.
const DefaultTierName = "Standard"

// PeriodEarnings is one reporting bucket of an earnings summary.
type PeriodEarnings struct {
	Amount     float64 `json:"amount"`
	Deliveries int     `json:"deliveries"`
	Distance   float64 `json:"distance"`
}

// EarningsSummary is the driver-facing earnings breakdown.
type EarningsSummary struct {
	DriverID string         `json:"driver_id"`
	Today    PeriodEarnings `json:"today"`
	Week     PeriodEarnings `json:"week"`
	Month    PeriodEarnings `json:"month"`
}

// DeliveryEfficiency compares average handling time against a baseline.
type DeliveryEfficiency struct {
	AvgTimePerDeliveryMinutes float64 `json:"avg_time_per_delivery_minutes"`
	BaselineMinutes           float64 `json:"baseline_minutes"`
	ComparisonPercent         float64 `json:"comparison_percent"`
}

// DistanceMetrics summarizes traveled distance over a window.
type DistanceMetrics struct {
	TotalKm          float64 `json:"total_km"`
	AvgKmPerDelivery float64 `json:"avg_km_per_delivery"`
}

// CompletionRate reports delivered vs. total deliveries in a window.
type CompletionRate struct {
	Total       int     `json:"total"`
	Completed   int     `json:"completed"`
	RatePercent float64 `json:"rate_percent"`
}

// OnTimeDelivery reports how many completed deliveries met their ETA.
type OnTimeDelivery struct {
	Completed   int     `json:"completed"`
	OnTime      int     `json:"on_time"`
	RatePercent float64 `json:"rate_percent"`
}

// EarningsMetrics summarizes earnings over a window.
type EarningsMetrics struct {
	Total          float64 `json:"total"`
	AvgPerDelivery float64 `json:"avg_per_delivery"`
}

// PerformanceMetrics is the windowed performance report for a driver.
type PerformanceMetrics struct {
	DriverID           string             `json:"driver_id"`
	WindowDays         int                `json:"window_days"`
	DeliveryEfficiency DeliveryEfficiency `json:"delivery_efficiency"`
	DistanceMetrics    DistanceMetrics    `json:"distance_metrics"`
	CompletionRate     CompletionRate     `json:"completion_rate"`
	OnTimeDelivery     OnTimeDelivery     `json:"on_time_delivery"`
	EarningsMetrics    EarningsMetrics    `json:"earnings_metrics"`
}
