package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parcel-hub/internal/earnings/domain"
)

// Payloads mirror what the gateway actually serves, unparseable
// timestamps included.
const deliveriesPayload = `[
  {
    "id": "del-1",
    "deliveryNumber": "DEL-2026-0001",
    "deliveryItemType": "parcel",
    "assignedDriver": "driver-1",
    "status": "delivered",
    "priority": "urgent",
    "distance": 12.5,
    "estimatedDeliveryTime": "2026-03-18T10:00:00Z",
    "actualDeliveryTime": "2026-03-18 09:45:00",
    "createdTimestamp": "2026-03-18T08:00:00Z",
    "parcels": [
      {"id": "p-1", "parcelType": "Standard", "weight": {"value": 2.5, "unit": "kg"}}
    ]
  },
  {
    "id": "del-2",
    "deliveryNumber": "DEL-2026-0002",
    "deliveryItemType": "consolidation",
    "assignedDriver": "driver-1",
    "status": "in_transit",
    "createdTimestamp": "not-a-timestamp",
    "consolidation": {
      "id": "con-1",
      "parcels": [{"id": "p-2", "parcelType": "Fragile"}]
    }
  }
]`

const tiersPayload = `[
  {"parcelType": "Standard", "driverBaseEarning": 50, "driverEarningPerKm": 5, "driverEarningPerKg": 2, "urgentDeliveryBonus": 20, "isActive": true}
]`

func TestDeliveriesForDriver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/deliveries/driver/driver-1", r.URL.Path)
		assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(deliveriesPayload))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "svc-token", 5*time.Second)
	deliveries, err := client.DeliveriesForDriver(context.Background(), "driver-1")
	require.NoError(t, err)
	require.Len(t, deliveries, 2)

	first := deliveries[0]
	assert.Equal(t, domain.StatusDelivered, first.Status)
	assert.Equal(t, domain.PriorityUrgent, first.Priority)
	require.NotNil(t, first.Distance)
	assert.InDelta(t, 12.5, *first.Distance, 1e-9)
	assert.True(t, first.ActualDeliveryTime.Present())

	// Malformed timestamps decode as absent, never fail the fetch.
	second := deliveries[1]
	assert.False(t, second.CreatedTimestamp.Present())
	require.Len(t, second.Items(), 1)
	assert.Equal(t, "Fragile", second.Items()[0].ParcelType)
}

func TestActiveTiers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/pricing-driver", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("isActive"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(tiersPayload))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "", 5*time.Second)
	tiers, err := client.ActiveTiers(context.Background())
	require.NoError(t, err)
	require.Len(t, tiers, 1)
	assert.Equal(t, "Standard", tiers[0].ParcelType)
	assert.InDelta(t, 50, tiers[0].DriverBaseEarning, 1e-9)
}

func TestUpstreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "", 5*time.Second)

	_, err := client.DeliveriesForDriver(context.Background(), "driver-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")

	_, err = client.ActiveTiers(context.Background())
	require.Error(t, err)
}
