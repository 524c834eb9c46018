package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"parcel-hub/internal/earnings/domain"
	"parcel-hub/pkg/logger"
	"parcel-hub/pkg/rabbitmq"
)

// StatusEvent is the delivery lifecycle event published by the tracking
// service on the delivery_topic exchange.
type StatusEvent struct {
	DeliveryID     string                `json:"delivery_id"`
	DeliveryNumber string                `json:"delivery_number"`
	DriverID       string                `json:"driver_id"`
	Status         domain.DeliveryStatus `json:"status"`
	Timestamp      time.Time             `json:"timestamp"`
}

// Consumer reacts to terminal delivery statuses by recomputing the
// affected driver's earnings summary, republishing it on the dashboard
// exchange and pushing it to the driver's live dashboard socket. This
// keeps dashboards current between their poll ticks.
type Consumer struct {
	conn     *rabbitmq.Connection
	earnings domain.EarningsService
	pusher   domain.DashboardPusher
	log      logger.Logger
}

func NewConsumer(conn *rabbitmq.Connection, earnings domain.EarningsService, pusher domain.DashboardPusher, log logger.Logger) *Consumer {
	return &Consumer{
		conn:     conn,
		earnings: earnings,
		pusher:   pusher,
		log:      log,
	}
}

// Start subscribes to the delivery status queue.
func (c *Consumer) Start() error {
	return c.conn.Consume(rabbitmq.QueueDeliveryStatus, c.handle)
}

func (c *Consumer) handle(msg amqp.Delivery) {
	var event StatusEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		// A malformed event would fail forever; drop it.
		c.log.Error("status_event_malformed", fmt.Errorf("failed to decode status event: %w", err))
		_ = msg.Ack(false)
		return
	}

	if event.DriverID == "" || !event.Status.IsTerminal() {
		// Earnings only change when a delivery reaches a terminal state.
		_ = msg.Ack(false)
		return
	}

	log := c.log.WithFields(logger.LogFields{
		"driver_id":   event.DriverID,
		"delivery_id": event.DeliveryID,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	summary, err := c.earnings.EarningsSummary(ctx, event.DriverID, time.Now())
	if err != nil {
		// The dashboards re-poll every 30-60s anyway; don't requeue and
		// hammer a struggling upstream.
		log.Error("summary_recompute_failed", err)
		_ = msg.Nack(false, false)
		return
	}

	c.republish(ctx, event.DriverID, summary, log)

	if c.pusher.IsDriverConnected(event.DriverID) {
		if err := c.pusher.SendToDriver(event.DriverID, map[string]interface{}{
			"type":    "earnings_summary",
			"summary": summary,
		}); err != nil {
			log.Warn("summary_push_failed", err.Error())
		}
	}

	_ = msg.Ack(false)
}

func (c *Consumer) republish(ctx context.Context, driverID string, summary *domain.EarningsSummary, log logger.Logger) {
	body, err := json.Marshal(summary)
	if err != nil {
		log.Error("summary_marshal_failed", err)
		return
	}

	key := "dashboard.earnings." + driverID
	if err := c.conn.Publish(ctx, rabbitmq.ExchangeDashboard, key, body); err != nil {
		log.Warn("summary_republish_failed", err.Error())
	}
}
