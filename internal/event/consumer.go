// Package event reacts to platform events that invalidate catalogue caches.
package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/loziogigio/omnicommerce/pkg/kafka"
)

// Topics consumed from other services.
const (
	TopicOrderConfirmed = "ecommerce.order.confirmed"
	EventOrderConfirmed = "order.confirmed"
)

// Consumer group ID for the catalogue service.
const ConsumerGroupID = "catalogue-service"

// OrderConfirmedData is the part of an order.confirmed payload the catalogue
// reads.
type OrderConfirmedData struct {
	OrderID string `json:"order_id"`
	Items   []struct {
		ItemCode string `json:"item_code"`
	} `json:"items"`
}

// CacheInvalidator drops cached data derived from sales.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) (int, error)
}

// ConsumerHandler routes incoming Kafka events to the appropriate handler.
type ConsumerHandler struct {
	topItems CacheInvalidator
	logger   *slog.Logger
}

// NewConsumerHandler creates a new event consumer handler.
func NewConsumerHandler(topItems CacheInvalidator, logger *slog.Logger) *ConsumerHandler {
	return &ConsumerHandler{
		topItems: topItems,
		logger:   logger,
	}
}

// Handle processes an incoming Kafka event based on its event type.
func (h *ConsumerHandler) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case EventOrderConfirmed, TopicOrderConfirmed:
		return h.handleOrderConfirmed(ctx, event)
	default:
		h.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

// handleOrderConfirmed drops the top-selling rankings so the next request
// counts the new order.
// A payload that does not decode still invalidates.
func (h *ConsumerHandler) handleOrderConfirmed(ctx context.Context, event *pkgkafka.Event) error {
	var data OrderConfirmedData
	if err := event.UnmarshalData(&data); err != nil {
		h.logger.WarnContext(ctx, "order payload ignored",
			slog.String("event_id", event.EventID),
			slog.String("error", err.Error()),
		)
	}
	orderID := data.OrderID
	if orderID == "" {
		orderID = event.AggregateID
	}

	n, err := h.topItems.Invalidate(ctx)
	if err != nil {
		return fmt.Errorf("handle %s %s: %w", event.EventType, event.EventID, err)
	}

	h.logger.InfoContext(ctx, "top-selling cache invalidated",
		slog.String("event_id", event.EventID),
		slog.String("order_id", orderID),
		slog.Int("order_lines", len(data.Items)),
		slog.Int("keys_removed", n),
	)
	return nil
}

// NewOrderConsumer subscribes h to confirmed orders within groupID, or
// ConsumerGroupID when empty. Redelivered events are skipped using store.
func NewOrderConsumer(brokers []string, groupID string, h *ConsumerHandler, store pkgkafka.IdempotencyStore, logger *slog.Logger) *pkgkafka.Consumer {
	if groupID == "" {
		groupID = ConsumerGroupID
	}
	return pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    TopicOrderConfirmed,
		MinBytes: 1,
		MaxBytes: 10e6,
	}, pkgkafka.IdempotentHandler(store, h.Handle, logger), logger)
}
