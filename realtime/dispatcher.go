//go:generate go run go.uber.org/mock/mockgen -source=dispatcher.go -destination=../mocks/mock_dispatcher.go -package=mocks
package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"

	stderrors "errors"

	"denti-chat/errors"
	"denti-chat/observability"
)

var errOutboundFull = fmt.Errorf("outbound queue full")

// DeliveryStatus classifies one connection's delivery attempt.
type DeliveryStatus string

const (
	Delivered DeliveryStatus = "delivered"
	Stale     DeliveryStatus = "stale"
	Failed    DeliveryStatus = "failed"
)

// DeliveryResult is the independent outcome of pushing to one connection.
// Aggregated results never abort sibling deliveries.
type DeliveryResult struct {
	ConnectionID string
	Status       DeliveryStatus
	Err          error
}

type IDispatcher interface {
	Send(connectionID string, payload any) error
	Fanout(connectionIDs []string, payload any) []DeliveryResult
}

type Dispatcher struct {
	hub     *Hub
	log     *slog.Logger
	metrics *observability.Metrics
}

func NewDispatcher(hub *Hub, log *slog.Logger, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{hub: hub, log: log, metrics: metrics}
}

// Send serializes the payload and pushes it to exactly one connection.
// A missing or closed connection surfaces as ErrConnectionGone; callers
// reclassify that as a stale registry row and prune it. Any other transport
// error is logged with the connection id and payload type and propagated.
func (d *Dispatcher) Send(connectionID string, payload any) error {
	frame, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", connectionID, err)
	}

	conn, ok := d.hub.Get(connectionID)
	if !ok {
		return errors.ErrConnectionGone
	}
	if err := conn.Enqueue(frame); err != nil {
		if stderrors.Is(err, errors.ErrConnectionGone) {
			return err
		}
		d.log.Error("dispatch failed",
			"connectionId", connectionID,
			"payloadType", payloadType(payload),
			"error", err)
		return err
	}
	return nil
}

// Fanout maps Send over the connection list, collecting an independent
// result per connection. One gone device never suppresses delivery to the
// recipient's other devices.
func (d *Dispatcher) Fanout(connectionIDs []string, payload any) []DeliveryResult {
	results := make([]DeliveryResult, 0, len(connectionIDs))
	for _, id := range connectionIDs {
		result := DeliveryResult{ConnectionID: id, Status: Delivered}
		switch err := d.Send(id, payload); {
		case err == nil:
		case stderrors.Is(err, errors.ErrConnectionGone):
			result.Status = Stale
			result.Err = err
		default:
			result.Status = Failed
			result.Err = err
		}
		d.metrics.DeliveriesTotal.WithLabelValues(string(result.Status)).Inc()
		results = append(results, result)
	}
	return results
}

// payloadType extracts the "type" field for log context without assuming a
// concrete payload struct.
func payloadType(payload any) string {
	type typed interface{ PayloadType() string }
	if t, ok := payload.(typed); ok {
		return t.PayloadType()
	}
	return fmt.Sprintf("%T", payload)
}
