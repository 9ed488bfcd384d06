//go:generate go run go.uber.org/mock/mockgen -source=bridge_service.go -destination=../mocks/mock_bridge_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"denti-chat/domain/chat"
	"denti-chat/domain/event"
	"denti-chat/names"
	"denti-chat/observability"
	"denti-chat/realtime"
	"denti-chat/repositories"
	"denti-chat/search"
)

type IBridgeService interface {
	Handle(ctx context.Context, evt event.ShiftEvent) error
}

// BridgeService turns marketplace state transitions into system chat
// messages in the same conversation and dispatch pipeline user messages
// use. Errors propagate so the bus redelivers; the writes are idempotent
// enough for at-least-once (a redelivered event yields a duplicate system
// message, never a lost one).
type BridgeService struct {
	connections   repositories.IConnectionRepository
	conversations repositories.IConversationRepository
	messages      repositories.IMessageRepository
	resolver      names.IResolver
	dispatcher    realtime.IDispatcher
	index         search.IMessageIndex
	metrics       *observability.Metrics
	log           *slog.Logger
}

func NewBridgeService(
	connections repositories.IConnectionRepository,
	conversations repositories.IConversationRepository,
	messages repositories.IMessageRepository,
	resolver names.IResolver,
	dispatcher realtime.IDispatcher,
	index search.IMessageIndex,
	metrics *observability.Metrics,
	log *slog.Logger,
) *BridgeService {
	return &BridgeService{
		connections:   connections,
		conversations: conversations,
		messages:      messages,
		resolver:      resolver,
		dispatcher:    dispatcher,
		index:         index,
		metrics:       metrics,
		log:           log,
	}
}

// Handle validates the event, maps it to a sender identity and canned
// content, persists the system message and fans it out to the deduplicated
// union of both parties' live connections.
func (b *BridgeService) Handle(ctx context.Context, evt event.ShiftEvent) error {
	if err := evt.Validate(); err != nil {
		return err
	}
	senderKey, err := evt.SenderKey()
	if err != nil {
		return err
	}
	content, err := evt.Render()
	if err != nil {
		return err
	}

	clinicKey := chat.ClinicKey(evt.ClinicID)
	proKey := chat.ProfessionalKey(evt.ProfessionalSub)

	now := time.Now().UTC()
	message := chat.Message{
		ID:             chat.NewMessageID(now),
		ConversationID: chat.ConversationID(clinicKey, proKey),
		SenderKey:      senderKey,
		SenderName:     b.resolver.Resolve(senderKey),
		Content:        content,
		Type:           chat.MessageTypeSystem,
		CreatedAt:      now,
	}

	if err := b.messages.Append(message); err != nil {
		return fmt.Errorf("append system message %s: %w", message.ID, err)
	}
	if err := b.index.Index(message); err != nil {
		b.log.Error("index system message failed", "messageId", message.ID, "error", err)
	}

	update := repositories.ConversationUpdate{
		ClinicKey:        clinicKey,
		ProfessionalKey:  proKey,
		SenderKey:        senderKey,
		ClinicName:       b.resolver.Resolve(clinicKey),
		ProfessionalName: b.resolver.Resolve(proKey),
		Preview:          chat.Preview(content),
		At:               now,
	}
	if _, err := b.conversations.ApplyMessage(update); err != nil {
		return err
	}

	b.metrics.MessagesSent.WithLabelValues(string(chat.MessageTypeSystem)).Inc()
	b.metrics.EventsConsumed.WithLabelValues(string(evt.Type)).Inc()

	connectionIDs, err := b.unionConnections(clinicKey, proKey)
	if err != nil {
		// The message is durable; both sides recover via the pull paths.
		b.log.Error("connection lookup failed", "conversationId", message.ConversationID, "error", err)
		return nil
	}

	payload := newMessagePayload(message, evt.ClinicID, evt.ProfessionalSub)
	for _, result := range b.dispatcher.Fanout(connectionIDs, payload) {
		switch result.Status {
		case realtime.Stale:
			if err := b.connections.Unregister(result.ConnectionID); err != nil {
				b.log.Error("prune stale connection failed", "connectionId", result.ConnectionID, "error", err)
			}
		case realtime.Failed:
			b.log.Error("system message delivery failed", "connectionId", result.ConnectionID, "error", result.Err)
		}
	}
	return nil
}

// unionConnections collapses duplicate connection ids across the two
// lookups before fan-out.
func (b *BridgeService) unionConnections(clinicKey, proKey chat.ParticipantKey) ([]string, error) {
	var ids []string
	for _, key := range []chat.ParticipantKey{clinicKey, proKey} {
		records, err := b.connections.ListConnections(key)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			ids = append(ids, record.ConnectionID)
		}
	}
	return lo.Uniq(ids), nil
}
