//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/samber/lo"

	"denti-chat/auth"
	"denti-chat/domain/chat"
	"denti-chat/errors"
	"denti-chat/moderation"
	"denti-chat/names"
	"denti-chat/observability"
	"denti-chat/realtime"
	"denti-chat/repositories"
	"denti-chat/search"
)

type IChatService interface {
	Connect(claims auth.UserClaims, connectionID string) error
	Disconnect(connectionID string)
	SendMessage(ctx context.Context, caller auth.UserClaims, callerConnID string, cmd chat.SendMessageCommand) (chat.Message, error)
	GetHistory(caller auth.UserClaims, cmd chat.GetHistoryCommand) (HistoryPayload, error)
	MarkRead(caller auth.UserClaims, cmd chat.MarkReadCommand) (AckPayload, error)
	ListConversations(caller auth.UserClaims) (ConversationsPayload, error)
	SearchMessages(ctx context.Context, caller auth.UserClaims, cmd chat.SearchMessagesCommand) (SearchPayload, error)
}

// ChatService implements the session actions. All coordination goes through
// storage; the service keeps no per-conversation state, so concurrent
// invocations only race inside the repositories' atomic updates.
type ChatService struct {
	connections   repositories.IConnectionRepository
	conversations repositories.IConversationRepository
	messages      repositories.IMessageRepository
	resolver      names.IResolver
	dispatcher    realtime.IDispatcher
	index         search.IMessageIndex
	censor        *moderation.Censor
	metrics       *observability.Metrics
	log           *slog.Logger
}

func NewChatService(
	connections repositories.IConnectionRepository,
	conversations repositories.IConversationRepository,
	messages repositories.IMessageRepository,
	resolver names.IResolver,
	dispatcher realtime.IDispatcher,
	index search.IMessageIndex,
	censor *moderation.Censor,
	metrics *observability.Metrics,
	log *slog.Logger,
) *ChatService {
	return &ChatService{
		connections:   connections,
		conversations: conversations,
		messages:      messages,
		resolver:      resolver,
		dispatcher:    dispatcher,
		index:         index,
		censor:        censor,
		metrics:       metrics,
		log:           log,
	}
}

// Connect registers the authenticated connection. The stored identity is
// the authorization source of truth for every later action on this
// connection.
func (s *ChatService) Connect(claims auth.UserClaims, connectionID string) error {
	record := repositories.ConnectionRecord{
		ParticipantKey: claims.ParticipantKey(),
		ConnectionID:   connectionID,
		Role:           claims.Role,
		DisplayName:    claims.Name,
		Subject:        claims.Subject,
		ConnectedAt:    time.Now().UTC(),
	}
	if err := s.connections.Register(record); err != nil {
		return fmt.Errorf("register connection %s: %w", connectionID, err)
	}
	s.log.Info("connection registered",
		"connectionId", connectionID,
		"participant", record.ParticipantKey.String(),
		"role", record.Role)
	return nil
}

// Disconnect always succeeds from the caller's perspective; a failed
// registry cleanup is logged and swallowed, the TTL catches the leftovers.
func (s *ChatService) Disconnect(connectionID string) {
	if err := s.connections.Unregister(connectionID); err != nil {
		s.log.Error("unregister failed", "connectionId", connectionID, "error", err)
	}
}

// SendMessage validates, authorizes, persists and fans out one user
// message, then acks the sender's own connection. Recipient delivery is
// best effort: stale connections are pruned and the pull paths compensate.
func (s *ChatService) SendMessage(ctx context.Context, caller auth.UserClaims, callerConnID string, cmd chat.SendMessageCommand) (chat.Message, error) {
	if cmd.ClinicID == "" || cmd.ProfessionalSub == "" {
		return chat.Message{}, errors.ErrMissingParticipants
	}
	if cmd.Content == "" {
		return chat.Message{}, errors.ErrEmptyContent
	}
	if len([]rune(cmd.Content)) > chat.MaxContentLength {
		return chat.Message{}, errors.ErrContentTooLong
	}
	if !caller.IsPartyTo(cmd.ClinicID, cmd.ProfessionalSub) {
		return chat.Message{}, errors.ErrUnauthorized
	}

	clinicKey := chat.ClinicKey(cmd.ClinicID)
	proKey := chat.ProfessionalKey(cmd.ProfessionalSub)
	senderKey := caller.ParticipantKey()

	content := s.censor.Apply(cmd.Content)
	messageType := cmd.MessageType
	if messageType == "" {
		messageType = chat.MessageTypeUser
	}

	now := time.Now().UTC()
	message := chat.Message{
		ID:             chat.NewMessageID(now),
		ConversationID: chat.ConversationID(clinicKey, proKey),
		SenderKey:      senderKey,
		SenderName:     s.resolver.Resolve(senderKey),
		Content:        content,
		Type:           messageType,
		Lang:           whatlanggo.LangToString(whatlanggo.Detect(content).Lang),
		CreatedAt:      now,
	}

	if err := s.persist(message, clinicKey, proKey); err != nil {
		return chat.Message{}, err
	}
	s.metrics.MessagesSent.WithLabelValues(string(message.Type)).Inc()

	recipientKey := proKey
	if senderKey == proKey {
		recipientKey = clinicKey
	}
	payload := newMessagePayload(message, cmd.ClinicID, cmd.ProfessionalSub)
	s.deliver(recipientKey, payload)

	ack := AckPayload{
		Type:           "ack",
		MessageID:      message.ID,
		ConversationID: message.ConversationID,
		Action:         "sendMessage",
		Timestamp:      lo.ToPtr(now),
	}
	if err := s.dispatcher.Send(callerConnID, ack); err != nil {
		// The message is durable; a lost ack is recoverable via getHistory.
		s.log.Warn("ack delivery failed", "connectionId", callerConnID, "error", err)
	}
	return message, nil
}

// GetHistory requires a valid caller identity; the pair is taken from the
// request, callers only ask for their own conversations. Newest first.
func (s *ChatService) GetHistory(caller auth.UserClaims, cmd chat.GetHistoryCommand) (HistoryPayload, error) {
	if cmd.ClinicID == "" || cmd.ProfessionalSub == "" {
		return HistoryPayload{}, errors.ErrMissingParticipants
	}

	conversationID := chat.ConversationID(chat.ClinicKey(cmd.ClinicID), chat.ProfessionalKey(cmd.ProfessionalSub))
	limit := chat.ClampHistoryLimit(cmd.Limit)
	messages, nextKey, err := s.messages.History(conversationID, limit, cmd.NextKey)
	if err != nil {
		return HistoryPayload{}, fmt.Errorf("history for %s: %w", conversationID, err)
	}

	return HistoryPayload{
		Type:           "history",
		ConversationID: conversationID,
		Items:          historyItems(messages),
		NextKey:        nextKey,
	}, nil
}

// MarkRead zeroes only the caller's own unread counter.
func (s *ChatService) MarkRead(caller auth.UserClaims, cmd chat.MarkReadCommand) (AckPayload, error) {
	if cmd.ClinicID == "" || cmd.ProfessionalSub == "" {
		return AckPayload{}, errors.ErrMissingParticipants
	}
	if !caller.IsPartyTo(cmd.ClinicID, cmd.ProfessionalSub) {
		return AckPayload{}, errors.ErrUnauthorized
	}

	conversationID := chat.ConversationID(chat.ClinicKey(cmd.ClinicID), chat.ProfessionalKey(cmd.ProfessionalSub))
	if _, err := s.conversations.MarkRead(conversationID, caller.ParticipantKey()); err != nil {
		return AckPayload{}, err
	}
	return AckPayload{
		Type:           "ack",
		ConversationID: conversationID,
		Action:         "markRead",
	}, nil
}

// ListConversations returns the caller's conversations most-recently-active
// first, with the counterpart's display name resolved through the cache.
func (s *ChatService) ListConversations(caller auth.UserClaims) (ConversationsPayload, error) {
	callerKey := caller.ParticipantKey()
	conversations, err := s.conversations.ListByParticipant(callerKey)
	if err != nil {
		return ConversationsPayload{}, fmt.Errorf("list conversations for %s: %w", callerKey, err)
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conversation := range conversations {
		recipientName := conversation.CounterpartName(callerKey)
		if recipientName == "" {
			recipientName = s.resolver.Resolve(conversation.Counterpart(callerKey))
		}
		summaries = append(summaries, ConversationSummary{
			ConversationID: conversation.ID,
			RecipientName:  recipientName,
			LastMessage:    conversation.LastMessage,
			LastMessageAt:  conversation.LastMessageAt,
			UnreadCount:    conversation.UnreadFor(callerKey),
		})
	}
	return ConversationsPayload{Type: "conversationsResponse", Conversations: summaries}, nil
}

// SearchMessages runs a full-text query inside one conversation the caller
// belongs to.
func (s *ChatService) SearchMessages(ctx context.Context, caller auth.UserClaims, cmd chat.SearchMessagesCommand) (SearchPayload, error) {
	if cmd.ClinicID == "" || cmd.ProfessionalSub == "" {
		return SearchPayload{}, errors.ErrMissingParticipants
	}
	if !caller.IsPartyTo(cmd.ClinicID, cmd.ProfessionalSub) {
		return SearchPayload{}, errors.ErrUnauthorized
	}

	conversationID := chat.ConversationID(chat.ClinicKey(cmd.ClinicID), chat.ProfessionalKey(cmd.ProfessionalSub))
	limit := chat.ClampHistoryLimit(cmd.Limit)
	ids, err := s.index.Search(ctx, conversationID, cmd.Query, limit)
	if err != nil {
		return SearchPayload{}, fmt.Errorf("search %s: %w", conversationID, err)
	}

	messages := make([]chat.Message, 0, len(ids))
	for _, id := range ids {
		message, err := s.messages.Get(conversationID, id)
		if err != nil {
			// The index can briefly outlive a compacted message; skip it.
			s.log.Warn("indexed message missing from log", "conversationId", conversationID, "messageId", id)
			continue
		}
		messages = append(messages, message)
	}
	return SearchPayload{
		Type:           "searchResponse",
		ConversationID: conversationID,
		Items:          historyItems(messages),
	}, nil
}

// persist appends the message, indexes it and applies the aggregate
// mutation. Indexing is derived data and must not fail the send.
func (s *ChatService) persist(message chat.Message, clinicKey, proKey chat.ParticipantKey) error {
	if err := s.messages.Append(message); err != nil {
		return fmt.Errorf("append message %s: %w", message.ID, err)
	}
	if err := s.index.Index(message); err != nil {
		s.log.Error("index message failed", "messageId", message.ID, "error", err)
	}

	update := repositories.ConversationUpdate{
		ClinicKey:        clinicKey,
		ProfessionalKey:  proKey,
		SenderKey:        message.SenderKey,
		ClinicName:       s.resolver.Resolve(clinicKey),
		ProfessionalName: s.resolver.Resolve(proKey),
		Preview:          chat.Preview(message.Content),
		At:               message.CreatedAt,
	}
	if _, err := s.conversations.ApplyMessage(update); err != nil {
		return err
	}
	return nil
}

// deliver fans the payload out to every live connection of one participant,
// pruning connections the dispatcher reports gone.
func (s *ChatService) deliver(recipient chat.ParticipantKey, payload any) {
	records, err := s.connections.ListConnections(recipient)
	if err != nil {
		s.log.Error("list connections failed", "participant", recipient.String(), "error", err)
		return
	}
	connectionIDs := lo.Map(records, func(r repositories.ConnectionRecord, _ int) string {
		return r.ConnectionID
	})

	for _, result := range s.dispatcher.Fanout(connectionIDs, payload) {
		switch result.Status {
		case realtime.Stale:
			s.Disconnect(result.ConnectionID)
		case realtime.Failed:
			s.log.Error("delivery failed", "connectionId", result.ConnectionID, "error", result.Err)
		}
	}
}
