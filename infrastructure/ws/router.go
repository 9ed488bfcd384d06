package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	stderrors "errors"

	"github.com/go-playground/validator/v10"

	"denti-chat/auth"
	"denti-chat/domain/chat"
	"denti-chat/errors"
	"denti-chat/realtime"
	"denti-chat/services"
)

// Action is the closed set of client frame actions. An unrecognized string
// maps to the unknown-action error reply, never to a transport failure.
type Action string

const (
	ActionSendMessage      Action = "sendMessage"
	ActionGetHistory       Action = "getHistory"
	ActionMarkRead         Action = "markRead"
	ActionGetConversations Action = "getConversations"
	ActionSearchMessages   Action = "searchMessages"
)

type sendMessageRequest struct {
	ClinicID        string `json:"clinicId" validate:"required"`
	ProfessionalSub string `json:"professionalSub" validate:"required"`
	Content         string `json:"content" validate:"required,max=1000"`
	MessageType     string `json:"messageType" validate:"omitempty,oneof=user system"`
}

type getHistoryRequest struct {
	ClinicID        string  `json:"clinicId" validate:"required"`
	ProfessionalSub string  `json:"professionalSub" validate:"required"`
	Limit           int     `json:"limit" validate:"omitempty,min=1"`
	NextKey         *string `json:"nextKey"`
}

type markReadRequest struct {
	ClinicID        string `json:"clinicId" validate:"required"`
	ProfessionalSub string `json:"professionalSub" validate:"required"`
}

type searchMessagesRequest struct {
	ClinicID        string `json:"clinicId" validate:"required"`
	ProfessionalSub string `json:"professionalSub" validate:"required"`
	Query           string `json:"query" validate:"required"`
	Limit           int    `json:"limit" validate:"omitempty,min=1"`
}

// Router decodes client frames, validates them and invokes the chat
// service. Every reply, including every error, goes to the caller's own
// connection; the router never closes the socket itself.
type Router struct {
	chat       services.IChatService
	dispatcher realtime.IDispatcher
	validate   *validator.Validate
	log        *slog.Logger
}

func NewRouter(chat services.IChatService, dispatcher realtime.IDispatcher, log *slog.Logger) *Router {
	return &Router{
		chat:       chat,
		dispatcher: dispatcher,
		validate:   validator.New(),
		log:        log,
	}
}

// Route handles one inbound frame. The claims are the identity the
// connection registered with; request bodies never override them.
func (r *Router) Route(claims auth.UserClaims, connectionID string, frame []byte) {
	var envelope struct {
		Action Action `json:"action"`
	}
	if err := json.Unmarshal(frame, &envelope); err != nil {
		r.replyError(connectionID, "malformed frame")
		return
	}

	switch envelope.Action {
	case ActionSendMessage:
		r.sendMessage(claims, connectionID, frame)
	case ActionGetHistory:
		r.getHistory(claims, connectionID, frame)
	case ActionMarkRead:
		r.markRead(claims, connectionID, frame)
	case ActionGetConversations:
		r.getConversations(claims, connectionID)
	case ActionSearchMessages:
		r.searchMessages(claims, connectionID, frame)
	default:
		r.replyError(connectionID, errors.ErrUnknownAction.Error())
	}
}

func (r *Router) sendMessage(claims auth.UserClaims, connectionID string, frame []byte) {
	var req sendMessageRequest
	if !r.decode(connectionID, frame, &req) {
		return
	}
	cmd := chat.SendMessageCommand{
		ClinicID:        req.ClinicID,
		ProfessionalSub: req.ProfessionalSub,
		Content:         req.Content,
		MessageType:     chat.MessageType(req.MessageType),
	}
	// The service acks the sender itself on success.
	if _, err := r.chat.SendMessage(context.Background(), claims, connectionID, cmd); err != nil {
		r.replyServiceError(connectionID, "sendMessage", err)
	}
}

func (r *Router) getHistory(claims auth.UserClaims, connectionID string, frame []byte) {
	var req getHistoryRequest
	if !r.decode(connectionID, frame, &req) {
		return
	}
	cmd := chat.GetHistoryCommand{
		ClinicID:        req.ClinicID,
		ProfessionalSub: req.ProfessionalSub,
		Limit:           req.Limit,
		NextKey:         req.NextKey,
	}
	payload, err := r.chat.GetHistory(claims, cmd)
	if err != nil {
		r.replyServiceError(connectionID, "getHistory", err)
		return
	}
	r.reply(connectionID, payload)
}

func (r *Router) markRead(claims auth.UserClaims, connectionID string, frame []byte) {
	var req markReadRequest
	if !r.decode(connectionID, frame, &req) {
		return
	}
	payload, err := r.chat.MarkRead(claims, chat.MarkReadCommand{
		ClinicID:        req.ClinicID,
		ProfessionalSub: req.ProfessionalSub,
	})
	if err != nil {
		r.replyServiceError(connectionID, "markRead", err)
		return
	}
	r.reply(connectionID, payload)
}

func (r *Router) getConversations(claims auth.UserClaims, connectionID string) {
	payload, err := r.chat.ListConversations(claims)
	if err != nil {
		r.replyServiceError(connectionID, "getConversations", err)
		return
	}
	r.reply(connectionID, payload)
}

func (r *Router) searchMessages(claims auth.UserClaims, connectionID string, frame []byte) {
	var req searchMessagesRequest
	if !r.decode(connectionID, frame, &req) {
		return
	}
	payload, err := r.chat.SearchMessages(context.Background(), claims, chat.SearchMessagesCommand{
		ClinicID:        req.ClinicID,
		ProfessionalSub: req.ProfessionalSub,
		Query:           req.Query,
		Limit:           req.Limit,
	})
	if err != nil {
		r.replyServiceError(connectionID, "searchMessages", err)
		return
	}
	r.reply(connectionID, payload)
}

// decode unmarshals and validates a request, replying with a validation
// error frame on failure. No storage is touched for invalid requests.
func (r *Router) decode(connectionID string, frame []byte, req any) bool {
	if err := json.Unmarshal(frame, req); err != nil {
		r.replyError(connectionID, "malformed frame")
		return false
	}
	if err := r.validate.Struct(req); err != nil {
		r.replyError(connectionID, "invalid request: "+err.Error())
		return false
	}
	return true
}

func (r *Router) reply(connectionID string, payload any) {
	if err := r.dispatcher.Send(connectionID, payload); err != nil {
		r.log.Warn("reply failed", "connectionId", connectionID, "error", err)
	}
}

// replyServiceError maps service errors onto the error-frame taxonomy.
// Domain rejections carry their own message; anything else is surfaced as
// an internal error and logged with full context.
func (r *Router) replyServiceError(connectionID, action string, err error) {
	switch {
	case stderrors.Is(err, errors.ErrUnauthorized),
		stderrors.Is(err, errors.ErrMissingParticipants),
		stderrors.Is(err, errors.ErrEmptyContent),
		stderrors.Is(err, errors.ErrContentTooLong):
		r.replyError(connectionID, err.Error())
	default:
		r.log.Error("action failed", "action", action, "connectionId", connectionID, "error", err)
		r.replyError(connectionID, "internal error")
	}
}

func (r *Router) replyError(connectionID, message string) {
	r.reply(connectionID, services.NewErrorPayload(message))
}
