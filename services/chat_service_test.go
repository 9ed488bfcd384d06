package services_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"denti-chat/auth"
	"denti-chat/domain/chat"
	"denti-chat/errors"
	"denti-chat/mocks"
	"denti-chat/moderation"
	"denti-chat/observability"
	"denti-chat/realtime"
	"denti-chat/repositories"
	"denti-chat/services"
)

type chatFixture struct {
	service       *services.ChatService
	connections   *repositories.ConnectionRepository
	conversations *repositories.ConversationRepository
	messages      *repositories.MessageRepository
	dispatcher    *mocks.MockIDispatcher
	index         *mocks.MockIMessageIndex
}

func newChatFixture(t *testing.T, ctrl *gomock.Controller) *chatFixture {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.Default()
	connections := repositories.NewConnectionRepository(db, log)
	conversations := repositories.NewConversationRepository(db, log)
	messages := repositories.NewMessageRepository(db, log)

	resolver := mocks.NewMockIResolver(ctrl)
	resolver.EXPECT().Resolve(gomock.Any()).DoAndReturn(func(key chat.ParticipantKey) string {
		return key.ID()
	}).AnyTimes()

	dispatcher := mocks.NewMockIDispatcher(ctrl)
	index := mocks.NewMockIMessageIndex(ctrl)

	censor, err := moderation.NewCensor([]string{"scam"}, '*')
	require.NoError(t, err)

	service := services.NewChatService(
		connections, conversations, messages,
		resolver, dispatcher, index, censor,
		observability.NewMetrics(prometheus.NewRegistry()), log)

	return &chatFixture{
		service:       service,
		connections:   connections,
		conversations: conversations,
		messages:      messages,
		dispatcher:    dispatcher,
		index:         index,
	}
}

var (
	clinicCaller = auth.UserClaims{Subject: "staff-1", Role: auth.RoleClinic, ClinicID: "C1", Name: "Bright Smiles"}
	proCaller    = auth.UserClaims{Subject: "P1", Role: auth.RoleProfessional, Name: "Dana"}
)

func sendCmd(content string) chat.SendMessageCommand {
	return chat.SendMessageCommand{ClinicID: "C1", ProfessionalSub: "P1", Content: content}
}

func TestChatService_SendMessage(t *testing.T) {
	t.Run("persists, fans out to the recipient and acks the sender", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		req := require.New(t)
		f := newChatFixture(t, ctrl)

		req.NoError(f.service.Connect(proCaller, "pro-conn"))

		f.index.EXPECT().Index(gomock.Any()).Return(nil)
		f.dispatcher.EXPECT().
			Fanout([]string{"pro-conn"}, gomock.Any()).
			DoAndReturn(func(ids []string, payload any) []realtime.DeliveryResult {
				message, ok := payload.(services.MessagePayload)
				req.True(ok)
				req.Equal("message", message.Type)
				req.Equal("hello Dana", message.Content)
				return []realtime.DeliveryResult{{ConnectionID: "pro-conn", Status: realtime.Delivered}}
			})
		f.dispatcher.EXPECT().
			Send("clinic-conn", gomock.Any()).
			DoAndReturn(func(_ string, payload any) error {
				ack, ok := payload.(services.AckPayload)
				req.True(ok)
				req.Equal("ack", ack.Type)
				req.Equal("sendMessage", ack.Action)
				req.NotEmpty(ack.MessageID)
				return nil
			})

		message, err := f.service.SendMessage(context.Background(), clinicCaller, "clinic-conn", sendCmd("hello Dana"))
		req.NoError(err)
		req.Equal(chat.MessageTypeUser, message.Type)
		req.Equal("clinic#C1", message.SenderKey.String())

		history, err := f.service.GetHistory(clinicCaller, chat.GetHistoryCommand{ClinicID: "C1", ProfessionalSub: "P1"})
		req.NoError(err)
		req.Len(history.Items, 1)

		conversations, err := f.service.ListConversations(proCaller)
		req.NoError(err)
		req.Len(conversations.Conversations, 1)
		req.Equal(1, conversations.Conversations[0].UnreadCount)
	})

	t.Run("rejects an impersonating caller without touching storage", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		req := require.New(t)
		f := newChatFixture(t, ctrl)

		impersonator := auth.UserClaims{Subject: "P2", Role: auth.RoleProfessional}
		_, err := f.service.SendMessage(context.Background(), impersonator, "conn-x", sendCmd("let me in"))
		req.ErrorIs(err, errors.ErrUnauthorized)

		history, err := f.service.GetHistory(proCaller, chat.GetHistoryCommand{ClinicID: "C1", ProfessionalSub: "P1"})
		req.NoError(err)
		req.Empty(history.Items)
	})

	t.Run("accepts exactly the maximum content length", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		req := require.New(t)
		f := newChatFixture(t, ctrl)

		f.index.EXPECT().Index(gomock.Any()).Return(nil)
		f.dispatcher.EXPECT().Fanout(gomock.Any(), gomock.Any()).Return(nil)
		f.dispatcher.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

		_, err := f.service.SendMessage(context.Background(), proCaller, "conn-p",
			sendCmd(strings.Repeat("x", chat.MaxContentLength)))
		req.NoError(err)
	})

	t.Run("rejects content one rune over the bound with no storage mutation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		req := require.New(t)
		f := newChatFixture(t, ctrl)

		_, err := f.service.SendMessage(context.Background(), proCaller, "conn-p",
			sendCmd(strings.Repeat("x", chat.MaxContentLength+1)))
		req.ErrorIs(err, errors.ErrContentTooLong)

		history, err := f.service.GetHistory(proCaller, chat.GetHistoryCommand{ClinicID: "C1", ProfessionalSub: "P1"})
		req.NoError(err)
		req.Empty(history.Items)
	})

	t.Run("rejects empty content and missing participants", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		req := require.New(t)
		f := newChatFixture(t, ctrl)

		_, err := f.service.SendMessage(context.Background(), proCaller, "conn-p", sendCmd(""))
		req.ErrorIs(err, errors.ErrEmptyContent)

		_, err = f.service.SendMessage(context.Background(), proCaller, "conn-p",
			chat.SendMessageCommand{ProfessionalSub: "P1", Content: "hi"})
		req.ErrorIs(err, errors.ErrMissingParticipants)
	})

	t.Run("censors configured words before persisting", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		req := require.New(t)
		f := newChatFixture(t, ctrl)

		f.index.EXPECT().Index(gomock.Any()).Return(nil)
		f.dispatcher.EXPECT().Fanout(gomock.Any(), gomock.Any()).Return(nil)
		f.dispatcher.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

		message, err := f.service.SendMessage(context.Background(), proCaller, "conn-p", sendCmd("this is a scam"))
		req.NoError(err)
		req.Equal("this is a ****", message.Content)
	})

	t.Run("stale recipient connections are pruned and the message survives", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		req := require.New(t)
		f := newChatFixture(t, ctrl)

		req.NoError(f.service.Connect(proCaller, "gone-conn"))

		f.index.EXPECT().Index(gomock.Any()).Return(nil)
		f.dispatcher.EXPECT().
			Fanout([]string{"gone-conn"}, gomock.Any()).
			Return([]realtime.DeliveryResult{{ConnectionID: "gone-conn", Status: realtime.Stale, Err: errors.ErrConnectionGone}})
		f.dispatcher.EXPECT().Send("clinic-conn", gomock.Any()).Return(nil)

		_, err := f.service.SendMessage(context.Background(), clinicCaller, "clinic-conn", sendCmd("are you there?"))
		req.NoError(err)

		// The push failed everywhere, yet the pull path still sees the message.
		history, err := f.service.GetHistory(proCaller, chat.GetHistoryCommand{ClinicID: "C1", ProfessionalSub: "P1"})
		req.NoError(err)
		req.Len(history.Items, 1)
		req.Equal("are you there?", history.Items[0].Content)

		records, err := f.connections.ListConnections(chat.ProfessionalKey("P1"))
		req.NoError(err)
		req.Empty(records, "stale registry row must be pruned")
	})
}

func TestChatService_MarkRead(t *testing.T) {
	t.Run("zeroes only the reader's counter", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		req := require.New(t)
		f := newChatFixture(t, ctrl)

		f.index.EXPECT().Index(gomock.Any()).Return(nil).Times(2)
		f.dispatcher.EXPECT().Fanout(gomock.Any(), gomock.Any()).Return(nil).Times(2)
		f.dispatcher.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		_, err := f.service.SendMessage(context.Background(), clinicCaller, "c-conn", sendCmd("one"))
		req.NoError(err)
		_, err = f.service.SendMessage(context.Background(), clinicCaller, "c-conn", sendCmd("two"))
		req.NoError(err)

		ack, err := f.service.MarkRead(proCaller, chat.MarkReadCommand{ClinicID: "C1", ProfessionalSub: "P1"})
		req.NoError(err)
		req.Equal("markRead", ack.Action)

		conversations, err := f.service.ListConversations(proCaller)
		req.NoError(err)
		req.Equal(0, conversations.Conversations[0].UnreadCount)
	})

	t.Run("enforces the same authorization rule as sendMessage", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		req := require.New(t)
		f := newChatFixture(t, ctrl)

		outsider := auth.UserClaims{Subject: "P2", Role: auth.RoleProfessional}
		_, err := f.service.MarkRead(outsider, chat.MarkReadCommand{ClinicID: "C1", ProfessionalSub: "P1"})
		req.ErrorIs(err, errors.ErrUnauthorized)
	})
}

func TestChatService_SearchMessages(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	req := require.New(t)
	f := newChatFixture(t, ctrl)

	var indexedID string
	f.index.EXPECT().Index(gomock.Any()).DoAndReturn(func(message chat.Message) error {
		indexedID = message.ID
		return nil
	})
	f.dispatcher.EXPECT().Fanout(gomock.Any(), gomock.Any()).Return(nil)
	f.dispatcher.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

	_, err := f.service.SendMessage(context.Background(), proCaller, "p-conn", sendCmd("crown prep tomorrow"))
	req.NoError(err)

	conversationID := chat.ConversationID(chat.ClinicKey("C1"), chat.ProfessionalKey("P1"))
	f.index.EXPECT().
		Search(gomock.Any(), conversationID, "crown", chat.DefaultHistoryLimit).
		Return([]string{indexedID}, nil)

	payload, err := f.service.SearchMessages(context.Background(), proCaller, chat.SearchMessagesCommand{
		ClinicID: "C1", ProfessionalSub: "P1", Query: "crown",
	})
	req.NoError(err)
	req.Len(payload.Items, 1)
	req.Equal("crown prep tomorrow", payload.Items[0].Content)

	// Outsiders cannot search someone else's conversation.
	outsider := auth.UserClaims{Subject: "P2", Role: auth.RoleProfessional}
	_, err = f.service.SearchMessages(context.Background(), outsider, chat.SearchMessagesCommand{
		ClinicID: "C1", ProfessionalSub: "P1", Query: "crown",
	})
	req.ErrorIs(err, errors.ErrUnauthorized)
}

func TestChatService_DisconnectIsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	req := require.New(t)
	f := newChatFixture(t, ctrl)

	req.NoError(f.service.Connect(proCaller, "conn-a"))
	f.service.Disconnect("conn-a")
	f.service.Disconnect("conn-a")

	records, err := f.connections.ListConnections(chat.ProfessionalKey("P1"))
	req.NoError(err)
	req.Empty(records)
}

func TestChatService_GetHistoryClampsTheLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	req := require.New(t)
	f := newChatFixture(t, ctrl)

	f.index.EXPECT().Index(gomock.Any()).Return(nil).AnyTimes()
	f.dispatcher.EXPECT().Fanout(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.dispatcher.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	for i := 0; i < 3; i++ {
		_, err := f.service.SendMessage(context.Background(), proCaller, "p-conn", sendCmd("msg"))
		req.NoError(err)
		time.Sleep(2 * time.Millisecond) // distinct millisecond ids
	}

	history, err := f.service.GetHistory(proCaller, chat.GetHistoryCommand{
		ClinicID: "C1", ProfessionalSub: "P1", Limit: 100000,
	})
	req.NoError(err)
	req.Len(history.Items, 3)
}
