package repositories

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"denti-chat/domain/chat"
)

func storedMessages(t *testing.T, repository *MessageRepository, conversationID string, n int) []chat.Message {
	t.Helper()
	base := time.Now().UTC().Truncate(time.Millisecond)
	messages := make([]chat.Message, 0, n)
	for i := 0; i < n; i++ {
		at := base.Add(time.Duration(i) * time.Second)
		message := chat.Message{
			ID:             chat.NewMessageID(at),
			ConversationID: conversationID,
			SenderKey:      chat.ClinicKey("C1"),
			SenderName:     "Bright Smiles",
			Content:        fmt.Sprintf("message %d", i),
			Type:           chat.MessageTypeUser,
			CreatedAt:      at,
		}
		require.NoError(t, repository.Append(message))
		messages = append(messages, message)
	}
	return messages
}

func Test_History_Returns_Newest_First(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())
	conversationID := "clinic#C1|prof#P1"

	stored := storedMessages(t, repository, conversationID, 3)

	messages, nextKey, err := repository.History(conversationID, 50, nil)
	req.NoError(err)
	req.Len(messages, 3)
	req.Nil(nextKey, "a fully drained conversation has no continuation key")
	req.Equal(stored[2].Content, messages[0].Content)
	req.Equal(stored[0].Content, messages[2].Content)
}

func Test_History_Paginates_With_An_Opaque_Cursor(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())
	conversationID := "clinic#C1|prof#P1"

	storedMessages(t, repository, conversationID, 5)

	first, nextKey, err := repository.History(conversationID, 2, nil)
	req.NoError(err)
	req.Len(first, 2)
	req.NotNil(nextKey)

	second, nextKey, err := repository.History(conversationID, 2, nextKey)
	req.NoError(err)
	req.Len(second, 2)
	req.NotNil(nextKey)

	third, nextKey, err := repository.History(conversationID, 2, nextKey)
	req.NoError(err)
	req.Len(third, 1)
	req.Nil(nextKey)

	// No overlap and no loss across pages.
	seen := make(map[string]struct{})
	for _, page := range [][]chat.Message{first, second, third} {
		for _, message := range page {
			_, dup := seen[message.ID]
			req.False(dup, "message %s returned twice", message.ID)
			seen[message.ID] = struct{}{}
		}
	}
	req.Len(seen, 5)
}

func Test_History_Of_Empty_Conversation(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	messages, nextKey, err := repository.History("clinic#C9|prof#P9", 50, nil)
	req.NoError(err)
	req.Empty(messages)
	req.Nil(nextKey)
}

func Test_History_Is_Scoped_Per_Conversation(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	storedMessages(t, repository, "clinic#C1|prof#P1", 2)
	storedMessages(t, repository, "clinic#C1|prof#P2", 3)

	messages, _, err := repository.History("clinic#C1|prof#P1", 50, nil)
	req.NoError(err)
	req.Len(messages, 2)
}

func Test_Get_Returns_The_Stored_Message(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())
	conversationID := "clinic#C1|prof#P1"

	stored := storedMessages(t, repository, conversationID, 1)

	message, err := repository.Get(conversationID, stored[0].ID)
	req.NoError(err)
	req.Equal(stored[0], message)
}
