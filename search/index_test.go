package search

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/stretchr/testify/require"

	"denti-chat/domain/chat"
)

func newTestIndex(t *testing.T) *MessageIndex {
	t.Helper()
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	index := NewMessageIndex(writer, slog.Default())
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func indexedMessage(conversationID, content string) chat.Message {
	return chat.Message{
		ID:             chat.NewMessageID(time.Now()),
		ConversationID: conversationID,
		Content:        content,
	}
}

func TestMessageIndex_SearchIsScopedToTheConversation(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	mine := indexedMessage("clinic#C1|prof#P1", "crown prep on Friday")
	other := indexedMessage("clinic#C1|prof#P2", "crown prep on Monday")
	req.NoError(index.Index(mine))
	req.NoError(index.Index(other))

	ids, err := index.Search(context.Background(), "clinic#C1|prof#P1", "crown", 10)
	req.NoError(err)
	req.Equal([]string{mine.ID}, ids)
}

func TestMessageIndex_NoMatchesYieldsAnEmptyResult(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	req.NoError(index.Index(indexedMessage("clinic#C1|prof#P1", "see you tomorrow")))

	ids, err := index.Search(context.Background(), "clinic#C1|prof#P1", "radiograph", 10)
	req.NoError(err)
	req.Empty(ids)
}

func TestMessageIndex_ReindexingTheSameIdIsIdempotent(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	message := indexedMessage("clinic#C1|prof#P1", "crown prep")
	req.NoError(index.Index(message))
	req.NoError(index.Index(message))

	ids, err := index.Search(context.Background(), "clinic#C1|prof#P1", "crown", 10)
	req.NoError(err)
	req.Len(ids, 1)
}

func TestMessageIndex_RespectsTheLimit(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	for i := 0; i < 5; i++ {
		req.NoError(index.Index(indexedMessage("clinic#C1|prof#P1", "crown prep")))
	}

	ids, err := index.Search(context.Background(), "clinic#C1|prof#P1", "crown", 3)
	req.NoError(err)
	req.Len(ids, 3)
}
