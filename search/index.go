//go:generate go run go.uber.org/mock/mockgen -source=index.go -destination=../mocks/mock_message_index.go -package=mocks
// Package search maintains a full-text index over message content, scoped
// per conversation. The index is derived data: it can always be rebuilt
// from the message log, so indexing failures are logged, never fatal to a
// send.
package search

import (
	"context"
	"log/slog"

	"github.com/blugelabs/bluge"

	"denti-chat/domain/chat"
)

type IMessageIndex interface {
	Index(message chat.Message) error
	Search(ctx context.Context, conversationID, terms string, limit int) ([]string, error)
	Close() error
}

type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) *MessageIndex {
	return &MessageIndex{writer: writer, log: log}
}

// Index upserts one message document. The document id is the composite
// message key so redelivered writes stay idempotent.
func (i *MessageIndex) Index(message chat.Message) error {
	doc := bluge.NewDocument(message.ID).
		AddField(bluge.NewKeywordField("conversationId", message.ConversationID)).
		AddField(bluge.NewTextField("content", message.Content))
	return i.writer.Update(doc.ID(), doc)
}

// Search returns the ids of matching messages inside one conversation,
// best match first.
func (i *MessageIndex) Search(ctx context.Context, conversationID, terms string, limit int) ([]string, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(conversationID).SetField("conversationId")).
		AddMust(bluge.NewMatchQuery(terms).SetField("content"))

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, limit)
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				ids = append(ids, string(value))
			}
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (i *MessageIndex) Close() error {
	return i.writer.Close()
}
