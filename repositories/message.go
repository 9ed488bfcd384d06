//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"denti-chat/domain/chat"
)

const msgPrefix = "msg:"

type IMessageRepository interface {
	Append(message chat.Message) error
	History(conversationID string, limit int, cursor *string) ([]chat.Message, *string, error)
	Get(conversationID, messageID string) (chat.Message, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{db: db, log: log}
}

// Append persists an immutable message. The key is
// "msg:{conversationId}:{messageId}"; message ids start with a zero-padded
// millisecond timestamp, so keys sort chronologically and the random suffix
// breaks same-millisecond ties.
func (r *MessageRepository) Append(message chat.Message) error {
	value, err := json.Marshal(message)
	if err != nil {
		return err
	}
	key := msgPrefix + message.ConversationID + ":" + message.ID
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// Get loads a single message by its composite key.
func (r *MessageRepository) Get(conversationID, messageID string) (chat.Message, error) {
	var message chat.Message
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(msgPrefix + conversationID + ":" + messageID))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &message)
		})
	})
	return message, err
}

// History walks the conversation newest-first. The cursor is the opaque key
// suffix of the last returned message; a nil next cursor means the
// beginning of the conversation was reached.
func (r *MessageRepository) History(conversationID string, limit int, cursor *string) ([]chat.Message, *string, error) {
	prefix := []byte(msgPrefix + conversationID + ":")
	messages := make([]chat.Message, 0, limit)
	var nextKey *string

	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past every message id; "~" sorts above the 0-9a-f id alphabet.
			seekKey = append(append([]byte{}, prefix...), '~')
		default:
			seekKey = append(append([]byte{}, prefix...), []byte(*cursor)...)
		}

		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		var lastSuffix string
		for ; it.ValidForPrefix(prefix); it.Next() {
			if len(messages) == limit {
				nextKey = &lastSuffix
				return nil
			}
			item := it.Item()
			lastSuffix = string(item.Key()[len(prefix):])
			err := item.Value(func(value []byte) error {
				var message chat.Message
				if err := json.Unmarshal(value, &message); err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return messages, nextKey, nil
}
