//go:generate go run go.uber.org/mock/mockgen -source=conversation.go -destination=../mocks/mock_conversation_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"denti-chat/domain/chat"
	"denti-chat/errors"
)

const (
	convPrefix    = "conv:"
	convIdxPrefix = "convidx:"
)

type IConversationRepository interface {
	ApplyMessage(update ConversationUpdate) (chat.Conversation, error)
	MarkRead(conversationID string, reader chat.ParticipantKey) (chat.Conversation, error)
	Get(conversationID string) (chat.Conversation, error)
	ListByParticipant(key chat.ParticipantKey) ([]chat.Conversation, error)
}

// ConversationUpdate is the aggregate mutation applied on every send:
// increment the recipient's unread counter, zero the sender's, refresh the
// preview, timestamp and display names.
type ConversationUpdate struct {
	ClinicKey        chat.ParticipantKey
	ProfessionalKey  chat.ParticipantKey
	SenderKey        chat.ParticipantKey
	ClinicName       string
	ProfessionalName string
	Preview          string
	At               time.Time
}

type ConversationRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewConversationRepository(db *badger.DB, log *slog.Logger) *ConversationRepository {
	return &ConversationRepository{db: db, log: log}
}

// ApplyMessage upserts the aggregate inside a single transaction, so
// concurrent sends from both sides each apply atomically: counters cannot
// go negative or be lost, and the preview is last-write-wins.
func (r *ConversationRepository) ApplyMessage(update ConversationUpdate) (chat.Conversation, error) {
	id := chat.ConversationID(update.ClinicKey, update.ProfessionalKey)
	var result chat.Conversation

	err := r.db.Update(func(txn *badger.Txn) error {
		conversation, err := readConversation(txn, id)
		if err == badger.ErrKeyNotFound {
			conversation = chat.Conversation{
				ID:              id,
				ClinicKey:       update.ClinicKey,
				ProfessionalKey: update.ProfessionalKey,
			}
		} else if err != nil {
			return err
		}

		conversation.ClinicName = update.ClinicName
		conversation.ProfessionalName = update.ProfessionalName
		conversation.LastMessage = update.Preview
		conversation.LastMessageAt = update.At
		if update.SenderKey.IsClinic() {
			conversation.UnreadPro++
			conversation.UnreadClinic = 0
		} else {
			conversation.UnreadClinic++
			conversation.UnreadPro = 0
		}

		if err := writeConversation(txn, conversation); err != nil {
			return err
		}
		for _, participant := range []chat.ParticipantKey{update.ClinicKey, update.ProfessionalKey} {
			if err := txn.Set(convIdxKey(participant, id), nil); err != nil {
				return err
			}
		}
		result = conversation
		return nil
	})
	if err != nil {
		return chat.Conversation{}, fmt.Errorf("apply message on %s: %w", id, err)
	}
	return result, nil
}

// MarkRead zeroes the reader's own counter only. Reading a conversation
// that does not exist yet is a no-op, not an error.
func (r *ConversationRepository) MarkRead(conversationID string, reader chat.ParticipantKey) (chat.Conversation, error) {
	var result chat.Conversation

	err := r.db.Update(func(txn *badger.Txn) error {
		conversation, err := readConversation(txn, conversationID)
		if err == badger.ErrKeyNotFound {
			r.log.Debug("markRead on absent conversation", "conversationId", conversationID)
			return nil
		}
		if err != nil {
			return err
		}

		if reader.IsClinic() {
			conversation.UnreadClinic = 0
		} else {
			conversation.UnreadPro = 0
		}
		result = conversation
		return writeConversation(txn, conversation)
	})
	if err != nil {
		return chat.Conversation{}, fmt.Errorf("mark read on %s: %w", conversationID, err)
	}
	return result, nil
}

func (r *ConversationRepository) Get(conversationID string) (chat.Conversation, error) {
	var conversation chat.Conversation
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		conversation, err = readConversation(txn, conversationID)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return chat.Conversation{}, fmt.Errorf("%w: %s", errors.ErrConversationNotFound, conversationID)
	}
	return conversation, err
}

// ListByParticipant resolves the participant's conversations through the
// index rows and returns them most-recently-active first.
func (r *ConversationRepository) ListByParticipant(key chat.ParticipantKey) ([]chat.Conversation, error) {
	prefix := []byte(convIdxPrefix + key.String() + ":")
	conversations := make([]chat.Conversation, 0)

	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id := string(it.Item().Key()[len(prefix):])
			conversation, err := readConversation(txn, id)
			if err == badger.ErrKeyNotFound {
				// Index row without its aggregate; skip rather than fail the listing.
				r.log.Warn("dangling conversation index", "conversationId", id)
				continue
			}
			if err != nil {
				return err
			}
			conversations = append(conversations, conversation)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastMessageAt.After(conversations[j].LastMessageAt)
	})
	return conversations, nil
}

func readConversation(txn *badger.Txn, id string) (chat.Conversation, error) {
	item, err := txn.Get([]byte(convPrefix + id))
	if err != nil {
		return chat.Conversation{}, err
	}
	var conversation chat.Conversation
	err = item.Value(func(value []byte) error {
		return json.Unmarshal(value, &conversation)
	})
	return conversation, err
}

func writeConversation(txn *badger.Txn, conversation chat.Conversation) error {
	value, err := json.Marshal(conversation)
	if err != nil {
		return err
	}
	return txn.Set([]byte(convPrefix+conversation.ID), value)
}

func convIdxKey(participant chat.ParticipantKey, conversationID string) []byte {
	return []byte(convIdxPrefix + participant.String() + ":" + conversationID)
}
