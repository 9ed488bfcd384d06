//go:generate go run go.uber.org/mock/mockgen -source=connection.go -destination=../mocks/mock_connection_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"denti-chat/auth"
	"denti-chat/domain/chat"
)

// connectionTTL garbage-collects registry rows if a disconnect is ever
// missed. Badger expires the row passively.
const connectionTTL = 24 * time.Hour

const (
	connPrefix    = "conn:"
	connIdxPrefix = "connidx:"
)

type IConnectionRepository interface {
	Register(record ConnectionRecord) error
	Unregister(connectionID string) error
	ListConnections(key chat.ParticipantKey) ([]ConnectionRecord, error)
}

// ConnectionRecord is one live connection of a participant. Several records
// may share a ParticipantKey (multi-device, multi-tab).
type ConnectionRecord struct {
	ParticipantKey chat.ParticipantKey `json:"participantKey"`
	ConnectionID   string              `json:"connectionId"`
	Role           auth.Role           `json:"role"`
	DisplayName    string              `json:"displayName"`
	Subject        string              `json:"subject"`
	ConnectedAt    time.Time           `json:"connectedAt"`
}

type ConnectionRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewConnectionRepository(db *badger.DB, log *slog.Logger) *ConnectionRepository {
	return &ConnectionRepository{db: db, log: log}
}

// Register upserts the registry row and its connection-id index row. Both
// carry the TTL; re-registering the same pair refreshes it.
func (r *ConnectionRepository) Register(record ConnectionRecord) error {
	value, err := json.Marshal(record)
	if err != nil {
		return err
	}
	primary := connKey(record.ParticipantKey, record.ConnectionID)
	index := connIdxKey(record.ConnectionID, record.ParticipantKey)

	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.SetEntry(badger.NewEntry(primary, value).WithTTL(connectionTTL)); err != nil {
			return err
		}
		return txn.SetEntry(badger.NewEntry(index, nil).WithTTL(connectionTTL))
	})
}

// Unregister resolves the owning participant key(s) through the
// connection-id index and deletes every matching row. An absent row is a
// no-op: disconnect can race with gone-connection pruning.
func (r *ConnectionRepository) Unregister(connectionID string) error {
	prefix := []byte(connIdxPrefix + connectionID + ":")

	return r.db.Update(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		var stale [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			participant := string(key[len(prefix):])
			stale = append(stale, key, connKey(chat.ParticipantKey(participant), connectionID))
		}

		for _, key := range stale {
			if err := txn.Delete(key); err != nil && err != badger.ErrKeyNotFound {
				return err
			}
		}
		return nil
	})
}

// ListConnections returns the live connections of one participant. An empty
// result means the participant is offline, which is a normal outcome.
func (r *ConnectionRepository) ListConnections(key chat.ParticipantKey) ([]ConnectionRecord, error) {
	prefix := []byte(connPrefix + key.String() + ":")
	records := make([]ConnectionRecord, 0)

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var record ConnectionRecord
				if err := json.Unmarshal(value, &record); err != nil {
					return err
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func connKey(participant chat.ParticipantKey, connectionID string) []byte {
	return []byte(connPrefix + participant.String() + ":" + connectionID)
}

func connIdxKey(connectionID string, participant chat.ParticipantKey) []byte {
	return []byte(connIdxPrefix + connectionID + ":" + participant.String())
}
