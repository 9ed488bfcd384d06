//go:generate go run go.uber.org/mock/mockgen -source=profile.go -destination=../mocks/mock_profile_repository.go -package=mocks
package repositories

import (
	"encoding/json"

	"github.com/dgraph-io/badger/v4"

	"denti-chat/domain/chat"
)

const (
	proProfilePrefix    = "prof:"
	clinicProfilePrefix = "clinic:"
)

// IProfileRepository is the keyed view over the clinic and professional
// profile tables owned elsewhere in the marketplace. Only display names are
// read here.
type IProfileRepository interface {
	DisplayName(key chat.ParticipantKey) (string, error)
	PutProfessional(sub, name string) error
	PutClinic(clinicID, name string) error
}

type profileRecord struct {
	Name string `json:"name"`
}

type ProfileRepository struct {
	db *badger.DB
}

func NewProfileRepository(db *badger.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) DisplayName(key chat.ParticipantKey) (string, error) {
	var record profileRecord
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(profileKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &record)
		})
	})
	if err != nil {
		return "", err
	}
	return record.Name, nil
}

func (r *ProfileRepository) PutProfessional(sub, name string) error {
	return r.put(chat.ProfessionalKey(sub), name)
}

func (r *ProfileRepository) PutClinic(clinicID, name string) error {
	return r.put(chat.ClinicKey(clinicID), name)
}

func (r *ProfileRepository) put(key chat.ParticipantKey, name string) error {
	value, err := json.Marshal(profileRecord{Name: name})
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(profileKey(key), value)
	})
}

func profileKey(key chat.ParticipantKey) []byte {
	if key.IsClinic() {
		return []byte(clinicProfilePrefix + key.ID())
	}
	return []byte(proProfilePrefix + key.ID())
}
