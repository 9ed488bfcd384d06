//go:generate go run go.uber.org/mock/mockgen -source=resolver.go -destination=../mocks/mock_name_resolver.go -package=mocks
// Package names resolves participant keys to display names through a
// size-bounded per-process cache. The cache is best effort and
// non-authoritative: a miss just costs a profile lookup, and losing the
// whole cache on restart is fine.
package names

import (
	"log/slog"

	"github.com/dgraph-io/ristretto/v2"

	"denti-chat/domain/chat"
	"denti-chat/repositories"
)

type IResolver interface {
	Resolve(key chat.ParticipantKey) string
}

type Resolver struct {
	profiles repositories.IProfileRepository
	cache    *ristretto.Cache[string, string]
	log      *slog.Logger
}

// NewResolver bounds the cache to maxEntries display names.
func NewResolver(profiles repositories.IProfileRepository, maxEntries int64, log *slog.Logger) (*Resolver, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Resolver{profiles: profiles, cache: cache, log: log}, nil
}

// Resolve never fails: when the profile row is missing or unreadable it
// falls back to the raw identifier, which is always correct, merely ugly.
func (r *Resolver) Resolve(key chat.ParticipantKey) string {
	if name, ok := r.cache.Get(key.String()); ok {
		return name
	}

	name, err := r.profiles.DisplayName(key)
	if err != nil || name == "" {
		r.log.Debug("display name fallback", "participant", key.String())
		return key.ID()
	}

	r.cache.Set(key.String(), name, 1)
	return name
}
