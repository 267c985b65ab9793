package speech

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// AudioStore keeps synthesized clips until the telephony provider has
// fetched them.
type AudioStore struct {
	cache *cache.Cache
}

func NewAudioStore(ttl time.Duration) *AudioStore {
	return &AudioStore{cache: cache.New(ttl, ttl)}
}

// Put stores a clip and returns its id.
func (s *AudioStore) Put(audio []byte) string {
	id := uuid.NewString()
	s.cache.Set(id, audio, cache.DefaultExpiration)
	return id
}

func (s *AudioStore) Get(id string) ([]byte, bool) {
	if x, found := s.cache.Get(id); found {
		return x.([]byte), true
	}
	return nil, false
}
