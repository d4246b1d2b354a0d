package store

import (
	"context"
	"errors"
	"log"
	"strconv"
	"sync"

	"github.com/example/proskill/internal/apiclient"
	"github.com/example/proskill/pkg/models"
)

// Service is the part of the word service the stores use
type Service interface {
	ListWords(ctx context.Context, userID int64) ([]models.Word, error)
	Stats(ctx context.Context, userID int64) (models.UserStats, error)
	AddWord(ctx context.Context, userID int64, en, uz string) (string, error)
	DeleteWord(ctx context.Context, userID int64, id string) error
	RecordAnswer(ctx context.Context, userID int64, isCorrect bool) (models.UserStats, error)
}

// RemoteStore sends every operation to the word service and keeps a local
// snapshot per user that List falls back to when the service is unreachable.
type RemoteStore struct {
	service Service
	cache   Slots

	mu    sync.Mutex
	users map[int64]*collection
}

// NewRemoteStore creates a store over service, caching snapshots in cache
func NewRemoteStore(service Service, cache Slots) *RemoteStore {
	return &RemoteStore{
		service: service,
		cache:   cache,
		users:   make(map[int64]*collection),
	}
}

// List fetches the words. Any failure falls back to the cached snapshot.
func (s *RemoteStore) List(ctx context.Context, userID int64) ([]models.Word, error) {
	c := s.collection(userID)
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := s.refresh(ctx, userID, c); err != nil {
		return nil, err
	}
	return c.copyWords(), nil
}

// Add creates the word on the service, then prepends it locally
func (s *RemoteStore) Add(ctx context.Context, userID int64, source, target string) (models.Word, error) {
	c := s.collection(userID)
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		if err := s.refresh(ctx, userID, c); err != nil {
			return models.Word{}, connectionError(err)
		}
	}

	source, target, err := validate(c.words, source, target)
	if err != nil {
		return models.Word{}, err
	}

	id, err := s.service.AddWord(ctx, userID, source, target)
	if err != nil {
		log.Printf("Error adding word for user %d: %v", userID, err)
		return models.Word{}, connectionError(err)
	}

	word := models.Word{ID: id, SourceTerm: source, TargetTerm: target}
	c.words = prepend(c.words, word)
	s.saveSnapshot(ctx, userID, c.words)
	return word, nil
}

// Remove deletes the word on the service. A word the service does not know is already gone.
func (s *RemoteStore) Remove(ctx context.Context, userID int64, wordID string) error {
	c := s.collection(userID)
	c.mu.Lock()
	defer c.mu.Unlock()

	err := s.service.DeleteWord(ctx, userID, wordID)
	if err != nil && !errors.Is(err, apiclient.ErrNotFound) {
		log.Printf("Error deleting word %s for user %d: %v", wordID, userID, err)
		return connectionError(err)
	}

	updated, found := without(c.words, wordID)
	if found {
		c.words = updated
		s.saveSnapshot(ctx, userID, c.words)
	}
	return nil
}

func (s *RemoteStore) refresh(ctx context.Context, userID int64, c *collection) error {
	words, err := s.service.ListWords(ctx, userID)
	if err == nil {
		c.words = words
		c.loaded = true
		s.saveSnapshot(ctx, userID, words)
		return nil
	}

	log.Printf("Word service unavailable for user %d, using local snapshot: %v", userID, err)
	cached, cacheErr := readWords(ctx, s.cache, snapshotSlot(userID))
	if cacheErr != nil {
		return cacheErr
	}
	c.words = cached
	c.loaded = true
	return nil
}

func (s *RemoteStore) saveSnapshot(ctx context.Context, userID int64, words []models.Word) {
	if err := writeWords(ctx, s.cache, snapshotSlot(userID), words); err != nil {
		log.Printf("Error caching words for user %d: %v", userID, err)
	}
}

func (s *RemoteStore) collection(userID int64) *collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.users[userID]
	if !ok {
		c = &collection{}
		s.users[userID] = c
	}
	return c
}

// snapshotSlot keys cached snapshots by user, the service is multi-user
func snapshotSlot(userID int64) string {
	return WordsSlot + "_" + strconv.FormatInt(userID, 10)
}

// RemoteStats delegates to the word service, which owns the authoritative counters
type RemoteStats struct {
	service Service
}

// NewRemoteStats creates a tracker over service
func NewRemoteStats(service Service) *RemoteStats {
	return &RemoteStats{service: service}
}

// Get fetches the user's statistics
func (t *RemoteStats) Get(ctx context.Context, userID int64) (models.UserStats, error) {
	return t.service.Stats(ctx, userID)
}

// RecordAnswer reports the answer and returns the service's updated statistics
func (t *RemoteStats) RecordAnswer(ctx context.Context, userID int64, isCorrect bool) (models.UserStats, error) {
	stats, err := t.service.RecordAnswer(ctx, userID, isCorrect)
	if err != nil {
		return models.UserStats{}, connectionError(err)
	}
	return stats, nil
}
