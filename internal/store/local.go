package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/example/proskill/internal/database"
	"github.com/example/proskill/pkg/models"
)

// LocalStore keeps the whole word list as one JSON blob in a single slot.
// Local mode is single-user: the slot is shared by every userID.
type LocalStore struct {
	slots  Slots
	now    func() time.Time
	words  collection
	lastID int64
}

// NewLocalStore creates a store over slots
func NewLocalStore(slots Slots) *LocalStore {
	return &LocalStore{slots: slots, now: time.Now}
}

// List reads the slot. A missing or malformed slot is an empty list.
func (s *LocalStore) List(ctx context.Context, _ int64) ([]models.Word, error) {
	s.words.mu.Lock()
	defer s.words.mu.Unlock()

	words, err := readWords(ctx, s.slots, WordsSlot)
	if err != nil {
		return nil, err
	}
	s.words.words = words
	s.words.loaded = true
	return s.words.copyWords(), nil
}

// Add creates a word with a timestamp id and rewrites the slot
func (s *LocalStore) Add(ctx context.Context, _ int64, source, target string) (models.Word, error) {
	s.words.mu.Lock()
	defer s.words.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return models.Word{}, connectionError(err)
	}

	source, target, err := validate(s.words.words, source, target)
	if err != nil {
		return models.Word{}, err
	}

	word := models.Word{ID: s.nextID(), SourceTerm: source, TargetTerm: target}
	updated := prepend(s.words.words, word)
	if err := writeWords(ctx, s.slots, WordsSlot, updated); err != nil {
		return models.Word{}, connectionError(err)
	}
	s.words.words = updated
	return word, nil
}

// Remove drops the word and rewrites the slot
func (s *LocalStore) Remove(ctx context.Context, _ int64, wordID string) error {
	s.words.mu.Lock()
	defer s.words.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return connectionError(err)
	}

	updated, found := without(s.words.words, wordID)
	if !found {
		return nil
	}
	if err := writeWords(ctx, s.slots, WordsSlot, updated); err != nil {
		return connectionError(err)
	}
	s.words.words = updated
	return nil
}

func (s *LocalStore) ensureLoaded(ctx context.Context) error {
	if s.words.loaded {
		return nil
	}
	words, err := readWords(ctx, s.slots, WordsSlot)
	if err != nil {
		return err
	}
	s.words.words = words
	s.words.loaded = true
	return nil
}

// nextID returns a millisecond timestamp, bumped when two words land in the same millisecond
func (s *LocalStore) nextID() string {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func readWords(ctx context.Context, slots Slots, slot string) ([]models.Word, error) {
	data, err := slots.Get(ctx, slot)
	if errors.Is(err, database.ErrNotFound) {
		return []models.Word{}, nil
	}
	if err != nil {
		return nil, err
	}

	var words []models.Word
	if err := json.Unmarshal(data, &words); err != nil {
		log.Printf("Ignoring malformed %s slot: %v", slot, err)
		return []models.Word{}, nil
	}
	if words == nil {
		words = []models.Word{}
	}
	return words, nil
}

func writeWords(ctx context.Context, slots Slots, slot string, words []models.Word) error {
	data, err := json.Marshal(words)
	if err != nil {
		return fmt.Errorf("failed to encode words: %w", err)
	}
	return slots.Put(ctx, slot, data)
}

// LocalStats persists statistics in their own slot
type LocalStats struct {
	mu    sync.Mutex
	slots Slots
}

// NewLocalStats creates a tracker over slots
func NewLocalStats(slots Slots) *LocalStats {
	return &LocalStats{slots: slots}
}

// Get returns the stored statistics with totalWords recomputed from the word slot
func (t *LocalStats) Get(ctx context.Context, _ int64) (models.UserStats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load(ctx)
}

// RecordAnswer applies an answer and persists the result
func (t *LocalStats) RecordAnswer(ctx context.Context, _ int64, isCorrect bool) (models.UserStats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats, err := t.load(ctx)
	if err != nil {
		return models.UserStats{}, err
	}
	stats.Apply(isCorrect)

	data, err := json.Marshal(stats)
	if err != nil {
		return models.UserStats{}, fmt.Errorf("failed to encode stats: %w", err)
	}
	if err := t.slots.Put(ctx, StatsSlot, data); err != nil {
		return models.UserStats{}, err
	}
	return stats, nil
}

func (t *LocalStats) load(ctx context.Context) (models.UserStats, error) {
	var stats models.UserStats

	data, err := t.slots.Get(ctx, StatsSlot)
	switch {
	case errors.Is(err, database.ErrNotFound):
	case err != nil:
		return models.UserStats{}, err
	default:
		if err := json.Unmarshal(data, &stats); err != nil {
			log.Printf("Ignoring malformed %s slot: %v", StatsSlot, err)
			stats = models.UserStats{}
		}
	}

	words, err := readWords(ctx, t.slots, WordsSlot)
	if err != nil {
		return models.UserStats{}, err
	}
	stats.TotalWords = len(words)
	return stats, nil
}
