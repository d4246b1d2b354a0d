// Package store keeps a user's word list and quiz statistics, either in a local
// slot database or behind the remote word service.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/example/proskill/internal/apiclient"
	"github.com/example/proskill/pkg/models"
)

// Slot names of the local persisted state
const (
	WordsSlot = "proskill_words"
	StatsSlot = "proskill_stats"
)

var (
	// ErrEmptyField is returned when a term is empty after trimming
	ErrEmptyField = errors.New("empty field")
	// ErrDuplicate is returned when the source term already exists, ignoring case
	ErrDuplicate = errors.New("duplicate word")
	// ErrConnection is returned when the backend could not complete a write
	ErrConnection = errors.New("connection error")
)

// User-facing messages
const (
	MsgEmptyField = "Please fill in both fields!"
	MsgDuplicate  = "This word already exists!"
	MsgConnection = "Could not reach the server. Please try again."
)

// ValidationError is a rejected user input. Message is shown next to the form.
type ValidationError struct {
	Err     error
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

// WordStore owns the list of word pairs of a user
type WordStore interface {
	// List returns all words, most recently added first
	List(ctx context.Context, userID int64) ([]models.Word, error)
	// Add validates and creates a word
	Add(ctx context.Context, userID int64, source, target string) (models.Word, error)
	// Remove deletes a word; removing an unknown id is a no-op
	Remove(ctx context.Context, userID int64, wordID string) error
}

// StatsTracker owns a user's aggregate quiz counters
type StatsTracker interface {
	Get(ctx context.Context, userID int64) (models.UserStats, error)
	RecordAnswer(ctx context.Context, userID int64, isCorrect bool) (models.UserStats, error)
}

// Slots is a persisted key-value store of whole blobs
type Slots interface {
	Get(ctx context.Context, slot string) ([]byte, error)
	Put(ctx context.Context, slot string, value []byte) error
}

// Mode is the persistence mode, fixed at startup
type Mode int

const (
	ModeLocal Mode = iota
	ModeRemote
)

func (m Mode) String() string {
	if m == ModeRemote {
		return "remote"
	}
	return "local"
}

// Backend is the pair of stores selected for a process
type Backend struct {
	Mode  Mode
	Words WordStore
	Stats StatsTracker
}

// New selects the backend: an empty apiBase means local mode
func New(apiBase string, timeout time.Duration, slots Slots) Backend {
	if strings.TrimSpace(apiBase) == "" {
		return Backend{
			Mode:  ModeLocal,
			Words: NewLocalStore(slots),
			Stats: NewLocalStats(slots),
		}
	}

	client := apiclient.New(apiBase, timeout)
	return Backend{
		Mode:  ModeRemote,
		Words: NewRemoteStore(client, slots),
		Stats: NewRemoteStats(client),
	}
}

// Filter returns the words whose terms contain query, ignoring case
func Filter(words []models.Word, query string) []models.Word {
	query = strings.TrimSpace(query)
	if query == "" {
		return append([]models.Word(nil), words...)
	}
	filtered := make([]models.Word, 0, len(words))
	for _, w := range words {
		if w.Matches(query) {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

// validate trims the terms and checks them against the existing words
func validate(existing []models.Word, source, target string) (string, string, error) {
	source = strings.TrimSpace(source)
	target = strings.TrimSpace(target)

	if source == "" || target == "" {
		return "", "", &ValidationError{Err: ErrEmptyField, Message: MsgEmptyField}
	}
	for _, w := range existing {
		if models.SameSource(w.SourceTerm, source) {
			return "", "", &ValidationError{Err: ErrDuplicate, Message: MsgDuplicate}
		}
	}
	return source, target, nil
}

func connectionError(err error) error {
	return fmt.Errorf("%w: %v", ErrConnection, err)
}

// collection is the in-memory word list of one user. Callers hold mu.
type collection struct {
	mu     sync.Mutex
	words  []models.Word
	loaded bool
}

func (c *collection) copyWords() []models.Word {
	return append([]models.Word(nil), c.words...)
}

func prepend(words []models.Word, w models.Word) []models.Word {
	updated := make([]models.Word, 0, len(words)+1)
	updated = append(updated, w)
	return append(updated, words...)
}

func without(words []models.Word, id string) ([]models.Word, bool) {
	updated := make([]models.Word, 0, len(words))
	found := false
	for _, w := range words {
		if w.ID == id {
			found = true
			continue
		}
		updated = append(updated, w)
	}
	return updated, found
}
