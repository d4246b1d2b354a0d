// Package quiz builds multiple-choice quiz sessions over a snapshot of words.
package quiz

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/example/proskill/pkg/models"
	"github.com/google/uuid"
)

const (
	// MinWords is the smallest pool a quiz can start with
	MinWords = 5
	// OptionCount is the number of options per question
	OptionCount = 4
)

// ErrNotEnoughWords is returned by Start when the pool is smaller than MinWords
var ErrNotEnoughWords = errors.New("at least 5 words are needed for a quiz")

// State is the lifecycle state of a session
type State int

const (
	NotStarted State = iota
	InProgress
	Finished
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Finished:
		return "finished"
	default:
		return "not_started"
	}
}

// Engine creates sessions. It is safe for concurrent use.
type Engine struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewEngine creates an engine drawing randomness from src. A nil src is seeded from the clock.
func NewEngine(src rand.Source) *Engine {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Engine{rnd: rand.New(src)}
}

// Start begins a session over a copy of pool, asked in shuffled order
func (e *Engine) Start(pool []models.Word) (*Session, error) {
	if len(pool) < MinWords {
		return nil, ErrNotEnoughWords
	}

	s := &Session{
		id:     uuid.NewString(),
		engine: e,
		pool:   append([]models.Word(nil), pool...),
		order:  append([]models.Word(nil), pool...),
		state:  InProgress,
	}
	e.shuffle(len(s.order), func(i, j int) {
		s.order[i], s.order[j] = s.order[j], s.order[i]
	})
	s.generateQuestion(s.order[0])
	return s, nil
}

// Restart begins a new session with a fresh snapshot of the words
func (e *Engine) Restart(pool []models.Word) (*Session, error) {
	return e.Start(pool)
}

func (e *Engine) shuffle(n int, swap func(i, j int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rnd.Shuffle(n, swap)
}

// Session is one pass over a pool of words. It is not safe for concurrent use.
type Session struct {
	id      string
	engine  *Engine
	pool    []models.Word
	order   []models.Word
	index   int
	correct int
	state   State

	question models.QuizQuestion
	selected string
	answered bool
}

// ID identifies the session
func (s *Session) ID() string { return s.id }

// State returns the lifecycle state
func (s *Session) State() State { return s.state }

// Len is the number of questions in the session
func (s *Session) Len() int { return len(s.order) }

// Index is the zero-based position of the current question
func (s *Session) Index() int { return s.index }

// Correct is the number of correct answers given in this session
func (s *Session) Correct() int { return s.correct }

// Question returns the current question
func (s *Session) Question() models.QuizQuestion {
	q := s.question
	q.Options = append([]models.QuizOption(nil), s.question.Options...)
	return q
}

// Selected returns the chosen option id and whether the current question has been answered
func (s *Session) Selected() (string, bool) { return s.selected, s.answered }

// Answer records the choice for the current question. Only the first answer counts:
// accepted is false for repeated answers, unknown options and finished sessions.
func (s *Session) Answer(optionID string) (isCorrect, accepted bool) {
	if s.state != InProgress || s.answered {
		return false, false
	}
	if _, ok := s.question.Option(optionID); !ok {
		return false, false
	}

	s.selected = optionID
	s.answered = true
	isCorrect = optionID == s.question.CorrectID
	if isCorrect {
		s.correct++
	}
	return isCorrect, true
}

// Advance moves to the next question, or finishes after the last one.
// The current question must be answered first.
func (s *Session) Advance() State {
	if s.state != InProgress || !s.answered {
		return s.state
	}

	next := s.index + 1
	if next >= len(s.order) {
		s.state = Finished
		return s.state
	}

	s.index = next
	s.generateQuestion(s.order[next])
	return s.state
}

// HasNext reports whether another question follows the current one
func (s *Session) HasNext() bool {
	return s.index+1 < len(s.order)
}

// Accuracy is the share of correct answers in whole percent
func (s *Session) Accuracy() int {
	if len(s.order) == 0 {
		return 0
	}
	return int(math.Round(float64(s.correct) / float64(len(s.order)) * 100))
}

// Progress is the fraction of the session reached with the current question
func (s *Session) Progress() float64 {
	if len(s.order) == 0 {
		return 0
	}
	return float64(s.index+1) / float64(len(s.order))
}

// generateQuestion builds the question for target with three distractors from the full pool
func (s *Session) generateQuestion(target models.Word) {
	others := make([]models.Word, 0, len(s.pool)-1)
	for _, w := range s.pool {
		if w.ID != target.ID {
			others = append(others, w)
		}
	}
	s.engine.shuffle(len(others), func(i, j int) {
		others[i], others[j] = others[j], others[i]
	})
	if len(others) > OptionCount-1 {
		others = others[:OptionCount-1]
	}

	options := make([]models.QuizOption, 0, OptionCount)
	options = append(options, models.QuizOption{ID: target.ID, Text: target.TargetTerm})
	for _, w := range others {
		options = append(options, models.QuizOption{ID: w.ID, Text: w.TargetTerm})
	}
	s.engine.shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	s.question = models.QuizQuestion{
		WordID:       target.ID,
		QuestionText: target.SourceTerm,
		Options:      options,
		CorrectID:    target.ID,
	}
	s.selected = ""
	s.answered = false
}
