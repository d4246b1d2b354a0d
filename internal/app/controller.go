// Package app drives the add/history/quiz screens on top of the stores and the quiz engine.
package app

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/example/proskill/internal/quiz"
	"github.com/example/proskill/internal/store"
	"github.com/example/proskill/pkg/models"
)

var (
	// ErrBusy is returned while the same action is still in flight
	ErrBusy = errors.New("action already in progress")
	// ErrQuizLocked is returned when a quiz is started with too few words
	ErrQuizLocked = errors.New("quiz is locked")
	// ErrQuizRunning is returned when leaving a running quiz without confirmation
	ErrQuizRunning = errors.New("quiz in progress")
	// ErrNoSession is returned for quiz actions without a session
	ErrNoSession = errors.New("no quiz session")
	// ErrNothingToConfirm is returned by Confirm without a pending confirmation
	ErrNothingToConfirm = errors.New("nothing to confirm")
)

// User-facing texts
const (
	PromptDelete     = "Delete this word?"
	PromptQuit       = "Stop the quiz?"
	MsgQuizLocked    = "Add at least 5 words to unlock the quiz."
	MsgSomethingWent = "Something went wrong. Please try again."
)

type action int

const (
	actionSubmit action = iota
	actionDelete
	actionLoad
)

// Controller is the application state of one user
type Controller struct {
	userID int64
	words  store.WordStore
	stats  store.StatsTracker
	engine *quiz.Engine

	mu        sync.Mutex
	tab       Tab
	loading   bool
	showStats bool
	list      []models.Word
	userStats models.UserStats
	search    string
	formError string
	notice    string
	confirm   *Confirmation
	session   *quiz.Session
	pending   map[action]bool

	inflight sync.WaitGroup
	lastSync chan struct{} // closed when the latest stats update is done
}

// New creates a controller for userID over the selected backend
func New(userID int64, backend store.Backend, engine *quiz.Engine) *Controller {
	return &Controller{
		userID:  userID,
		words:   backend.Words,
		stats:   backend.Stats,
		engine:  engine,
		tab:     TabAdd,
		loading: true,
		list:    []models.Word{},
		pending: make(map[action]bool),
	}
}

// UserID returns the user the controller belongs to
func (c *Controller) UserID() int64 { return c.userID }

// Load fetches the words and the statistics in parallel
func (c *Controller) Load(ctx context.Context) error {
	if !c.begin(actionLoad) {
		return ErrBusy
	}
	defer c.end(actionLoad)

	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	var (
		wg       sync.WaitGroup
		words    []models.Word
		stats    models.UserStats
		wordsErr error
		statsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		words, wordsErr = c.words.List(ctx, c.userID)
	}()
	go func() {
		defer wg.Done()
		stats, statsErr = c.stats.Get(ctx, c.userID)
	}()
	wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false

	if statsErr != nil {
		log.Printf("Error loading stats for user %d: %v", c.userID, statsErr)
	} else {
		c.userStats = stats
	}
	if wordsErr != nil {
		log.Printf("Error loading words for user %d: %v", c.userID, wordsErr)
		return wordsErr
	}
	c.list = words
	c.userStats.TotalWords = len(words)
	return nil
}

// SetTab switches screens. A running quiz must be quit through RequestQuit.
func (c *Controller) SetTab(tab Tab) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tab == c.tab {
		return nil
	}
	if c.quizRunning() {
		return ErrQuizRunning
	}
	if c.tab == TabQuiz {
		c.session = nil
	}
	c.tab = tab
	c.notice = ""
	return nil
}

// EditForm clears the form error, as typing into the form does
func (c *Controller) EditForm() {
	c.mu.Lock()
	c.formError = ""
	c.mu.Unlock()
}

// SubmitWord adds a word from the form
func (c *Controller) SubmitWord(ctx context.Context, source, target string) (models.Word, error) {
	if !c.begin(actionSubmit) {
		return models.Word{}, ErrBusy
	}
	defer c.end(actionSubmit)

	word, err := c.words.Add(ctx, c.userID, source, target)

	c.mu.Lock()
	defer c.mu.Unlock()

	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		c.formError = verr.Message
		return models.Word{}, err
	case err != nil:
		c.formError = store.MsgConnection
		return models.Word{}, err
	}

	c.list = append([]models.Word{word}, c.list...)
	c.userStats.TotalWords = len(c.list)
	c.formError = ""
	return word, nil
}

// SetSearch filters the history list
func (c *Controller) SetSearch(query string) {
	c.mu.Lock()
	c.search = query
	c.mu.Unlock()
}

// RequestDelete asks for confirmation before deleting a word
func (c *Controller) RequestDelete(wordID string) {
	c.mu.Lock()
	c.confirm = &Confirmation{Kind: ConfirmDelete, WordID: wordID, Prompt: PromptDelete}
	c.mu.Unlock()
}

// RequestQuit asks for confirmation before abandoning a running quiz
func (c *Controller) RequestQuit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.quizRunning() {
		return ErrNoSession
	}
	c.confirm = &Confirmation{Kind: ConfirmQuit, Prompt: PromptQuit}
	return nil
}

// Confirm answers the pending confirmation. Declining changes nothing.
func (c *Controller) Confirm(ctx context.Context, yes bool) error {
	c.mu.Lock()
	pending := c.confirm
	c.confirm = nil
	if pending == nil {
		c.mu.Unlock()
		return ErrNothingToConfirm
	}
	if !yes {
		c.mu.Unlock()
		return nil
	}

	switch pending.Kind {
	case ConfirmQuit:
		c.session = nil
		c.tab = TabAdd
		c.mu.Unlock()
		return nil
	case ConfirmDelete:
		c.mu.Unlock()
		return c.deleteWord(ctx, pending.WordID)
	}
	c.mu.Unlock()
	return nil
}

func (c *Controller) deleteWord(ctx context.Context, wordID string) error {
	if !c.begin(actionDelete) {
		return ErrBusy
	}
	defer c.end(actionDelete)

	err := c.words.Remove(ctx, c.userID, wordID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.notice = MsgSomethingWent
		return err
	}

	kept := make([]models.Word, 0, len(c.list))
	for _, w := range c.list {
		if w.ID != wordID {
			kept = append(kept, w)
		}
	}
	c.list = kept
	c.userStats.TotalWords = len(kept)
	return nil
}

// StartQuiz begins a session over the current words, or restarts a finished one
func (c *Controller) StartQuiz() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.quizRunning() {
		return ErrQuizRunning
	}
	if len(c.list) < quiz.MinWords {
		c.notice = MsgQuizLocked
		return ErrQuizLocked
	}

	start := c.engine.Start
	if c.session != nil && c.session.State() == quiz.Finished {
		start = c.engine.Restart
	}
	session, err := start(c.list)
	if err != nil {
		return err
	}
	c.session = session
	c.tab = TabQuiz
	c.notice = ""
	return nil
}

// Answer picks an option of the current question. Repeated answers are ignored.
// The statistics update runs in the background and is dropped if the session
// has changed by the time it completes.
func (c *Controller) Answer(ctx context.Context, optionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return ErrNoSession
	}
	isCorrect, accepted := c.session.Answer(optionID)
	if !accepted {
		return nil
	}

	sessionID := c.session.ID()
	bg := context.WithoutCancel(ctx)
	prev := c.lastSync
	done := make(chan struct{})
	c.lastSync = done
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer close(done)
		// Answers reach the tracker in the order they were given
		if prev != nil {
			<-prev
		}
		stats, err := c.stats.RecordAnswer(bg, c.userID, isCorrect)
		if err != nil {
			log.Printf("Stats sync error for user %d: %v", c.userID, err)
			return
		}
		c.applyStats(sessionID, stats)
	}()
	return nil
}

func (c *Controller) applyStats(sessionID string, stats models.UserStats) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil || c.session.ID() != sessionID {
		log.Printf("Dropping stale stats update for user %d", c.userID)
		return
	}
	stats.TotalWords = len(c.list)
	c.userStats = stats
}

// Next moves to the next question or to the results
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return ErrNoSession
	}
	c.session.Advance()
	return nil
}

// BackToHistory leaves the results screen for the word list
func (c *Controller) BackToHistory() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.quizRunning() {
		return ErrQuizRunning
	}
	c.session = nil
	c.tab = TabHistory
	return nil
}

// OpenStats shows the statistics overlay
func (c *Controller) OpenStats() {
	c.mu.Lock()
	c.showStats = true
	c.mu.Unlock()
}

// CloseStats hides the statistics overlay
func (c *Controller) CloseStats() {
	c.mu.Lock()
	c.showStats = false
	c.mu.Unlock()
}

// DismissNotice clears the transient message
func (c *Controller) DismissNotice() {
	c.mu.Lock()
	c.notice = ""
	c.mu.Unlock()
}

// Settle waits for background statistics updates to finish
func (c *Controller) Settle() {
	c.inflight.Wait()
}

// View returns a snapshot of the current state
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		UserID:     c.userID,
		Tab:        c.tab,
		Loading:    c.loading,
		ShowStats:  c.showStats,
		Stats:      c.userStats,
		Words:      store.Filter(c.list, c.search),
		TotalWords: len(c.list),
		Search:     c.search,
		FormError:  c.formError,
		Notice:     c.notice,
		QuizLocked: len(c.list) < quiz.MinWords,
	}
	if c.confirm != nil {
		confirm := *c.confirm
		v.Confirm = &confirm
	}
	if c.session != nil {
		selected, answered := c.session.Selected()
		v.Quiz = &QuizView{
			SessionID: c.session.ID(),
			State:     c.session.State(),
			Index:     c.session.Index(),
			Len:       c.session.Len(),
			Correct:   c.session.Correct(),
			Accuracy:  c.session.Accuracy(),
			Progress:  c.session.Progress(),
			HasNext:   c.session.HasNext(),
			Question:  c.session.Question(),
			Selected:  selected,
			Answered:  answered,
		}
	}
	return v
}

// Words returns a snapshot of all words, ignoring the search filter
func (c *Controller) Words() []models.Word {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Word(nil), c.list...)
}

func (c *Controller) quizRunning() bool {
	return c.session != nil && c.session.State() == quiz.InProgress
}

// begin marks an action as in flight; it fails when the action already is
func (c *Controller) begin(a action) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending[a] {
		return false
	}
	c.pending[a] = true
	return true
}

func (c *Controller) end(a action) {
	c.mu.Lock()
	delete(c.pending, a)
	c.mu.Unlock()
}
