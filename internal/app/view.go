package app

import (
	"github.com/example/proskill/internal/quiz"
	"github.com/example/proskill/pkg/models"
)

// Tab is one of the three main screens
type Tab string

const (
	TabAdd     Tab = "add"
	TabHistory Tab = "history"
	TabQuiz    Tab = "quiz"
)

// ConfirmKind is the destructive action waiting for a yes/no answer
type ConfirmKind int

const (
	ConfirmDelete ConfirmKind = iota + 1
	ConfirmQuit
)

// Confirmation is a pending yes/no gate
type Confirmation struct {
	Kind   ConfirmKind
	WordID string
	Prompt string
}

// View is a snapshot of everything a front end needs to draw the app
type View struct {
	UserID    int64
	Tab       Tab
	Loading   bool
	ShowStats bool
	Stats     models.UserStats

	Words      []models.Word // Words matching Search, most recent first
	TotalWords int
	Search     string

	FormError string
	Notice    string
	Confirm   *Confirmation

	QuizLocked bool
	Quiz       *QuizView
}

// InQuiz reports whether a quiz is running; front ends hide navigation while it is
func (v View) InQuiz() bool {
	return v.Tab == TabQuiz && v.Quiz != nil && v.Quiz.State == quiz.InProgress
}

// QuizView is the visible state of the current session
type QuizView struct {
	SessionID string
	State     quiz.State
	Index     int
	Len       int
	Correct   int
	Accuracy  int
	Progress  float64
	HasNext   bool

	Question models.QuizQuestion
	Selected string
	Answered bool
}
