package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/example/proskill/internal/quiz"
	"github.com/go-co-op/gocron"
)

// Scheduler sends a daily quiz reminder to users whose quiz is unlocked
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	roster    Roster
	at        string
}

// Notifier interface for sending notifications
type Notifier interface {
	SendReminder(userID int64, wordCount int) error
}

// Target is a user that may receive a reminder
type Target struct {
	UserID    int64
	WordCount int
}

// Roster lists the users known to the process
type Roster interface {
	ReminderTargets() []Target
}

// New creates a scheduler firing every day at the given "HH:MM" (UTC)
func New(notifier Notifier, roster Roster, at string) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		roster:    roster,
		at:        at,
	}
}

// Start schedules the reminder job and runs the scheduler in the background
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Day().At(s.at).Do(s.SendReminders); err != nil {
		return fmt.Errorf("failed to schedule reminders at %q: %w", s.at, err)
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// SendReminders notifies every user with enough words for a quiz. It returns the number of reminders sent.
func (s *Scheduler) SendReminders() int {
	sent := 0
	for _, t := range s.roster.ReminderTargets() {
		if t.WordCount < quiz.MinWords {
			continue
		}
		if err := s.notifier.SendReminder(t.UserID, t.WordCount); err != nil {
			log.Printf("Error sending reminder to user %d: %v", t.UserID, err)
			continue
		}
		sent++
	}
	if sent > 0 {
		log.Printf("Sent %d quiz reminders", sent)
	}
	return sent
}
