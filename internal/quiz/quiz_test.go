package quiz

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/example/proskill/pkg/models"
)

func sampleWords(n int) []models.Word {
	words := make([]models.Word, 0, n)
	for i := 1; i <= n; i++ {
		words = append(words, models.Word{
			ID:         fmt.Sprint(i),
			SourceTerm: fmt.Sprintf("en%d", i),
			TargetTerm: fmt.Sprintf("uz%d", i),
		})
	}
	return words
}

func wrongOption(t *testing.T, q models.QuizQuestion) string {
	t.Helper()
	for _, o := range q.Options {
		if o.ID != q.CorrectID {
			return o.ID
		}
	}
	t.Fatalf("question %q has no wrong option", q.QuestionText)
	return ""
}

func TestStartRefusesSmallPool(t *testing.T) {
	engine := NewEngine(rand.NewSource(1))
	for _, n := range []int{0, 1, MinWords - 1} {
		if _, err := engine.Start(sampleWords(n)); !errors.Is(err, ErrNotEnoughWords) {
			t.Errorf("Start(%d words) error = %v, want ErrNotEnoughWords", n, err)
		}
	}
	if _, err := engine.Start(sampleWords(MinWords)); err != nil {
		t.Fatalf("Start(%d words) failed: %v", MinWords, err)
	}
}

func TestSessionAsksEveryWordOnce(t *testing.T) {
	words := sampleWords(7)
	s, err := NewEngine(rand.NewSource(2)).Start(words)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if s.Len() != len(words) {
		t.Fatalf("Len() = %d, want %d", s.Len(), len(words))
	}

	seen := make(map[string]bool)
	for i := 0; i < len(words); i++ {
		if s.State() != InProgress {
			t.Fatalf("question %d: state = %v, want in_progress", i, s.State())
		}
		if s.Index() != i {
			t.Fatalf("Index() = %d, want %d", s.Index(), i)
		}
		q := s.Question()
		if seen[q.WordID] {
			t.Fatalf("word %s asked twice", q.WordID)
		}
		seen[q.WordID] = true

		if _, accepted := s.Answer(q.CorrectID); !accepted {
			t.Fatalf("answer to question %d was not accepted", i)
		}
		if got, want := s.HasNext(), i < len(words)-1; got != want {
			t.Fatalf("HasNext() = %v at question %d, want %v", got, i, want)
		}
		s.Advance()
	}

	if s.State() != Finished {
		t.Fatalf("state = %v, want finished", s.State())
	}
	if len(seen) != len(words) {
		t.Fatalf("asked %d distinct words, want %d", len(seen), len(words))
	}
	if s.Correct() != len(words) || s.Accuracy() != 100 {
		t.Fatalf("Correct() = %d, Accuracy() = %d", s.Correct(), s.Accuracy())
	}
}

func TestQuestionOptions(t *testing.T) {
	words := sampleWords(6)
	byID := make(map[string]models.Word)
	for _, w := range words {
		byID[w.ID] = w
	}

	s, err := NewEngine(rand.NewSource(3)).Start(words)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	for s.State() == InProgress {
		q := s.Question()
		target := byID[q.WordID]
		if q.QuestionText != target.SourceTerm {
			t.Errorf("QuestionText = %q, want %q", q.QuestionText, target.SourceTerm)
		}
		if q.CorrectID != q.WordID {
			t.Errorf("CorrectID = %q, want %q", q.CorrectID, q.WordID)
		}
		if len(q.Options) != OptionCount {
			t.Fatalf("got %d options, want %d", len(q.Options), OptionCount)
		}

		ids := make(map[string]bool)
		correct := 0
		for _, o := range q.Options {
			if ids[o.ID] {
				t.Errorf("option %s repeated", o.ID)
			}
			ids[o.ID] = true
			if o.Text != byID[o.ID].TargetTerm {
				t.Errorf("option %s text = %q, want %q", o.ID, o.Text, byID[o.ID].TargetTerm)
			}
			if o.ID == q.CorrectID {
				correct++
			}
		}
		if correct != 1 {
			t.Errorf("question %q has %d correct options", q.QuestionText, correct)
		}

		s.Answer(q.CorrectID)
		s.Advance()
	}
}

func TestAnswerCountsOnce(t *testing.T) {
	s, err := NewEngine(rand.NewSource(4)).Start(sampleWords(5))
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	q := s.Question()

	if _, accepted := s.Answer("missing"); accepted {
		t.Fatal("unknown option was accepted")
	}
	if _, answered := s.Selected(); answered {
		t.Fatal("unknown option marked the question answered")
	}

	isCorrect, accepted := s.Answer(q.CorrectID)
	if !isCorrect || !accepted {
		t.Fatalf("Answer(correct) = %v, %v", isCorrect, accepted)
	}
	if _, accepted := s.Answer(wrongOption(t, q)); accepted {
		t.Fatal("second answer was accepted")
	}
	if selected, _ := s.Selected(); selected != q.CorrectID {
		t.Fatalf("Selected() = %q, want %q", selected, q.CorrectID)
	}
	if s.Correct() != 1 {
		t.Fatalf("Correct() = %d, want 1", s.Correct())
	}
}

func TestAdvanceRequiresAnswer(t *testing.T) {
	s, err := NewEngine(rand.NewSource(5)).Start(sampleWords(5))
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	before := s.Question().WordID

	if state := s.Advance(); state != InProgress {
		t.Fatalf("Advance() = %v, want in_progress", state)
	}
	if s.Index() != 0 || s.Question().WordID != before {
		t.Fatal("Advance moved on before the question was answered")
	}
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		words   int
		correct int
		want    int
	}{
		{words: 5, correct: 3, want: 60},
		{words: 6, correct: 1, want: 17},
		{words: 7, correct: 1, want: 14},
		{words: 5, correct: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.correct, tt.words), func(t *testing.T) {
			s, err := NewEngine(rand.NewSource(6)).Start(sampleWords(tt.words))
			if err != nil {
				t.Fatalf("Start failed: %v", err)
			}
			for i := 0; s.State() == InProgress; i++ {
				q := s.Question()
				if i < tt.correct {
					s.Answer(q.CorrectID)
				} else {
					s.Answer(wrongOption(t, q))
				}
				s.Advance()
			}
			if s.Correct() != tt.correct {
				t.Fatalf("Correct() = %d, want %d", s.Correct(), tt.correct)
			}
			if got := s.Accuracy(); got != tt.want {
				t.Fatalf("Accuracy() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSessionKeepsSnapshot(t *testing.T) {
	words := sampleWords(5)
	s, err := NewEngine(rand.NewSource(7)).Start(words)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for i := range words {
		words[i].TargetTerm = "changed"
	}

	for _, o := range s.Question().Options {
		if o.Text == "changed" {
			t.Fatal("session sees changes made to the pool after Start")
		}
	}
}

func TestRestartCreatesNewSession(t *testing.T) {
	engine := NewEngine(rand.NewSource(8))
	first, err := engine.Start(sampleWords(5))
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	second, err := engine.Restart(sampleWords(6))
	if err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if first.ID() == second.ID() {
		t.Fatal("restarted session reuses the session id")
	}
	if second.Len() != 6 || second.Correct() != 0 || second.Index() != 0 {
		t.Fatalf("restarted session: Len()=%d Correct()=%d Index()=%d", second.Len(), second.Correct(), second.Index())
	}
}

func TestProgress(t *testing.T) {
	s, err := NewEngine(rand.NewSource(9)).Start(sampleWords(5))
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if got := s.Progress(); got != 0.2 {
		t.Fatalf("Progress() = %v, want 0.2", got)
	}
	s.Answer(s.Question().CorrectID)
	s.Advance()
	if got := s.Progress(); got != 0.4 {
		t.Fatalf("Progress() after advance = %v, want 0.4", got)
	}
}
