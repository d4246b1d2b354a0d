package main

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/example/proskill/internal/app"
	"github.com/example/proskill/internal/database"
	"github.com/example/proskill/internal/quiz"
	"github.com/example/proskill/internal/store"
)

func newTestShell(t *testing.T) (*shell, *bytes.Buffer) {
	t.Helper()
	db, err := database.Connect(":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.InitLocalSchema(db); err != nil {
		t.Fatalf("InitLocalSchema failed: %v", err)
	}

	backend := store.New("", time.Second, database.NewKVRepository(db))
	c := app.New(1, backend, quiz.NewEngine(rand.NewSource(1)))
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	t.Cleanup(c.Settle)

	out := &bytes.Buffer{}
	return &shell{c: c, out: out}, out
}

func run(t *testing.T, s *shell, out *bytes.Buffer, line string) string {
	t.Helper()
	out.Reset()
	if !s.exec(context.Background(), line) {
		t.Fatalf("%q ended the session", line)
	}
	return out.String()
}

func TestDeleteByListNumber(t *testing.T) {
	s, out := newTestShell(t)
	run(t, s, out, "add apple - olma")
	run(t, s, out, "add book - kitob")

	listing := run(t, s, out, "list")
	if !strings.Contains(listing, " 1. book - kitob") || !strings.Contains(listing, " 2. apple - olma") {
		t.Fatalf("list output = %q", listing)
	}

	if got := run(t, s, out, "del 3"); !strings.Contains(got, "unknown word number") {
		t.Fatalf("del 3 output = %q", got)
	}
	if got := run(t, s, out, "del 2"); !strings.Contains(got, app.PromptDelete) {
		t.Fatalf("del 2 output = %q", got)
	}
	run(t, s, out, "no")
	if n := len(s.c.Words()); n != 2 {
		t.Fatalf("declined delete left %d words", n)
	}

	run(t, s, out, "del 2")
	run(t, s, out, "yes")
	words := s.c.Words()
	if len(words) != 1 || words[0].SourceTerm != "book" {
		t.Fatalf("words after delete = %+v", words)
	}
}

func TestConfirmWithoutPrompt(t *testing.T) {
	s, out := newTestShell(t)
	if got := run(t, s, out, "yes"); !strings.Contains(got, app.ErrNothingToConfirm.Error()) {
		t.Fatalf("yes output = %q", got)
	}
}

func TestAnswerByNumber(t *testing.T) {
	s, out := newTestShell(t)
	if got := run(t, s, out, "1"); !strings.Contains(got, app.ErrNoSession.Error()) {
		t.Fatalf("answer without quiz output = %q", got)
	}

	for i := 1; i <= 5; i++ {
		run(t, s, out, fmt.Sprintf("add en%d - uz%d", i, i))
	}
	if got := run(t, s, out, "quiz"); !strings.Contains(got, "Question 1 / 5") {
		t.Fatalf("quiz output = %q", got)
	}

	q := s.c.View().Quiz.Question
	pick := 0
	for i, o := range q.Options {
		if o.ID == q.CorrectID {
			pick = i + 1
		}
	}
	got := run(t, s, out, fmt.Sprint(pick))
	if !strings.Contains(got, fmt.Sprintf(" + %d) ", pick)) {
		t.Fatalf("answer output = %q", got)
	}
	if v := s.c.View().Quiz; !v.Answered || v.Correct != 1 {
		t.Fatalf("quiz after answer = %+v", v)
	}

	run(t, s, out, "quit")
	run(t, s, out, "yes")
	if s.c.View().Quiz != nil {
		t.Fatal("quiz still running after confirmed quit")
	}
}

func TestAnswerOutsideOptions(t *testing.T) {
	s, out := newTestShell(t)
	for i := 1; i <= 5; i++ {
		run(t, s, out, fmt.Sprintf("add en%d - uz%d", i, i))
	}
	run(t, s, out, "quiz")

	if err := s.answer(context.Background(), "5"); err != nil {
		t.Fatalf("answer 5 failed: %v", err)
	}
	if s.c.View().Quiz.Answered {
		t.Fatal("answer beyond the option count was accepted")
	}
}

func TestExit(t *testing.T) {
	s, _ := newTestShell(t)
	if s.exec(context.Background(), "exit") {
		t.Fatal("exit kept the session going")
	}
}
