// Command cli is a terminal front end for ProSkill Quiz.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/example/proskill/internal/app"
	"github.com/example/proskill/internal/config"
	"github.com/example/proskill/internal/database"
	"github.com/example/proskill/internal/host"
	"github.com/example/proskill/internal/quiz"
	"github.com/example/proskill/internal/store"
)

const usage = `commands:
  add <english> - <translation>   add a word
  list [search]                   show words
  del <n>                         delete word n of the last list
  quiz                            start or restart the quiz
  <1-4>                           answer the current question
  next                            next question / results
  quit                            stop the running quiz
  stats                           show results
  yes | no                        answer a confirmation
  exit`

func main() {
	initData := flag.String("init-data", os.Getenv("PROSKILL_INIT_DATA"), "Telegram WebApp init data identifying the user")
	flag.Parse()

	cfg := config.Load()
	db, err := database.Connect(cfg.LocalDBPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := database.InitLocalSchema(db); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	id, ok := host.FromInitData(*initData)
	userID := host.Resolve(id, ok, cfg.FallbackUserID)

	backend := store.New(cfg.APIBase, cfg.HTTPTimeout, database.NewKVRepository(db))
	c := app.New(userID, backend, quiz.NewEngine(nil))

	ctx := context.Background()
	if err := c.Load(ctx); err != nil {
		fmt.Println(store.MsgConnection)
	}

	sh := &shell{c: c, out: os.Stdout}
	sh.run(ctx, os.Stdin)
	c.Settle()
}

type shell struct {
	c      *app.Controller
	out    io.Writer
	listed []string
}

func (s *shell) run(ctx context.Context, in io.Reader) {
	fmt.Fprintf(s.out, "ProSkill Quiz (user %d)\n%s\n", s.c.UserID(), usage)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			return
		}
		if !s.exec(ctx, strings.TrimSpace(scanner.Text())) {
			return
		}
	}
}

// exec runs one command line; false ends the session
func (s *shell) exec(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	var err error
	switch cmd {
	case "":
		return true
	case "exit":
		return false
	case "help":
		fmt.Fprintln(s.out, usage)
		return true
	case "add":
		source, target, _ := strings.Cut(arg, " - ")
		s.c.EditForm()
		_, err = s.c.SubmitWord(ctx, strings.TrimSpace(source), strings.TrimSpace(target))
	case "list":
		err = s.leaveTo(app.TabHistory)
		s.c.SetSearch(arg)
	case "del":
		n, convErr := strconv.Atoi(arg)
		if convErr != nil || n < 1 || n > len(s.listed) {
			fmt.Fprintln(s.out, "unknown word number")
			return true
		}
		s.c.RequestDelete(s.listed[n-1])
	case "quiz":
		err = s.c.StartQuiz()
	case "1", "2", "3", "4":
		err = s.answer(ctx, cmd)
	case "next":
		err = s.c.Next()
	case "quit":
		err = s.c.RequestQuit()
	case "stats":
		s.c.OpenStats()
		s.print()
		s.c.CloseStats()
		return true
	case "yes", "no":
		err = s.c.Confirm(ctx, cmd == "yes")
	default:
		fmt.Fprintln(s.out, "unknown command, try help")
		return true
	}

	if err != nil && !errors.Is(err, app.ErrQuizLocked) {
		fmt.Fprintf(s.out, "(%v)\n", err)
	}
	s.print()
	return true
}

func (s *shell) leaveTo(tab app.Tab) error {
	err := s.c.SetTab(tab)
	if errors.Is(err, app.ErrQuizRunning) {
		return s.c.RequestQuit()
	}
	return err
}

func (s *shell) answer(ctx context.Context, n string) error {
	v := s.c.View()
	if v.Quiz == nil {
		return app.ErrNoSession
	}
	i, _ := strconv.Atoi(n)
	options := v.Quiz.Question.Options
	if i > len(options) {
		return nil
	}
	return s.c.Answer(ctx, options[i-1].ID)
}

func (s *shell) print() {
	v := s.c.View()
	switch {
	case v.Confirm != nil:
		fmt.Fprintf(s.out, "%s (yes/no)\n", v.Confirm.Prompt)
		return
	case v.ShowStats:
		fmt.Fprintf(s.out, "correct %d | wrong %d | streak %d | best %d | words %d\n",
			v.Stats.Correct, v.Stats.Wrong, v.Stats.Streak, v.Stats.BestStreak, v.TotalWords)
		return
	}

	if v.FormError != "" {
		fmt.Fprintln(s.out, v.FormError)
	}
	if v.Notice != "" {
		fmt.Fprintln(s.out, v.Notice)
		s.c.DismissNotice()
	}

	switch v.Tab {
	case app.TabHistory:
		s.listed = s.listed[:0]
		for i, w := range v.Words {
			s.listed = append(s.listed, w.ID)
			fmt.Fprintf(s.out, "%2d. %s - %s\n", i+1, w.SourceTerm, w.TargetTerm)
		}
		if len(v.Words) == 0 {
			fmt.Fprintln(s.out, "Nothing found")
		}
	case app.TabQuiz:
		s.printQuiz(v.Quiz)
	default:
		fmt.Fprintf(s.out, "words: %d\n", v.TotalWords)
	}
}

func (s *shell) printQuiz(q *app.QuizView) {
	if q == nil {
		return
	}
	if q.State == quiz.Finished {
		fmt.Fprintf(s.out, "Quiz finished! %d / %d correct, %d%%\n", q.Correct, q.Len, q.Accuracy)
		return
	}
	fmt.Fprintf(s.out, "Question %d / %d: %s\n", q.Index+1, q.Len, q.Question.QuestionText)
	for i, o := range q.Question.Options {
		mark := " "
		if q.Answered {
			switch o.ID {
			case q.Question.CorrectID:
				mark = "+"
			case q.Selected:
				mark = "x"
			}
		}
		fmt.Fprintf(s.out, " %s %d) %s\n", mark, i+1, o.Text)
	}
}
