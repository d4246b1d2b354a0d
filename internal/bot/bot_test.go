package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/proskill/internal/app"
	"github.com/example/proskill/internal/database"
	"github.com/example/proskill/internal/quiz"
	"github.com/example/proskill/internal/store"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// fakeSender records everything the bot sends
type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) last(t *testing.T) (string, tgbotapi.InlineKeyboardMarkup) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("nothing was sent")
	}
	switch m := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		markup, _ := m.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
		return m.Text, markup
	case tgbotapi.EditMessageTextConfig:
		if m.ReplyMarkup == nil {
			return m.Text, tgbotapi.InlineKeyboardMarkup{}
		}
		return m.Text, *m.ReplyMarkup
	default:
		t.Fatalf("unexpected chattable %T", m)
	}
	return "", tgbotapi.InlineKeyboardMarkup{}
}

func newTestBot(t *testing.T, cfg *BotConfig) (*Bot, *fakeSender) {
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
	engine := quiz.NewEngine(nil)
	factory := func(userID int64) *app.Controller {
		return app.New(userID, backend, engine)
	}

	api := &fakeSender{}
	return newBot(api, cfg, factory, 12345, []int64{99}), api
}

func command(userID int64, text string) tgbotapi.Update {
	cmd, _, _ := strings.Cut(text, " ")
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From:     &tgbotapi.User{ID: userID},
		Chat:     &tgbotapi.Chat{ID: userID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func say(userID int64, body string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: body,
	}}
}

func press(userID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: userID}},
		Data:    data,
	}}
}

func hasButton(markup tgbotapi.InlineKeyboardMarkup, match func(tgbotapi.InlineKeyboardButton) bool) bool {
	for _, row := range markup.InlineKeyboard {
		for _, button := range row {
			if match(button) {
				return true
			}
		}
	}
	return false
}

func callbackIs(data string) func(tgbotapi.InlineKeyboardButton) bool {
	return func(b tgbotapi.InlineKeyboardButton) bool {
		return b.CallbackData != nil && *b.CallbackData == data
	}
}

func TestParseWordPair(t *testing.T) {
	tests := []struct {
		line, source, target string
	}{
		{"Apple - Olma", "Apple", "Olma"},
		{"ice-cream - muzqaymoq", "ice-cream", "muzqaymoq"},
		{"book—kitob", "book", "kitob"},
		{"pen: ruchka", "pen", "ruchka"},
		{"cat-mushuk", "cat", "mushuk"},
		{"lonely", "lonely", ""},
	}
	for _, tt := range tests {
		source, target := parseWordPair(tt.line)
		if source != tt.source || target != tt.target {
			t.Errorf("parseWordPair(%q) = %q, %q; want %q, %q", tt.line, source, target, tt.source, tt.target)
		}
	}
}

func TestStartSendsWelcome(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WebAppURL = "https://app.example.com"
	b, api := newTestBot(t, cfg)

	b.handleUpdate(context.Background(), command(10, "/start"))

	if len(api.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(api.sent))
	}
	welcome := api.sent[0].(tgbotapi.MessageConfig)
	markup := welcome.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !hasButton(markup, func(b tgbotapi.InlineKeyboardButton) bool {
		return b.URL != nil && *b.URL == cfg.WebAppURL
	}) {
		t.Fatal("welcome message has no mini-app button")
	}

	screen, keyboard := api.last(t)
	if !strings.Contains(screen, "New word") {
		t.Fatalf("screen = %q", screen)
	}
	if !hasButton(keyboard, callbackIs(cbTabHistory)) {
		t.Fatal("screen has no navigation")
	}
}

func TestAddWordsFromText(t *testing.T) {
	b, api := newTestBot(t, nil)
	ctx := context.Background()

	b.handleUpdate(ctx, say(10, "Apple - Olma\nBook - Kitob\n\napple - olma2\nlonely"))

	words := b.controller(ctx, 10).Words()
	if len(words) != 2 || words[0].SourceTerm != "Book" {
		t.Fatalf("words = %+v", words)
	}
	screen, _ := api.last(t)
	if !strings.Contains(screen, "✅ Apple — Olma") || !strings.Contains(screen, store.MsgEmptyField) {
		t.Fatalf("screen = %q", screen)
	}
}

func TestDeleteThroughConfirmation(t *testing.T) {
	b, api := newTestBot(t, nil)
	ctx := context.Background()
	b.handleUpdate(ctx, say(10, "Apple - Olma\nBook - Kitob"))
	b.handleUpdate(ctx, command(10, "/history"))

	_, keyboard := api.last(t)
	target := b.controller(ctx, 10).Words()[1]
	if !hasButton(keyboard, callbackIs(cbDeletePrefix+target.ID)) {
		t.Fatal("history has no delete button")
	}

	b.handleUpdate(ctx, press(10, cbDeletePrefix+target.ID))
	if screen, _ := api.last(t); !strings.Contains(screen, app.PromptDelete) {
		t.Fatalf("screen = %q, want the delete prompt", screen)
	}
	b.handleUpdate(ctx, press(10, cbConfirmNo))
	if n := len(b.controller(ctx, 10).Words()); n != 2 {
		t.Fatalf("decline deleted a word, %d left", n)
	}

	b.handleUpdate(ctx, press(10, cbDeletePrefix+target.ID))
	b.handleUpdate(ctx, press(10, cbConfirmYes))
	words := b.controller(ctx, 10).Words()
	if len(words) != 1 || words[0].ID == target.ID {
		t.Fatalf("words after delete = %+v", words)
	}
	if len(api.requests) != 4 {
		t.Fatalf("answered %d callbacks, want 4", len(api.requests))
	}
}

func TestQuizFlow(t *testing.T) {
	b, api := newTestBot(t, nil)
	ctx := context.Background()

	b.handleUpdate(ctx, command(10, "/quiz"))
	if screen, _ := api.last(t); !strings.Contains(screen, "Quiz locked") {
		t.Fatalf("screen = %q, want locked quiz", screen)
	}

	b.handleUpdate(ctx, say(10, "a - 1\nb - 2\nc - 3\nd - 4\ne - 5"))
	b.handleUpdate(ctx, press(10, cbQuizStart))
	screen, keyboard := api.last(t)
	if !strings.Contains(screen, "Question 1 / 5") {
		t.Fatalf("screen = %q", screen)
	}
	if hasButton(keyboard, callbackIs(cbTabAdd)) {
		t.Fatal("navigation shown during the quiz")
	}

	c := b.controller(ctx, 10)
	correct := c.View().Quiz.Question.CorrectID
	b.handleUpdate(ctx, press(10, cbAnswerPrefix+correct))
	_, keyboard = api.last(t)
	if !hasButton(keyboard, func(b tgbotapi.InlineKeyboardButton) bool { return strings.HasPrefix(b.Text, "✅") }) {
		t.Fatal("correct option not marked")
	}
	if !hasButton(keyboard, callbackIs(cbQuizNext)) {
		t.Fatal("no next button after answering")
	}

	// Leaving asks first
	b.handleUpdate(ctx, press(10, cbTabHistory))
	if screen, _ := api.last(t); !strings.Contains(screen, app.PromptQuit) {
		t.Fatalf("screen = %q, want the quit prompt", screen)
	}
	b.handleUpdate(ctx, press(10, cbConfirmYes))
	if v := c.View(); v.Quiz != nil || v.Tab != app.TabAdd {
		t.Fatalf("after quit: tab %s, quiz %+v", v.Tab, v.Quiz)
	}
	c.Settle()
}

func TestSearchCommand(t *testing.T) {
	b, api := newTestBot(t, nil)
	ctx := context.Background()
	b.handleUpdate(ctx, say(10, "Apple - Olma\nBook - Kitob"))

	b.handleUpdate(ctx, command(10, "/search kit"))
	screen, _ := api.last(t)
	if !strings.Contains(screen, "Book — Kitob") || strings.Contains(screen, "Apple") {
		t.Fatalf("screen = %q", screen)
	}

	b.handleUpdate(ctx, press(10, cbSearchPrompt))
	b.handleUpdate(ctx, say(10, "zzz"))
	if screen, _ := api.last(t); !strings.Contains(screen, "Nothing found") {
		t.Fatalf("screen = %q", screen)
	}
}

func TestAdminStats(t *testing.T) {
	b, api := newTestBot(t, nil)
	ctx := context.Background()

	b.handleUpdate(ctx, command(10, "/admin_stats"))
	if screen, _ := api.last(t); !strings.Contains(screen, "only available") {
		t.Fatalf("non-admin got %q", screen)
	}

	b.handleUpdate(ctx, command(99, "/admin_stats"))
	if screen, _ := api.last(t); !strings.Contains(screen, "Active users: 2") {
		t.Fatalf("admin got %q", screen)
	}
}

func TestMissingSenderUsesFallbackUser(t *testing.T) {
	b, _ := newTestBot(t, nil)
	update := say(0, "Apple - Olma")
	update.Message.From = nil
	b.handleUpdate(context.Background(), update)

	targets := b.ReminderTargets()
	if len(targets) != 1 || targets[0].UserID != 12345 {
		t.Fatalf("targets = %+v", targets)
	}
}

func TestReminders(t *testing.T) {
	b, api := newTestBot(t, nil)
	ctx := context.Background()
	b.handleUpdate(ctx, say(10, "a - 1\nb - 2"))

	targets := b.ReminderTargets()
	if len(targets) != 1 || targets[0].UserID != 10 || targets[0].WordCount != 2 {
		t.Fatalf("targets = %+v", targets)
	}

	if err := b.SendReminder(10, 7); err != nil {
		t.Fatalf("SendReminder failed: %v", err)
	}
	msg := api.sent[len(api.sent)-1].(tgbotapi.MessageConfig)
	if msg.ChatID != 10 || !strings.Contains(msg.Text, "7 words") {
		t.Fatalf("reminder = %+v", msg)
	}
}

func TestStopWaitsForHandlers(t *testing.T) {
	b, _ := newTestBot(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := b.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestLocalModeServesOwnerOnly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OwnerUserID = 1
	b, api := newTestBot(t, cfg)
	ctx := context.Background()

	b.handleUpdate(ctx, say(1, "book - kitob"))
	b.handleUpdate(ctx, say(2, "book - kitob2\npen - ruchka"))
	if screen, _ := api.last(t); screen != msgPrivate {
		t.Fatalf("other user got %q", screen)
	}
	sent, answered := len(api.sent), len(api.requests)
	b.handleUpdate(ctx, press(2, cbTabHistory))
	if len(api.sent) != sent || len(api.requests) != answered+1 {
		t.Fatalf("callback from other user: sent %d, answered %d", len(api.sent)-sent, len(api.requests)-answered)
	}

	targets := b.ReminderTargets()
	if len(targets) != 1 || targets[0].UserID != 1 {
		t.Fatalf("controllers created for %+v", targets)
	}
	words := b.controller(ctx, 1).Words()
	if len(words) != 1 || words[0].TargetTerm != "kitob" {
		t.Fatalf("owner words = %+v", words)
	}

	reloaded := b.newController(1)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if n := len(reloaded.Words()); n != 1 {
		t.Fatalf("stored %d words, want only the owner's", n)
	}
}
