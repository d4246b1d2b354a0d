package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/example/proskill/internal/app"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const msgPrivate = "This bot keeps a private word list and serves its owner only."

const helpText = `ProSkill Quiz helps you grow your vocabulary.

/start - Welcome screen
/add - Add words ("English - translation", one per line)
/history - Your words
/search <text> - Search your words
/quiz - Start a quiz (at least 5 words)
/stats - Your results
/help - This message`

// handleMessage dispatches commands and free text
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	if message.Chat == nil {
		return fmt.Errorf("invalid message: chat is missing")
	}
	userID := b.resolveUser(message.From)
	chatID := message.Chat.ID
	if !b.allowed(userID) {
		return b.sendText(chatID, msgPrivate)
	}
	c := b.controller(ctx, userID)

	if message.IsCommand() {
		return b.handleCommand(ctx, c, chatID, message)
	}

	text := strings.TrimSpace(message.Text)
	if text == "" {
		return b.sendText(chatID, "Please send words in text format.")
	}

	if b.state(userID) == stateAwaitingSearch {
		b.setState(userID, chatID, stateIdle)
		c.SetSearch(text)
		b.switchTab(c, app.TabHistory)
		return b.sendScreen(chatID, c, "")
	}

	b.setState(userID, chatID, stateAwaitingWord)
	return b.processWordList(ctx, c, chatID, text)
}

func (b *Bot) handleCommand(ctx context.Context, c *app.Controller, chatID int64, message *tgbotapi.Message) error {
	userID := c.UserID()
	b.setState(userID, chatID, stateIdle)

	switch message.Command() {
	case "start":
		return b.handleStart(c, chatID)
	case "menu", "add":
		b.setState(userID, chatID, stateAwaitingWord)
		b.switchTab(c, app.TabAdd)
	case "history":
		b.switchTab(c, app.TabHistory)
	case "search":
		c.SetSearch(strings.TrimSpace(message.CommandArguments()))
		b.switchTab(c, app.TabHistory)
	case "quiz":
		b.switchTab(c, app.TabQuiz)
	case "stats":
		c.OpenStats()
	case "help":
		return b.sendText(chatID, helpText)
	case "admin_stats":
		if !b.isAdmin(userID) {
			return b.sendText(chatID, "This command is only available for administrators.")
		}
		return b.handleAdminStats(chatID)
	default:
		return b.sendText(chatID, "Unknown command. Use /help to see what I can do.")
	}
	return b.sendScreen(chatID, c, "")
}

func (b *Bot) handleStart(c *app.Controller, chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Welcome to ProSkill Quiz! 🎓\nAdd words, review them and test yourself.")
	if b.config.WebAppURL != "" {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("🚀 Open ProSkill Quiz", b.config.WebAppURL)),
		)
	}
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send welcome message: %w", err)
	}
	return b.sendScreen(chatID, c, "")
}

func (b *Bot) handleAdminStats(chatID int64) error {
	targets := b.ReminderTargets()
	words := 0
	for _, t := range targets {
		words += t.WordCount
	}
	return b.sendText(chatID, fmt.Sprintf("Active users: %d\nWords: %d", len(targets), words))
}

// processWordList adds every "word - translation" line of text
func (b *Bot) processWordList(ctx context.Context, c *app.Controller, chatID int64, text string) error {
	b.switchTab(c, app.TabAdd)
	c.EditForm()

	var added []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		source, target := parseWordPair(line)
		word, err := c.SubmitWord(ctx, source, target)
		if err != nil {
			log.Printf("Word %q not added for user %d: %v", line, c.UserID(), err)
			continue
		}
		added = append(added, fmt.Sprintf("✅ %s — %s", word.SourceTerm, word.TargetTerm))
	}

	prefix := ""
	if len(added) > 0 {
		prefix = strings.Join(added, "\n") + "\n\n"
	}
	return b.sendScreen(chatID, c, prefix)
}

// parseWordPair splits "word - translation". Without a separator the
// translation is empty and the form reports it.
func parseWordPair(line string) (string, string) {
	for _, sep := range []string{" - ", " — ", " – ", "—", "–", " = ", ":", "="} {
		if source, target, ok := strings.Cut(line, sep); ok {
			return strings.TrimSpace(source), strings.TrimSpace(target)
		}
	}
	if source, target, ok := strings.Cut(line, "-"); ok && !strings.Contains(target, "-") {
		return strings.TrimSpace(source), strings.TrimSpace(target)
	}
	return strings.TrimSpace(line), ""
}

// handleCallback handles inline button presses
func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback.Message == nil || callback.Message.Chat == nil {
		return fmt.Errorf("invalid callback data: message is missing")
	}

	userID := b.resolveUser(callback.From)
	chatID := callback.Message.Chat.ID
	if !b.allowed(userID) {
		if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, msgPrivate)); err != nil {
			log.Printf("Warning: Failed to answer callback: %v", err)
		}
		return nil
	}
	c := b.controller(ctx, userID)
	hint := ""

	var err error
	switch data := callback.Data; {
	case data == cbTabAdd:
		b.switchTab(c, app.TabAdd)
	case data == cbTabHistory:
		b.switchTab(c, app.TabHistory)
	case data == cbTabQuiz:
		b.switchTab(c, app.TabQuiz)
	case data == cbAddPrompt:
		b.setState(userID, chatID, stateAwaitingWord)
		b.switchTab(c, app.TabAdd)
		hint = "Send: English - translation"
	case data == cbSearchPrompt:
		b.setState(userID, chatID, stateAwaitingSearch)
		hint = "Send the text to search for"
	case data == cbSearchClear:
		c.SetSearch("")
	case data == cbQuizStart:
		err = c.StartQuiz()
	case data == cbQuizNext:
		err = c.Next()
	case data == cbQuizQuit:
		err = c.RequestQuit()
	case data == cbQuizHistory:
		err = c.BackToHistory()
	case data == cbStatsOpen:
		c.OpenStats()
	case data == cbStatsClose:
		c.CloseStats()
	case data == cbConfirmYes:
		err = c.Confirm(ctx, true)
	case data == cbConfirmNo:
		err = c.Confirm(ctx, false)
	case strings.HasPrefix(data, cbAnswerPrefix):
		err = c.Answer(ctx, strings.TrimPrefix(data, cbAnswerPrefix))
	case strings.HasPrefix(data, cbDeletePrefix):
		c.RequestDelete(strings.TrimPrefix(data, cbDeletePrefix))
	default:
		hint = "⚠️ Unknown action"
	}

	if err != nil && !errors.Is(err, app.ErrQuizLocked) {
		log.Printf("Callback %q for user %d: %v", callback.Data, userID, err)
	}
	if errors.Is(err, app.ErrBusy) {
		hint = "Please wait..."
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, hint)); err != nil {
		log.Printf("Warning: Failed to answer callback: %v", err)
	}
	return b.editScreen(chatID, callback.Message.MessageID, c)
}

// switchTab changes tabs; leaving a running quiz asks for confirmation first
func (b *Bot) switchTab(c *app.Controller, tab app.Tab) {
	if err := c.SetTab(tab); errors.Is(err, app.ErrQuizRunning) {
		if err := c.RequestQuit(); err != nil {
			log.Printf("Error requesting quit for user %d: %v", c.UserID(), err)
		}
	}
}

// screen renders the controller; a shown notice is dismissed
func (b *Bot) screen(c *app.Controller) (string, tgbotapi.InlineKeyboardMarkup) {
	v := c.View()
	text, buttons := render(v, b.config)
	if v.Notice != "" {
		c.DismissNotice()
	}
	return text, createKeyboard(buttons)
}

func (b *Bot) sendScreen(chatID int64, c *app.Controller, prefix string) error {
	text, keyboard := b.screen(c)
	msg := tgbotapi.NewMessage(chatID, prefix+text)
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send screen: %w", err)
	}
	return nil
}

func (b *Bot) editScreen(chatID int64, messageID int, c *app.Controller) error {
	text, keyboard := b.screen(c)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, keyboard)
	if _, err := b.api.Send(edit); err != nil {
		return fmt.Errorf("failed to edit screen: %w", err)
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
