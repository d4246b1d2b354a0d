package bot

import (
	"fmt"
	"strings"

	"github.com/example/proskill/internal/app"
	"github.com/example/proskill/internal/quiz"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data
const (
	cbTabAdd       = "tab:add"
	cbTabHistory   = "tab:history"
	cbTabQuiz      = "tab:quiz"
	cbAddPrompt    = "add:prompt"
	cbSearchPrompt = "search:prompt"
	cbSearchClear  = "search:clear"
	cbQuizStart    = "quiz:start"
	cbQuizNext     = "quiz:next"
	cbQuizQuit     = "quiz:quit"
	cbQuizHistory  = "quiz:history"
	cbStatsOpen    = "stats:open"
	cbStatsClose   = "stats:close"
	cbConfirmYes   = "confirm:yes"
	cbConfirmNo    = "confirm:no"

	cbAnswerPrefix = "ans:"
	cbDeletePrefix = "del:"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		if len(row) == 0 {
			continue
		}
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// navButtons is the bottom tab bar; the current tab is marked
func navButtons(current app.Tab) []MenuButton {
	label := func(tab app.Tab, text string) string {
		if tab == current {
			return "• " + text + " •"
		}
		return text
	}
	return []MenuButton{
		{Text: label(app.TabAdd, "➕ Add"), CallbackData: cbTabAdd},
		{Text: label(app.TabHistory, "📜 History"), CallbackData: cbTabHistory},
		{Text: label(app.TabQuiz, "🧩 Quiz"), CallbackData: cbTabQuiz},
	}
}

// render turns a view into message text and keyboard
func render(v app.View, cfg *BotConfig) (string, [][]MenuButton) {
	if v.Loading {
		return "⏳ ProSkill Quiz is loading...", [][]MenuButton{navButtons(v.Tab)}
	}
	if v.Confirm != nil {
		return "❓ " + v.Confirm.Prompt, [][]MenuButton{{
			{Text: "✅ Yes", CallbackData: cbConfirmYes},
			{Text: "↩️ No", CallbackData: cbConfirmNo},
		}}
	}
	if v.ShowStats && !v.InQuiz() {
		return renderStats(v), [][]MenuButton{{{Text: "Close", CallbackData: cbStatsClose}}}
	}

	var text string
	var buttons [][]MenuButton
	switch v.Tab {
	case app.TabHistory:
		text, buttons = renderHistory(v, cfg)
	case app.TabQuiz:
		text, buttons = renderQuiz(v)
	default:
		text, buttons = renderAdd(v)
	}

	if v.Notice != "" {
		text += "\n\n⚠️ " + v.Notice
	}
	if !v.InQuiz() {
		buttons = append(buttons, navButtons(v.Tab))
	}
	return text, buttons
}

func header() string {
	return "ProSkill Quiz\nGrow your vocabulary\n\n"
}

func renderStats(v app.View) string {
	var b strings.Builder
	b.WriteString("📊 My results\n\n")
	fmt.Fprintf(&b, "🏅 Total correct: %d\n", v.Stats.Correct)
	fmt.Fprintf(&b, "🔥 Best streak: %d\n", v.Stats.BestStreak)
	fmt.Fprintf(&b, "Current streak: %d\n", v.Stats.Streak)
	fmt.Fprintf(&b, "Wrong answers: %d\n", v.Stats.Wrong)
	fmt.Fprintf(&b, "Words: %d", v.TotalWords)
	return b.String()
}

func renderAdd(v app.View) (string, [][]MenuButton) {
	var b strings.Builder
	b.WriteString(header())
	b.WriteString("➕ New word\n")
	b.WriteString("Send it as \"English - translation\", for example: Apple - Olma\n\n")
	fmt.Fprintf(&b, "Total words: %d", v.TotalWords)
	if v.FormError != "" {
		b.WriteString("\n\n❗ " + v.FormError)
	}

	buttons := [][]MenuButton{
		{{Text: "➕ Add to list", CallbackData: cbAddPrompt}, {Text: "📊 Stats", CallbackData: cbStatsOpen}},
	}
	if !v.QuizLocked {
		buttons = append(buttons, []MenuButton{{Text: "▶️ Start quiz", CallbackData: cbQuizStart}})
	}
	return b.String(), buttons
}

func renderHistory(v app.View, cfg *BotConfig) (string, [][]MenuButton) {
	var b strings.Builder
	b.WriteString(header())
	if v.Search != "" {
		fmt.Fprintf(&b, "🔍 Search: %s\n\n", v.Search)
	}

	var buttons [][]MenuButton
	if len(v.Words) == 0 {
		b.WriteString("Nothing found")
	}

	for i, w := range v.Words {
		if i >= cfg.MaxListedWords {
			fmt.Fprintf(&b, "... and %d more", len(v.Words)-i)
			break
		}
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, w.SourceTerm, w.TargetTerm)
		buttons = append(buttons, []MenuButton{{
			Text:         "🗑 " + w.SourceTerm,
			CallbackData: cbDeletePrefix + w.ID,
		}})
	}

	search := []MenuButton{{Text: "🔍 Search", CallbackData: cbSearchPrompt}}
	if v.Search != "" {
		search = append(search, MenuButton{Text: "✖ Clear search", CallbackData: cbSearchClear})
	}
	buttons = append(buttons, search)
	if !v.QuizLocked {
		buttons = append(buttons, []MenuButton{{Text: "▶️ Start quiz", CallbackData: cbQuizStart}})
	}
	return strings.TrimRight(b.String(), "\n"), buttons
}

func renderQuiz(v app.View) (string, [][]MenuButton) {
	switch {
	case v.Quiz == nil && v.QuizLocked:
		return "🔒 Quiz locked\nAt least 5 words are required.", [][]MenuButton{
			{{Text: "➕ Add words", CallbackData: cbTabAdd}},
		}
	case v.Quiz == nil:
		text := fmt.Sprintf("🧩 Start the quiz\nTest yourself on all %d of your words.", v.TotalWords)
		return text, [][]MenuButton{{{Text: "▶️ Start quiz", CallbackData: cbQuizStart}}}
	case v.Quiz.State == quiz.Finished:
		text := fmt.Sprintf("🏆 Quiz finished!\n\nCorrect: %d / %d\nAccuracy: %d%%",
			v.Quiz.Correct, v.Quiz.Len, v.Quiz.Accuracy)
		return text, [][]MenuButton{
			{{Text: "🔄 Restart", CallbackData: cbQuizStart}},
			{{Text: "📜 Back to history", CallbackData: cbQuizHistory}},
		}
	}

	q := v.Quiz
	var b strings.Builder
	fmt.Fprintf(&b, "Question %d / %d\n%s\n\n", q.Index+1, q.Len, progressBar(q.Progress))
	b.WriteString("What does it mean?\n")
	b.WriteString(q.Question.QuestionText)

	var buttons [][]MenuButton
	var row []MenuButton
	for _, o := range q.Question.Options {
		text := o.Text
		if q.Answered {
			switch {
			case o.ID == q.Question.CorrectID:
				text = "✅ " + text
			case o.ID == q.Selected:
				text = "❌ " + text
			}
		}
		row = append(row, MenuButton{Text: text, CallbackData: cbAnswerPrefix + o.ID})
		if len(row) == 2 {
			buttons = append(buttons, row)
			row = nil
		}
	}
	if len(row) > 0 {
		buttons = append(buttons, row)
	}

	if q.Answered {
		next := "Next question ➡️"
		if !q.HasNext {
			next = "See results ➡️"
		}
		buttons = append(buttons, []MenuButton{{Text: next, CallbackData: cbQuizNext}})
	}
	buttons = append(buttons, []MenuButton{{Text: "✖ Quit", CallbackData: cbQuizQuit}})
	return b.String(), buttons
}

func progressBar(progress float64) string {
	const width = 10
	filled := int(progress*width + 0.5)
	if filled > width {
		filled = width
	}
	return strings.Repeat("▓", filled) + strings.Repeat("░", width-filled)
}
