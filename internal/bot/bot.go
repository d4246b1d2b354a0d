// Package bot is the Telegram shell of ProSkill Quiz. Each chat user gets
// an app.Controller; screens are rendered as one message with inline buttons.
package bot

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/example/proskill/internal/app"
	"github.com/example/proskill/internal/host"
	"github.com/example/proskill/internal/scheduler"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender is the part of tgbotapi.BotAPI the bot uses
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// ControllerFactory creates the controller of a new user
type ControllerFactory func(userID int64) *app.Controller

// Input the bot is waiting for
const (
	stateIdle = iota
	stateAwaitingWord
	stateAwaitingSearch
)

// UserState represents the current state of a user in conversation with the bot
type UserState struct {
	State     int
	ChatID    int64
	Timestamp time.Time
}

// Bot represents the Telegram bot application
type Bot struct {
	api            sender
	poller         *tgbotapi.BotAPI
	config         *BotConfig
	newController  ControllerFactory
	fallbackUserID int64
	adminUserIDs   map[int64]bool

	mu          sync.Mutex
	controllers map[int64]*app.Controller
	userStates  map[int64]*UserState

	wg sync.WaitGroup
}

var (
	_ scheduler.Notifier = (*Bot)(nil)
	_ scheduler.Roster   = (*Bot)(nil)
)

// New creates a new bot instance authorized with token
func New(token string, config *BotConfig, factory ControllerFactory, fallbackUserID int64, adminIDs []int64) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is not set")
	}
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	log.Printf("Authorized on account %s", botAPI.Self.UserName)

	b := newBot(botAPI, config, factory, fallbackUserID, adminIDs)
	b.poller = botAPI
	return b, nil
}

func newBot(api sender, config *BotConfig, factory ControllerFactory, fallbackUserID int64, adminIDs []int64) *Bot {
	if config == nil {
		config = DefaultConfig()
	}
	b := &Bot{
		api:            api,
		config:         config,
		newController:  factory,
		fallbackUserID: fallbackUserID,
		adminUserIDs:   make(map[int64]bool),
		controllers:    make(map[int64]*app.Controller),
		userStates:     make(map[int64]*UserState),
	}
	for _, id := range adminIDs {
		b.adminUserIDs[id] = true
	}
	return b
}

// Start receives updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	if b.poller == nil {
		return fmt.Errorf("bot is not connected to telegram")
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout
	updates := b.poller.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.wg.Add(1)
			go func(update tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdate(ctx, update)
			}(update)
		}
	}
}

// Stop stops polling and waits for handlers and pending statistics updates
func (b *Bot) Stop(ctx context.Context) error {
	if b.poller != nil {
		b.poller.StopReceivingUpdates()
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		for _, c := range b.snapshotControllers() {
			c.Settle()
		}
		close(done)
	}()

	select {
	case <-done:
		log.Println("Bot stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to stop bot: %w", ctx.Err())
	}
}

// SendReminder implements the scheduler.Notifier interface
func (b *Bot) SendReminder(userID int64, wordCount int) error {
	b.mu.Lock()
	state, ok := b.userStates[userID]
	b.mu.Unlock()
	chatID := userID
	if ok && state.ChatID != 0 {
		chatID = state.ChatID
	}

	text := fmt.Sprintf("🧩 You have %d words waiting. A short quiz keeps them fresh!", wordCount)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{{{Text: "▶️ Start quiz", CallbackData: cbQuizStart}}})
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending reminder to user %d: %v", userID, err)
		return err
	}
	log.Printf("Successfully sent reminder to user %d for %d words", userID, wordCount)
	return nil
}

// ReminderTargets implements the scheduler.Roster interface
func (b *Bot) ReminderTargets() []scheduler.Target {
	controllers := b.snapshotControllers()
	targets := make([]scheduler.Target, 0, len(controllers))
	for userID, c := range controllers {
		targets = append(targets, scheduler.Target{UserID: userID, WordCount: len(c.Words())})
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].UserID < targets[j].UserID })
	return targets
}

// controller returns the user's controller, creating and loading it on first use
func (b *Bot) controller(ctx context.Context, userID int64) *app.Controller {
	b.mu.Lock()
	c, ok := b.controllers[userID]
	if !ok {
		c = b.newController(userID)
		b.controllers[userID] = c
	}
	b.mu.Unlock()

	if !ok {
		loadCtx, cancel := context.WithTimeout(ctx, b.config.LoadTimeout)
		defer cancel()
		if err := c.Load(loadCtx); err != nil {
			log.Printf("Error loading data for user %d: %v", userID, err)
		}
	}
	return c
}

func (b *Bot) snapshotControllers() map[int64]*app.Controller {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[int64]*app.Controller, len(b.controllers))
	for id, c := range b.controllers {
		out[id] = c
	}
	return out
}

func (b *Bot) setState(userID, chatID int64, state int) {
	b.mu.Lock()
	b.userStates[userID] = &UserState{State: state, ChatID: chatID, Timestamp: time.Now()}
	b.mu.Unlock()
}

func (b *Bot) state(userID int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.userStates[userID]; ok {
		return s.State
	}
	return stateIdle
}

func (b *Bot) resolveUser(from *tgbotapi.User) int64 {
	id, ok := host.FromUser(from)
	return host.Resolve(id, ok, b.fallbackUserID)
}

// allowed reports whether the bot serves userID
func (b *Bot) allowed(userID int64) bool {
	return b.config.OwnerUserID == 0 || userID == b.config.OwnerUserID
}

// isAdmin checks if a user is an admin
func (b *Bot) isAdmin(userID int64) bool {
	return b.adminUserIDs[userID]
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.Message != nil:
		err = b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		err = b.handleCallback(ctx, update.CallbackQuery)
	}
	if err != nil {
		log.Printf("Error handling update %d: %v", update.UpdateID, err)
	}
}
