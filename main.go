package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/proskill/internal/app"
	"github.com/example/proskill/internal/bot"
	"github.com/example/proskill/internal/config"
	"github.com/example/proskill/internal/database"
	"github.com/example/proskill/internal/quiz"
	"github.com/example/proskill/internal/scheduler"
	"github.com/example/proskill/internal/store"
)

func main() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	// Local slots double as the offline cache in remote mode
	db, err := database.Connect(cfg.LocalDBPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := database.InitLocalSchema(db); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	backend := store.New(cfg.APIBase, cfg.HTTPTimeout, database.NewKVRepository(db))
	log.Printf("Persistence mode: %s", backend.Mode)

	engine := quiz.NewEngine(nil)
	factory := func(userID int64) *app.Controller {
		return app.New(userID, backend, engine)
	}

	botConfig := bot.DefaultConfig()
	botConfig.WebAppURL = cfg.WebAppURL
	if !cfg.RemoteMode() {
		if len(cfg.AdminUserIDs) == 0 {
			log.Fatalf("Local mode keeps one word list: set API_BASE, or ADMIN_USER_IDS to choose its owner")
		}
		botConfig.OwnerUserID = cfg.AdminUserIDs[0]
		log.Printf("Local mode: serving user %d only", botConfig.OwnerUserID)
	}
	b, err := bot.New(cfg.TelegramToken, botConfig, factory, cfg.FallbackUserID, cfg.AdminUserIDs)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	var reminders *scheduler.Scheduler
	if cfg.SchedulerEnable {
		reminders = scheduler.New(b, b, cfg.ReminderTime)
		if err := reminders.Start(); err != nil {
			log.Printf("Reminders disabled: %v", err)
			reminders = nil
		}
	}

	done := make(chan struct{})

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v\n", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if reminders != nil {
			reminders.Stop()
		}
		if err := b.Stop(shutdownCtx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}

		close(done)
	}()

	log.Println("Bot started. Press Ctrl+C to stop.")
	go func() {
		if err := b.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Bot error: %v", err)
		}
	}()

	<-done
	log.Println("Bot stopped successfully")
}
