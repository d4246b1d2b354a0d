package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Maximum number of words listed on the history screen
	MaxListedWords int
	// Timeout for loading a user's words when they first write to the bot
	LoadTimeout time.Duration
	// Long-polling timeout in seconds
	UpdateTimeout int
	// Mini-app address offered by /start; empty hides the button
	WebAppURL string
	// Only user served when non-zero; local persistence holds a single word list
	OwnerUserID int64
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		MaxListedWords: 20,
		LoadTimeout:    15 * time.Second,
		UpdateTimeout:  60,
	}
}
