// Package host resolves the user id handed over by the chat host.
package host

import (
	"encoding/json"
	"net/url"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// PlaceholderUserID is used when the host provides no user, so the app stays usable standalone
const PlaceholderUserID int64 = 12345

type webAppUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

// FromInitData extracts the user id from Telegram WebApp init data.
// The signature is not checked; the id is an opaque identifier.
func FromInitData(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return 0, false
	}
	userJSON := values.Get("user")
	if userJSON == "" {
		return 0, false
	}

	var user webAppUser
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil || user.ID == 0 {
		return 0, false
	}
	return user.ID, true
}

// FromUser returns the id of a Telegram user
func FromUser(user *tgbotapi.User) (int64, bool) {
	if user == nil || user.ID == 0 {
		return 0, false
	}
	return user.ID, true
}

// Resolve returns id when the host provided one, fallback otherwise
func Resolve(id int64, ok bool, fallback int64) int64 {
	if ok && id != 0 {
		return id
	}
	if fallback != 0 {
		return fallback
	}
	return PlaceholderUserID
}
