// Package server implements the word service consumed by remote mode.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/proskill/internal/database"
	"github.com/example/proskill/pkg/models"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
)

// Handler serves the word service endpoints
type Handler struct {
	words *database.WordRepository
	stats *database.StatisticsRepository
	users *database.UserRepository
}

// NewHandler creates a handler over db
func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{
		words: database.NewWordRepository(db),
		stats: database.NewStatisticsRepository(db),
		users: database.NewUserRepository(db),
	}
}

type addWordRequest struct {
	UserID int64  `json:"user_id"`
	En     string `json:"en"`
	Uz     string `json:"uz"`
}

type answerRequest struct {
	UserID    int64 `json:"user_id"`
	IsCorrect bool  `json:"is_correct"`
}

func jsonResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

func errorResponse(w http.ResponseWriter, message string, status int) {
	jsonResponse(w, map[string]string{"detail": message}, status)
}

// HealthCheck reports that the service is up
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// AddWord creates a word, creating the user on first contact
func (h *Handler) AddWord(w http.ResponseWriter, r *http.Request) {
	var req addWordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.En = strings.TrimSpace(req.En)
	req.Uz = strings.TrimSpace(req.Uz)
	if req.UserID == 0 || req.En == "" || req.Uz == "" {
		errorResponse(w, "user_id, en and uz are required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if err := h.users.EnsureExists(ctx, req.UserID); err != nil {
		log.Printf("Error creating user %d: %v", req.UserID, err)
		errorResponse(w, "internal error", http.StatusInternalServerError)
		return
	}

	id, err := h.words.Create(ctx, req.UserID, req.En, req.Uz)
	if err != nil {
		log.Printf("Error adding word for user %d: %v", req.UserID, err)
		errorResponse(w, "internal error", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, map[string]interface{}{"status": "ok", "id": id}, http.StatusOK)
}

// ListWords returns the user's words, newest first
func (h *Handler) ListWords(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	words, err := h.words.ListByUser(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing words for user %d: %v", userID, err)
		errorResponse(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, words, http.StatusOK)
}

// DeleteWord removes one of the user's words
func (h *Handler) DeleteWord(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	wordID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		errorResponse(w, "word not found", http.StatusNotFound)
		return
	}

	err = h.words.Delete(r.Context(), wordID, userID)
	if errors.Is(err, database.ErrNotFound) {
		errorResponse(w, "word not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error deleting word %d for user %d: %v", wordID, userID, err)
		errorResponse(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, map[string]string{"status": "deleted"}, http.StatusOK)
}

// GetStats returns the user's statistics
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	stats, err := h.stats.GetByUser(r.Context(), userID)
	if err != nil {
		log.Printf("Error getting stats for user %d: %v", userID, err)
		errorResponse(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeStats(w, r, userID, stats)
}

// SubmitAnswer records a quiz answer and returns the updated statistics
func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		errorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}

	stats, err := h.stats.RecordAnswer(r.Context(), req.UserID, req.IsCorrect)
	if err != nil {
		log.Printf("Error recording answer for user %d: %v", req.UserID, err)
		errorResponse(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeStats(w, r, req.UserID, stats)
}

func (h *Handler) writeStats(w http.ResponseWriter, r *http.Request, userID int64, stats models.UserStats) {
	count, err := h.words.CountByUser(r.Context(), userID)
	if err != nil {
		log.Printf("Error counting words for user %d: %v", userID, err)
		errorResponse(w, "internal error", http.StatusInternalServerError)
		return
	}
	stats.TotalWords = count
	jsonResponse(w, stats, http.StatusOK)
}

func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID == 0 {
		errorResponse(w, "user_id is required", http.StatusBadRequest)
		return 0, false
	}
	return userID, true
}
