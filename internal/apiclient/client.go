// Package apiclient talks to the word service over its HTTP contract.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/proskill/pkg/models"
)

// ErrNotFound is returned when the service answers 404
var ErrNotFound = errors.New("not found")

// StatusError is a non-2xx answer from the service
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("word service returned status %d", e.Status)
	}
	return fmt.Sprintf("word service returned status %d: %s", e.Status, e.Body)
}

// Client is a client for the word service
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the service at baseURL
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// wordRecord is the wire shape of a word; the service sends numeric ids
type wordRecord struct {
	ID wordID `json:"id"`
	En string `json:"en"`
	Uz string `json:"uz"`
}

type wordID string

func (id *wordID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = wordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid word id %s: %w", data, err)
	}
	*id = wordID(n.String())
	return nil
}

type addWordRequest struct {
	UserID int64  `json:"user_id"`
	En     string `json:"en"`
	Uz     string `json:"uz"`
}

type addWordResponse struct {
	ID wordID `json:"id"`
}

type answerRequest struct {
	UserID    int64 `json:"user_id"`
	IsCorrect bool  `json:"is_correct"`
}

// ListWords returns the user's words, most recently added first
func (c *Client) ListWords(ctx context.Context, userID int64) ([]models.Word, error) {
	var records []wordRecord
	if err := c.get(ctx, "/api/words/list", userID, &records); err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}

	words := make([]models.Word, 0, len(records))
	for _, r := range records {
		words = append(words, models.Word{ID: string(r.ID), SourceTerm: r.En, TargetTerm: r.Uz})
	}
	return words, nil
}

// Stats returns the user's statistics
func (c *Client) Stats(ctx context.Context, userID int64) (models.UserStats, error) {
	var stats models.UserStats
	if err := c.get(ctx, "/api/stats", userID, &stats); err != nil {
		return models.UserStats{}, fmt.Errorf("failed to get stats: %w", err)
	}
	return stats, nil
}

// AddWord creates a word and returns the id the service assigned to it
func (c *Client) AddWord(ctx context.Context, userID int64, en, uz string) (string, error) {
	var resp addWordResponse
	err := c.send(ctx, http.MethodPost, c.baseURL+"/api/words", addWordRequest{UserID: userID, En: en, Uz: uz}, &resp)
	if err != nil {
		return "", fmt.Errorf("failed to add word: %w", err)
	}
	if resp.ID == "" {
		return "", errors.New("failed to add word: service returned no id")
	}
	return string(resp.ID), nil
}

// DeleteWord removes a word. It returns ErrNotFound when the service does not know the word.
func (c *Client) DeleteWord(ctx context.Context, userID int64, id string) error {
	u := c.baseURL + "/api/words/" + url.PathEscape(id) + "?" + userQuery(userID)
	if err := c.send(ctx, http.MethodDelete, u, nil, nil); err != nil {
		return fmt.Errorf("failed to delete word: %w", err)
	}
	return nil
}

// RecordAnswer reports a quiz answer and returns the updated statistics
func (c *Client) RecordAnswer(ctx context.Context, userID int64, isCorrect bool) (models.UserStats, error) {
	var stats models.UserStats
	err := c.send(ctx, http.MethodPost, c.baseURL+"/api/quiz/answer", answerRequest{UserID: userID, IsCorrect: isCorrect}, &stats)
	if err != nil {
		return models.UserStats{}, fmt.Errorf("failed to record answer: %w", err)
	}
	return stats, nil
}

func (c *Client) get(ctx context.Context, path string, userID int64, out interface{}) error {
	u := c.baseURL + path + "?" + userQuery(userID)
	resp, err := doWithRetry(ctx, c.http, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp.Body, out)
}

// send issues a single request; writes are never retried
func (c *Client) send(ctx context.Context, method, u string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(resp.Body, out)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

func decode(r io.Reader, out interface{}) error {
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func userQuery(userID int64) string {
	return url.Values{"user_id": {strconv.FormatInt(userID, 10)}}.Encode()
}
