package models

import "strings"

// Word represents a translation pair owned by a user
type Word struct {
	ID         string `json:"id"`
	SourceTerm string `json:"en"` // English term shown as the question
	TargetTerm string `json:"uz"` // Translation shown as an answer option
}

// SameSource reports whether two source terms collide, ignoring case
func SameSource(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Matches reports whether the word contains query in either term, ignoring case
func (w Word) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(w.SourceTerm), q) ||
		strings.Contains(strings.ToLower(w.TargetTerm), q)
}
