package models

import "strings"

// Book represents a catalog entry with optional AI-generated summary.
// available_copies is a server-authoritative projection; the client only ever
// reflects it after a refetch and never computes it locally.
type Book struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           string `json:"genre,omitempty"`
	Summary         string `json:"summary,omitempty"`    // original, human-written summary
	AISummary       string `json:"ai_summary,omitempty"` // generated text, server- or session-cached
	AvailableCopies int    `json:"available_copies"`
	TotalCopies     int    `json:"total_copies"`
}

// HasSummary reports whether the book carries a source summary. Summarization
// of a book without one is never attempted; callers disable the action.
func (b Book) HasSummary() bool {
	return strings.TrimSpace(b.Summary) != ""
}

// NewBook is the payload for catalog creation.
type NewBook struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           string `json:"genre,omitempty"`
	Summary         string `json:"summary,omitempty"`
	TotalCopies     int    `json:"total_copies,omitempty"`
	AvailableCopies int    `json:"available_copies,omitempty"`
}
