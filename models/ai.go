package models

import (
	"errors"
	"strings"
)

// SummarizeInput selects one of the two mutually exclusive summarize forms:
// raw text, or a reference to a book that already has a source summary.
type SummarizeInput struct {
	Text   string `json:"text,omitempty"`
	BookID int    `json:"book_id,omitempty"`
}

// Validate enforces the exactly-one-form constraint before any request is made.
func (in SummarizeInput) Validate() error {
	hasText := strings.TrimSpace(in.Text) != ""
	hasBook := in.BookID > 0
	if hasText == hasBook {
		return ErrSummarizeForm
	}
	return nil
}

// ErrSummarizeForm is returned when neither or both summarize forms are set.
var ErrSummarizeForm = errors.New("summarize takes either text or a book id, not both")

// Recommendation is the outcome of a recommend request. A query the server
// cannot match is a success with Found=false, not an error.
type Recommendation struct {
	Title string
	Found bool
}
