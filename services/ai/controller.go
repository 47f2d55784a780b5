// Package ai drives the two AI augmentation flows, recommend and summarize,
// against the library API. Each flow is an explicit state machine
// (idle → pending → success | error) and the two are fully independent: a
// pending summarize never blocks a pending recommend.
//
// Overlapping requests on one flow are neither deduplicated nor cancelled.
// Completions are applied in arrival order, so the last response to land
// wins, regardless of which request was issued last. That matches the
// original client's observed behavior and is asserted by tests; every attempt
// carries a monotonically increasing number that is logged, which is enough
// to switch to last-issued-wins later if that gap is ever declared a bug.
package ai

import (
	"context"
	"strings"
	"sync"

	"libretto/gateway"
	"libretto/models"
	"libretto/utils"

	"go.uber.org/zap"
)

// FlowState is one controller flow's lifecycle position.
type FlowState string

const (
	StateIdle    FlowState = "idle"
	StatePending FlowState = "pending"
	StateSuccess FlowState = "success"
	StateError   FlowState = "error"
)

// RecommendView is a point-in-time snapshot of the recommend flow.
type RecommendView struct {
	State  FlowState
	Result models.Recommendation
	Err    string
}

// SummarizeView is a point-in-time snapshot of the summarize flow.
type SummarizeView struct {
	State   FlowState
	Summary string
	Err     string
}

// Controller owns both flows. Safe for concurrent use.
type Controller struct {
	mu sync.Mutex
	gw gateway.Client

	rec         RecommendView
	recAttempts uint64

	sum         SummarizeView
	sumAttempts uint64

	logger *zap.Logger
}

func New(gw gateway.Client) *Controller {
	return &Controller{
		gw:     gw,
		rec:    RecommendView{State: StateIdle},
		sum:    SummarizeView{State: StateIdle},
		logger: utils.GetLogger(),
	}
}

// CanRecommend reports whether query is submittable. The UI disables the
// action when this is false; StartRecommend enforces it again.
func (c *Controller) CanRecommend(query string) bool {
	return strings.TrimSpace(query) != ""
}

// CanSummarizeText reports whether raw text is submittable.
func (c *Controller) CanSummarizeText(text string) bool {
	return strings.TrimSpace(text) != ""
}

// CanSummarizeBook reports whether the book-reference form is submittable:
// the referenced book must already carry a source summary.
func (c *Controller) CanSummarizeBook(b models.Book) bool {
	return b.ID > 0 && b.HasSummary()
}

// StartRecommend kicks off a recommend request and returns a channel closed
// when its response has been applied. An empty query fails with a
// ValidationError before any network activity.
func (c *Controller) StartRecommend(ctx context.Context, query string) (<-chan struct{}, error) {
	if !c.CanRecommend(query) {
		return nil, utils.NewValidationError("Please enter a recommendation query")
	}

	c.mu.Lock()
	c.recAttempts++
	attempt := c.recAttempts
	c.rec = RecommendView{State: StatePending}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		result, err := c.gw.Recommend(ctx, query)

		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.rec = RecommendView{State: StateError, Err: utils.UserMessage(err)}
			c.logger.Warn("recommend failed",
				zap.Uint64("attempt", attempt), zap.String("query", query), zap.Error(err))
			return
		}
		// Applied in arrival order: a slower earlier attempt can overwrite a
		// faster later one.
		c.rec = RecommendView{State: StateSuccess, Result: result}
		c.logger.Debug("recommend applied",
			zap.Uint64("attempt", attempt), zap.Bool("found", result.Found))
	}()
	return done, nil
}

// StartSummarize kicks off a summarize request for either form and returns a
// channel closed when its response has been applied. Form violations fail
// with a ValidationError before any network activity. The book-reference
// precondition (source summary present) is gated by the caller via
// CanSummarizeBook, since only the caller holds the Book.
func (c *Controller) StartSummarize(ctx context.Context, in models.SummarizeInput) (<-chan struct{}, error) {
	if err := in.Validate(); err != nil {
		return nil, utils.NewValidationError("Please provide text or a book to summarize")
	}
	if in.BookID == 0 && !c.CanSummarizeText(in.Text) {
		return nil, utils.NewValidationError("Please provide text or a book to summarize")
	}

	c.mu.Lock()
	c.sumAttempts++
	attempt := c.sumAttempts
	c.sum = SummarizeView{State: StatePending}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		summary, err := c.gw.Summarize(ctx, in)

		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.sum = SummarizeView{State: StateError, Err: utils.UserMessage(err)}
			c.logger.Warn("summarize failed",
				zap.Uint64("attempt", attempt), zap.Int("book_id", in.BookID), zap.Error(err))
			return
		}
		c.sum = SummarizeView{State: StateSuccess, Summary: summary}
		c.logger.Debug("summarize applied", zap.Uint64("attempt", attempt))
	}()
	return done, nil
}

// Recommend returns the current recommend flow snapshot.
func (c *Controller) Recommend() RecommendView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rec
}

// Summarize returns the current summarize flow snapshot.
func (c *Controller) Summarize() SummarizeView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sum
}
