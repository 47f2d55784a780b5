// Package detail composes one book's full lifecycle view: initial fetch, AI
// summary generation, booking, and the read-after-write refetch that keeps
// the displayed inventory consistent with the server.
package detail

import (
	"context"
	"sync"

	"libretto/gateway"
	"libretto/models"
	"libretto/services/ai"
	bookingctl "libretto/services/booking"
	"libretto/session"
	"libretto/utils"

	"go.uber.org/zap"
)

// ViewState is the orchestrator's lifecycle position.
type ViewState string

const (
	StateLoading ViewState = "loading"
	StateLoaded  ViewState = "loaded"
	StateError   ViewState = "error"
)

// View is an atomic snapshot of the book detail screen. The Book inside is
// always a whole server response; fields are never patched individually, so a
// stale available_copies can never sit next to a fresh ai_summary.
type View struct {
	State     ViewState
	Book      models.Book
	AISummary string
	Err       string
}

// Orchestrator drives a single book's detail view. Responses arriving after
// Close are dropped rather than applied to a dead view.
type Orchestrator struct {
	mu       sync.Mutex
	gw       gateway.Client
	sessions *session.Store
	bookID   int

	aiCtl      *ai.Controller
	bookingCtl *bookingctl.Controller

	view   View
	closed bool
	logger *zap.Logger
}

// New wires the orchestrator for one book. Booking success triggers a full
// refetch through the workflow controller's callback.
func New(gw gateway.Client, sessions *session.Store, bookID int) *Orchestrator {
	o := &Orchestrator{
		gw:       gw,
		sessions: sessions,
		bookID:   bookID,
		view:     View{State: StateLoading},
		logger:   utils.GetLogger(),
	}
	o.aiCtl = ai.New(gw)
	o.bookingCtl = bookingctl.New(gw, func(models.Booking) {
		// Read-after-write: the server decremented available_copies, so the
		// whole snapshot is refetched. Best-effort; a failure keeps the prior
		// snapshot and is logged.
		o.refresh(context.Background())
	})
	return o
}

// Load performs the initial fetch: loading → loaded | error.
func (o *Orchestrator) Load(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.view = View{State: StateLoading}
	o.mu.Unlock()

	book, err := o.gw.GetBook(ctx, o.bookID)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	if err != nil {
		o.view = View{State: StateError, Err: "Failed to load book"}
		o.logger.Warn("book load failed", zap.Int("book_id", o.bookID), zap.Error(err))
		return err
	}
	o.view = View{State: StateLoaded, Book: book, AISummary: book.AISummary}
	return nil
}

// refresh re-fetches while loaded, replacing the entire snapshot. A failed
// refetch keeps the previous snapshot; no server state change is assumed.
func (o *Orchestrator) refresh(ctx context.Context) {
	book, err := o.gw.GetBook(ctx, o.bookID)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	if err != nil {
		o.logger.Warn("book refetch failed", zap.Int("book_id", o.bookID), zap.Error(err))
		return
	}
	o.view = View{State: StateLoaded, Book: book, AISummary: book.AISummary}
}

// BookCopy submits a booking for the signed-in user. Without a session it
// fails the workflow's validation, never reaching the server.
func (o *Orchestrator) BookCopy(ctx context.Context) (models.Booking, error) {
	userID, _ := o.sessions.CurrentUserID()
	return o.bookingCtl.Create(ctx, userID, o.bookID)
}

// BookCopyAs submits a booking for an explicitly entered user id, matching
// the manual id field on the original booking form.
func (o *Orchestrator) BookCopyAs(ctx context.Context, userID int) (models.Booking, error) {
	return o.bookingCtl.Create(ctx, userID, o.bookID)
}

// CanGenerateSummary reports whether the summarize action is enabled: the
// loaded book must carry a source summary.
func (o *Orchestrator) CanGenerateSummary() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.view.State == StateLoaded && o.aiCtl.CanSummarizeBook(o.view.Book)
}

// GenerateSummary starts summarization of the loaded book. The returned
// channel closes once the result has been applied to the view. The generated
// text becomes the displayed ai_summary until the next full refetch replaces
// the snapshot with server state.
func (o *Orchestrator) GenerateSummary(ctx context.Context) (<-chan struct{}, error) {
	o.mu.Lock()
	book := o.view.Book
	loaded := o.view.State == StateLoaded
	o.mu.Unlock()

	if !loaded || !o.aiCtl.CanSummarizeBook(book) {
		return nil, utils.NewValidationError("This book has no summary to summarize")
	}

	done, err := o.aiCtl.StartSummarize(ctx, models.SummarizeInput{BookID: book.ID})
	if err != nil {
		return nil, err
	}

	applied := make(chan struct{})
	go func() {
		defer close(applied)
		<-done

		o.mu.Lock()
		defer o.mu.Unlock()
		if o.closed {
			return
		}
		if snap := o.aiCtl.Summarize(); snap.State == ai.StateSuccess {
			o.view.AISummary = snap.Summary
		}
	}()
	return applied, nil
}

// AI exposes the augmentation controller, e.g. for the recommend flow and
// for inspecting summarize state.
func (o *Orchestrator) AI() *ai.Controller {
	return o.aiCtl
}

// Booking exposes the workflow controller for state inspection.
func (o *Orchestrator) Booking() *bookingctl.Controller {
	return o.bookingCtl
}

// Current returns the view snapshot.
func (o *Orchestrator) Current() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.view
}

// Close marks the view destroyed. In-flight requests cannot be aborted, but
// their late responses are dropped instead of applied.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
}
