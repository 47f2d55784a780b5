// Package booking drives booking creation. The controller is stateless with
// respect to Book data: inventory consistency is the orchestrator's job,
// signalled through the onBooked callback after every successful creation.
package booking

import (
	"context"
	"sync"

	"libretto/gateway"
	"libretto/models"
	"libretto/utils"

	"go.uber.org/zap"
)

// State is the workflow's lifecycle position. It returns to idle on the next
// user-initiated submission.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// View is a point-in-time snapshot of the workflow.
type View struct {
	State   State
	Booking models.Booking
	Err     string
}

// Controller submits bookings and reports the outcome. onBooked fires after
// every successful creation so the owner can refetch the affected book; it is
// deliberately not fired on failure, since no server state changed.
type Controller struct {
	mu       sync.Mutex
	gw       gateway.Client
	onBooked func(models.Booking)
	view     View
	logger   *zap.Logger
}

func New(gw gateway.Client, onBooked func(models.Booking)) *Controller {
	return &Controller{
		gw:       gw,
		onBooked: onBooked,
		view:     View{State: StateIdle},
		logger:   utils.GetLogger(),
	}
}

// Create submits a booking for userID and bookID. A missing user id fails
// immediately with a ValidationError and no server contact.
func (c *Controller) Create(ctx context.Context, userID, bookID int) (models.Booking, error) {
	if userID <= 0 {
		err := utils.NewValidationError("Please provide a user id or login")
		c.setView(View{State: StateError, Err: utils.UserMessage(err)})
		return models.Booking{}, err
	}

	c.setView(View{State: StateSubmitting})

	booking, err := c.gw.CreateBooking(ctx, userID, bookID)
	if err != nil {
		c.setView(View{State: StateError, Err: utils.UserMessage(err)})
		c.logger.Warn("booking failed",
			zap.Int("user_id", userID), zap.Int("book_id", bookID), zap.Error(err))
		return models.Booking{}, err
	}

	c.setView(View{State: StateSuccess, Booking: booking})
	c.logger.Info("booking created",
		zap.Int("booking_id", booking.ID),
		zap.Int("user_id", booking.UserID),
		zap.Int("book_id", booking.BookID),
	)
	if c.onBooked != nil {
		c.onBooked(booking)
	}
	return booking, nil
}

// Current returns the workflow snapshot.
func (c *Controller) Current() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *Controller) setView(v View) {
	c.mu.Lock()
	c.view = v
	c.mu.Unlock()
}
