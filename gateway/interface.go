package gateway

import (
	"context"

	"libretto/models"
)

// Client normalizes all interaction with the library API: one method per
// server capability, plain payloads in, decoded models out. Failures are
// always one of utils.RequestError (server said no) or utils.TransportError
// (no response at all). No retries happen here; retry policy, if any, belongs
// to the caller.
type Client interface {
	ListBooks(ctx context.Context, query string) ([]models.Book, error)
	GetBook(ctx context.Context, id int) (models.Book, error)
	CreateBook(ctx context.Context, in models.NewBook) (models.Book, error)
	Summarize(ctx context.Context, in models.SummarizeInput) (string, error)
	Recommend(ctx context.Context, query string) (models.Recommendation, error)
	CreateUser(ctx context.Context, in models.NewUser) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateBooking(ctx context.Context, userID, bookID int) (models.Booking, error)
	ListUserBookings(ctx context.Context, userID int) ([]models.Booking, error)
}
