// Package testutil provides hand-rolled collaborator doubles for controller
// tests.
package testutil

import (
	"context"
	"sync"

	"libretto/gateway"
	"libretto/models"
)

// StubGateway implements gateway.Client with overridable function fields and
// per-operation call counters, so tests can assert that validation failures
// never reach the network.
type StubGateway struct {
	mu    sync.Mutex
	calls map[string]int

	ListBooksFn        func(ctx context.Context, query string) ([]models.Book, error)
	GetBookFn          func(ctx context.Context, id int) (models.Book, error)
	CreateBookFn       func(ctx context.Context, in models.NewBook) (models.Book, error)
	SummarizeFn        func(ctx context.Context, in models.SummarizeInput) (string, error)
	RecommendFn        func(ctx context.Context, query string) (models.Recommendation, error)
	CreateUserFn       func(ctx context.Context, in models.NewUser) (models.User, error)
	ListUsersFn        func(ctx context.Context) ([]models.User, error)
	CreateBookingFn    func(ctx context.Context, userID, bookID int) (models.Booking, error)
	ListUserBookingsFn func(ctx context.Context, userID int) ([]models.Booking, error)
}

func NewStubGateway() *StubGateway {
	return &StubGateway{calls: make(map[string]int)}
}

// CallCount returns how often op was invoked (op names match gateway ops,
// e.g. "createBooking").
func (s *StubGateway) CallCount(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// TotalCalls returns the number of operations invoked across all ops.
func (s *StubGateway) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *StubGateway) record(op string) {
	s.mu.Lock()
	s.calls[op]++
	s.mu.Unlock()
}

func (s *StubGateway) ListBooks(ctx context.Context, query string) ([]models.Book, error) {
	s.record("listBooks")
	if s.ListBooksFn != nil {
		return s.ListBooksFn(ctx, query)
	}
	return nil, nil
}

func (s *StubGateway) GetBook(ctx context.Context, id int) (models.Book, error) {
	s.record("getBook")
	if s.GetBookFn != nil {
		return s.GetBookFn(ctx, id)
	}
	return models.Book{}, nil
}

func (s *StubGateway) CreateBook(ctx context.Context, in models.NewBook) (models.Book, error) {
	s.record("createBook")
	if s.CreateBookFn != nil {
		return s.CreateBookFn(ctx, in)
	}
	return models.Book{}, nil
}

func (s *StubGateway) Summarize(ctx context.Context, in models.SummarizeInput) (string, error) {
	s.record("summarize")
	if s.SummarizeFn != nil {
		return s.SummarizeFn(ctx, in)
	}
	return "", nil
}

func (s *StubGateway) Recommend(ctx context.Context, query string) (models.Recommendation, error) {
	s.record("recommend")
	if s.RecommendFn != nil {
		return s.RecommendFn(ctx, query)
	}
	return models.Recommendation{}, nil
}

func (s *StubGateway) CreateUser(ctx context.Context, in models.NewUser) (models.User, error) {
	s.record("createUser")
	if s.CreateUserFn != nil {
		return s.CreateUserFn(ctx, in)
	}
	return models.User{}, nil
}

func (s *StubGateway) ListUsers(ctx context.Context) ([]models.User, error) {
	s.record("listUsers")
	if s.ListUsersFn != nil {
		return s.ListUsersFn(ctx)
	}
	return nil, nil
}

func (s *StubGateway) CreateBooking(ctx context.Context, userID, bookID int) (models.Booking, error) {
	s.record("createBooking")
	if s.CreateBookingFn != nil {
		return s.CreateBookingFn(ctx, userID, bookID)
	}
	return models.Booking{}, nil
}

func (s *StubGateway) ListUserBookings(ctx context.Context, userID int) ([]models.Booking, error) {
	s.record("listUserBookings")
	if s.ListUserBookingsFn != nil {
		return s.ListUserBookingsFn(ctx, userID)
	}
	return nil, nil
}

var _ gateway.Client = (*StubGateway)(nil)
