package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"libretto/config"
	"libretto/models"
	"libretto/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPClient is the production Client implementation over the library API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// Option customizes a HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client (timeouts, transports).
func WithHTTPClient(c *http.Client) Option {
	return func(g *HTTPClient) { g.client = c }
}

// WithRateLimit caps outbound requests per minute. Zero disables the limiter.
func WithRateLimit(perMin int) Option {
	return func(g *HTTPClient) { g.limiter = newLimiter(perMin) }
}

func newLimiter(perMin int) *rate.Limiter {
	if perMin <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), perMin)
}

// NewHTTPClient builds a Client against baseURL (e.g. "http://127.0.0.1:5000").
// Timeout and rate limit default from AppConfig.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	timeout := time.Duration(config.AppConfig.HTTPTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	g := &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: newLimiter(config.AppConfig.MaxRequestsPerMin),
		logger:  utils.GetLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// errorEnvelope is the server's failure shape: {"error": "..."}.
type errorEnvelope struct {
	Error string `json:"error"`
}

// do performs one request. out may be nil. defaultMsg is used when the server
// omits an error message.
func (g *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out any, op, defaultMsg string) error {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return &utils.TransportError{Op: op, Err: err}
		}
	}

	var buf *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &utils.TransportError{Op: op, Err: err}
		}
		buf = bytes.NewReader(data)
	} else {
		buf = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, buf)
	if err != nil {
		return &utils.TransportError{Op: op, Err: err}
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("Content-Type", "application/json")
	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)

	g.logger.Debug("api request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("api transport failure",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return &utils.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := defaultMsg
		var env errorEnvelope
		if decodeErr := json.NewDecoder(resp.Body).Decode(&env); decodeErr == nil && env.Error != "" {
			msg = env.Error
		}
		g.logger.Warn("api request rejected",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return &utils.RequestError{Op: op, Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &utils.RequestError{Op: op, Status: resp.StatusCode, Message: defaultMsg}
	}
	return nil
}

// ListBooks fetches the catalog, optionally filtered by a free-text query.
func (g *HTTPClient) ListBooks(ctx context.Context, query string) ([]models.Book, error) {
	var params url.Values
	if query != "" {
		params = url.Values{"q": {query}}
	}
	var out struct {
		Items []models.Book `json:"items"`
	}
	if err := g.do(ctx, http.MethodGet, "/api/books/", params, nil, &out, "listBooks", "Failed to load books"); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (g *HTTPClient) GetBook(ctx context.Context, id int) (models.Book, error) {
	var book models.Book
	path := fmt.Sprintf("/api/books/%d", id)
	if err := g.do(ctx, http.MethodGet, path, nil, nil, &book, "getBook", "Failed to load book"); err != nil {
		return models.Book{}, err
	}
	return book, nil
}

func (g *HTTPClient) CreateBook(ctx context.Context, in models.NewBook) (models.Book, error) {
	var book models.Book
	if err := g.do(ctx, http.MethodPost, "/api/books/", nil, in, &book, "createBook", "Failed to create book"); err != nil {
		return models.Book{}, err
	}
	return book, nil
}

// Summarize sends either raw text or a book reference and returns the
// generated summary.
func (g *HTTPClient) Summarize(ctx context.Context, in models.SummarizeInput) (string, error) {
	var out struct {
		Summary string `json:"summary"`
	}
	if err := g.do(ctx, http.MethodPost, "/api/books/summarize", nil, in, &out, "summarize", "Summarization failed"); err != nil {
		return "", err
	}
	return out.Summary, nil
}

// Recommend asks for a title matching the query. A null recommended_book is a
// success with Found=false.
func (g *HTTPClient) Recommend(ctx context.Context, query string) (models.Recommendation, error) {
	payload := map[string]string{"query": query}
	var out struct {
		RecommendedBook *string `json:"recommended_book"`
	}
	if err := g.do(ctx, http.MethodPost, "/api/books/recommend", nil, payload, &out, "recommend", "Recommendation failed"); err != nil {
		return models.Recommendation{}, err
	}
	if out.RecommendedBook == nil {
		return models.Recommendation{}, nil
	}
	return models.Recommendation{Title: *out.RecommendedBook, Found: true}, nil
}

func (g *HTTPClient) CreateUser(ctx context.Context, in models.NewUser) (models.User, error) {
	var user models.User
	if err := g.do(ctx, http.MethodPost, "/api/users/", nil, in, &user, "createUser", "Login failed"); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (g *HTTPClient) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := g.do(ctx, http.MethodGet, "/api/users/", nil, nil, &users, "listUsers", "Failed to load users"); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateBooking submits a booking for numeric user and book identifiers.
func (g *HTTPClient) CreateBooking(ctx context.Context, userID, bookID int) (models.Booking, error) {
	payload := map[string]int{"user_id": userID, "book_id": bookID}
	var booking models.Booking
	if err := g.do(ctx, http.MethodPost, "/api/bookings/", nil, payload, &booking, "createBooking", "Booking failed"); err != nil {
		return models.Booking{}, err
	}
	return booking, nil
}

func (g *HTTPClient) ListUserBookings(ctx context.Context, userID int) ([]models.Booking, error) {
	var out struct {
		Items []models.Booking `json:"items"`
	}
	path := fmt.Sprintf("/api/bookings/user/%d", userID)
	if err := g.do(ctx, http.MethodGet, path, nil, nil, &out, "listUserBookings", "Failed to load bookings"); err != nil {
		return nil, err
	}
	return out.Items, nil
}

var _ Client = (*HTTPClient)(nil)
