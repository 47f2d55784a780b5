// Package fakeserver is an in-process stand-in for the library API, used by
// tests and the demo command. It reproduces the server contract the client
// codes against: JSON bodies, the {"error": ...} failure envelope, and the
// authoritative inventory decrement on booking creation.
package fakeserver

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"libretto/models"

	"github.com/gin-gonic/gin"
)

// Server holds the in-memory catalog state behind a gin engine.
type Server struct {
	mu          sync.Mutex
	books       map[int]models.Book
	users       map[int]models.User
	bookings    []models.Booking
	nextBook    int
	nextUser    int
	nextBooking int

	Engine *gin.Engine
}

func New() *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		books:       make(map[int]models.Book),
		users:       make(map[int]models.User),
		nextBook:    1,
		nextUser:    1,
		nextBooking: 1,
	}

	r := gin.New()
	// The GET and POST trees are kept wildcard-free of each other so the
	// parameterized book route can coexist with the static AI routes.
	r.GET("/api/books/", s.listBooks)
	r.GET("/api/books/:id", s.getBook)
	r.POST("/api/books/", s.createBook)
	r.POST("/api/books/summarize", s.summarize)
	r.POST("/api/books/recommend", s.recommend)
	r.GET("/api/users/", s.listUsers)
	r.POST("/api/users/", s.createUser)
	r.POST("/api/bookings/", s.createBooking)
	r.GET("/api/bookings/user/:id", s.userBookings)

	s.Engine = r
	return s
}

// SeedBook inserts a book, assigning an id when none is set, and returns the
// stored copy.
func (s *Server) SeedBook(b models.Book) models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.nextBook
	}
	if b.ID >= s.nextBook {
		s.nextBook = b.ID + 1
	}
	s.books[b.ID] = b
	return b
}

// SeedUser inserts a user, assigning an id when none is set.
func (s *Server) SeedUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.nextUser
	}
	if u.ID >= s.nextUser {
		s.nextUser = u.ID + 1
	}
	s.users[u.ID] = u
	return u
}

// Book returns the current stored state of a book.
func (s *Server) Book(id int) (models.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	return b, ok
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

func (s *Server) listBooks(c *gin.Context) {
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))

	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]models.Book, 0, len(s.books))
	for id := 1; id < s.nextBook; id++ {
		b, ok := s.books[id]
		if !ok {
			continue
		}
		if q != "" && !bookMatches(b, q) {
			continue
		}
		items = append(items, b)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func bookMatches(b models.Book, q string) bool {
	for _, field := range []string{b.Title, b.Author, b.Genre, b.Summary} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func (s *Server) getBook(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid book id")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		fail(c, http.StatusNotFound, "Book not found")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) createBook(c *gin.Context) {
	var in models.NewBook
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid payload")
		return
	}
	if in.Title == "" || in.Author == "" {
		fail(c, http.StatusBadRequest, "'title' and 'author' are required")
		return
	}
	total := in.TotalCopies
	if total <= 0 {
		total = 1
	}
	available := in.AvailableCopies
	if available <= 0 || available > total {
		available = total
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	b := models.Book{
		ID:              s.nextBook,
		Title:           in.Title,
		Author:          in.Author,
		Genre:           in.Genre,
		Summary:         in.Summary,
		TotalCopies:     total,
		AvailableCopies: available,
	}
	s.nextBook++
	s.books[b.ID] = b
	c.JSON(http.StatusCreated, b)
}

func (s *Server) summarize(c *gin.Context) {
	var in models.SummarizeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid payload")
		return
	}

	if in.BookID > 0 {
		s.mu.Lock()
		defer s.mu.Unlock()
		b, ok := s.books[in.BookID]
		if !ok {
			fail(c, http.StatusNotFound, "Book not found")
			return
		}
		if strings.TrimSpace(b.Summary) == "" {
			fail(c, http.StatusBadRequest, "No summary available to summarize")
			return
		}
		summary := generateSummary(b.Summary)
		b.AISummary = summary
		s.books[b.ID] = b
		c.JSON(http.StatusOK, gin.H{"summary": summary})
		return
	}

	if strings.TrimSpace(in.Text) == "" {
		fail(c, http.StatusBadRequest, "'text' is required")
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": generateSummary(in.Text)})
}

// generateSummary stands in for the model: deterministic, clearly derived
// from the source.
func generateSummary(source string) string {
	words := strings.Fields(source)
	if len(words) > 18 {
		return "In brief: " + strings.Join(words[:18], " ") + " …"
	}
	return "In brief: " + strings.Join(words, " ")
}

func (s *Server) recommend(c *gin.Context) {
	var in struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid payload")
		return
	}
	query := strings.ToLower(strings.TrimSpace(in.Query))
	if query == "" {
		fail(c, http.StatusBadRequest, "'query' is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id := 1; id < s.nextBook; id++ {
		b, ok := s.books[id]
		if !ok {
			continue
		}
		for _, token := range strings.Fields(query) {
			if bookMatches(b, token) {
				c.JSON(http.StatusOK, gin.H{"recommended_book": b.Title})
				return
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"recommended_book": nil})
}

func (s *Server) listUsers(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]models.User, 0, len(s.users))
	for id := 1; id < s.nextUser; id++ {
		if u, ok := s.users[id]; ok {
			items = append(items, u)
		}
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) createUser(c *gin.Context) {
	var in models.NewUser
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid payload")
		return
	}
	if in.Name == "" || in.Email == "" || in.Password == "" {
		fail(c, http.StatusBadRequest, "Missing required fields: name, email, password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, in.Email) {
			fail(c, http.StatusConflict, "Email already registered")
			return
		}
	}
	u := models.User{ID: s.nextUser, Name: in.Name, Email: in.Email}
	s.nextUser++
	s.users[u.ID] = u
	c.JSON(http.StatusCreated, u)
}

func (s *Server) createBooking(c *gin.Context) {
	var in struct {
		UserID int `json:"user_id"`
		BookID int `json:"book_id"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid payload")
		return
	}
	if in.UserID == 0 || in.BookID == 0 {
		fail(c, http.StatusBadRequest, "Missing user_id or book_id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, userOK := s.users[in.UserID]
	book, bookOK := s.books[in.BookID]
	if !userOK || !bookOK {
		fail(c, http.StatusNotFound, "Invalid user_id or book_id")
		return
	}
	if book.AvailableCopies <= 0 {
		fail(c, http.StatusConflict, "No copies available")
		return
	}

	book.AvailableCopies--
	s.books[book.ID] = book

	booking := models.Booking{
		ID:          s.nextBooking,
		UserID:      in.UserID,
		BookID:      in.BookID,
		Status:      "active",
		BookingDate: time.Now().UTC().Truncate(time.Second),
	}
	s.nextBooking++
	s.bookings = append(s.bookings, booking)
	c.JSON(http.StatusCreated, booking)
}

func (s *Server) userBookings(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid user id")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]models.Booking, 0)
	for _, b := range s.bookings {
		if b.UserID == id {
			items = append(items, b)
		}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
