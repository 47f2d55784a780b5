package models

import "time"

// Booking links a user and a book. Status is owned by the server (e.g.
// "active", "cancelled", "returned"); the client treats it as opaque text and
// never mutates it.
type Booking struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	BookID      int       `json:"book_id"`
	Status      string    `json:"status"`
	BookingDate time.Time `json:"booking_date"`
}
