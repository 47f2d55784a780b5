package models

// User represents a library account. Immutable on the client once created.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewUser is the account-creation payload. The server owns password handling;
// the client never stores it.
type NewUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
