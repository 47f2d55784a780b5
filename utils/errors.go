package utils

import (
	"errors"
	"fmt"
)

// ValidationError reports a caller-side precondition failure. It is raised
// before any request is made and never reaches the network.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// RequestError reports that the library API responded with a non-success
// status. Message carries the server-supplied error text when present,
// otherwise the operation's default.
type RequestError struct {
	Op      string
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
}

// TransportError reports that no response was received at all, so callers can
// message connectivity problems differently from server rejections.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: no response from server: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UserMessage converts any error produced by the client core into text fit
// for display. Errors never propagate past the controllers unconverted.
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var re *RequestError
	if errors.As(err, &re) {
		return re.Message
	}
	var te *TransportError
	if errors.As(err, &te) {
		return "Cannot reach the library server"
	}
	return err.Error()
}
