package weather

import (
	"errors"
	"fmt"
)

// Kind classifies a failure of a user action.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindCityNotFound
	KindHTTP
	KindConnection
	KindTimeout
	KindRequest
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindCityNotFound:
		return "CityNotFound"
	case KindHTTP:
		return "HttpError"
	case KindConnection:
		return "ConnectionError"
	case KindTimeout:
		return "TimeoutError"
	case KindRequest:
		return "RequestError"
	case KindStorage:
		return "StorageError"
	default:
		return "Unknown"
	}
}

// Error is a classified failure. Sentinel values below match any Error of the same Kind
// through errors.Is.
type Error struct {
	Kind       Kind
	Op         string
	StatusCode int // set for KindHTTP
	Err        error
}

var (
	ErrInvalidInput = &Error{Kind: KindInvalidInput}
	ErrCityNotFound = &Error{Kind: KindCityNotFound}
	ErrHTTP         = &Error{Kind: KindHTTP}
	ErrConnection   = &Error{Kind: KindConnection}
	ErrTimeout      = &Error{Kind: KindTimeout}
	ErrRequest      = &Error{Kind: KindRequest}
	ErrStorage      = &Error{Kind: KindStorage}

	// ErrEmptyCityName is returned by AddCity before any network call.
	ErrEmptyCityName = &Error{Kind: KindInvalidInput, Op: "add city", Err: errors.New("city name is empty")}
)

// NewError wraps err with a kind and the operation that failed.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op != "" || t.Err != nil || t.StatusCode != 0 {
		return e == t
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// UserMessage translates err into the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return fmt.Sprintf("An error occurred: %v", err)
	}
	cause := e.Err
	if cause == nil {
		cause = e
	}
	switch e.Kind {
	case KindInvalidInput:
		return "Please enter a city name."
	case KindCityNotFound:
		return "City not found."
	case KindHTTP:
		if e.StatusCode != 0 {
			return fmt.Sprintf("HTTP error occurred: status %d: %v", e.StatusCode, cause)
		}
		return fmt.Sprintf("HTTP error occurred: %v", cause)
	case KindConnection:
		return fmt.Sprintf("Connection error occurred: %v", cause)
	case KindTimeout:
		return fmt.Sprintf("Timeout error occurred: %v", cause)
	case KindStorage:
		return fmt.Sprintf("Database error: %v", cause)
	default:
		return fmt.Sprintf("An error occurred: %v", cause)
	}
}
