package shared

import "errors"

// Error kinds. Domain errors wrap exactly one of these so callers can branch
// on the kind without inspecting messages.
var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness rule would be violated.
	ErrConflict = errors.New("conflict")
	// ErrInvalidRelationship indicates a cross-entity consistency rule would be violated.
	ErrInvalidRelationship = errors.New("invalid relationship")
	// ErrUnauthenticated indicates the principal cannot be established.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates the principal lacks the required permission.
	ErrForbidden = errors.New("forbidden")
	// ErrBadRequest indicates structurally invalid caller input.
	ErrBadRequest = errors.New("bad request")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Error is a coded domain error. Code is stable and safe to expose to clients.
type Error struct {
	Kind    error
	Code    string
	Message string
}

// NewError builds a coded error of the given kind.
func NewError(kind error, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the kind to errors.Is.
func (e *Error) Unwrap() error {
	return e.Kind
}

// ErrorCode returns the stable code carried by err, or "" when err is not coded.
func ErrorCode(err error) string {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}
