package httpx

import (
	"errors"
	"net/http"

	"github.com/feedbackhub/feedbackhub/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	code := shared.ErrorCode(err)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		problem(w, ProblemDetail{Title: "Not Found", Status: http.StatusNotFound, Detail: err.Error(), Code: code})
	case errors.Is(err, shared.ErrConflict):
		problem(w, ProblemDetail{Title: "Conflict", Status: http.StatusConflict, Detail: err.Error(), Code: code})
	case errors.Is(err, shared.ErrInvalidRelationship):
		problem(w, ProblemDetail{Title: "Invalid Relationship", Status: http.StatusBadRequest, Detail: err.Error(), Code: code})
	case errors.Is(err, shared.ErrBadRequest):
		problem(w, ProblemDetail{Title: "Bad Request", Status: http.StatusBadRequest, Detail: err.Error(), Code: code})
	case errors.Is(err, shared.ErrUnauthenticated), errors.Is(err, shared.ErrInvalidCredentials):
		problem(w, ProblemDetail{Title: "Unauthorized", Status: http.StatusUnauthorized, Detail: err.Error(), Code: code})
	case errors.Is(err, shared.ErrForbidden):
		problem(w, ProblemDetail{Title: "Forbidden", Status: http.StatusForbidden, Detail: err.Error(), Code: code})
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// StatusFor reports the status RespondError would write for err.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, shared.ErrInvalidRelationship), errors.Is(err, shared.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrUnauthenticated), errors.Is(err, shared.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
