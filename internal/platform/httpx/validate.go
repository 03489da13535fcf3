package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/feedbackhub/feedbackhub/internal/shared"
)

// ErrInvalidBody is returned when a request body cannot be decoded.
var ErrInvalidBody = shared.NewError(shared.ErrBadRequest, "InvalidBody", "invalid request body")

// DecodeAndValidate decodes a JSON body into target and runs struct validation.
func DecodeAndValidate(r *http.Request, v *validator.Validate, target any) error {
	if err := DecodeJSON(r, target); err != nil {
		return ErrInvalidBody
	}
	if err := v.Struct(target); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fieldErr := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed on %s", fieldErr.Field(), fieldErr.Tag()))
			}
			return shared.NewError(shared.ErrBadRequest, "ValidationFailed", strings.Join(fields, "; "))
		}
		return shared.NewError(shared.ErrBadRequest, "ValidationFailed", err.Error())
	}
	return nil
}

// Int64Param parses a numeric chi URL parameter.
func Int64Param(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.NewError(shared.ErrBadRequest, "InvalidParam", fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}
