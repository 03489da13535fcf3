package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedbackhub/feedbackhub/internal/shared"
)

func TestRespondErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{shared.NewError(shared.ErrNotFound, "RoleNotFound", "role not found"), http.StatusNotFound, "RoleNotFound"},
		{shared.NewError(shared.ErrConflict, "ProjectInvalidName", "Duplicated name"), http.StatusConflict, "ProjectInvalidName"},
		{shared.NewError(shared.ErrInvalidRelationship, "MemberInvalidUser", "invalid user"), http.StatusBadRequest, "MemberInvalidUser"},
		{shared.NewError(shared.ErrBadRequest, "ProjectIDRequired", "projectId is required in params"), http.StatusBadRequest, "ProjectIDRequired"},
		{shared.NewError(shared.ErrUnauthenticated, "InvalidToken", "invalid token"), http.StatusUnauthorized, "InvalidToken"},
		{shared.NewError(shared.ErrForbidden, "Forbidden", "forbidden"), http.StatusForbidden, "Forbidden"},
		{fmt.Errorf("wrapped: %w", shared.NewError(shared.ErrNotFound, "UserNotFound", "user not found")), http.StatusNotFound, "UserNotFound"},
		{errors.New("pq: connection reset"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondError(rr, tc.err)

			require.Equal(t, tc.status, rr.Code)
			assert.Equal(t, tc.status, StatusFor(tc.err))
			assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

			var body ProblemDetail
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Code)
			if tc.status == http.StatusInternalServerError {
				assert.Empty(t, body.Detail, "driver errors must not leak")
			}
		})
	}
}

func TestInt64Param(t *testing.T) {
	for raw, ok := range map[string]bool{"42": true, "0": false, "-3": false, "abc": false, "": false} {
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("projectId", raw)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

		id, err := Int64Param(req, "projectId")
		if ok {
			require.NoError(t, err, raw)
			assert.Equal(t, int64(42), id)
		} else {
			require.ErrorIs(t, err, shared.ErrBadRequest, raw)
		}
	}
}
