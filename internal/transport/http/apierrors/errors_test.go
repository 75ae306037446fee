package apierrors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/paleta/internal/service"
)

func TestFromError_Mapping(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		in         error
		wantStatus int
		wantCode   string
	}{
		{ErrAuthRequired, http.StatusUnauthorized, CodeAuthRequired},
		{service.ErrInvalidToken, http.StatusUnauthorized, CodeAuthInvalidToken},
		{service.ErrTokenExpired, http.StatusUnauthorized, CodeAuthTokenExpired},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, CodeAuthInvalidCredentials},
		{service.ErrInvalidRefresh, http.StatusUnauthorized, CodeAuthInvalidRefresh},
		{service.ErrRefreshExpired, http.StatusUnauthorized, CodeAuthRefreshExpired},
		{service.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited},
		{service.ErrNotFound, http.StatusNotFound, CodeNotFound},
		{service.ErrForbidden, http.StatusForbidden, CodeForbidden},
		{service.ErrCodeNotFound, http.StatusBadRequest, CodeCodeNotFound},
		{service.ErrCodeMismatch, http.StatusBadRequest, CodeCodeMismatch},
		{service.ErrAttemptsExceeded, http.StatusBadRequest, CodeAttemptsExceeded},
		{service.ErrUsernameTaken, http.StatusConflict, CodeUsernameTaken},
		{service.ErrContactTaken, http.StatusConflict, CodeContactTaken},
		{service.ErrPaletteNameConflict, http.StatusConflict, CodePaletteNameConflict},
		{context.Canceled, StatusClientClosedRequest, CodeCanceled},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, CodeTimeout},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tc := range tcs {
		t.Run(tc.wantCode, func(t *testing.T) {
			wrapped := fmt.Errorf("service.op: %w", tc.in)
			status, apiErr := FromError(wrapped)
			require.Equal(t, tc.wantStatus, status)
			require.Equal(t, tc.wantCode, apiErr.Code)
			require.NotEmpty(t, apiErr.Message)
			require.NotContains(t, apiErr.Message, "service.op")
		})
	}
}

func TestFromError_Validation(t *testing.T) {
	t.Parallel()

	status, apiErr := FromError(fmt.Errorf("op: %w", Validation("invalid cursor")))
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, CodeValidation, apiErr.Code)
	require.Equal(t, "invalid cursor", apiErr.Message)
}

func TestFromError_Nil(t *testing.T) {
	t.Parallel()

	status, apiErr := FromError(nil)
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, CodeInternal, apiErr.Code)
}

func TestWriteError_Envelope(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "rid-1")
	rr := httptest.NewRecorder()

	WriteError(rr, req, service.ErrForbidden)

	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, false, body["success"])

	e := body["error"].(map[string]any)
	require.Equal(t, CodeForbidden, e["code"])
	require.Equal(t, "rid-1", e["request_id"])
}
