package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuforge/docuforge/pkg/domain"
	"github.com/docuforge/docuforge/pkg/models"
)

// newContext creates an echo.Context backed by an httptest.NewRecorder for the
// given HTTP method and path. It returns both the context and the recorder so
// callers can inspect the written response.
func newContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// parseBody is a small helper that unmarshals the recorder body into an
// ErrorResponse, failing the test on any JSON error.
func parseBody(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// captureLog redirects the standard logger to a buffer for the duration of fn
// and returns everything that was logged.
func captureLog(fn func()) string {
	var buf bytes.Buffer
	orig := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(orig)
	fn()
	return buf.String()
}

func TestValidationErrorSanitizesDetails(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/v1/documents")

	logged := captureLog(func() {
		require.NoError(t, ValidationError(c, errors.New("field title: value too long (internal)")))
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := parseBody(t, rec)
	assert.Equal(t, "validation_error", resp.Error)
	assert.NotContains(t, resp.Message, "internal")
	assert.Contains(t, logged, "value too long")
}

func TestInternalErrorSanitizesDetails(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/api/v1/documents")

	logged := captureLog(func() {
		require.NoError(t, InternalError(c, errors.New("dial tcp 10.0.0.5:5432 refused")))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := parseBody(t, rec)
	assert.Equal(t, "internal_error", resp.Error)
	assert.NotContains(t, resp.Message, "10.0.0.5")
	assert.Contains(t, logged, "dial tcp")
}

func TestDomainErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"not found", domain.NewNotFoundError("document"), http.StatusNotFound, "not_found"},
		{"validation", domain.NewValidationError("title is required"), http.StatusBadRequest, "validation_error"},
		{"unauthorized", domain.NewUnauthorizedError("bad token"), http.StatusUnauthorized, "unauthorized"},
		{"forbidden", domain.NewForbiddenError("no access"), http.StatusForbidden, "forbidden"},
		{"conflict", domain.NewConflictError("document was modified"), http.StatusConflict, "conflict"},
		{"plan limit", domain.NewPlanLimitError("analyze_documents"), http.StatusPaymentRequired, "plan_limit_exceeded"},
		{"internal", domain.NewInternalError("generation failed", errors.New("boom")), http.StatusInternalServerError, "internal_error"},
		{"unknown error", errors.New("plain error"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, "/api/v1/documents/x")
			captureLog(func() {
				require.NoError(t, Domain(c, tt.err))
			})
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, parseBody(t, rec).Error)
		})
	}
}

func TestDomainValidationMessageExposed(t *testing.T) {
	c, rec := newContext(http.MethodPut, "/api/v1/documents/x")
	require.NoError(t, Domain(c, domain.NewValidationError("at least one signer is required")))

	resp := parseBody(t, rec)
	assert.Equal(t, "at least one signer is required", resp.Message)
}

func TestDomainInternalMessageSanitized(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/v1/documents/generate")

	logged := captureLog(func() {
		require.NoError(t, Domain(c, domain.NewInternalError("generation failed", errors.New("api key sk-123 rejected"))))
	})

	resp := parseBody(t, rec)
	assert.NotContains(t, resp.Message, "sk-123")
	assert.Contains(t, logged, "sk-123")
}
