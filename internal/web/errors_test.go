package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JonMunkholm/datacheck/internal/core"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"state", &core.StateError{Action: "validate", Page: core.PageHome, Recovery: core.PagePreview}, http.StatusConflict},
		{"nothing to clean", core.ErrNothingToClean, http.StatusConflict},
		{"no dataset", core.ErrNoDataset, http.StatusConflict},
		{"column", fmt.Errorf("%w: %q", core.ErrColumnNotFound, "x"), http.StatusBadRequest},
		{"check", core.ErrUnknownCheck, http.StatusBadRequest},
		{"parse", &core.ParseError{FileName: "a.csv", Err: core.ErrEmptyFile}, http.StatusUnprocessableEntity},
		{"format", &core.ParseError{FileName: "a.txt", Err: core.ErrUnsupportedFormat}, http.StatusUnsupportedMediaType},
		{"busy", core.ErrTooManyParses, http.StatusServiceUnavailable},
		{"max bytes", fmt.Errorf("%w: %w", errFileTooLarge, &http.MaxBytesError{Limit: 1}), http.StatusRequestEntityTooLarge},
		{"too large", errFileTooLarge, http.StatusRequestEntityTooLarge},
		{"no file", errNoFile, http.StatusBadRequest},
		{"timeout", fmt.Errorf("parse a.csv: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestWantsJSON(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		accept      string
		contentType string
		want        bool
	}{
		{"api default", "/api/state", "", "", true},
		{"page", "/", "", "", false},
		{"accept json", "/", "application/json", "", true},
		{"json body", "/api/validate", "", "application/json", true},
		{"form post", "/api/validate", "", "application/x-www-form-urlencoded", false},
		{"browser navigation", "/api/results", "text/html,application/xhtml+xml", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, tt.path, nil)
			if tt.accept != "" {
				r.Header.Set("Accept", tt.accept)
			}
			if tt.contentType != "" {
				r.Header.Set("Content-Type", tt.contentType)
			}
			assert.Equal(t, tt.want, wantsJSON(r))
		})
	}
}

func TestRespondError_HTMX(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/process", nil)
	r.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	respondError(rec, r, core.ErrNoDataset, http.StatusConflict)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="alert"`)
	assert.Contains(t, rec.Body.String(), "SES001")
	assert.NotContains(t, rec.Body.String(), "<html")
}

func TestRespondError_HTMLPage(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	respondError(rec, r, fmt.Errorf("process: %w", core.ErrNoDataset), http.StatusConflict)

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Error | Datacheck</title>")
	assert.Contains(t, body, "(Code: SES001).")
	assert.NotContains(t, body, "process:", "technical detail is only logged")
}
