package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/provisioner/pkg/httpserver"
)

func decodeReport(t *testing.T, rec *httptest.ResponseRecorder) httpserver.HealthReport {
	t.Helper()
	var report httpserver.HealthReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	return report
}

func TestLivenessHandler(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	httpserver.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decodeReport(t, rec).Status)
}

func TestReadinessHandler(t *testing.T) {
	t.Parallel()

	ok := httpserver.Check{Name: "redis", Fn: func(context.Context) error { return nil }}
	failing := httpserver.Check{Name: "gateway", Fn: func(context.Context) error { return errors.New("connection refused") }}

	tests := []struct {
		name       string
		checks     []httpserver.Check
		wantCode   int
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name:       "no checks",
			wantCode:   http.StatusOK,
			wantStatus: "ok",
		},
		{
			name:       "all passing",
			checks:     []httpserver.Check{ok},
			wantCode:   http.StatusOK,
			wantStatus: "ok",
			wantChecks: map[string]string{"redis": "ok"},
		},
		{
			name:       "one failing",
			checks:     []httpserver.Check{ok, failing},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			httpserver.ReadinessHandler(nil, tt.checks...).
				ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			report := decodeReport(t, rec)
			assert.Equal(t, tt.wantStatus, report.Status)
			if tt.wantChecks != nil {
				assert.Equal(t, tt.wantChecks, report.Checks)
			}
			if tt.wantCode != http.StatusOK {
				assert.Equal(t, "ok", report.Checks["redis"])
				assert.Contains(t, report.Checks["gateway"], "connection refused")
			}
		})
	}
}

func TestReadinessHandler_CheckHasDeadline(t *testing.T) {
	t.Parallel()
	var hasDeadline bool
	check := httpserver.Check{Name: "deadline", Fn: func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	}}

	rec := httptest.NewRecorder()
	httpserver.ReadinessHandler(nil, check).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, hasDeadline)
}
