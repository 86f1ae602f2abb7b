package ingress_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/provisioner/pkg/gateway"
	"github.com/dmitrymomot/provisioner/pkg/httpserver"
	"github.com/dmitrymomot/provisioner/pkg/ingress"
	"github.com/dmitrymomot/provisioner/pkg/provisioning"
)

func newRouter(gw *gateway.Memory, opts ...ingress.RouterOption) http.Handler {
	d := provisioning.NewDispatcher(provisioning.NewFetcher(gw), provisioning.NewSynchronizer(gw))
	return ingress.NewRouter(d, opts...)
}

func postEvent(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/event", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ingress.ErrorDetail {
	t.Helper()
	var body ingress.ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func TestEvent_PendingPaidIsDeployed(t *testing.T) {
	t.Parallel()
	gw := gateway.NewMemory(provisioning.Subscription{ID: 42, DeploymentStatus: provisioning.StatusPending, Paid: true})
	h := newRouter(gw)

	rec := postEvent(t, h, `{"entity":"Subscription","id":42,"type":"MODIFIED"}`)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, []gateway.Write{{ID: 42, Status: provisioning.StatusDeployed}}, gw.Writes())
}

func TestEvent_UnmanagedEntity(t *testing.T) {
	t.Parallel()
	gw := gateway.NewMemory(provisioning.Subscription{ID: 42, DeploymentStatus: provisioning.StatusPending, Paid: true})
	h := newRouter(gw)

	rec := postEvent(t, h, `{"entity":"Order","id":42,"type":"CREATED"}`)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, gw.Reads())
	assert.Empty(t, gw.Writes())
}

func TestEvent_UnknownFieldsIgnored(t *testing.T) {
	t.Parallel()
	gw := gateway.NewMemory(provisioning.Subscription{ID: 7, DeploymentStatus: provisioning.StatusDeployed, Paid: true})
	h := newRouter(gw)

	rec := postEvent(t, h, `{"entity":"Subscription","id":7,"type":"DELETED","date":"2024-01-01T00:00:00Z","extra":{"a":1}}`)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []gateway.Write{{ID: 7, Status: provisioning.StatusUndeployed}}, gw.Writes())
}

func TestEvent_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		setup    func(*gateway.Memory)
		body     string
		wantCode int
		wantErr  string
	}{
		{
			name:     "malformed json",
			body:     `{"entity":`,
			wantCode: http.StatusBadRequest,
			wantErr:  "bad_request",
		},
		{
			name:     "empty body",
			body:     ``,
			wantCode: http.StatusBadRequest,
			wantErr:  "bad_request",
		},
		{
			name:     "id is not a number",
			body:     `{"entity":"Subscription","id":"42","type":"CREATED"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "bad_request",
		},
		{
			name:     "unknown lifecycle",
			body:     `{"entity":"Subscription","id":42,"type":"UPDATED"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "bad_request",
		},
		{
			name:     "missing id",
			body:     `{"entity":"Subscription","type":"CREATED"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "bad_request",
		},
		{
			name:     "trailing data",
			body:     `{"entity":"Subscription","id":42,"type":"CREATED"} {}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "bad_request",
		},
		{
			name:     "subscription not found",
			body:     `{"entity":"Subscription","id":404,"type":"CREATED"}`,
			wantCode: http.StatusNotFound,
			wantErr:  "not_found",
		},
		{
			name: "gateway unavailable",
			setup: func(m *gateway.Memory) {
				m.FailReads(fmt.Errorf("%w: connection refused", provisioning.ErrUpstreamUnavailable))
			},
			body:     `{"entity":"Subscription","id":42,"type":"CREATED"}`,
			wantCode: http.StatusBadGateway,
			wantErr:  "bad_gateway",
		},
		{
			name:     "malformed gateway answer",
			setup:    func(m *gateway.Memory) { m.FailReads(provisioning.ErrMalformedResponse) },
			body:     `{"entity":"Subscription","id":42,"type":"CREATED"}`,
			wantCode: http.StatusBadGateway,
			wantErr:  "bad_gateway",
		},
		{
			name:     "transition rejected",
			setup:    func(m *gateway.Memory) { m.FailWrites(provisioning.ErrTransitionRejected) },
			body:     `{"entity":"Subscription","id":42,"type":"CREATED"}`,
			wantCode: http.StatusConflict,
			wantErr:  "conflict",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gw := gateway.NewMemory(provisioning.Subscription{ID: 42, DeploymentStatus: provisioning.StatusPending, Paid: true})
			if tt.setup != nil {
				tt.setup(gw)
			}

			rec := postEvent(t, newRouter(gw), tt.body)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
			detail := decodeError(t, rec)
			assert.Equal(t, tt.wantErr, detail.Code)
			assert.NotEmpty(t, detail.Message)
		})
	}
}

func TestEvent_UnsupportedMediaType(t *testing.T) {
	t.Parallel()
	h := newRouter(gateway.NewMemory())

	req := httptest.NewRequest(http.MethodPost, "/event", strings.NewReader(`entity=Subscription`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestEvent_MissingContentTypeAccepted(t *testing.T) {
	t.Parallel()
	gw := gateway.NewMemory()
	h := newRouter(gw)

	req := httptest.NewRequest(http.MethodPost, "/event", strings.NewReader(`{"entity":"Order","id":1,"type":"CREATED"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestEvent_MethodNotAllowed(t *testing.T) {
	t.Parallel()
	h := newRouter(gateway.NewMemory())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/event", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestID(t *testing.T) {
	t.Parallel()
	h := newRouter(gateway.NewMemory())

	t.Run("generated", func(t *testing.T) {
		t.Parallel()
		rec := postEvent(t, h, `{"entity":"Order","id":1,"type":"CREATED"}`)
		assert.Len(t, rec.Header().Get(ingress.RequestIDHeader), 36)
	})

	t.Run("propagated", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/event", strings.NewReader(`{"entity":"Order","id":1,"type":"CREATED"}`))
		req.Header.Set(ingress.RequestIDHeader, "evt-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "evt-123", rec.Header().Get(ingress.RequestIDHeader))
	})

	t.Run("invalid replaced", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
		req.Header.Set(ingress.RequestIDHeader, "bad id <script>")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.NotEqual(t, "bad id <script>", rec.Header().Get(ingress.RequestIDHeader))
		assert.NotEmpty(t, rec.Header().Get(ingress.RequestIDHeader))
	})
}

func TestHealth(t *testing.T) {
	t.Parallel()

	down := httpserver.Check{Name: "redis", Fn: func(context.Context) error { return errors.New("down") }}

	tests := []struct {
		name     string
		path     string
		opts     []ingress.RouterOption
		wantCode int
	}{
		{"live", "/health/live", nil, http.StatusOK},
		{"ready without checks", "/health/ready", nil, http.StatusOK},
		{"ready with failing check", "/health/ready", []ingress.RouterOption{ingress.WithReadinessChecks(down)}, http.StatusServiceUnavailable},
		{"metrics disabled", "/metrics", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newRouter(gateway.NewMemory(), tt.opts...)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	gw := gateway.NewMemory(provisioning.Subscription{ID: 1, DeploymentStatus: provisioning.StatusPending, Paid: true})
	d := provisioning.NewDispatcher(
		provisioning.NewFetcher(gw),
		provisioning.NewSynchronizer(gw),
		provisioning.WithMetrics(provisioning.NewMetrics(reg)),
	)
	h := ingress.NewRouter(d, ingress.WithRegistry(reg))

	require.Equal(t, http.StatusNoContent, postEvent(t, h, `{"entity":"Subscription","id":1,"type":"CREATED"}`).Code)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `provisioner_http_requests_total{code="204"} 1`)
	assert.Contains(t, string(body), `provisioner_actions_total{action="provision",dry_run="false"} 1`)
}

func TestNewRouter_NilDispatcher(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { ingress.NewRouter(nil) })
}
