package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/srxgate/api/v1alpha1"
	"github.com/imamik/srxgate/internal/usage"
)

type fakeExecutor struct {
	got     []v1alpha1.Command
	pingErr error
}

func (f *fakeExecutor) Execute(_ context.Context, cmd v1alpha1.Command) v1alpha1.Answer {
	f.got = append(f.got, cmd)
	return v1alpha1.Succeeded(cmd.ID, "done")
}

func (f *fakeExecutor) Ping(context.Context) error {
	return f.pingErr
}

type fakeLatest struct {
	snap *usage.Snapshot
}

func (f fakeLatest) Latest() *usage.Snapshot {
	return f.snap
}

func TestServer_Command(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{}
	h := newServer(exec, fakeLatest{}, logr.Discard())

	body := `{"kind":"ClearRemoteAccessVPN","id":"c-1","vpn":{"accountID":7}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/commands", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var answer v1alpha1.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	assert.True(t, answer.Success)
	assert.Equal(t, "c-1", answer.ID)
	require.Len(t, exec.got, 1)
	assert.Equal(t, v1alpha1.KindClearRemoteAccessVPN, exec.got[0].Kind)
}

func TestServer_CommandErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{name: "malformed", method: http.MethodPost, body: `{"kind":`, want: http.StatusBadRequest},
		{name: "unknown field", method: http.MethodPost, body: `{"kind":"GetUsage","bogus":true}`, want: http.StatusBadRequest},
		{name: "too large", method: http.MethodPost, body: `{"id":"` + strings.Repeat("x", maxCommandBytes) + `"}`, want: http.StatusRequestEntityTooLarge},
		{name: "wrong method", method: http.MethodGet, want: http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			exec := &fakeExecutor{}
			h := newServer(exec, fakeLatest{}, logr.Discard())

			req := httptest.NewRequest(tt.method, "/v1/commands", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Empty(t, exec.got)
		})
	}
}

func TestServer_Usage(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newServer(&fakeExecutor{}, fakeLatest{}, logr.Discard()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/usage", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "no usage poll has completed yet")

	snap := &usage.Snapshot{Time: time.Unix(1709294400, 0).UTC(), Usage: usage.Totals{}}
	rec = httptest.NewRecorder()
	newServer(&fakeExecutor{}, fakeLatest{snap: snap}, logr.Discard()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/usage", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got usage.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, snap.Time.Equal(got.Time))
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newServer(&fakeExecutor{}, fakeLatest{}, logr.Discard()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())

	rec = httptest.NewRecorder()
	newServer(&fakeExecutor{pingErr: errors.New("connection refused")}, fakeLatest{}, logr.Discard()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newServer(&fakeExecutor{}, fakeLatest{}, logr.Discard()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
