package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/srxgate/api/v1alpha1"
	srxtesting "github.com/imamik/srxgate/internal/testing"
	"github.com/imamik/srxgate/internal/testing/appliance"
)

func TestServe_EndToEnd(t *testing.T) {
	t.Parallel()

	srv, cfgPath := startAppliance(t)
	srv.SetCounter("usage-input", "ip-203-0-113-10-in", 1234)
	cfg, err := loadConfig(cfgPath)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(srxtesting.TestContext(t))
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, ln) }()

	resp, err := http.Get(base + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(base+"/v1/commands", "application/json", strings.NewReader(
		`{"kind":"SetStaticNATRules","id":"s-1","staticNAT":{"rules":[`+
			`{"publicIP":"203.0.113.10","privateIP":"10.0.0.5","protocol":"tcp","startPort":80,"endPort":80}]}}`))
	require.NoError(t, err)
	var answer v1alpha1.Answer
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&answer))
	_ = resp.Body.Close()
	assert.True(t, answer.Success, answer.Error)
	assert.True(t, srv.Has("applications", "application[tcp-80-80]"))

	// The poller runs immediately on start.
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/v1/usage")
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && strings.Contains(string(body), "203.0.113.10")
	}, testWait, testTick)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not shut down")
	}
	assert.NotEmpty(t, srv.RequestsFor(appliance.OpCounters))
}

func TestServe_WaitTimesOut(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t, closedPort(t))
	err := Serve(context.Background(), cfgPath, "127.0.0.1:0", 50*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "appliance not reachable")
}

func TestServe_ListenError(t *testing.T) {
	t.Parallel()

	_, cfgPath := startAppliance(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	err = Serve(context.Background(), cfgPath, ln.Addr().String(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("failed to listen on %s", ln.Addr()))
}
