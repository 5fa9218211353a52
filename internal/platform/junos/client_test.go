package junos

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr/funcr"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/srxgate/internal/testing/appliance"
)

func TestClient_Login(t *testing.T) {
	t.Parallel()
	_, c := connected(t)
	assert.Equal(t, StateLoggedIn, c.State())
}

func TestClient_LoginRejected(t *testing.T) {
	t.Parallel()
	srv := appliance.New()
	defer func() { _ = srv.Close() }()
	c := NewClient(pipeDialer(srv), WithCredentials("admin", "wrong"))

	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, IsExecutionError(err))
	assert.Contains(t, err.Error(), "authentication failed")
	assert.Equal(t, StateDisconnected, c.State())
}

func TestClient_TraceMasksSecrets(t *testing.T) {
	t.Parallel()
	var (
		mu  sync.Mutex
		out strings.Builder
	)
	log := funcr.New(func(prefix, args string) {
		mu.Lock()
		defer mu.Unlock()
		out.WriteString(args + "\n")
	}, funcr.Options{Verbosity: 2})

	srv := appliance.New(appliance.WithCredentials("admin", "letmein-9431"))
	defer func() { _ = srv.Close() }()
	c := NewClient(pipeDialer(srv), WithCredentials("admin", "letmein-9431"), WithLogger(log))
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	require.NoError(t, c.Connect(ctx))
	require.NoError(t, c.OpenConfiguration(ctx))
	psk := Fields{"name": "ikepolicy-7", "psk": "psk-7731"}
	profile := sampleFields[AccessProfile].Merge(Fields{"password": "vpnpass-5512"})
	for range 2 {
		ensure(t, c, IKEPolicy, psk)
		ensure(t, c, AccessProfile, profile)
	}
	require.NoError(t, c.Commit(ctx))

	mu.Lock()
	trace := out.String()
	mu.Unlock()
	assert.Contains(t, trace, "login")
	assert.Contains(t, trace, "ikepolicy-7")
	for _, secret := range []string{"letmein-9431", "psk-7731", "vpnpass-5512"} {
		assert.NotContains(t, trace, secret)
	}
}

func TestRedact(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"login", "<request-login><username>admin</username><challenge-response>pw</challenge-response></request-login>",
			"<request-login><username>admin</username><challenge-response>****</challenge-response></request-login>"},
		{"psk", "<pre-shared-key><ascii-text>k&amp;y</ascii-text></pre-shared-key>",
			"<pre-shared-key><ascii-text>****</ascii-text></pre-shared-key>"},
		{"firewall user", "<firewall-user><password>pw</password></firewall-user>",
			"<firewall-user><password>****</password></firewall-user>"},
		{"plain", "<name>password</name>", "<name>password</name>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, redact(tt.in))
		})
	}
}

func TestClient_StateMachine(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv, c := connected(t)

	assert.ErrorIs(t, c.Load(ctx, "<applications/>"), ErrConfigNotOpen)
	assert.ErrorIs(t, c.Commit(ctx), ErrConfigNotOpen)

	require.NoError(t, c.OpenConfiguration(ctx))
	assert.Equal(t, StateConfigOpen, c.State())
	assert.ErrorIs(t, c.OpenConfiguration(ctx), ErrConfigAlreadyOpen)

	require.NoError(t, c.Load(ctx, `<applications><application><name>tcp-22-22</name></application></applications>`))
	require.NoError(t, c.Commit(ctx))
	assert.Equal(t, StateLoggedIn, c.State())
	assert.Equal(t, 0, srv.OpenCandidates())
	assert.True(t, srv.Has("applications", "application[tcp-22-22]"))

	// Commit is followed by an explicit close.
	reqs := srv.Requests()
	assert.Equal(t, appliance.OpCommit, reqs[len(reqs)-2].Op)
	assert.Equal(t, appliance.OpClose, reqs[len(reqs)-1].Op)
}

func TestClient_CommitFailureLeavesCandidateOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv, c := inTransaction(t)
	srv.Inject(appliance.Fault{Op: appliance.OpCommit, Count: 1, Message: "commit check failed"})

	err := c.Commit(ctx)
	require.Error(t, err)
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "commit check failed", execErr.Message)
	assert.Equal(t, StateConfigOpen, c.State())

	c.Rollback(ctx)
	assert.Equal(t, StateLoggedIn, c.State())
	assert.Equal(t, 0, srv.OpenCandidates())
}

func TestClient_RollbackDiscards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv, c := inTransaction(t)
	require.NoError(t, c.Load(ctx, `<applications><application><name>tcp-22-22</name></application></applications>`))

	c.Rollback(ctx)
	assert.False(t, srv.Has("applications", "application"))

	// Rollback outside a transaction is a no-op.
	before := len(srv.Requests())
	c.Rollback(ctx)
	assert.Len(t, srv.Requests(), before)
}

func TestClient_RollbackNeverFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv, c := inTransaction(t)
	srv.Inject(appliance.Fault{Op: appliance.OpClose, Count: 1, Action: appliance.FaultDrop})

	c.Rollback(ctx)
	assert.Equal(t, StateDisconnected, c.State())
}

func TestClient_LoadRejected(t *testing.T) {
	t.Parallel()
	srv, c := inTransaction(t)
	srv.Inject(appliance.Fault{Op: appliance.OpLoad, Count: 1, Message: "invalid prefix"})

	err := c.Load(context.Background(), `<applications/>`)
	require.Error(t, err)
	assert.True(t, IsExecutionError(err))
	assert.False(t, IsTransportError(err))
	assert.Equal(t, StateConfigOpen, c.State(), "semantic failures keep the session")
}

func TestClient_TransportFailureDisconnects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		action appliance.FaultAction
		want   error
	}{
		{name: "drop", action: appliance.FaultDrop, want: ErrEmptyResponse},
		{name: "not authenticated", action: appliance.FaultNotAuthenticated, want: ErrNotAuthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv, c := connected(t)
			srv.Inject(appliance.Fault{Op: appliance.OpGet, Count: 1, Action: tt.action})

			_, err := c.Get(context.Background(), "<applications/>")
			require.Error(t, err)
			assert.True(t, IsTransportError(err))
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, StateDisconnected, c.State())

			_, err = c.Get(context.Background(), "<applications/>")
			assert.ErrorIs(t, err, ErrNotConnected)

			// Connect doubles as reconnect.
			require.NoError(t, c.Connect(context.Background()))
			_, err = c.Get(context.Background(), "<applications/>")
			assert.NoError(t, err)
		})
	}
}

func TestClient_ReadTimeout(t *testing.T) {
	t.Parallel()
	srv := appliance.New()
	defer func() { _ = srv.Close() }()
	c := NewClient(pipeDialer(srv), WithCredentials("admin", "secret"), WithReadTimeout(100*time.Millisecond))
	require.NoError(t, c.Connect(context.Background()))
	defer func() { _ = c.Close() }()

	srv.Inject(appliance.Fault{Op: appliance.OpGet, Count: 1, Action: appliance.FaultSilence})
	_, err := c.Get(context.Background(), "<applications/>")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestClient_Call(t *testing.T) {
	t.Parallel()
	srv, c := connected(t)
	srv.SetCounter("usage-input", "ip-203-0-113-10-in", 10)

	resp, err := c.Call(context.Background(), "counters", "<get-firewall-filter-information/>")
	require.NoError(t, err)
	assert.Contains(t, resp, "<byte-count>10</byte-count>")
}

func TestClient_RecordsMetrics(t *testing.T) {
	before := testutil.ToFloat64(rpcRequestsTotal.WithLabelValues("login", "success"))
	_, _ = connected(t)
	after := testutil.ToFloat64(rpcRequestsTotal.WithLabelValues("login", "success"))
	assert.Equal(t, before+1, after)
}

func TestClient_CloseEndsSession(t *testing.T) {
	t.Parallel()
	srv := appliance.New()
	defer func() { _ = srv.Close() }()
	c := NewClient(pipeDialer(srv), WithCredentials("admin", "secret"))
	require.NoError(t, c.Connect(context.Background()))
	require.NoError(t, c.OpenConfiguration(context.Background()))

	require.NoError(t, c.Close())
	assert.Equal(t, StateDisconnected, c.State())
	assert.Len(t, srv.RequestsFor(appliance.OpEndSession), 1)
	assert.Len(t, srv.RequestsFor(appliance.OpClose), 1, "open candidate rolled back before ending")
	assert.NoError(t, c.Close())
}
