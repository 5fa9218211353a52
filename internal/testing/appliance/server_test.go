package appliance

import (
	"bufio"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rawClient struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func dialRaw(t *testing.T, srv *Server) *rawClient {
	t.Helper()
	client, server := net.Pipe()
	go srv.Serve(server)
	t.Cleanup(func() { _ = client.Close() })

	c := &rawClient{t: t, conn: client, r: bufio.NewReader(client)}
	greet := c.readUntil("\n")
	greet += c.readUntil("\n")
	require.Contains(t, greet, "<junoscript")
	go func() {
		_, _ = io.WriteString(client, `<?xml version="1.0" encoding="us-ascii"?>`+"\n"+`<junoscript version="1.0">`+"\n")
	}()
	return c
}

func (c *rawClient) readUntil(marker string) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var b strings.Builder
	for !strings.HasSuffix(b.String(), marker) {
		ch, err := c.r.ReadByte()
		require.NoError(c.t, err)
		b.WriteByte(ch)
	}
	return b.String()
}

func (c *rawClient) call(body string) string {
	c.t.Helper()
	go func() { _, _ = io.WriteString(c.conn, "<rpc>"+body+"</rpc>\n") }()
	return c.readUntil("</rpc-reply>")
}

func (c *rawClient) login() {
	c.t.Helper()
	resp := c.call("<request-login><username>admin</username><challenge-response>secret</challenge-response></request-login>")
	require.Contains(c.t, resp, "<status>success</status>")
}

func TestServer_LoginRequired(t *testing.T) {
	t.Parallel()
	srv := New()
	c := dialRaw(t, srv)

	resp := c.call("<get-configuration><configuration/></get-configuration>")
	assert.Contains(t, resp, "not authenticated")

	resp = c.call("<request-login><username>admin</username><challenge-response>wrong</challenge-response></request-login>")
	assert.Contains(t, resp, "<status>fail</status>")

	c.login()
}

func TestServer_CandidateLifecycle(t *testing.T) {
	t.Parallel()
	srv := New()
	c := dialRaw(t, srv)
	c.login()

	resp := c.call("<load-configuration><configuration/></load-configuration>")
	assert.Contains(t, resp, notOpen)

	c.call("<open-configuration><private/></open-configuration>")
	assert.Equal(t, 1, srv.OpenCandidates())
	assert.Contains(t, c.call("<open-configuration><private/></open-configuration>"), alreadyOpen)

	resp = c.call(`<load-configuration><configuration><applications><application><name>tcp-22-22</name></application></applications></configuration></load-configuration>`)
	assert.Contains(t, resp, "<load-success/>")

	// Visible in the candidate, not yet committed.
	resp = c.call(`<get-configuration database="candidate"><configuration><applications/></configuration></get-configuration>`)
	assert.Contains(t, resp, "<name>tcp-22-22</name>")
	assert.False(t, srv.Has("applications", "application[tcp-22-22]"))

	assert.Contains(t, c.call("<commit-configuration/>"), "<commit-success/>")
	c.call("<close-configuration/>")

	assert.True(t, srv.Has("applications", "application[tcp-22-22]"))
	assert.Equal(t, 0, srv.OpenCandidates())
}

func TestServer_CloseDiscardsCandidate(t *testing.T) {
	t.Parallel()
	srv := New()
	c := dialRaw(t, srv)
	c.login()

	c.call("<open-configuration><private/></open-configuration>")
	c.call(`<load-configuration><configuration><applications><application><name>tcp-22-22</name></application></applications></configuration></load-configuration>`)
	c.call("<close-configuration/>")

	assert.False(t, srv.Has("applications", "application"))
	assert.Equal(t, 0, srv.OpenCandidates())
}

func TestServer_Faults(t *testing.T) {
	t.Parallel()
	srv := New()
	c := dialRaw(t, srv)
	c.login()
	c.call("<open-configuration><private/></open-configuration>")

	srv.Inject(Fault{Op: OpCommit, Count: 1, Message: "commit check failed"})
	resp := c.call("<commit-configuration/>")
	assert.Contains(t, resp, "commit check failed")
	assert.NotContains(t, resp, "<commit-success/>")

	assert.Contains(t, c.call("<commit-configuration/>"), "<commit-success/>", "fault expires after Count")

	srv.Inject(Fault{Op: OpLoad, Match: "tcp-80-80", Count: -1, Message: "invalid application"})
	resp = c.call(`<load-configuration><configuration><applications><application><name>tcp-22-22</name></application></applications></configuration></load-configuration>`)
	assert.Contains(t, resp, "<load-success/>")
	resp = c.call(`<load-configuration><configuration><applications><application><name>tcp-80-80</name></application></applications></configuration></load-configuration>`)
	assert.Contains(t, resp, "invalid application")

	srv.Inject(Fault{Op: OpGet, Count: 1, Action: FaultNotAuthenticated})
	assert.Contains(t, c.call("<get-configuration><configuration/></get-configuration>"), "not authenticated")
}

func TestServer_Counters(t *testing.T) {
	t.Parallel()
	srv := New()
	require.NoError(t, srv.Seed(`<firewall><family><inet><filter><name>usage-input</name>`+
		`<term><name>ip-203-0-113-10-in</name><then><count>ip-203-0-113-10-in</count></then></term>`+
		`</filter></inet></family></firewall>`))
	srv.SetCounter("usage-input", "ip-203-0-113-10-in", 4096)
	srv.SetCounter("usage-output", "garbage", 7)

	c := dialRaw(t, srv)
	c.login()

	resp := c.call("<get-firewall-filter-information/>")
	assert.Contains(t, resp, "<counter-name>ip-203-0-113-10-in</counter-name>")
	assert.Contains(t, resp, "<byte-count>4096</byte-count>")
	assert.Contains(t, resp, "<filter-name>usage-output</filter-name>")

	resp = c.call("<get-firewall-filter-information><filtername>usage-output</filtername></get-firewall-filter-information>")
	assert.NotContains(t, resp, "usage-input")
}

func TestServer_RequestLog(t *testing.T) {
	t.Parallel()
	srv := New()
	c := dialRaw(t, srv)
	c.login()
	c.call("<get-configuration><configuration/></get-configuration>")

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, OpLogin, reqs[0].Op)
	assert.Equal(t, OpGet, reqs[1].Op)
	assert.Len(t, srv.RequestsFor(OpGet), 1)

	srv.ResetRequests()
	assert.Empty(t, srv.Requests())
}
