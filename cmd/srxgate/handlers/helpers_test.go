package handlers

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/imamik/srxgate/internal/testing/appliance"
)

const (
	testWait = 2 * time.Second
	testTick = 10 * time.Millisecond
)

// startAppliance runs a fake appliance on a loopback port and writes a
// config file pointing at it.
func startAppliance(t *testing.T) (*appliance.Server, string) {
	t.Helper()
	srv := appliance.New()
	t.Cleanup(func() { _ = srv.Close() })

	addr, err := srv.Listen("127.0.0.1:0")
	require.NoError(t, err)
	_, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	return srv, writeConfig(t, port)
}

func writeConfig(t *testing.T, port string) string {
	t.Helper()
	doc := fmt.Sprintf(`appliance:
  address: 127.0.0.1
  port: %s
  username: admin
  password: secret
interfaces:
  public: ge-0/0/0.0
  private: ge-0/0/1
zones:
  public: untrust
  private: trust
retry:
  max_retries: 0
timeouts:
  dial: 2s
  read: 2s
`, port)
	path := filepath.Join(t.TempDir(), "srxgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))
	return path
}

// closedPort returns a loopback port nothing listens on.
func closedPort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, ln.Close())
	return port
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}
