package junos

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/imamik/srxgate/internal/testing/appliance"
)

func pipeDialer(srv *appliance.Server) Dialer {
	return DialerFunc(func(context.Context) (io.ReadWriteCloser, error) {
		client, server := net.Pipe()
		go srv.Serve(server)
		return client, nil
	})
}

// connected returns a logged-in client against a fresh fake.
func connected(t *testing.T) (*appliance.Server, *Client) {
	t.Helper()
	srv := appliance.New()
	c := NewClient(pipeDialer(srv), WithCredentials("admin", "secret"), WithReadTimeout(2*time.Second))
	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(func() {
		_ = c.Close()
		_ = srv.Close()
	})
	return srv, c
}

// inTransaction opens a candidate and returns the client.
func inTransaction(t *testing.T) (*appliance.Server, *Client) {
	t.Helper()
	srv, c := connected(t)
	require.NoError(t, c.OpenConfiguration(context.Background()))
	return srv, c
}
