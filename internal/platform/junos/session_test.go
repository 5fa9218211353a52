package junos

import (
	"bufio"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted answers each request line with the next scripted reply. A nil
// entry closes the connection instead.
func scripted(t *testing.T, replies ...[]string) *Session {
	t.Helper()
	client, server := net.Pipe()
	go func() {
		defer func() { _ = server.Close() }()
		r := bufio.NewReader(server)
		for _, chunks := range replies {
			if _, err := r.ReadString('\n'); err != nil {
				return
			}
			if chunks == nil {
				return
			}
			for _, c := range chunks {
				if _, err := io.WriteString(server, c); err != nil {
					return
				}
			}
		}
		_, _ = io.Copy(io.Discard, r)
	}()
	s := NewSession(client, 200*time.Millisecond)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSession_ReassemblesChunks(t *testing.T) {
	t.Parallel()
	s := scripted(t, []string{"<rpc-reply><a>", "1</a>", "</rpc-re", "ply>\n<rpc-reply><b/></rpc-reply>"}, []string{})

	resp, err := s.Send(context.Background(), "get", "<rpc/>\n")
	require.NoError(t, err)
	assert.Equal(t, "<rpc-reply><a>1</a></rpc-reply>", resp)

	// The pipelined second reply was buffered.
	resp, err = s.Send(context.Background(), "get", "<rpc/>\n")
	require.NoError(t, err)
	assert.Equal(t, "\n<rpc-reply><b/></rpc-reply>", resp)
}

func TestSession_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		replies [][]string
		wantErr error
	}{
		{name: "timeout", replies: [][]string{{"<rpc-reply>"}}, wantErr: ErrTimeout},
		{name: "empty", replies: [][]string{nil}, wantErr: ErrEmptyResponse},
		{
			name:    "not authenticated",
			replies: [][]string{{"<rpc-reply><xnm:error><message>not authenticated</message></xnm:error></rpc-reply>"}},
			wantErr: ErrNotAuthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := scripted(t, tt.replies...)

			_, err := s.Send(context.Background(), "get", "<rpc/>\n")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsTransportError(err))

			assert.False(t, s.Healthy())
			_, err = s.Send(context.Background(), "get", "<rpc/>\n")
			assert.ErrorIs(t, err, ErrNotConnected)
		})
	}
}

func TestSession_IncompleteOnClose(t *testing.T) {
	t.Parallel()
	client, server := net.Pipe()
	go func() {
		r := bufio.NewReader(server)
		_, _ = r.ReadString('\n')
		_, _ = io.WriteString(server, "<rpc-reply><partial>")
		_ = server.Close()
	}()
	s := NewSession(client, time.Second)
	defer func() { _ = s.Close() }()

	_, err := s.Send(context.Background(), "get", "<rpc/>\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncompleteResponse)
}

func TestSession_ContextCancel(t *testing.T) {
	t.Parallel()
	s := scripted(t, []string{"<rpc-reply>"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Send(ctx, "get", "<rpc/>\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	t.Parallel()
	s := scripted(t)
	require.NoError(t, s.Close())
	assert.NoError(t, s.Close())
	assert.False(t, s.Healthy())
}

func TestGreetingEnd(t *testing.T) {
	t.Parallel()
	assert.Equal(t, -1, greetingEnd([]byte(`<?xml version="1.0"?>`+"\n"+`<junoscript version="1.0"`)))
	doc := `<?xml version="1.0"?>` + "\n" + `<junoscript version="1.0">` + "\n" + "<rpc-reply>"
	end := greetingEnd([]byte(doc))
	assert.Equal(t, "<rpc-reply>", doc[end:])
}
