package junos

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

const (
	// DefaultReadTimeout bounds the wait for each chunk of a reply.
	DefaultReadTimeout = 30 * time.Second

	clientHello = `<?xml version="1.0" encoding="us-ascii"?>` + "\n" +
		`<junoscript version="1.0" release="srxgate">` + "\n"

	readBufferSize = 32 * 1024
)

// Dialer opens the byte stream a Session runs over.
type Dialer interface {
	Dial(ctx context.Context) (io.ReadWriteCloser, error)
}

// TCPDialer dials clear-text junoscript, by default on port 3221.
type TCPDialer struct {
	Address string
	Timeout time.Duration
}

// Dial implements Dialer.
func (d TCPDialer) Dial(ctx context.Context) (io.ReadWriteCloser, error) {
	nd := net.Dialer{Timeout: d.Timeout}
	conn, err := nd.DialContext(ctx, "tcp", d.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", d.Address, err)
	}
	return conn, nil
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context) (io.ReadWriteCloser, error)

// Dial implements Dialer.
func (f DialerFunc) Dial(ctx context.Context) (io.ReadWriteCloser, error) {
	return f(ctx)
}

// Session is one persistent junoscript connection. A background reader pumps
// incoming bytes into a channel so that every wait for a reply can be bounded
// by the read timeout, whatever the underlying stream supports.
//
// Send calls are serialized. After any transport failure the session is
// closed and every later call fails with ErrNotConnected.
type Session struct {
	conn        io.ReadWriteCloser
	readTimeout time.Duration

	chunks  chan []byte
	done    chan struct{}
	readErr error

	mu      sync.Mutex
	pending []byte
	broken  error

	closeOnce sync.Once
}

// Open dials, exchanges the junoscript greeting and returns a ready session.
func Open(ctx context.Context, dialer Dialer, readTimeout time.Duration) (*Session, error) {
	conn, err := dialer.Dial(ctx)
	if err != nil {
		return nil, &TransportError{Op: "dial", Err: err}
	}

	s := NewSession(conn, readTimeout)
	if _, err := s.exchange(ctx, "hello", []byte(clientHello), greetingEnd); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// NewSession wraps an established stream without performing the greeting.
func NewSession(conn io.ReadWriteCloser, readTimeout time.Duration) *Session {
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	s := &Session{
		conn:        conn,
		readTimeout: readTimeout,
		chunks:      make(chan []byte),
		done:        make(chan struct{}),
	}
	go s.pump()
	return s
}

func (s *Session) pump() {
	defer close(s.chunks)
	buf := make([]byte, readBufferSize)
	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case s.chunks <- chunk:
			case <-s.done:
				return
			}
		}
		if err != nil {
			s.readErr = err
			return
		}
	}
}

// Send writes one request and returns the complete reply, up to and including
// the terminal marker. Replies flagged "not authenticated" are transport
// failures.
func (s *Session) Send(ctx context.Context, op, request string) (string, error) {
	resp, err := s.exchange(ctx, op, []byte(request), replyEnd)
	if err != nil {
		return "", err
	}
	if isNotAuthenticated(resp) {
		s.fail(ErrNotAuthenticated)
		return "", &TransportError{Op: op, Err: ErrNotAuthenticated}
	}
	return string(resp), nil
}

// exchange writes req and accumulates input until end reports a complete
// frame. Bytes past the frame are kept for the next exchange.
func (s *Session) exchange(ctx context.Context, op string, req []byte, end func([]byte) int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.broken != nil {
		return nil, &TransportError{Op: op, Err: ErrNotConnected}
	}

	if len(req) > 0 {
		if d, ok := s.conn.(interface{ SetWriteDeadline(time.Time) error }); ok {
			_ = d.SetWriteDeadline(time.Now().Add(s.readTimeout))
		}
		if _, err := s.conn.Write(req); err != nil {
			s.fail(err)
			return nil, &TransportError{Op: op, Err: err}
		}
	}

	timer := time.NewTimer(s.readTimeout)
	defer timer.Stop()

	for {
		if n := end(s.pending); n >= 0 {
			frame := s.pending[:n]
			s.pending = append([]byte(nil), s.pending[n:]...)
			return frame, nil
		}

		select {
		case chunk, ok := <-s.chunks:
			if !ok {
				err := ErrIncompleteResponse
				if len(bytes.TrimSpace(s.pending)) == 0 {
					err = ErrEmptyResponse
				}
				if s.readErr != nil && s.readErr != io.EOF {
					err = fmt.Errorf("%w: %w", err, s.readErr)
				}
				s.fail(err)
				return nil, &TransportError{Op: op, Err: err}
			}
			s.pending = append(s.pending, chunk...)
			timer.Reset(s.readTimeout)
		case <-timer.C:
			s.fail(ErrTimeout)
			return nil, &TransportError{Op: op, Err: ErrTimeout}
		case <-ctx.Done():
			s.fail(ctx.Err())
			return nil, &TransportError{Op: op, Err: ctx.Err()}
		}
	}
}

// fail marks the session unusable and closes the stream. Caller holds mu.
func (s *Session) fail(err error) {
	if s.broken == nil {
		s.broken = err
	}
	s.shutdown()
}

func (s *Session) shutdown() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.conn.Close()
	})
	return err
}

// Healthy reports whether the session can still carry requests.
func (s *Session) Healthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.broken == nil
}

// Close ends the session. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.broken == nil {
		s.broken = ErrNotConnected
	}
	s.mu.Unlock()
	return s.shutdown()
}
