package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/imamik/srxgate/api/v1alpha1"
	"github.com/imamik/srxgate/internal/usage"
)

const (
	maxCommandBytes = 1 << 20
	healthTimeout   = 5 * time.Second
)

// commandExecutor is implemented by *driver.Driver.
type commandExecutor interface {
	Execute(ctx context.Context, cmd v1alpha1.Command) v1alpha1.Answer
	Ping(ctx context.Context) error
}

// latestSnapshot is implemented by *usage.Poller.
type latestSnapshot interface {
	Latest() *usage.Snapshot
}

type apiServer struct {
	exec  commandExecutor
	usage latestSnapshot
	log   logr.Logger
}

// newServer returns the HTTP API of the serve command.
func newServer(exec commandExecutor, u latestSnapshot, log logr.Logger) http.Handler {
	s := &apiServer{exec: exec, usage: u, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/commands", s.handleCommand)
	mux.HandleFunc("GET /v1/usage", s.handleUsage)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// handleCommand executes one command. Every decoded command is answered
// with 200; the Answer carries the outcome.
func (s *apiServer) handleCommand(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCommandBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cmd, err := v1alpha1.DecodeCommand(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, s.exec.Execute(r.Context(), cmd))
}

func (s *apiServer) handleUsage(w http.ResponseWriter, _ *http.Request) {
	snap := s.usage.Latest()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("no usage poll has completed yet"))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.exec.Ping(ctx); err != nil {
		s.log.Error(err, "health check failed")
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
