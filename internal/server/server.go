// Package server exposes the command normalizer and the game over HTTP.
//
// Routes:
//
//	POST /v1/normalize   {"text": "..."} -> normalization trace, no side effects
//	POST /v1/commands    {"text": "..."} -> play the command; 422 when rejected
//	POST /v1/speech      raw 16-bit PCM  -> recognise and play
//	GET  /v1/state                       -> current world snapshot
//	GET  /v1/colors                      -> known color names and values
//	GET  /v1/ws                          -> websocket: snapshots out, commands in
//	GET  /healthz, /readyz, /metrics
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrWong99/coinhop/internal/control"
	"github.com/MrWong99/coinhop/internal/health"
	"github.com/MrWong99/coinhop/internal/observe"
	"github.com/MrWong99/coinhop/internal/speech"
)

const (
	// maxTextBody bounds JSON request bodies.
	maxTextBody = 4 << 10

	// maxSpeechBody bounds PCM uploads: 30 s of 16 kHz mono 16-bit audio.
	maxSpeechBody = 30 * 16000 * 2
)

// Option configures a [Server].
type Option func(*Server)

// WithHealth mounts h on /healthz and /readyz.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) { s.health = h }
}

// WithMetricsHandler mounts h on /metrics. Without it the Prometheus default
// gatherer is served.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metricsHandler = h }
}

// WithOriginPatterns allows websocket connections from the given origin host
// patterns in addition to same-origin requests.
func WithOriginPatterns(patterns ...string) Option {
	return func(s *Server) { s.originPatterns = patterns }
}

// WithMetrics records HTTP and websocket metrics on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// Server is the HTTP front end. It implements [http.Handler].
type Server struct {
	ctl            *control.Controller
	health         *health.Handler
	metrics        *observe.Metrics
	metricsHandler http.Handler
	originPatterns []string

	handler http.Handler
}

var _ http.Handler = (*Server)(nil)

// New builds the route table over ctl.
func New(ctl *control.Controller, opts ...Option) *Server {
	s := &Server{ctl: ctl}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	if s.metricsHandler == nil {
		s.metricsHandler = promhttp.Handler()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/normalize", s.handleNormalize)
	mux.HandleFunc("POST /v1/commands", s.handleCommand)
	mux.HandleFunc("POST /v1/speech", s.handleSpeech)
	mux.HandleFunc("GET /v1/state", s.handleState)
	mux.HandleFunc("GET /v1/colors", s.handleColors)
	mux.HandleFunc("GET /v1/ws", s.handleWebsocket)
	mux.Handle("GET /metrics", s.metricsHandler)
	if s.health != nil {
		s.health.Register(mux)
	}
	s.handler = observe.Middleware(s.metrics)(mux)
	return s
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

type textRequest struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type colorEntry struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeText(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.ctl.Normalizer().Analyze(req.Text))
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeText(w, r)
	if !ok {
		return
	}
	out := s.ctl.Play(r.Context(), req.Text)
	status := http.StatusOK
	if !out.Applied {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, out)
}

func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	if !s.ctl.SpeechEnabled() {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: speech.MsgServiceUnavailable})
		return
	}
	rate := 16000
	if v := r.URL.Query().Get("rate"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "rate must be a positive integer"})
			return
		}
		rate = n
	}
	pcm, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSpeechBody))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "audio too long"})
		return
	}
	if len(pcm) == 0 || len(pcm)%2 != 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body must be 16-bit PCM"})
		return
	}

	out, err := s.ctl.Listen(r.Context(), speech.Audio{PCM: pcm, SampleRate: rate, Channels: 1})
	switch {
	case errors.Is(err, speech.ErrCouldNotUnderstand):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: speech.Message(err)})
	case err != nil:
		slog.Warn("server: speech request failed", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: speech.Message(err)})
	case !out.Applied:
		writeJSON(w, http.StatusUnprocessableEntity, out)
	default:
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctl.World().Snapshot())
}

func (s *Server) handleColors(w http.ResponseWriter, _ *http.Request) {
	lex := s.ctl.Normalizer().Lexicon()
	names := lex.ColorNames()
	out := make([]colorEntry, 0, len(names))
	for _, n := range names {
		rgb, _ := lex.Color(n)
		out = append(out, colorEntry{Name: n, Hex: rgb.Hex()})
	}
	writeJSON(w, http.StatusOK, out)
}

// decodeText reads a {"text": ...} body. An empty text is valid and
// normalizes to the unrecognized sentinel. On failure it writes a 400 and
// returns false.
func decodeText(w http.ResponseWriter, r *http.Request) (textRequest, bool) {
	var req textRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTextBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return req, false
	}
	return req, true
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("server: encode response", "err", err)
	}
}
