// Package server exposes planning graph evaluation over HTTP.
//
// Routes:
//
//	GET  /healthz       liveness and build version
//	POST /v1/evaluate   {"problem": {...}, "options": {...}} -> pipeline.Result
//	POST /v1/render     {"problem": {...}, "options": {...}, "render": {...}} -> artifact bytes
//	GET  /metrics       Prometheus exposition, when a metrics handler is given
//
// Problems use the JSON problem format of pkg/io. Every response carries an
// X-Request-ID header; a client-supplied UUID is echoed back.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/plangraph/pkg/buildinfo"
	"github.com/matzehuels/plangraph/pkg/errors"
	pgio "github.com/matzehuels/plangraph/pkg/io"
	"github.com/matzehuels/plangraph/pkg/observability"
	"github.com/matzehuels/plangraph/pkg/pipeline"
	"github.com/matzehuels/plangraph/pkg/planning"
)

const (
	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes = 4 << 20

	headerRequestID = "X-Request-ID"
	headerCache     = "X-Cache"

	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// EvaluateRequest is the body of POST /v1/evaluate.
type EvaluateRequest struct {
	Problem json.RawMessage  `json:"problem"`
	Options pipeline.Options `json:"options"`
}

// RenderRequest is the body of POST /v1/render.
type RenderRequest struct {
	Problem json.RawMessage        `json:"problem"`
	Options pipeline.Options       `json:"options"`
	Render  pipeline.RenderOptions `json:"render"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Server routes API requests to a pipeline runner.
type Server struct {
	runner  *pipeline.Runner
	metrics http.Handler
	logger  *log.Logger
	router  chi.Router
}

// New creates a server. metrics may be nil, in which case /metrics is not
// mounted.
func New(runner *pipeline.Runner, metrics http.Handler, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, metrics: metrics, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)

	r.Group(func(r chi.Router) {
		r.Use(s.instrument)
		r.Get("/healthz", s.handleHealth)
		r.Post("/v1/evaluate", s.handleEvaluate)
		r.Post("/v1/render", s.handleRender)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := parseProblem(req.Problem)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	opts := req.Options
	opts.Logger = s.logger.With("request_id", requestIDFrom(r.Context()))
	res, err := s.runner.Evaluate(r.Context(), p, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Render.Format == "" {
		req.Render.Format = pipeline.FormatSVG
	}
	p, err := parseProblem(req.Problem)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	opts := req.Options
	opts.Logger = s.logger.With("request_id", requestIDFrom(r.Context()))
	data, cached, err := s.runner.Render(r.Context(), p, opts, req.Render)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[req.Render.Format])
	if cached {
		w.Header().Set(headerCache, "hit")
	} else {
		w.Header().Set(headerCache, "miss")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

var contentTypes = map[string]string{
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

// =============================================================================
// Helpers
// =============================================================================

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request")
	}
	return nil
}

func parseProblem(raw json.RawMessage) (*planning.Problem, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "problem is required")
	}
	return pgio.ParseProblem(raw, pgio.FormatJSON)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", requestIDFrom(r.Context()), "err", err)
	}
	observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), err)
	writeJSON(w, status, ErrorResponse{
		Error:     errors.UserMessage(err),
		Code:      string(errors.GetCode(err)),
		RequestID: requestIDFrom(r.Context()),
	})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidProblem, errors.ErrCodeInvalidLiteral,
		errors.ErrCodeUnknownFluent, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidHeuristic,
		errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
