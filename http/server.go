package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/prodner"
	"github.com/fwojciec/prodner/extract"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ShutdownTimeout bounds how long Close waits for in-flight requests.
const ShutdownTimeout = 10 * time.Second

// maxRequestBody caps /extract request bodies.
const maxRequestBody = 64 << 10

// LabelService is the extraction service the server exposes.
type LabelService interface {
	Ready() error
	Status() extract.ModelStatus
	ExtractLabels(ctx context.Context, url string) ([]string, error)
}

// Server serves label extraction over HTTP.
type Server struct {
	ln     net.Listener
	server *http.Server
	router *http.ServeMux

	// Addr is the bind address, e.g. ":8080".
	Addr string

	Service LabelService
	Logger  *slog.Logger

	metrics *serverMetrics
}

// NewServer returns a server whose metrics are registered with reg.
// A nil reg uses a fresh registry.
func NewServer(reg *prometheus.Registry) *Server {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &Server{
		router:  http.NewServeMux(),
		Logger:  slog.Default(),
		metrics: newServerMetrics(reg),
	}

	s.router.HandleFunc("POST /extract", s.handleExtract)
	s.router.HandleFunc("GET /healthz", s.handleHealth)
	s.router.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler wrapped in logging and metrics
// middleware.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = s.metrics.middleware(h)
	h = s.logging(h)
	return h
}

// Open binds Addr and starts serving in the background.
func (s *Server) Open() error {
	if s.Service == nil {
		return prodner.Errorf(prodner.EINVALID, "server requires a label service")
	}
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("http server stopped", "err", err)
		}
	}()
	return nil
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

type extractRequest struct {
	URL string `json:"url"`
}

type extractResponse struct {
	Products []string `json:"products"`
}

type healthResponse struct {
	Status string              `json:"status"`
	Model  extract.ModelStatus `json:"model"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if err := s.Service.Ready(); err != nil {
		s.writeError(w, r, err)
		return
	}

	rawURL, err := requestURL(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := prodner.ValidateURL(rawURL); err != nil {
		s.writeError(w, r, err)
		return
	}

	products, err := s.Service.ExtractLabels(r.Context(), rawURL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, extractResponse{Products: products})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.Service.Status()
	if err := s.Service.Ready(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Model: status})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Model: status})
}

// requestURL reads the url parameter from a JSON body or a form.
func requestURL(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req extractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", prodner.Errorf(prodner.EINVALID, "invalid JSON body: %v", err)
		}
		return strings.TrimSpace(req.URL), nil
	}

	if err := r.ParseForm(); err != nil {
		return "", prodner.Errorf(prodner.EINVALID, "invalid form body: %v", err)
	}
	return strings.TrimSpace(r.PostForm.Get("url")), nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := prodner.ErrorCode(err)
	status := statusCode(code)
	if status == http.StatusInternalServerError {
		s.Logger.Error("http error", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: prodner.ErrorMessage(err)})
}

var codes = map[string]int{
	prodner.EINVALID:     http.StatusBadRequest,
	prodner.ERANGE:       http.StatusBadRequest,
	prodner.EFORMAT:      http.StatusBadRequest,
	prodner.ENOTFOUND:    http.StatusNotFound,
	prodner.EFETCH:       http.StatusBadGateway,
	prodner.EUNAVAILABLE: http.StatusServiceUnavailable,
}

func statusCode(code string) int {
	if status, ok := codes[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
