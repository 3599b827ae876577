// Package web serves the predictor as server-rendered pages and as a JSON
// API under /api.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"ipopredict/internal/config"
	"ipopredict/internal/dashboard"
	"ipopredict/internal/flow"
	"ipopredict/pkg/predictor"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Options wires a Server. Service and Formatter are required.
type Options struct {
	Service        flow.Service
	Formatter      *dashboard.Formatter
	Theme          config.Theme
	NoticeDuration time.Duration
	Logger         *slog.Logger
	Now            func() time.Time
}

// Server renders the two tabs and proxies the JSON API to the prediction
// service.
type Server struct {
	router *chi.Mux
	svc    flow.Service
	fmt    *dashboard.Formatter
	theme  palette
	notice time.Duration
	log    *slog.Logger
	now    func() time.Time
}

// NewServer creates the HTTP front end.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NoticeDuration <= 0 {
		opts.NoticeDuration = config.Defaults().Display.NoticeDuration
	}
	s := &Server{
		router: chi.NewRouter(),
		svc:    opts.Service,
		fmt:    opts.Formatter,
		theme:  newPalette(opts.Theme),
		notice: opts.NoticeDuration,
		log:    opts.Logger.With("component", "web"),
		now:    opts.Now,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Get("/", s.handlePredictPage)
	s.router.Post("/predict", s.handlePredictSubmit)
	s.router.Get("/update", s.handleUpdatePage)
	s.router.Post("/update", s.handleUpdateSubmit)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
		r.Post("/predict", s.handleAPIPredict)
		r.Get("/history", s.handleAPIHistory)
		r.Post("/update-price", s.handleAPIUpdate)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// statusFor maps a remote failure to the status the JSON API answers with.
// Rejections keep the upstream status; anything else is a bad gateway.
func statusFor(err error) int {
	var rej *predictor.RejectedError
	if errors.As(err, &rej) && rej.Status >= 400 && rej.Status < 600 {
		return rej.Status
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
