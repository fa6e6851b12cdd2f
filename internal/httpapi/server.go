// Package httpapi exposes the dashboard data over HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"call-dashboard-go/internal/logger"
	"call-dashboard-go/internal/metrics"
	"call-dashboard-go/internal/pipeline"
)

type Server struct {
	svc     *pipeline.Service
	metrics *metrics.Metrics
	log     *logger.Logger
	router  chi.Router
}

// NewServer wires the routes. m may be nil, in which case /metrics is not
// mounted.
func NewServer(svc *pipeline.Service, m *metrics.Metrics, log *logger.Logger, allowedOrigins []string) *Server {
	s := &Server{
		svc:     svc,
		metrics: m,
		log:     log.Component("httpapi"),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/healthz", s.handleHealth)
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/refresh", s.handleRefresh)
		r.Get("/calls", s.handleListCalls)
		r.Get("/calls/{key}", s.handleGetCall)
		r.Get("/calls/{key}/transcript", s.handleTranscript)
		r.Get("/metrics/summary", s.handleMetricsSummary)
		r.Get("/cards", s.handleCards)
		r.Get("/export.csv", s.handleExportCSV)
		r.Get("/export.xlsx", s.handleExportXLSX)
	})

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// CORS allows the dashboard frontend to call the API from another origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:         300,
	})
	return c.Handler
}

// requestLogger tags each request with an X-Request-ID (kept when the
// client sends one) and logs it once the handler returns.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-Request-ID") == "" {
				r.Header.Set("X-Request-ID", uuid.NewString())
			}
			w.Header().Set("X-Request-ID", r.Header.Get("X-Request-ID"))

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry := log.WithRequest(r).WithFields(logrus.Fields{
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
			})
			switch {
			case status >= 500:
				entry.Error("request failed")
			case status >= 400:
				entry.Warn("request rejected")
			default:
				entry.Debug("request served")
			}
		})
	}
}
