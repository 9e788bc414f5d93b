// Package web exposes the import, export and resource endpoints over HTTP.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/ameliadesk/internal/config"
	"github.com/JonMunkholm/ameliadesk/internal/core"
	"github.com/JonMunkholm/ameliadesk/internal/logging"
	"github.com/JonMunkholm/ameliadesk/internal/web/middleware"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// Server is the HTTP server for the admin service.
type Server struct {
	cfg      *config.Config
	service  *core.Service
	router   *chi.Mux
	server   *http.Server
	validate *validator.Validate

	stopSweeper func()
}

// NewServer creates a Server with all middleware and routes installed.
func NewServer(cfg *config.Config, service *core.Service) *Server {
	s := &Server{
		cfg:         cfg,
		service:     service,
		router:      chi.NewRouter(),
		validate:    validator.New(),
		stopSweeper: func() {},
	}
	s.validate.RegisterTagNameFunc(jsonFieldName)
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5, "application/json", "text/csv"))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Security.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.APIKeyHeader, "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if rl := middleware.FromConfig(s.cfg.Rate); rl != nil {
		s.stopSweeper = rl.StartSweeper(time.Minute)
		s.router.Use(rl.Handler)
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(s.cfg.Security))

		r.Get("/connection", s.handleConnection)

		// Generic resource passthrough
		r.Get("/resources", s.handleListResources)
		r.Get("/resources/{resource}", s.handleResourceList)
		r.Post("/resources/{resource}", s.handleResourceCreate)
		r.Get("/resources/{resource}/{id}", s.handleResourceGet)
		r.Put("/resources/{resource}/{id}", s.handleResourceUpdate)
		r.Delete("/resources/{resource}/{id}", s.handleResourceDelete)

		// Appointments
		r.Post("/appointments", s.handleCreateAppointment)
		r.Post("/appointments/{id}/status", s.handleAppointmentStatus)

		// Import
		r.Get("/template/appointments", s.handleTemplate)
		r.Get("/template/appointments/help", s.handleTemplateHelp)
		r.Post("/validate/appointments", s.handleValidate)
		r.Post("/import/appointments", s.handleImport)
		r.Get("/import/queue", s.handleImportQueue)
		r.Get("/import/{importID}", s.handleImportReport)
		r.Get("/import/{importID}/errors", s.handleImportErrors)

		// Export
		r.Get("/exports", s.handleListExports)
		r.Get("/export/{key}", s.handleExport)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: s.cfg.Server.ReadTimeout,
		IdleTimeout: s.cfg.Server.IdleTimeout,
	}

	logging.FromContext(context.Background()).Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopSweeper()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
