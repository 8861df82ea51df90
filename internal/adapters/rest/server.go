package rest

import (
	"context"
	"fmt"
	core_port "listing-web/internal/core/port"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type ServerConfig struct {
	Port               string
	CORSAllowedOrigins []string
}

// Routes - все обработчики сервера. APIProxy и Metrics необязательны.
type Routes struct {
	Pages    *PagesHandler
	APIProxy http.Handler
	Metrics  http.Handler
}

// Server - HTTP-сервер страниц и прокси API
type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

func NewRouter(cfg ServerConfig, routes Routes, baseLogger core_port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)
	r.Use(UserMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if routes.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", routes.Metrics)
	}

	// страницы
	r.Get("/", routes.Pages.Landing)
	r.Post("/subscribe", routes.Pages.Subscribe)
	r.Route("/properties", func(r chi.Router) {
		r.Get("/", routes.Pages.Properties)
		r.Post("/search", routes.Pages.SearchAction)
		r.Post("/filters", routes.Pages.FiltersAction)
		r.Post("/page", routes.Pages.PageAction)
	})

	// тот же эндпоинт выдачи, что у сервиса данных, для браузерного кода
	if routes.APIProxy != nil {
		r.Group(func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: cfg.CORSAllowedOrigins,
				AllowedMethods: []string{"GET", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Content-Type", traceHeader},
				ExposedHeaders: []string{traceHeader},
				MaxAge:         300,
			}))
			r.Method(http.MethodGet, "/api/properties", routes.APIProxy)
			r.Options("/api/properties", func(w http.ResponseWriter, r *http.Request) {})
		})
	}

	return r
}

func NewServer(cfg ServerConfig, routes Routes, baseLogger core_port.LoggerPort) *Server {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(cfg, routes, baseLogger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     baseLogger,
	}
}

// Start запускает HTTP-сервер и блокируется до его остановки
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", core_port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server...", nil)
	return s.httpServer.Shutdown(ctx)
}
