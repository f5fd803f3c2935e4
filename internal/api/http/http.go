// Package httpapi wires the public, admin and auth handler sets into one
// chi router and owns the http.Server lifecycle.
package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/softkom/site-manager/internal/apisrv/admin"
	"github.com/softkom/site-manager/internal/apisrv/auth"
	"github.com/softkom/site-manager/internal/apisrv/frontend"
	"github.com/softkom/site-manager/internal/apisrv/rest"
	"github.com/softkom/site-manager/internal/dependency"
)

// Config is the configuration for the http server
type Config struct {
	Port           string   `mapstructure:"port"`
	Address        string   `mapstructure:"address"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Server is the http server
type Server struct {
	hs   *http.Server
	c    *Config
	done chan struct{}
}

// New creates a new server
func New(config *Config) *Server {
	return &Server{
		c:    config,
		done: make(chan struct{}),
	}
}

// Done returns a channel that is closed when the http server exits
func (s *Server) Done() <-chan struct{} {
	return s.done
}

func (s *Server) setupRouter(
	repo dependency.Repository,
	adminServer *admin.Server,
	frontendServer *frontend.Server,
	authServer *auth.Server,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.c.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Authorization"},
		ExposedHeaders:   []string{"X-Total-Count"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/frontend", frontendServer.Routes)
	r.Route("/api/admin", func(ar chi.Router) {
		ar.Use(authServer.WithAuth)
		adminServer.Routes(ar)
	})
	r.Route("/api/auth", authServer.Routes)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := repo.Ping(r.Context()); err != nil {
			rest.WriteMessage(w, http.StatusServiceUnavailable, "db unreachable")
			return
		}
		rest.WriteMessage(w, http.StatusOK, "ok")
	})

	return r
}

// Start starts the server
func (s *Server) Start(ctx context.Context,
	repo dependency.Repository,
	adminServer *admin.Server,
	frontendServer *frontend.Server,
	authServer *auth.Server,
) error {
	listenerAddr := fmt.Sprintf("%s:%s", s.c.Address, s.c.Port)
	s.hs = &http.Server{
		Addr:              listenerAddr,
		Handler:           s.setupRouter(repo, adminServer, frontendServer, authServer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Default().InfoContext(ctx, fmt.Sprintf("site-manager new listener on: http://%v", listenerAddr))
		err := s.hs.ListenAndServe()
		if err == http.ErrServerClosed {
			slog.Default().InfoContext(ctx, "http server returned")
		} else {
			slog.Default().ErrorContext(ctx, "http server exited with an error",
				slog.String("err", err.Error()),
			)
		}
		close(s.done)
	}()

	return nil
}

// Stop shuts the server down, letting in-flight requests finish.
func (s *Server) Stop(ctx context.Context) error {
	if s.hs == nil {
		return nil
	}
	return s.hs.Shutdown(ctx)
}
