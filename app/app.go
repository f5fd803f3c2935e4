// Package app assembles the service: store, mailer and the HTTP API.
package app

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/softkom/site-manager/config"
	httpapi "github.com/softkom/site-manager/internal/api/http"
	"github.com/softkom/site-manager/internal/apisrv/admin"
	"github.com/softkom/site-manager/internal/apisrv/auth"
	"github.com/softkom/site-manager/internal/apisrv/frontend"
	"github.com/softkom/site-manager/internal/dependency"
	"github.com/softkom/site-manager/internal/mail"
	"github.com/softkom/site-manager/internal/store"
)

// App is the dependency holder for the whole service.
type App struct {
	c      *config.Config
	hs     *httpapi.Server
	db     dependency.Repository
	mailer dependency.Mailer
}

func New(c *config.Config) *App {
	return &App{
		c: c,
	}
}

// Start connects the store, launches the mail worker and serves the API.
func (a *App) Start(ctx context.Context) error {
	var err error

	a.db, err = store.New(ctx, a.c.DB)
	if err != nil {
		return fmt.Errorf("couldn't connect to mysql: %w", err)
	}
	slog.Default().InfoContext(ctx, "connected to mysql")

	a.mailer, err = mail.New(&a.c.Mailer, a.db.Mail())
	if err != nil {
		return fmt.Errorf("couldn't create mailer: %w", err)
	}
	if err := a.mailer.Start(ctx); err != nil {
		return fmt.Errorf("couldn't start mail worker: %w", err)
	}

	authSrv, err := auth.New(&a.c.Auth, a.db.Admin())
	if err != nil {
		return fmt.Errorf("couldn't create auth server: %w", err)
	}
	adminSrv := admin.New(a.db, a.mailer)
	frontendSrv := frontend.New(a.db, a.mailer)

	a.hs = httpapi.New(&a.c.HTTP)
	if err := a.hs.Start(ctx, a.db, adminSrv, frontendSrv, authSrv); err != nil {
		return fmt.Errorf("couldn't start http server: %w", err)
	}

	return nil
}

// Done returns a channel that is closed when the http server exits.
func (a *App) Done() <-chan struct{} {
	if a.hs == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return a.hs.Done()
}

// Stop shuts everything down in reverse start order.
func (a *App) Stop(ctx context.Context) {
	if a.hs != nil {
		if err := a.hs.Stop(ctx); err != nil {
			slog.Default().ErrorContext(ctx, "http server shutdown failed",
				slog.String("err", err.Error()),
			)
		}
	}
	if a.mailer != nil {
		if err := a.mailer.Stop(); err != nil {
			slog.Default().ErrorContext(ctx, "mail worker stop failed",
				slog.String("err", err.Error()),
			)
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}
