package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jekabolt/grbpwr-analytics/config"
	"github.com/jekabolt/grbpwr-analytics/internal/analytics/report"
	httpapi "github.com/jekabolt/grbpwr-analytics/internal/api/http"
	"github.com/jekabolt/grbpwr-analytics/internal/apisrv/analytics"
	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/jekabolt/grbpwr-analytics/internal/store"
)

// App is the main application
type App struct {
	hs   *httpapi.Server
	db   dependency.Repository
	c    *config.Config
	done chan struct{}
	once sync.Once
}

// New returns a new instance of App. A nil repository means the app connects
// to the configured MongoDB on Start.
func New(c *config.Config, rep dependency.Repository) *App {
	return &App{
		c:    c,
		done: make(chan struct{}),
		db:   rep,
	}
}

// Start starts the app
func (a *App) Start(ctx context.Context) error {
	slog.Default().InfoContext(ctx, "starting analytics service")

	if a.db == nil {
		db, err := store.New(ctx, a.c.Mongo)
		if err != nil {
			slog.Default().ErrorContext(ctx, "couldn't connect to mongo", slog.String("err", err.Error()))
			return err
		}
		a.db = db
	}

	reports, err := report.New(a.db, &a.c.Analytics)
	if err != nil {
		slog.Default().ErrorContext(ctx, "failed to create report service", slog.String("err", err.Error()))
		return err
	}

	// start API server
	a.hs = httpapi.New(&a.c.HTTP)
	if err = a.hs.Start(ctx, analytics.New(reports), a.db); err != nil {
		slog.Default().ErrorContext(ctx, "cannot start http server", slog.String("err", err.Error()))
		return err
	}

	go func() {
		<-a.hs.Done()
		a.shutdown()
	}()

	return nil
}

// Stop stops the application and waits for all services to exit
func (a *App) Stop(ctx context.Context) {
	if a.hs != nil {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := a.hs.Stop(ctx); err != nil {
			slog.Default().ErrorContext(ctx, "can't stop http server", slog.String("err", err.Error()))
		}
		<-a.hs.Done()
	}
	a.shutdown()
}

func (a *App) shutdown() {
	a.once.Do(func() {
		if a.db != nil {
			a.db.Close()
		}
		close(a.done)
	})
}

// Done returns a channel that is closed after the application has exited
func (a *App) Done() chan struct{} {
	return a.done
}
