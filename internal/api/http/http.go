package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"

	"github.com/jekabolt/grbpwr-analytics/internal/apisrv/analytics"
	"github.com/jekabolt/grbpwr-analytics/internal/auth/jwt"
	"github.com/jekabolt/grbpwr-analytics/log"
)

// Config is the configuration for the http server
type Config struct {
	Port              string        `mapstructure:"port"`
	Address           string        `mapstructure:"address"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
	// JWTSecret enables HS256 bearer token verification of the analytics
	// routes when set.
	JWTSecret string `mapstructure:"jwt_secret"`
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
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

// Handler builds the router serving the analytics API.
func (s *Server) Handler(as *analytics.Server, db Pinger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(log.RequestLogger(slog.Default()))
	r.Use(recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			return isOriginAllowed(origin, s.c.AllowedOrigins)
		},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	}))
	if s.c.RateLimitRequests > 0 && s.c.RateLimitWindow > 0 {
		r.Use(httprate.Limit(
			s.c.RateLimitRequests,
			s.c.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				render.Render(w, r, analytics.ErrTooManyRequests())
			}),
		))
	}
	if s.c.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.c.RequestTimeout))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			slog.Default().ErrorContext(r.Context(), "health check failed", slog.String("err", err.Error()))
			render.Render(w, r, analytics.ErrServiceUnavailable())
			return
		}
		render.Render(w, r, analytics.OK(map[string]string{"status": "ok"}))
	})

	r.Group(func(r chi.Router) {
		if s.c.JWTSecret != "" {
			r.Use(jwt.Guard(jwt.New(s.c.JWTSecret), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				render.Render(w, r, analytics.ErrUnauthorized())
			})))
		}
		as.Routes(r)
	})

	return r
}

// Start starts the server
func (s *Server) Start(ctx context.Context, as *analytics.Server, db Pinger) error {
	listenerAddr := fmt.Sprintf("%s:%s", s.c.Address, s.c.Port)
	s.hs = &http.Server{
		Addr:              listenerAddr,
		Handler:           s.Handler(as, db),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Default().InfoContext(ctx, fmt.Sprintf("grbpwr-analytics new listener on: http://%v", listenerAddr))
		err := s.hs.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			slog.Default().InfoContext(ctx, "http server returned")
		} else {
			slog.Default().ErrorContext(ctx, "http server exited with an error", slog.String("err", err.Error()))
		}
		close(s.done)
	}()

	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	if s.hs == nil {
		return nil
	}
	return s.hs.Shutdown(ctx)
}

// recoverer turns a handler panic into the generic 500 envelope.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			slog.Default().ErrorContext(r.Context(), "handler panicked",
				slog.Any("panic", rvr),
				slog.String("stack", string(debug.Stack())),
			)
			render.Render(w, r, analytics.ErrInternalServerError())
		}()
		next.ServeHTTP(w, r)
	})
}

func isOriginAllowed(origin string, allowedOrigins []string) bool {
	// Always allow localhost origins
	if strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "https://localhost:") {
		return true
	}

	for _, allowedOrigin := range allowedOrigins {
		if allowedOrigin == "*" || origin == allowedOrigin {
			return true
		}
	}

	return false
}
