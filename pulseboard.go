// Package pulseboard is a server-rendered console for an external analytics
// API, built with Go, Echo, and templ. Operators query aggregate stats for a
// site and submit test events from two forms.
//
// Users may provide their own templ components via the ViewFuncs struct;
// pulseboard handles the handler logic, middleware, and the API calls.
package pulseboard

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/eringen/pulseboard/analytics"
	"github.com/eringen/pulseboard/console"
	"github.com/eringen/pulseboard/views"
)

// ViewFuncs holds the templ components the app calls when rendering pages.
// Nil fields fall back to the views package.
type ViewFuncs struct {
	Page        func(data views.PageData) templ.Component
	Banner      func(b *views.BannerView) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// DefaultViews returns the built-in components.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Page:        views.Page,
		Banner:      views.Banner,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

func (v *ViewFuncs) fill() {
	d := DefaultViews()
	if v.Page == nil {
		v.Page = d.Page
	}
	if v.Banner == nil {
		v.Banner = d.Banner
	}
	if v.NotFound == nil {
		v.NotFound = d.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = d.ServerError
	}
}

// App is the central pulseboard application. It wires together the API
// client, the console state, handlers, middleware, and templates.
type App struct {
	Config   Config
	Echo     *echo.Echo
	Logger   *zap.Logger
	Console  *console.Console
	Sessions *console.Sessions
	Views    ViewFuncs

	api           console.API
	submitLimiter *SubmitLimiter
	tracer        *sdktrace.TracerProvider
	propagator    propagation.TextMapPropagator
	customRoutes  []func(*App)
	stops         []func()
	initialized   bool
}

// New creates a new pulseboard App with the given configuration and view
// functions.
func New(cfg Config, v ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()
	v.fill()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  v,
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init validates the config and sets up the API client, console state,
// middleware and routes. Start calls it; tests may call it directly and
// drive a.Echo with httptest.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if err := a.Config.Validate(); err != nil {
		return err
	}

	if a.Logger == nil {
		log, err := NewLogger(a.Config.LogLevel)
		if err != nil {
			return fmt.Errorf("pulseboard: init logger: %w", err)
		}
		a.Logger = log
	}

	tp, err := NewTracerProvider(context.Background(), a.Config)
	if err != nil {
		return err
	}
	a.tracer = tp
	a.propagator = NewPropagator()

	if a.api == nil {
		a.api = analytics.NewClient(a.Config.APIBaseURL,
			analytics.WithTimeout(a.Config.APITimeout),
			analytics.WithLogger(a.Logger),
			analytics.WithTransport(newAPITransport()),
			analytics.WithTracing(a.tracer, a.propagator),
		)
	}
	api := a.api
	if a.Config.StatsCacheTTL > 0 {
		api = NewStatsCache(api, a.Config.StatsCacheTTL)
	}

	a.Console = console.New(api, a.Logger, console.WithBannerTTL(a.Config.BannerTTL))
	a.Sessions = console.NewSessions(a.Config.SessionIdleTTL)
	a.submitLimiter = NewSubmitLimiter(a.Config.EventRateLimit, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.initialized = true
	return nil
}

// Start initializes the app, starts the background sweepers and serves
// until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}

	a.stops = append(a.stops,
		a.Sessions.StartSweeper(a.Config.SessionIdleTTL/2),
		a.submitLimiter.StartCleanup(),
	)

	a.Logger.Info("pulseboard listening",
		zap.String("addr", a.Config.Addr),
		zap.String("api", a.Config.APIBaseURL),
	)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

// Close stops background work. Call this when the app is shutting down.
func (a *App) Close() error {
	for _, stop := range a.stops {
		stop()
	}
	a.stops = nil
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracer.Shutdown(ctx); err != nil && a.Logger != nil {
			a.Logger.Warn("tracer shutdown", zap.Error(err))
		}
		a.tracer = nil
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded console assets.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/console.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/console.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.GET("/healthz", handleHealth)

	// Read-only pages never allocate console state; a browser gets its
	// session on its first submission.
	e.GET("/", a.handleIndex, a.peekSession)
	e.GET("/console/banner", a.handleBanner, a.peekSession)
	e.GET("/console/stats", a.handleStats, a.attachSession)
	e.POST("/console/event", a.handleEvent, a.attachSession)
}

// newAPITransport pools connections to the analytics API, which every
// console request talks to.
func newAPITransport() *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxConnsPerHost:     10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
}
