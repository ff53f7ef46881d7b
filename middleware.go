package pulseboard

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/eringen/pulseboard/console"
)

const (
	sessionName     = "console_session"
	sessionIDKey    = "console_id"
	consoleStateKey = "console_state"
)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	// One server span per request, continuing any incoming trace context.
	e.Use(echo.WrapMiddleware(otelhttp.NewMiddleware(a.Config.ServiceName,
		otelhttp.WithTracerProvider(a.tracer),
		otelhttp.WithPropagators(a.propagator),
	)))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			a.Logger.Info("request", fields...)
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/public/")
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'; form-action 'self'",
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
	}))

	e.Use(session.Middleware(a.newSessionStore()))

	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		ContextKey:  middleware.DefaultCSRFConfig.ContextKey,
		TokenLookup: "header:X-CSRF-Token,form:_csrf",
		CookieName:  "_csrf",
		CookiePath:  "/",
		CookieSameSite: func() http.SameSite {
			return http.SameSiteLaxMode
		}(),
		CookieSecure: a.Config.CookieSecure,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/public/") || path == "/healthz"
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return c.String(http.StatusForbidden, "Forbidden")
		},
	}))

	e.Use(cacheControlMiddleware)
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if strings.HasPrefix(c.Request().URL.Path, "/public/") {
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		} else {
			c.Response().Header().Set("Cache-Control", "no-store")
		}
		return next(c)
	}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(a.Config.SessionIdleTTL.Seconds()),
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// attachSession resolves the browser's console state from its session
// cookie, creating both when missing or expired.
func (a *App) attachSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session.Get(sessionName, c)
		if sess == nil {
			return err
		}
		if err != nil {
			// A cookie signed with an old secret still yields a usable new session.
			a.Logger.Debug("session cookie rejected", zap.Error(err))
		}

		id, _ := sess.Values[sessionIDKey].(string)
		state := a.Sessions.Resolve(id)
		if state.ID != id {
			sess.Values[sessionIDKey] = state.ID
			if err := sess.Save(c.Request(), c.Response()); err != nil {
				return err
			}
		}

		c.Set(consoleStateKey, state)
		return next(c)
	}
}

// peekSession attaches the browser's console state when its cookie names a
// live session. Otherwise the request sees an empty state that is neither
// stored nor written back as a cookie.
func (a *App) peekSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		state := &console.Session{}
		if sess, _ := session.Get(sessionName, c); sess != nil {
			if id, _ := sess.Values[sessionIDKey].(string); id != "" {
				if s, ok := a.Sessions.Lookup(id); ok {
					state = s
				}
			}
		}
		c.Set(consoleStateKey, state)
		return next(c)
	}
}

// ConsoleSession returns the console state attached to the request, or nil
// outside the console routes.
func ConsoleSession(c echo.Context) *console.Session {
	s, _ := c.Get(consoleStateKey).(*console.Session)
	return s
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
