package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pulseboard"
	"github.com/eringen/pulseboard/analytics"
	"github.com/eringen/pulseboard/console"
	"github.com/eringen/pulseboard/views"
)

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv(pulseboard.EnvPrefix+"CONFIG"), "path to a YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// The configured level is not known until the config is loaded.
	boot, err := pulseboard.NewLogger("info")
	if err != nil {
		return err
	}
	defer func() { _ = boot.Sync() }()

	cfg, err := pulseboard.LoadConfig(*configPath, boot)
	if err != nil {
		return err
	}

	app := pulseboard.New(cfg, pulseboard.DefaultViews(),
		pulseboard.WithCustomRoutes(versionRoute(version)),
	)
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- app.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

// versionRoute serves the build version at GET /version.
func versionRoute(v string) func(*pulseboard.App) {
	return func(a *pulseboard.App) {
		a.Echo.GET("/version", func(c echo.Context) error {
			return c.String(http.StatusOK, "pulseboard "+v)
		})
	}
}

type clientFlags struct {
	api     *string
	timeout *time.Duration
}

func addClientFlags(fs *flag.FlagSet) clientFlags {
	return clientFlags{
		api:     fs.String("api", pulseboard.EnvOr(pulseboard.EnvPrefix+"API_BASE_URL", "http://localhost:5000"), "analytics API base URL"),
		timeout: fs.Duration("timeout", 0, "request timeout (0: none)"),
	}
}

func (f clientFlags) client() *analytics.Client {
	return analytics.NewClient(*f.api, analytics.WithTimeout(*f.timeout))
}

func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	cf := addClientFlags(fs)
	site := fs.String("site", "", "site id")
	date := fs.String("date", "", "day to query (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return printStats(context.Background(), os.Stdout, cf.client(), analytics.NewStatsQuery(*site, *date))
}

func printStats(ctx context.Context, w io.Writer, api console.API, q analytics.StatsQuery) error {
	res, err := api.Stats(ctx, q)
	if err != nil {
		return errors.New(analytics.UserMessage(err, console.StatsFailedMessage))
	}
	return views.WriteStatsText(w, views.NewStatsView(*res))
}

func runEvent(args []string) error {
	fs := flag.NewFlagSet("event", flag.ContinueOnError)
	cf := addClientFlags(fs)
	site := fs.String("site", "", "site id")
	eventType := fs.String("type", "", "event type")
	path := fs.String("path", "", "page path (optional)")
	user := fs.String("user", "", "user id (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ev := analytics.NewEventSubmission(*site, *eventType, *path, *user)
	return sendEvent(context.Background(), os.Stdout, cf.client(), ev)
}

func sendEvent(ctx context.Context, w io.Writer, api console.API, ev analytics.EventSubmission) error {
	if err := api.SendEvent(ctx, ev); err != nil {
		return errors.New(analytics.UserMessage(err, console.EventFailedMessage))
	}
	_, err := fmt.Fprintln(w, console.EventSentMessage)
	return err
}
