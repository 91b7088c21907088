package httpapp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"implantOrderBot/internal/pkg/logger/sl"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config сервера метрик. Port "0" отключает сервер.
type Config struct {
	Port    string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	Timeout time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
}

func (c *Config) Enabled() bool {
	return c.Port != "" && c.Port != "0"
}

type App struct {
	log        *slog.Logger
	httpServer *http.Server
	port       string
}

func New(
	log *slog.Logger,
	config *Config,
	gatherer prometheus.Gatherer,
) *App {
	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           newRouter(log, gatherer),
		ReadHeaderTimeout: config.Timeout,
		WriteTimeout:      config.Timeout,
	}

	return &App{log: log, httpServer: srv, port: config.Port}
}

func newRouter(log *slog.Logger, gatherer prometheus.Gatherer) http.Handler {
	router := http.NewServeMux()

	router.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorLog: slog.NewLogLogger(log.Handler(), slog.LevelError),
	}))

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return router
}

func (a *App) MustRun() {
	if err := a.Run(); err != nil {
		panic(err)
	}
}

func (a *App) Run() error {
	const op = "httpapp.Run"

	a.log.With(slog.String("op", op)).
		Info("server started", slog.String("port", a.port))

	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.log.Error("failed to start http server", sl.Err(err))
		return err
	}

	return nil
}

func (a *App) Stop() {
	const op = "httpapp.Stop"

	a.log.With(slog.String("op", op)).
		Info("stopping HTTP server", slog.String("port", a.port))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("server closed with error", sl.Err(err))
		return
	}

	a.log.Info("gracefully stopped")
}
