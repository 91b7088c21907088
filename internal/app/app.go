package app

import (
	"context"
	"log/slog"
	"time"

	httpapp "implantOrderBot/internal/app/http"
	"implantOrderBot/internal/config"
	"implantOrderBot/internal/metrics"
	"implantOrderBot/internal/pkg/logger/sl"
	"implantOrderBot/internal/repository/memory"
	"implantOrderBot/internal/repository/s3minio"
	"implantOrderBot/internal/repository/sheets"
	"implantOrderBot/internal/service/order"
	"implantOrderBot/internal/service/relay"
	"implantOrderBot/internal/statemachine"
	"implantOrderBot/internal/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type App struct {
	Bot *telegram.Handler
	// HTTPServer is nil when the metrics server is disabled.
	HTTPServer *httpapp.App
}

// New wires every component. Failing to reach the spreadsheet is fatal,
// price lists are optional.
func New(ctx context.Context, log *slog.Logger, cfg *config.Config) *App {
	location, err := cfg.Location()
	if err != nil {
		log.Warn("falling back to local timezone", sl.Err(err))
		location = time.Local
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		panic(err)
	}
	botAPI.Debug = cfg.Telegram.Debug

	log.Info("authorized on telegram", slog.String("username", botAPI.Self.UserName))

	sheetsService, err := sheets.NewService(ctx, log, cfg.Sheets)
	if err != nil {
		panic(err)
	}

	sheetRepo, err := sheets.New(ctx, log, sheets.NewGoogleClient(sheetsService), cfg.Sheets)
	if err != nil {
		panic(err)
	}

	var prices telegram.PriceLists
	if cfg.PriceLists.Enabled() {
		s3Conn, err := s3minio.NewConn(ctx, &cfg.PriceLists)
		if err != nil {
			log.Warn("price lists are unavailable", sl.Err(err))
		} else {
			prices = s3minio.New(log, s3Conn, &cfg.PriceLists)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	botMetrics := metrics.NewBotMetrics(registry)

	sessions := memory.NewSessionRepository()
	stateManager := statemachine.NewManager(log, sessions)

	notifier := telegram.NewNotifier(botAPI, cfg.Telegram.OperatorChatID)
	orderService := order.New(log, sheetRepo, notifier, botMetrics, location)
	relayService := relay.New(log, stateManager, cfg.Telegram.OperatorChatID)

	handler := telegram.NewHandler(
		log,
		botAPI,
		stateManager,
		orderService,
		relayService,
		prices,
		botMetrics,
		cfg.Telegram.OperatorHandle,
	)

	application := &App{Bot: handler}

	if cfg.HTTP.Enabled() {
		application.HTTPServer = httpapp.New(log, &cfg.HTTP, registry)
	}

	return application
}
