package order

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"implantOrderBot/internal/domain/models"
	"implantOrderBot/internal/metrics"
	"implantOrderBot/internal/pkg/logger/sl"

	"github.com/google/uuid"
)

// Saver persists a finished order (the spreadsheet).
type Saver interface {
	SaveOrder(ctx context.Context, order models.Order) error
}

// Notifier delivers a finished order to the operator.
type Notifier interface {
	NotifyOrder(ctx context.Context, order models.Order) error
}

// Result reports the outcome of each sink separately.
type Result struct {
	Order     models.Order
	SaveErr   error
	NotifyErr error
}

// Degraded is true when at least one sink failed.
func (r Result) Degraded() bool {
	return r.SaveErr != nil || r.NotifyErr != nil
}

type Service struct {
	log      *slog.Logger
	saver    Saver
	notifier Notifier
	metrics  *metrics.BotMetrics
	location *time.Location
	now      func() time.Time
}

func New(
	log *slog.Logger,
	saver Saver,
	notifier Notifier,
	m *metrics.BotMetrics,
	location *time.Location,
) *Service {
	if location == nil {
		location = time.Local
	}

	return &Service{
		log:      log,
		saver:    saver,
		notifier: notifier,
		metrics:  m,
		location: location,
		now:      time.Now,
	}
}

// Finalize stamps a completed draft with id, status, creation time and author.
func (s *Service) Finalize(draft models.Order, userID int64, username string) models.Order {
	order := draft
	order.ID = uuid.New()
	order.Status = models.StatusNew
	order.UserID = userID
	order.Username = username
	order.CreatedAt = s.now().In(s.location)

	return order
}

// Submit hands the order to the spreadsheet and then to the operator.
// A failing spreadsheet never prevents the notification.
func (s *Service) Submit(ctx context.Context, order models.Order) Result {
	const op = "order.Service.Submit"

	log := s.log.With(
		slog.String("op", op),
		slog.String("order_id", order.ID.String()),
		slog.Int64("user_id", order.UserID),
	)

	s.metrics.ObserveOrderCompleted()

	result := Result{Order: order}

	result.SaveErr = s.deliver(ctx, metrics.SinkSheet, func(ctx context.Context) error {
		return s.saver.SaveOrder(ctx, order)
	})
	if result.SaveErr != nil {
		log.Error("failed to save order to spreadsheet", sl.Err(result.SaveErr))
	}

	result.NotifyErr = s.deliver(ctx, metrics.SinkOperator, func(ctx context.Context) error {
		return s.notifier.NotifyOrder(ctx, order)
	})
	if result.NotifyErr != nil {
		log.Error("failed to notify operator", sl.Err(result.NotifyErr))
	}

	if !result.Degraded() {
		log.Info("order submitted")
	}

	return result
}

func (s *Service) deliver(ctx context.Context, sink string, fn func(ctx context.Context) error) (err error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s sink panicked: %v", sink, r)
		}
		s.metrics.ObserveSink(sink, err, time.Since(start).Seconds())
	}()

	return fn(ctx)
}
