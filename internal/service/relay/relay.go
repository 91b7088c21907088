package relay

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	AcceptedText = "✅ Ваше замовлення прийняте в роботу. Дякуємо!"
	RejectedText = "❌ На жаль, ваше замовлення відхилено. Менеджер зв'яжеться з вами для уточнення."
)

// SessionStore is the part of the session repository the relay needs.
type SessionStore interface {
	PendingReply(ctx context.Context, operatorID int64) (int64, error)
	SetPendingReply(ctx context.Context, operatorID, target int64) error
}

// Service keeps the operator's "reply to" marker between a button tap and the next text.
type Service struct {
	log        *slog.Logger
	store      SessionStore
	operatorID int64
}

func New(log *slog.Logger, store SessionStore, operatorID int64) *Service {
	return &Service{
		log:        log,
		store:      store,
		operatorID: operatorID,
	}
}

func (s *Service) OperatorID() int64 {
	return s.operatorID
}

// IsOperator compares the account id with the configured operator.
func (s *Service) IsOperator(accountID int64) bool {
	return s.operatorID != 0 && accountID == s.operatorID
}

// BeginReply remembers the target of the operator's next text message.
func (s *Service) BeginReply(ctx context.Context, operatorID, target int64) error {
	const op = "relay.Service.BeginReply"

	if !s.IsOperator(operatorID) {
		return fmt.Errorf("%s: account %d is not the operator", op, operatorID)
	}

	if err := s.store.SetPendingReply(ctx, operatorID, target); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("operator reply started", slog.Int64("target", target))

	return nil
}

// TakePending returns and clears the pending target. ok is false when there is none.
func (s *Service) TakePending(ctx context.Context, operatorID int64) (target int64, ok bool, err error) {
	const op = "relay.Service.TakePending"

	if !s.IsOperator(operatorID) {
		return 0, false, nil
	}

	target, err = s.store.PendingReply(ctx, operatorID)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	if target == 0 {
		return 0, false, nil
	}

	if err := s.store.SetPendingReply(ctx, operatorID, 0); err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}

	return target, true, nil
}
