package statemachine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"implantOrderBot/internal/domain/models"
)

// Repository интерфейс для хранения сессий пользователей
type Repository interface {
	GetSession(ctx context.Context, userID int64) (*models.Session, error)
	CreateSession(ctx context.Context, userID, chatID int64) (*models.Session, error)
	SaveSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, userID int64) error
}

// InputResult - итог обработки одного ответа в анкете
type InputResult struct {
	// Step - шаг, который принял ответ
	Step Step
	// Err заполнен, если ответ не прошел проверку; состояние при этом не меняется
	Err error
	// Next - следующий вопрос, если анкета не завершена
	Next *Step
	// Completed и Order заполняются после последнего шага
	Completed bool
	Order     models.Order
}

// Manager управляет переходами состояний и сохраняет сессии
type Manager struct {
	log  *slog.Logger
	sm   *StateMachine
	repo Repository
	now  func() time.Time
}

// NewManager создает новый менеджер состояний
func NewManager(log *slog.Logger, repo Repository) *Manager {
	return &Manager{
		log:  log,
		sm:   NewStateMachine(),
		repo: repo,
		now:  time.Now,
	}
}

// Session возвращает сессию пользователя, создавая ее при первом обращении
func (m *Manager) Session(ctx context.Context, userID, chatID int64) (*models.Session, error) {
	const op = "statemachine.Manager.Session"

	session, err := m.repo.GetSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if session == nil {
		session, err = m.repo.CreateSession(ctx, userID, chatID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if chatID != 0 && session.ChatID != chatID {
		session.ChatID = chatID
	}

	return session, nil
}

// TransitionTo выполняет переход в новое состояние с проверкой и сохранением
func (m *Manager) TransitionTo(ctx context.Context, session *models.Session, newState models.UserStateEnum) error {
	currentState := session.State

	if !m.sm.CanTransition(currentState, newState) {
		return fmt.Errorf("transition from %s to %s is not allowed", currentState, newState)
	}

	if currentState != newState {
		m.OnStateEnter(session, newState)
	}

	session.State = newState
	session.UpdatedAt = m.now()

	if err := m.persist(ctx, session); err != nil {
		return err
	}

	if currentState != newState {
		m.log.Debug("state transition",
			slog.Int64("user_id", session.UserID),
			slog.String("from", string(currentState)),
			slog.String("to", string(newState)),
		)
	}

	return nil
}

// HandleEvent обрабатывает событие и выполняет переход состояния
func (m *Manager) HandleEvent(ctx context.Context, session *models.Session, event Event) (models.UserStateEnum, error) {
	newState, err := m.sm.HandleEvent(session.State, event)
	if err != nil {
		return session.State, err
	}

	// Команды сброса очищают сессию, даже если пользователь уже в меню
	switch event {
	case EventStartCommand, EventMenuCommand, EventCancelCommand:
		m.OnStateEnter(session, newState)
	}

	if err := m.TransitionTo(ctx, session, newState); err != nil {
		return session.State, err
	}

	return newState, nil
}

// OnStateEnter вызывается при входе в новое состояние
func (m *Manager) OnStateEnter(session *models.Session, state models.UserStateEnum) {
	switch state {
	case models.StateMainMenu:
		// Отмена или завершение анкеты: собранные ответы больше не нужны
		session.Draft = models.Order{}
		session.PendingReplyTo = 0

	case FirstStep().State:
		// Новая анкета всегда начинается с пустой записи
		session.Draft = models.Order{}
	}
}

// HandleInput принимает ответ на текущий вопрос анкеты
func (m *Manager) HandleInput(ctx context.Context, session *models.Session, text string) (InputResult, error) {
	step, ok := StepFor(session.State)
	if !ok {
		return InputResult{}, fmt.Errorf("state %s is not a form step", session.State)
	}

	value := strings.TrimSpace(text)
	result := InputResult{Step: step}

	if err := step.Validate(step.Field, value); err != nil {
		result.Err = err

		if _, err := m.HandleEvent(ctx, session, EventInvalidInput); err != nil {
			return result, err
		}

		return result, nil
	}

	session.Draft.Set(step.Field, value)

	// Черновик нужен целиком до того, как OnStateEnter очистит его в меню
	draft := session.Draft

	newState, err := m.HandleEvent(ctx, session, EventValidInput)
	if err != nil {
		return result, err
	}

	if newState == models.StateMainMenu {
		if !draft.Complete() {
			return result, errors.New("form finished with missing answers")
		}
		result.Completed = true
		result.Order = draft
		return result, nil
	}

	next, _ := StepFor(newState)
	result.Next = &next

	return result, nil
}

// IsCommandAllowed проверяет, разрешена ли команда в текущем состоянии
func (m *Manager) IsCommandAllowed(session *models.Session, command string) (bool, string) {
	switch command {
	case "start", "menu":
		return true, ""

	case "cancel":
		// В меню отменять можно только начатый ответ оператора
		if session.State == models.StateMainMenu && session.PendingReplyTo == 0 {
			return false, "Нічого скасовувати."
		}
		return true, ""

	default:
		return true, ""
	}
}

// PendingReply возвращает аккаунт, которому оператор сейчас отвечает (0 - никому)
func (m *Manager) PendingReply(ctx context.Context, userID int64) (int64, error) {
	session, err := m.repo.GetSession(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return 0, nil
	}

	return session.PendingReplyTo, nil
}

// SetPendingReply сохраняет или очищает (target == 0) адресата ответа оператора
func (m *Manager) SetPendingReply(ctx context.Context, userID, target int64) error {
	session, err := m.Session(ctx, userID, 0)
	if err != nil {
		return err
	}

	session.PendingReplyTo = target
	session.UpdatedAt = m.now()

	return m.persist(ctx, session)
}

// persist сохраняет сессию. В главном меню без начатого ответа оператора
// хранить нечего: сессия удаляется и при следующем сообщении создается заново.
func (m *Manager) persist(ctx context.Context, session *models.Session) error {
	if session.State == models.StateMainMenu && session.PendingReplyTo == 0 {
		if err := m.repo.DeleteSession(ctx, session.UserID); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		return nil
	}

	if err := m.repo.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}
