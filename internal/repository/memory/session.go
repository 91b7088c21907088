package memory

import (
	"context"
	"sync"
	"time"

	"implantOrderBot/internal/domain/models"
)

// SessionRepository хранит сессии в памяти процесса, по одной на аккаунт
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[int64]models.Session
	now      func() time.Time
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[int64]models.Session),
		now:      time.Now,
	}
}

// GetSession возвращает копию сессии или nil, если пользователь еще не писал боту
func (r *SessionRepository) GetSession(_ context.Context, userID int64) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[userID]
	if !ok {
		return nil, nil
	}

	return &session, nil
}

// CreateSession создает сессию в главном меню
func (r *SessionRepository) CreateSession(_ context.Context, userID, chatID int64) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session := models.Session{
		UserID:    userID,
		ChatID:    chatID,
		State:     models.StateMainMenu,
		UpdatedAt: r.now(),
	}
	r.sessions[userID] = session

	return &session, nil
}

func (r *SessionRepository) SaveSession(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.UserID] = *session

	return nil
}

// DeleteSession забывает пользователя; следующее сообщение начнет новую сессию
func (r *SessionRepository) DeleteSession(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, userID)

	return nil
}
