package statemachine

import (
	"fmt"
	"sync"

	"implantOrderBot/internal/domain/models"
)

// Event представляет событие, которое может вызвать переход состояния
type Event string

const (
	EventStartCommand  Event = "start_command"
	EventMenuCommand   Event = "menu_command"
	EventCancelCommand Event = "cancel_command"
	EventNewOrder      Event = "new_order"
	EventChatMode      Event = "chat_mode"
	EventFilesMode     Event = "files_mode"
	EventValidInput    Event = "valid_input"
	EventInvalidInput  Event = "invalid_input"
	EventTextMessage   Event = "text_message"
)

// Transition описывает переход из одного состояния в другое
type Transition struct {
	From models.UserStateEnum
	To   models.UserStateEnum
}

// StateMachine хранит таблицу разрешенных переходов
type StateMachine struct {
	transitions map[Transition]bool
	mu          sync.RWMutex
}

// NewStateMachine создает state machine: анкета по шагам плюс вспомогательные режимы
func NewStateMachine() *StateMachine {
	sm := &StateMachine{
		transitions: make(map[Transition]bool),
	}

	allowedTransitions := []Transition{
		// Из главного меню
		{models.StateMainMenu, models.StateMainMenu},
		{models.StateMainMenu, models.StateDoctor},
		{models.StateMainMenu, models.StateChatMode},
		{models.StateMainMenu, models.StateFilesMode},

		// Вспомогательные режимы остаются на месте до возврата в меню
		{models.StateChatMode, models.StateChatMode},
		{models.StateChatMode, models.StateMainMenu},
		{models.StateFilesMode, models.StateFilesMode},
		{models.StateFilesMode, models.StateMainMenu},
	}

	// Шаги анкеты: вперед на один шаг, повтор на месте, отмена в меню
	for _, step := range steps {
		allowedTransitions = append(allowedTransitions,
			Transition{step.State, NextState(step.State)},
			Transition{step.State, step.State},
			Transition{step.State, models.StateMainMenu},
		)
	}

	for _, t := range allowedTransitions {
		sm.transitions[t] = true
	}

	return sm
}

// CanTransition проверяет, возможен ли переход из текущего состояния в новое
func (sm *StateMachine) CanTransition(from, to models.UserStateEnum) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.transitions[Transition{from, to}]
}

// HandleEvent определяет, в какое состояние нужно перейти на основе события и текущего состояния
func (sm *StateMachine) HandleEvent(currentState models.UserStateEnum, event Event) (models.UserStateEnum, error) {
	// /start, /menu и /cancel возвращают в меню из любого состояния
	switch event {
	case EventStartCommand, EventMenuCommand, EventCancelCommand:
		return models.StateMainMenu, nil
	}

	switch {
	case currentState == models.StateMainMenu:
		switch event {
		case EventNewOrder:
			return FirstStep().State, nil
		case EventChatMode:
			return models.StateChatMode, nil
		case EventFilesMode:
			return models.StateFilesMode, nil
		case EventTextMessage:
			return models.StateMainMenu, nil
		default:
			return currentState, fmt.Errorf("unexpected event %s in state %s", event, currentState)
		}

	case currentState.IsFormState():
		switch event {
		case EventValidInput:
			return NextState(currentState), nil
		case EventInvalidInput:
			return currentState, nil
		default:
			return currentState, fmt.Errorf("unexpected event %s in state %s", event, currentState)
		}

	case currentState == models.StateChatMode, currentState == models.StateFilesMode:
		switch event {
		case EventTextMessage:
			return currentState, nil
		default:
			return currentState, fmt.Errorf("unexpected event %s in state %s", event, currentState)
		}

	default:
		return currentState, fmt.Errorf("unknown state: %s", currentState)
	}
}
