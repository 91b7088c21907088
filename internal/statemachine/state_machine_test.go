package statemachine

import (
	"testing"

	"implantOrderBot/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMachine_FormAdvancesOneStep(t *testing.T) {
	sm := NewStateMachine()

	expected := []models.UserStateEnum{
		models.StateDoctor,
		models.StatePhone,
		models.StateClinic,
		models.StateDate,
		models.StatePatient,
		models.StateImplantSystem,
		models.StateZone,
		models.StateMainMenu,
	}

	state, err := sm.HandleEvent(models.StateMainMenu, EventNewOrder)
	require.NoError(t, err)
	require.Equal(t, expected[0], state)

	for i := 1; i < len(expected); i++ {
		state, err = sm.HandleEvent(state, EventValidInput)
		require.NoError(t, err)
		assert.Equal(t, expected[i], state)
	}
}

func TestStateMachine_InvalidInputSelfLoops(t *testing.T) {
	sm := NewStateMachine()

	for _, step := range Steps() {
		state, err := sm.HandleEvent(step.State, EventInvalidInput)
		require.NoError(t, err)
		assert.Equal(t, step.State, state)
		assert.True(t, sm.CanTransition(step.State, step.State))
	}
}

func TestStateMachine_CancelFromAnyState(t *testing.T) {
	sm := NewStateMachine()

	states := []models.UserStateEnum{
		models.StateMainMenu,
		models.StateChatMode,
		models.StateFilesMode,
	}
	for _, step := range Steps() {
		states = append(states, step.State)
	}

	for _, from := range states {
		for _, event := range []Event{EventCancelCommand, EventStartCommand, EventMenuCommand} {
			state, err := sm.HandleEvent(from, event)
			require.NoError(t, err)
			assert.Equal(t, models.StateMainMenu, state, "from %s on %s", from, event)
			assert.True(t, sm.CanTransition(from, models.StateMainMenu))
		}
	}
}

func TestStateMachine_AuxiliaryModesStayOnText(t *testing.T) {
	sm := NewStateMachine()

	state, err := sm.HandleEvent(models.StateMainMenu, EventChatMode)
	require.NoError(t, err)
	require.Equal(t, models.StateChatMode, state)

	state, err = sm.HandleEvent(state, EventTextMessage)
	require.NoError(t, err)
	assert.Equal(t, models.StateChatMode, state)

	state, err = sm.HandleEvent(models.StateMainMenu, EventFilesMode)
	require.NoError(t, err)
	require.Equal(t, models.StateFilesMode, state)

	state, err = sm.HandleEvent(state, EventTextMessage)
	require.NoError(t, err)
	assert.Equal(t, models.StateFilesMode, state)
}

func TestStateMachine_RejectsUnexpectedEvents(t *testing.T) {
	sm := NewStateMachine()

	_, err := sm.HandleEvent(models.StateDoctor, EventNewOrder)
	assert.Error(t, err)

	_, err = sm.HandleEvent(models.StateChatMode, EventNewOrder)
	assert.Error(t, err)

	_, err = sm.HandleEvent(models.StateMainMenu, EventValidInput)
	assert.Error(t, err)

	_, err = sm.HandleEvent(models.UserStateEnum("bogus"), EventTextMessage)
	assert.Error(t, err)

	assert.False(t, sm.CanTransition(models.StateDoctor, models.StateClinic))
	assert.False(t, sm.CanTransition(models.StateChatMode, models.StateFilesMode))
}
