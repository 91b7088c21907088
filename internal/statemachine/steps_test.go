package statemachine

import (
	"errors"
	"testing"

	"implantOrderBot/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSteps_OrderMatchesFields(t *testing.T) {
	got := Steps()
	require.Len(t, got, len(models.ContentFields))

	for i, step := range got {
		assert.Equal(t, models.ContentFields[i], step.Field)
		assert.NotEmpty(t, step.Prompt)
		assert.NotEmpty(t, step.Invalid)
	}

	assert.Equal(t, models.StateMainMenu, NextState(models.StateZone))
	assert.Equal(t, models.StatePhone, NextState(models.StateDoctor))
}

func TestValidators(t *testing.T) {
	tests := []struct {
		state models.UserStateEnum
		value string
		ok    bool
	}{
		{models.StateDoctor, "Dr. Smith", true},
		{models.StateDoctor, "Ш", false},
		{models.StateDoctor, "Шо", true},
		{models.StatePhone, "0501234567", true},
		{models.StatePhone, "+380501234567", true},
		{models.StatePhone, "+38 (050) 123-45-67", true},
		{models.StatePhone, "12345", false},
		{models.StatePhone, "phone", false},
		{models.StateClinic, "City Clinic", true},
		{models.StateClinic, "C", false},
		{models.StateDate, "24.12.2024", true},
		{models.StateDate, "31.02.2024", false},
		{models.StateDate, "2024-12-24", false},
		{models.StateDate, "1.1.2024", false},
		{models.StatePatient, "John Doe Patient", true},
		{models.StatePatient, "Jo", false},
		{models.StateImplantSystem, "Straumann", true},
		{models.StateImplantSystem, "S", false},
		{models.StateZone, "1.1 - 4.2x10", true},
		{models.StateZone, "2.4", true},
		{models.StateZone, "9.1", false},
		{models.StateZone, "upper left", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state)+"/"+tt.value, func(t *testing.T) {
			step, ok := StepFor(tt.state)
			require.True(t, ok)

			err := step.Validate(step.Field, tt.value)
			if tt.ok {
				assert.NoError(t, err)
				return
			}

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, step.Field, vErr.Field)
		})
	}
}
