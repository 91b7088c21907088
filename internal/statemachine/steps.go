package statemachine

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"implantOrderBot/internal/domain/models"
)

// ValidationError описывает отклоненный ответ на шаге анкеты
type ValidationError struct {
	Field  models.Field
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validator проверяет ответ пользователя. Ответ приходит уже без пробелов по краям.
type Validator func(field models.Field, value string) error

// Step - один вопрос анкеты
type Step struct {
	State    models.UserStateEnum
	Field    models.Field
	Prompt   string
	Invalid  string
	Validate Validator
}

var (
	phonePattern = regexp.MustCompile(`^\+?\d{10,13}$`)
	datePattern  = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
	zonePattern  = regexp.MustCompile(`^[1-8]\.[1-8]`)
	phoneNoise   = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// steps задает строгий порядок анкеты
var steps = []Step{
	{
		State:    models.StateDoctor,
		Field:    models.FieldDoctor,
		Prompt:   "👨‍⚕️ Введіть прізвище лікаря:",
		Invalid:  "⚠️ Прізвище лікаря має містити щонайменше 2 символи.",
		Validate: minLength(2),
	},
	{
		State:    models.StatePhone,
		Field:    models.FieldPhone,
		Prompt:   "📞 Введіть номер телефону:",
		Invalid:  "⚠️ Невірний номер телефону. Приклад: 0501234567 або +380501234567.",
		Validate: validatePhone,
	},
	{
		State:    models.StateClinic,
		Field:    models.FieldClinic,
		Prompt:   "🏥 Введіть назву клініки:",
		Invalid:  "⚠️ Назва клініки має містити щонайменше 2 символи.",
		Validate: minLength(2),
	},
	{
		State:    models.StateDate,
		Field:    models.FieldDate,
		Prompt:   "📅 Введіть дату замовлення (напр. 24.07.2025):",
		Invalid:  "⚠️ Дата має бути у форматі ДД.ММ.РРРР, наприклад 24.07.2025.",
		Validate: validateDate,
	},
	{
		State:    models.StatePatient,
		Field:    models.FieldPatient,
		Prompt:   "👤 Введіть ПІБ пацієнта:",
		Invalid:  "⚠️ ПІБ пацієнта має містити щонайменше 3 символи.",
		Validate: minLength(3),
	},
	{
		State:    models.StateImplantSystem,
		Field:    models.FieldImplantSystem,
		Prompt:   "🔩 Введіть імплантаційну систему:",
		Invalid:  "⚠️ Назва системи має містити щонайменше 2 символи.",
		Validate: minLength(2),
	},
	{
		State:    models.StateZone,
		Field:    models.FieldZone,
		Prompt:   "🦷 Введіть зону у форматі \"номер зуба - діаметр/довжина імплантата\" (наприклад 1.1 - 4.2x10):",
		Invalid:  "⚠️ Зона має починатися з номера зуба, наприклад 1.1 або 2.4 - 4.2x10.",
		Validate: validateZone,
	},
}

// Steps возвращает копию списка шагов в порядке анкеты
func Steps() []Step {
	return append([]Step(nil), steps...)
}

func FirstStep() Step {
	return steps[0]
}

// StepFor возвращает шаг анкеты для состояния
func StepFor(state models.UserStateEnum) (Step, bool) {
	for _, s := range steps {
		if s.State == state {
			return s, true
		}
	}
	return Step{}, false
}

// NextState возвращает следующий шаг; после последнего шага - главное меню
func NextState(state models.UserStateEnum) models.UserStateEnum {
	for i, s := range steps {
		if s.State != state {
			continue
		}
		if i+1 < len(steps) {
			return steps[i+1].State
		}
		return models.StateMainMenu
	}
	return models.StateMainMenu
}

func minLength(n int) Validator {
	return func(field models.Field, value string) error {
		if utf8.RuneCountInString(value) < n {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("shorter than %d characters", n)}
		}
		return nil
	}
}

func validatePhone(field models.Field, value string) error {
	if !phonePattern.MatchString(phoneNoise.Replace(value)) {
		return &ValidationError{Field: field, Reason: "not a phone number"}
	}
	return nil
}

func validateDate(field models.Field, value string) error {
	if !datePattern.MatchString(value) {
		return &ValidationError{Field: field, Reason: "expected DD.MM.YYYY"}
	}
	if _, err := time.Parse("02.01.2006", value); err != nil {
		return &ValidationError{Field: field, Reason: "not a calendar date"}
	}
	return nil
}

func validateZone(field models.Field, value string) error {
	if !zonePattern.MatchString(value) {
		return &ValidationError{Field: field, Reason: "must start with a tooth number"}
	}
	return nil
}
