package sheets

import (
	"strings"

	"implantOrderBot/internal/domain/models"
)

// fieldHeaders lists the column titles accepted for each record field.
// The sheet is owned by the clinic staff, so matching is best-effort: a header
// that matches nothing stays blank and a field without a column is appended
// after the last header in models.RecordFields order.
var fieldHeaders = map[models.Field][]string{
	models.FieldDoctor:        {"ПІБ лікаря", "Прізвище лікаря", "Лікар", "Doctor", "Doctor name"},
	models.FieldPhone:         {"Контактний телефон", "Телефон", "Номер телефону", "Phone", "Phone number"},
	models.FieldClinic:        {"Назва клініки", "Клініка", "Clinic", "Clinic name"},
	models.FieldDate:          {"дата здачі", "Дата", "Дата замовлення", "Date", "Order date"},
	models.FieldPatient:       {"ПІБ пацієнта", "Пацієнт", "Patient", "Patient name"},
	models.FieldImplantSystem: {"Система імплантатів", "Імплантаційна система", "Implant system"},
	models.FieldZone: {
		`Передбачувана зона встановлення імплантатів Вкажіть в форматі "номер зуба - диаметер/довжина імплантата"`,
		"Передбачувана зона встановлення імплантатів",
		"Зона",
		"Зона встановлення",
		"Zone",
	},
	models.FieldStatus:    {"Статус", "Status"},
	models.FieldTimestamp: {"Позначка часу", "Отметка времени", "Час створення", "Timestamp"},
	models.FieldUserID:    {"Telegram ID", "ID користувача", "User ID"},
	models.FieldUsername:  {"Telegram", "Username", "Нікнейм"},
	models.FieldID:        {"ID", "ID замовлення", "Номер замовлення", "Order ID"},
}

var synonymIndex = buildSynonymIndex()

func buildSynonymIndex() map[string]models.Field {
	index := make(map[string]models.Field)
	for field, headers := range fieldHeaders {
		for _, h := range headers {
			index[normalizeHeader(h)] = field
		}
	}
	return index
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// MapColumns returns the zero-based column of every field found in headers.
// When two headers match the same field the leftmost wins.
func MapColumns(headers []string) map[models.Field]int {
	columns := make(map[models.Field]int)
	for i, h := range headers {
		field, ok := synonymIndex[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, taken := columns[field]; taken {
			continue
		}
		columns[field] = i
	}
	return columns
}

// BuildRow lays out an order under the given header row.
func BuildRow(headers []string, order models.Order) []interface{} {
	columns := MapColumns(headers)

	row := make([]interface{}, len(headers))
	for i := range row {
		row[i] = ""
	}

	for field, i := range columns {
		row[i] = order.Value(field)
	}

	for _, field := range models.RecordFields {
		if _, ok := columns[field]; ok {
			continue
		}
		row = append(row, order.Value(field))
	}

	return row
}
