package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the local DD.MM.YYYY HH:MM:SS format used in the sheet and notifications.
const TimestampLayout = "02.01.2006 15:04:05"

// Field is the canonical name of a record value.
type Field string

const (
	FieldDoctor        Field = "doctor"
	FieldPhone         Field = "phone"
	FieldClinic        Field = "clinic"
	FieldDate          Field = "date"
	FieldPatient       Field = "patient"
	FieldImplantSystem Field = "implant_system"
	FieldZone          Field = "zone"

	FieldID        Field = "id"
	FieldStatus    Field = "status"
	FieldTimestamp Field = "timestamp"
	FieldUserID    Field = "user_id"
	FieldUsername  Field = "username"
)

// ContentFields are the answers collected by the form, in prompt order.
var ContentFields = []Field{
	FieldDoctor,
	FieldPhone,
	FieldClinic,
	FieldDate,
	FieldPatient,
	FieldImplantSystem,
	FieldZone,
}

// RecordFields is the fixed order used when a field has no matching sheet column.
var RecordFields = append(append([]Field{}, ContentFields...),
	FieldStatus,
	FieldTimestamp,
	FieldUserID,
	FieldUsername,
	FieldID,
)

type OrderStatus string

const (
	StatusNew OrderStatus = "New"
)

// Order is one completed (or in-progress) form.
type Order struct {
	ID            uuid.UUID
	Doctor        string
	Phone         string
	Clinic        string
	Date          string
	Patient       string
	ImplantSystem string
	Zone          string
	Status        OrderStatus
	UserID        int64
	Username      string
	CreatedAt     time.Time
}

// Set stores a content value under its canonical field. Meta fields are ignored.
func (o *Order) Set(field Field, value string) {
	switch field {
	case FieldDoctor:
		o.Doctor = value
	case FieldPhone:
		o.Phone = value
	case FieldClinic:
		o.Clinic = value
	case FieldDate:
		o.Date = value
	case FieldPatient:
		o.Patient = value
	case FieldImplantSystem:
		o.ImplantSystem = value
	case FieldZone:
		o.Zone = value
	}
}

func (o Order) Value(field Field) string {
	switch field {
	case FieldDoctor:
		return o.Doctor
	case FieldPhone:
		return o.Phone
	case FieldClinic:
		return o.Clinic
	case FieldDate:
		return o.Date
	case FieldPatient:
		return o.Patient
	case FieldImplantSystem:
		return o.ImplantSystem
	case FieldZone:
		return o.Zone
	case FieldID:
		if o.ID == uuid.Nil {
			return ""
		}
		return o.ID.String()
	case FieldStatus:
		return string(o.Status)
	case FieldTimestamp:
		return o.Timestamp()
	case FieldUserID:
		if o.UserID == 0 {
			return ""
		}
		return strconv.FormatInt(o.UserID, 10)
	case FieldUsername:
		return o.Username
	default:
		return ""
	}
}

// Complete reports whether all seven answers are present.
func (o Order) Complete() bool {
	for _, f := range ContentFields {
		if o.Value(f) == "" {
			return false
		}
	}
	return true
}

func (o Order) Timestamp() string {
	if o.CreatedAt.IsZero() {
		return ""
	}
	return o.CreatedAt.Format(TimestampLayout)
}

// ShortID is the first block of the order id, used in messages.
func (o Order) ShortID() string {
	s := o.ID.String()
	if len(s) < 8 {
		return s
	}
	return s[:8]
}
