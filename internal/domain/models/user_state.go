package models

// UserStateEnum представляет позицию пользователя в диалоге
type UserStateEnum string

const (
	StateMainMenu      UserStateEnum = "main_menu"
	StateDoctor        UserStateEnum = "doctor"
	StatePhone         UserStateEnum = "phone"
	StateClinic        UserStateEnum = "clinic"
	StateDate          UserStateEnum = "date"
	StatePatient       UserStateEnum = "patient"
	StateImplantSystem UserStateEnum = "implant_system"
	StateZone          UserStateEnum = "zone"
	StateChatMode      UserStateEnum = "chat_mode"
	StateFilesMode     UserStateEnum = "files_mode"
)

// IsFormState сообщает, находится ли пользователь внутри анкеты заказа
func (s UserStateEnum) IsFormState() bool {
	switch s {
	case StateDoctor, StatePhone, StateClinic, StateDate, StatePatient, StateImplantSystem, StateZone:
		return true
	default:
		return false
	}
}
