package models

import "time"

// Session хранит позицию пользователя в диалоге и собранные ответы
type Session struct {
	UserID int64
	ChatID int64
	State  UserStateEnum
	Draft  Order
	// PendingReplyTo - аккаунт, которому уйдет следующее текстовое сообщение оператора
	PendingReplyTo int64
	UpdatedAt      time.Time
}
