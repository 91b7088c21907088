package telegram

import (
	"strconv"

	"implantOrderBot/internal/domain/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	buttonNewOrder   = "📝 Нове замовлення"
	buttonChat       = "💬 Написати менеджеру"
	buttonPriceLists = "📂 Прайс-листи"
	buttonCancel     = "❌ Скасувати"
	buttonMenu       = "🏠 Меню"
)

// KeyboardManager управляет клавиатурами для разных состояний
type KeyboardManager struct {
	mainMenu tgbotapi.ReplyKeyboardMarkup
	form     tgbotapi.ReplyKeyboardMarkup
	modes    tgbotapi.ReplyKeyboardMarkup
}

// NewKeyboardManager создает менеджер клавиатур
func NewKeyboardManager() *KeyboardManager {
	km := &KeyboardManager{
		mainMenu: tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(buttonNewOrder),
			),
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(buttonChat),
				tgbotapi.NewKeyboardButton(buttonPriceLists),
			),
		),
		form: tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(buttonCancel),
			),
		),
		modes: tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(buttonMenu),
			),
		),
	}

	for _, keyboard := range []*tgbotapi.ReplyKeyboardMarkup{&km.mainMenu, &km.form, &km.modes} {
		keyboard.ResizeKeyboard = true
		keyboard.OneTimeKeyboard = false
	}

	return km
}

// GetKeyboard возвращает клавиатуру для заданного состояния
func (km *KeyboardManager) GetKeyboard(state models.UserStateEnum) tgbotapi.ReplyKeyboardMarkup {
	switch {
	case state.IsFormState():
		return km.form
	case state == models.StateChatMode, state == models.StateFilesMode:
		return km.modes
	default:
		return km.mainMenu
	}
}

// ParseButtonCommand конвертирует текст кнопки в команду
func ParseButtonCommand(text string) string {
	buttonToCommand := map[string]string{
		buttonNewOrder:   "neworder",
		buttonChat:       "chat",
		buttonPriceLists: "files",
		buttonCancel:     "cancel",
		buttonMenu:       "menu",
	}

	if command, exists := buttonToCommand[text]; exists {
		return command
	}

	return ""
}

// OrderKeyboard - кнопки оператора под уведомлением о заказе
func OrderKeyboard(userID int64) tgbotapi.InlineKeyboardMarkup {
	id := strconv.FormatInt(userID, 10)

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Прийняти", CallbackData(ActionAccept, id)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Відхилити", CallbackData(ActionReject, id)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✍️ Відповісти", CallbackData(ActionReply, id)),
		),
	)
}

// ReplyKeyboard - одна кнопка ответа под сообщением пользователя
func ReplyKeyboard(userID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✍️ Відповісти", CallbackData(ActionReply, strconv.FormatInt(userID, 10))),
		),
	)
}

// StatusKeyboard заменяет кнопки оператора неактивной меткой
func StatusKeyboard(label string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, CallbackData(ActionNoop, "")),
		),
	)
}

// PriceListKeyboard - по кнопке на каждый документ. Имена, которые не помещаются
// в callback_data, возвращаются в skipped.
func PriceListKeyboard(names []string) (markup tgbotapi.InlineKeyboardMarkup, skipped []string) {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, name := range names {
		data := CallbackData(ActionFile, name)
		if len(data) > maxCallbackData {
			skipped = append(skipped, name)
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 "+name, data),
		))
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...), skipped
}
