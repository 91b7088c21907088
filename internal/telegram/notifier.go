package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"implantOrderBot/internal/domain/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var ErrNoOperator = errors.New("operator chat id is not configured")

// Notifier отправляет оператору сводку по новому заказу
type Notifier struct {
	bot        Bot
	operatorID int64
}

func NewNotifier(bot Bot, operatorID int64) *Notifier {
	return &Notifier{
		bot:        bot,
		operatorID: operatorID,
	}
}

// NotifyOrder отправляет сводку с кнопками принять / отклонить / ответить
func (n *Notifier) NotifyOrder(_ context.Context, order models.Order) error {
	const op = "telegram.Notifier.NotifyOrder"

	if n.operatorID == 0 {
		return fmt.Errorf("%s: %w", op, ErrNoOperator)
	}

	msg := tgbotapi.NewMessage(n.operatorID, FormatOrder(order))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = OrderKeyboard(order.UserID)

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// FormatOrder собирает HTML-сводку; все ответы пользователя экранируются
func FormatOrder(order models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🆕 <b>НОВЕ ЗАМОВЛЕННЯ</b> #%s\n\n", order.ShortID())
	line(&b, "👨‍⚕️ Лікар", order.Doctor)
	line(&b, "📅 Дата", order.Date)
	line(&b, "🏥 Клініка", order.Clinic)
	line(&b, "👤 Пацієнт", order.Patient)
	line(&b, "🔩 Система", order.ImplantSystem)
	line(&b, "🦷 Зона", order.Zone)
	line(&b, "📞 Телефон", order.Phone)
	line(&b, "📌 Статус", statusLabel(order.Status))
	line(&b, "🕒 Створено", order.Timestamp())

	author := fmt.Sprintf("<code>%d</code>", order.UserID)
	if order.Username != "" {
		author = escapeHTML(order.Username) + " (" + author + ")"
	}
	fmt.Fprintf(&b, "🙋 Від: %s", author)

	return b.String()
}

func line(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%s: <b>%s</b>\n", label, escapeHTML(value))
}

func statusLabel(status models.OrderStatus) string {
	switch status {
	case models.StatusNew:
		return "Новий"
	default:
		return string(status)
	}
}

func escapeHTML(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}
