package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"implantOrderBot/internal/pkg/logger/sl"
	"implantOrderBot/internal/repository/s3minio"
	"implantOrderBot/internal/service/relay"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram ограничивает callback_data 64 байтами
const maxCallbackData = 64

type Action string

const (
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
	ActionReply  Action = "reply"
	ActionFile   Action = "file"
	ActionNoop   Action = "noop"
)

func CallbackData(action Action, arg string) string {
	return string(action) + ":" + arg
}

// ParseCallbackData разбирает строку вида "action:arg"
func ParseCallbackData(data string) (Action, string, error) {
	action, arg, found := strings.Cut(data, ":")
	if !found {
		return "", "", fmt.Errorf("malformed callback data %q", data)
	}

	switch Action(action) {
	case ActionAccept, ActionReject, ActionReply, ActionFile, ActionNoop:
		return Action(action), arg, nil
	default:
		return "", "", fmt.Errorf("unknown callback action %q", action)
	}
}

// ParseTarget возвращает id пользователя из аргумента операторской кнопки
func ParseTarget(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid target %q", arg)
	}
	return id, nil
}

// handleCallback обрабатывает нажатия inline-кнопок
func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.From == nil {
		return
	}

	action, arg, err := ParseCallbackData(cb.Data)
	if err != nil {
		h.answerCallback(cb.ID, "Невідома дія")
		h.log.Warn("unknown callback", slog.String("data", cb.Data), sl.Err(err))
		return
	}

	switch action {
	case ActionAccept, ActionReject, ActionReply:
		if !h.relay.IsOperator(cb.From.ID) {
			h.answerCallback(cb.ID, "Недостатньо прав")
			h.log.Warn("operator action from non-operator",
				slog.Int64("user_id", cb.From.ID),
				slog.String("action", string(action)),
			)
			return
		}
	}

	switch action {
	case ActionAccept:
		h.handleDecision(cb, arg, relay.AcceptedText, "✅ Прийнято", "accepted")
	case ActionReject:
		h.handleDecision(cb, arg, relay.RejectedText, "❌ Відхилено", "rejected")
	case ActionReply:
		h.handleReply(ctx, cb, arg)
	case ActionFile:
		h.handleFile(ctx, cb, arg)
	default:
		h.answerCallback(cb.ID, "")
	}
}

// handleDecision сообщает пользователю решение и заменяет кнопки меткой
func (h *Handler) handleDecision(cb *tgbotapi.CallbackQuery, arg, text, label, action string) {
	target, err := ParseTarget(arg)
	if err != nil {
		h.answerCallback(cb.ID, "Невідомий користувач")
		h.log.Warn("bad decision target", slog.String("arg", arg), sl.Err(err))
		return
	}

	if _, err := h.bot.Send(tgbotapi.NewMessage(target, text)); err != nil {
		h.answerCallback(cb.ID, "Не вдалося надіслати повідомлення")
		h.log.Error("failed to deliver decision",
			slog.Int64("target", target),
			slog.String("action", action),
			sl.Err(err),
		)
		return
	}

	if cb.Message != nil {
		edit := tgbotapi.NewEditMessageReplyMarkup(cb.Message.Chat.ID, cb.Message.MessageID, StatusKeyboard(label))
		if _, err := h.bot.Request(edit); err != nil {
			h.log.Error("failed to replace order buttons", sl.Err(err))
		}
	}

	h.metrics.ObserveRelay(action)
	h.answerCallback(cb.ID, label)
}

// handleReply запоминает адресата следующего сообщения оператора
func (h *Handler) handleReply(ctx context.Context, cb *tgbotapi.CallbackQuery, arg string) {
	target, err := ParseTarget(arg)
	if err != nil {
		h.answerCallback(cb.ID, "Невідомий користувач")
		h.log.Warn("bad reply target", slog.String("arg", arg), sl.Err(err))
		return
	}

	if err := h.relay.BeginReply(ctx, cb.From.ID, target); err != nil {
		h.answerCallback(cb.ID, "Спробуйте пізніше")
		h.log.Error("failed to begin reply", sl.Err(err))
		return
	}

	h.metrics.ObserveRelay("reply_started")
	h.answerCallback(cb.ID, "")
	h.sendMessageWithoutKeyboard(cb.From.ID, fmt.Sprintf(
		"✍️ Напишіть відповідь для користувача <code>%d</code>.\nСкасувати: /cancel", target))
}

// handleFile отправляет выбранный прайс-лист
func (h *Handler) handleFile(ctx context.Context, cb *tgbotapi.CallbackQuery, name string) {
	chatID := cb.From.ID
	if cb.Message != nil {
		chatID = cb.Message.Chat.ID
	}

	if err := h.sendPriceList(ctx, chatID, name); err != nil {
		switch {
		case errors.Is(err, s3minio.ErrNotFound):
			h.answerCallback(cb.ID, "Файл не знайдено")
		default:
			h.answerCallback(cb.ID, "Не вдалося завантажити файл")
		}
		h.log.Error("failed to send price list", slog.String("name", name), sl.Err(err))
		return
	}

	h.answerCallback(cb.ID, "")
}

func (h *Handler) answerCallback(id, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		h.log.Debug("failed to answer callback", sl.Err(err))
	}
}
