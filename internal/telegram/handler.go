package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"runtime/debug"
	"strings"

	"implantOrderBot/internal/domain/models"
	"implantOrderBot/internal/metrics"
	"implantOrderBot/internal/pkg/logger/sl"
	"implantOrderBot/internal/repository/s3minio"
	"implantOrderBot/internal/service/order"
	"implantOrderBot/internal/service/relay"
	"implantOrderBot/internal/statemachine"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	textRetryLater = "⚠️ Сталася помилка. Спробуйте пізніше."
	textPanic      = "⚠️ Сталася помилка. Натисніть /start, щоб почати знову."

	textNoPriceLists = "📂 Прайс-листів поки немає."
	textReplyFailed  = "❌ Не вдалося надіслати відповідь. Надішліть текст ще раз або /cancel."
)

// PriceLists - каталог документов для режима прайс-листов
type PriceLists interface {
	List(ctx context.Context) ([]string, error)
	Get(ctx context.Context, name string) ([]byte, error)
}

type Handler struct {
	log            *slog.Logger
	bot            Bot
	sm             *statemachine.Manager
	km             *KeyboardManager
	orders         *order.Service
	relay          *relay.Service
	prices         PriceLists
	metrics        *metrics.BotMetrics
	operatorHandle string
}

func NewHandler(
	log *slog.Logger,
	bot Bot,
	sm *statemachine.Manager,
	orders *order.Service,
	relaySvc *relay.Service,
	prices PriceLists,
	m *metrics.BotMetrics,
	operatorHandle string,
) *Handler {
	return &Handler{
		log:            log,
		bot:            bot,
		sm:             sm,
		km:             NewKeyboardManager(),
		orders:         orders,
		relay:          relaySvc,
		prices:         prices,
		metrics:        m,
		operatorHandle: strings.TrimPrefix(operatorHandle, "@"),
	}
}

// Start запускает обработку обновлений от Telegram.
// Обновления обрабатываются строго по одному.
func (h *Handler) Start(ctx context.Context) error {
	const op = "telegram.Handler.Start"

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)
	defer h.bot.StopReceivingUpdates()

	h.log.Info("receiving updates", slog.String("op", op))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate обрабатывает одно обновление. Паника не останавливает бота.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			h.metrics.ObservePanic()
			h.log.Error("panic while handling update",
				slog.Int("update_id", update.UpdateID),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)

			if chatID := updateChatID(update); chatID != 0 {
				h.sendMessageWithoutKeyboard(chatID, textPanic)
			}
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		h.metrics.ObserveUpdate("callback")
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		h.metrics.ObserveUpdate("message")
		h.handleMessage(ctx, update.Message)
	}
}

// handleMessage обрабатывает входящее сообщение
func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil {
		return
	}

	command := message.Command()
	if command == "" {
		command = ParseButtonCommand(message.Text)
	}

	// Текст оператора после кнопки "Відповісти" уходит адресату.
	// Сессию оператора после этого не сохраняем: маркер уже снят.
	if command == "" && message.Text != "" && h.relay.IsOperator(message.From.ID) {
		target, ok, err := h.relay.TakePending(ctx, message.From.ID)
		if err != nil {
			h.log.Error("failed to read pending reply", sl.Err(err))
		}
		if ok {
			h.forwardOperatorReply(ctx, message, target)
			return
		}
	}

	session, err := h.sm.Session(ctx, message.From.ID, message.Chat.ID)
	if err != nil {
		h.sendMessageWithoutKeyboard(message.Chat.ID, textRetryLater)
		h.log.Error("failed to load session", slog.Int64("user_id", message.From.ID), sl.Err(err))
		return
	}

	if command != "" {
		h.handleCommand(ctx, message, session, command)
		return
	}

	h.handleText(ctx, message, session)
}

// handleCommand обрабатывает команды бота и кнопки клавиатуры
func (h *Handler) handleCommand(ctx context.Context, message *tgbotapi.Message, session *models.Session, command string) {
	allowed, reason := h.sm.IsCommandAllowed(session, command)
	if !allowed {
		h.sendMessage(message.Chat.ID, reason, session.State)
		return
	}

	switch command {
	case "start":
		h.handleStart(ctx, message, session)
	case "menu":
		h.handleMenu(ctx, message, session)
	case "cancel":
		h.handleCancel(ctx, message, session)
	case "neworder":
		h.handleNewOrder(ctx, message, session)
	case "chat":
		h.handleChatMode(ctx, message, session)
	case "files":
		h.handleFilesMode(ctx, message, session)
	default:
		h.sendMessage(message.Chat.ID, "Невідома команда. Використовуйте /start.", session.State)
	}
}

func (h *Handler) handleStart(ctx context.Context, message *tgbotapi.Message, session *models.Session) {
	newState, err := h.sm.HandleEvent(ctx, session, statemachine.EventStartCommand)
	if err != nil {
		h.log.Error("failed to handle start command", sl.Err(err))
	}

	welcomeText := "👋 Вітаємо!\n\n"
	welcomeText += "Тут можна оформити замовлення імплантів, написати менеджеру або отримати прайс-листи.\n"
	welcomeText += "Оберіть дію в меню 👇"

	if h.relay.IsOperator(message.From.ID) {
		welcomeText += "\n\nВи оператор: нові замовлення і повідомлення клієнтів надходитимуть сюди."
	}

	h.sendMessage(message.Chat.ID, welcomeText, newState)
}

func (h *Handler) handleMenu(ctx context.Context, message *tgbotapi.Message, session *models.Session) {
	newState, err := h.sm.HandleEvent(ctx, session, statemachine.EventMenuCommand)
	if err != nil {
		h.log.Error("failed to handle menu command", sl.Err(err))
	}

	h.sendMessage(message.Chat.ID, "🏠 Головне меню. Оберіть дію 👇", newState)
}

func (h *Handler) handleCancel(ctx context.Context, message *tgbotapi.Message, session *models.Session) {
	newState, err := h.sm.HandleEvent(ctx, session, statemachine.EventCancelCommand)
	if err != nil {
		h.log.Error("failed to handle cancel command", sl.Err(err))
	}

	h.sendMessage(message.Chat.ID, "❌ Скасовано. Ви в головному меню.", newState)
}

func (h *Handler) handleNewOrder(ctx context.Context, message *tgbotapi.Message, session *models.Session) {
	newState, err := h.sm.HandleEvent(ctx, session, statemachine.EventNewOrder)
	if err != nil {
		h.sendMessage(message.Chat.ID, "Спочатку поверніться в меню: /menu", session.State)
		h.log.Debug("new order rejected", slog.String("state", string(session.State)), sl.Err(err))
		return
	}

	h.sendMessage(message.Chat.ID, statemachine.FirstStep().Prompt, newState)
}

func (h *Handler) handleChatMode(ctx context.Context, message *tgbotapi.Message, session *models.Session) {
	newState, err := h.sm.HandleEvent(ctx, session, statemachine.EventChatMode)
	if err != nil {
		h.sendMessage(message.Chat.ID, "Спочатку поверніться в меню: /menu", session.State)
		h.log.Debug("chat mode rejected", slog.String("state", string(session.State)), sl.Err(err))
		return
	}

	text := "💬 Напишіть повідомлення, і менеджер відповість вам тут.\n"
	if h.operatorHandle != "" {
		text += "Або напишіть напряму: @" + h.operatorHandle + "\n"
	}
	text += "Щоб повернутися, натисніть «" + buttonMenu + "»."

	h.sendMessage(message.Chat.ID, text, newState)
}

func (h *Handler) handleFilesMode(ctx context.Context, message *tgbotapi.Message, session *models.Session) {
	newState, err := h.sm.HandleEvent(ctx, session, statemachine.EventFilesMode)
	if err != nil {
		h.sendMessage(message.Chat.ID, "Спочатку поверніться в меню: /menu", session.State)
		h.log.Debug("files mode rejected", slog.String("state", string(session.State)), sl.Err(err))
		return
	}

	h.sendPriceListMenu(ctx, message.Chat.ID, newState)
}

// handleText обрабатывает текстовые сообщения в зависимости от состояния
func (h *Handler) handleText(ctx context.Context, message *tgbotapi.Message, session *models.Session) {
	switch {
	case session.State.IsFormState():
		h.handleFormInput(ctx, message, session)

	case session.State == models.StateChatMode:
		h.handleChatMessage(ctx, message, session)

	case session.State == models.StateFilesMode:
		if _, err := h.sm.HandleEvent(ctx, session, statemachine.EventTextMessage); err != nil {
			h.log.Error("failed to handle text in files mode", sl.Err(err))
		}
		h.sendPriceListMenu(ctx, message.Chat.ID, session.State)

	case session.State == models.StateMainMenu:
		if _, err := h.sm.HandleEvent(ctx, session, statemachine.EventTextMessage); err != nil {
			h.log.Error("failed to handle text in main menu", sl.Err(err))
		}
		h.sendMessage(message.Chat.ID, "Оберіть дію в меню 👇", session.State)

	default:
		h.sendMessage(message.Chat.ID, "Невідомий стан. Використовуйте /start.", session.State)
	}
}

// handleFormInput принимает ответ на текущий вопрос анкеты
func (h *Handler) handleFormInput(ctx context.Context, message *tgbotapi.Message, session *models.Session) {
	result, err := h.sm.HandleInput(ctx, session, message.Text)
	if err != nil {
		h.sendMessage(message.Chat.ID, textRetryLater, session.State)
		h.log.Error("failed to handle form input",
			slog.Int64("user_id", session.UserID),
			slog.String("state", string(session.State)),
			sl.Err(err),
		)
		return
	}

	if result.Err != nil {
		h.metrics.ObserveValidationFailure(string(result.Step.Field))
		h.sendMessage(message.Chat.ID, result.Step.Invalid+"\n\n"+result.Step.Prompt, session.State)
		return
	}

	if result.Next != nil {
		h.sendMessage(message.Chat.ID, result.Next.Prompt, session.State)
		return
	}

	if result.Completed {
		h.completeOrder(ctx, message, result.Order)
	}
}

// completeOrder отправляет готовую анкету в таблицу и оператору
func (h *Handler) completeOrder(ctx context.Context, message *tgbotapi.Message, draft models.Order) {
	typingAction := tgbotapi.NewChatAction(message.Chat.ID, tgbotapi.ChatTyping)
	if _, err := h.bot.Request(typingAction); err != nil {
		h.log.Debug("failed to send typing action", sl.Err(err))
	}

	ord := h.orders.Finalize(draft, message.From.ID, displayName(message.From))
	result := h.orders.Submit(ctx, ord)

	var text string
	switch {
	case result.SaveErr != nil:
		text = "✅ Замовлення прийняте, але виникла проблема зі збереженням. Менеджер перевірить його вручну."
	case result.NotifyErr != nil:
		text = "✅ Замовлення збережене, але менеджера не вдалося сповістити. Ми зв'яжемося з вами."
	default:
		text = fmt.Sprintf("✅ Замовлення #%s прийняте. Дякуємо!", ord.ShortID())
	}

	h.sendMessage(message.Chat.ID, text, models.StateMainMenu)
}

// handleChatMessage пересылает сообщение пользователя оператору
func (h *Handler) handleChatMessage(ctx context.Context, message *tgbotapi.Message, session *models.Session) {
	if _, err := h.sm.HandleEvent(ctx, session, statemachine.EventTextMessage); err != nil {
		h.log.Error("failed to handle text in chat mode", sl.Err(err))
	}

	operatorID := h.relay.OperatorID()
	if operatorID == 0 {
		h.sendMessage(message.Chat.ID, "Менеджер зараз недоступний. Спробуйте пізніше.", session.State)
		return
	}

	forward := tgbotapi.NewForward(operatorID, message.Chat.ID, message.MessageID)
	if _, err := h.bot.Send(forward); err != nil {
		h.sendMessage(message.Chat.ID, textRetryLater, session.State)
		h.log.Error("failed to forward message to operator", slog.Int64("user_id", session.UserID), sl.Err(err))
		return
	}

	info := tgbotapi.NewMessage(operatorID, fmt.Sprintf("💬 Повідомлення від %s (<code>%d</code>)",
		escapeHTML(displayName(message.From)), message.From.ID))
	info.ParseMode = tgbotapi.ModeHTML
	info.ReplyMarkup = ReplyKeyboard(message.From.ID)
	if _, err := h.bot.Send(info); err != nil {
		h.log.Error("failed to send reply button to operator", sl.Err(err))
	}

	h.metrics.ObserveRelay("user_message")
	h.sendMessage(message.Chat.ID, "📨 Повідомлення передано менеджеру.", session.State)
}

// forwardOperatorReply отправляет текст оператора адресату без изменений.
// При ошибке адресат запоминается снова, чтобы оператор мог повторить.
func (h *Handler) forwardOperatorReply(ctx context.Context, message *tgbotapi.Message, target int64) {
	if _, err := h.bot.Send(tgbotapi.NewMessage(target, message.Text)); err != nil {
		h.log.Error("failed to deliver operator reply", slog.Int64("target", target), sl.Err(err))

		if err := h.relay.BeginReply(ctx, message.From.ID, target); err != nil {
			h.log.Error("failed to restore pending reply", slog.Int64("target", target), sl.Err(err))
			h.sendMessageWithoutKeyboard(message.Chat.ID, "❌ Не вдалося надіслати відповідь. Спробуйте пізніше.")
			return
		}

		h.sendMessageWithoutKeyboard(message.Chat.ID, textReplyFailed)
		return
	}

	h.metrics.ObserveRelay("reply_sent")
	h.sendMessageWithoutKeyboard(message.Chat.ID, "✅ Відповідь надіслано.")
}

// sendPriceListMenu показывает список прайс-листов кнопками
func (h *Handler) sendPriceListMenu(ctx context.Context, chatID int64, state models.UserStateEnum) {
	if h.prices == nil {
		h.sendMessage(chatID, "📂 Прайс-листи тимчасово недоступні.", state)
		return
	}

	names, err := h.prices.List(ctx)
	switch {
	case errors.Is(err, s3minio.ErrNotConfigured):
		h.sendMessage(chatID, "📂 Прайс-листи тимчасово недоступні.", state)
		return
	case err != nil:
		h.sendMessage(chatID, textRetryLater, state)
		h.log.Error("failed to list price lists", sl.Err(err))
		return
	}

	markup, skipped := PriceListKeyboard(names)
	if len(skipped) > 0 {
		h.log.Warn("price list names too long for a button", slog.Any("names", skipped))
	}
	if len(markup.InlineKeyboard) == 0 {
		h.sendMessage(chatID, textNoPriceLists, state)
		return
	}

	// Сначала обновляем нижнюю клавиатуру, затем отдельным сообщением кнопки файлов
	h.sendMessage(chatID, "📂 Прайс-листи:", state)

	msg := tgbotapi.NewMessage(chatID, "Оберіть документ 👇")
	msg.ReplyMarkup = markup
	if _, err := h.bot.Send(msg); err != nil {
		h.log.Error("failed to send price list keyboard", sl.Err(err))
	}
}

// sendPriceList отправляет документ из каталога
func (h *Handler) sendPriceList(ctx context.Context, chatID int64, name string) error {
	if h.prices == nil {
		return s3minio.ErrNotConfigured
	}

	data, err := h.prices.Get(ctx, name)
	if err != nil {
		return err
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: path.Base(name), Bytes: data})
	if _, err := h.bot.Send(doc); err != nil {
		return fmt.Errorf("failed to send document: %w", err)
	}

	return nil
}

// sendMessage отправляет сообщение с клавиатурой для текущего состояния
func (h *Handler) sendMessage(chatID int64, text string, state models.UserStateEnum) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = h.km.GetKeyboard(state)
	if _, err := h.bot.Send(msg); err != nil {
		h.log.Error("failed to send message", slog.Int64("chat_id", chatID), sl.Err(err))
	}
}

// sendMessageWithoutKeyboard отправляет сообщение без обновления клавиатуры
func (h *Handler) sendMessageWithoutKeyboard(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := h.bot.Send(msg); err != nil {
		h.log.Error("failed to send message", slog.Int64("chat_id", chatID), sl.Err(err))
	}
}

func updateChatID(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.ID
	}
	return 0
}

// displayName - @username, а без него имя и фамилия
func displayName(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	if user.UserName != "" {
		return "@" + user.UserName
	}
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}
