package telegram

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"implantOrderBot/internal/domain/models"
	"implantOrderBot/internal/repository/memory"
	"implantOrderBot/internal/service/order"
	"implantOrderBot/internal/service/relay"
	"implantOrderBot/internal/statemachine"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	testOperator int64 = 100
	testUser     int64 = 7
)

var errNetwork = errors.New("network is unreachable")

type fakeBot struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	failTo   map[int64]bool
	updates  chan tgbotapi.Update
}

func newFakeBot() *fakeBot {
	return &fakeBot{failTo: map[int64]bool{}, updates: make(chan tgbotapi.Update)}
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sent = append(b.sent, c)
	if msg, ok := c.(tgbotapi.MessageConfig); ok && b.failTo[msg.ChatID] {
		return tgbotapi.Message{}, errNetwork
	}
	return tgbotapi.Message{MessageID: len(b.sent)}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.requests = append(b.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return b.updates
}

func (b *fakeBot) StopReceivingUpdates() {}

// messagesTo возвращает текстовые сообщения, отправленные в чат
func (b *fakeBot) messagesTo(chatID int64) []tgbotapi.MessageConfig {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []tgbotapi.MessageConfig
	for _, c := range b.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok && msg.ChatID == chatID {
			out = append(out, msg)
		}
	}
	return out
}

func (b *fakeBot) lastText(chatID int64) string {
	msgs := b.messagesTo(chatID)
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].Text
}

type fakeSaver struct {
	orders []models.Order
	err    error
}

func (s *fakeSaver) SaveOrder(_ context.Context, o models.Order) error {
	if s.err != nil {
		return s.err
	}
	s.orders = append(s.orders, o)
	return nil
}

type fakePrices struct {
	names []string
	files map[string][]byte
	explode bool
}

func (p *fakePrices) List(context.Context) ([]string, error) {
	if p.explode {
		panic("storage exploded")
	}
	return p.names, nil
}

func (p *fakePrices) Get(_ context.Context, name string) ([]byte, error) {
	data, ok := p.files[name]
	if !ok {
		return nil, errors.New("missing")
	}
	return data, nil
}

type testEnv struct {
	handler *Handler
	bot     *fakeBot
	saver   *fakeSaver
	prices  *fakePrices
	repo    *memory.SessionRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	bot := newFakeBot()
	repo := memory.NewSessionRepository()
	sm := statemachine.NewManager(log, repo)
	saver := &fakeSaver{}
	prices := &fakePrices{
		names: []string{"straumann.pdf"},
		files: map[string][]byte{"straumann.pdf": []byte("%PDF-1.4")},
	}

	orders := order.New(log, saver, NewNotifier(bot, testOperator), nil, time.UTC)
	relaySvc := relay.New(log, sm, testOperator)

	return &testEnv{
		handler: NewHandler(log, bot, sm, orders, relaySvc, prices, nil, "@implant_manager"),
		bot:     bot,
		saver:   saver,
		prices:  prices,
		repo:    repo,
	}
}

func (e *testEnv) send(from int64, text string) {
	e.handler.HandleUpdate(context.Background(), textUpdate(from, text))
}

func (e *testEnv) press(from int64, data string) {
	e.handler.HandleUpdate(context.Background(), callbackUpdate(from, data))
}

func (e *testEnv) state(t *testing.T, userID int64) models.UserStateEnum {
	t.Helper()

	session, err := e.repo.GetSession(context.Background(), userID)
	if err != nil {
		t.Fatalf("get session %d: %v", userID, err)
	}
	// в главном меню сессия не хранится
	if session == nil {
		return models.StateMainMenu
	}
	return session.State
}

var messageSeq int

func textUpdate(from int64, text string) tgbotapi.Update {
	messageSeq++

	msg := &tgbotapi.Message{
		MessageID: messageSeq,
		From:      &tgbotapi.User{ID: from, UserName: "dr_smith"},
		Chat:      &tgbotapi.Chat{ID: from},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		msg.Entities = []tgbotapi.MessageEntity{{
			Type:   "bot_command",
			Offset: 0,
			Length: len(strings.Fields(text)[0]),
		}}
	}

	return tgbotapi.Update{UpdateID: messageSeq, Message: msg}
}

func callbackUpdate(from int64, data string) tgbotapi.Update {
	messageSeq++

	return tgbotapi.Update{
		UpdateID: messageSeq,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb",
			From: &tgbotapi.User{ID: from},
			Message: &tgbotapi.Message{
				MessageID: 555,
				Chat:      &tgbotapi.Chat{ID: from},
			},
			Data: data,
		},
	}
}
