package telegram

import (
	"strings"
	"testing"

	"implantOrderBot/internal/domain/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallbackData(t *testing.T) {
	tests := []struct {
		data    string
		action  Action
		arg     string
		wantErr bool
	}{
		{data: "accept:42", action: ActionAccept, arg: "42"},
		{data: "reject:42", action: ActionReject, arg: "42"},
		{data: "reply:42", action: ActionReply, arg: "42"},
		{data: "file:prices/nobel.pdf", action: ActionFile, arg: "prices/nobel.pdf"},
		{data: "noop:", action: ActionNoop, arg: ""},
		{data: "accept", wantErr: true},
		{data: "delete:42", wantErr: true},
		{data: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			action, arg, err := ParseCallbackData(tt.data)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.action, action)
			assert.Equal(t, tt.arg, arg)
		})
	}
}

func TestParseTarget(t *testing.T) {
	id, err := ParseTarget("123456789")
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), id)

	for _, bad := range []string{"", "abc", "0", "-5"} {
		_, err := ParseTarget(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseButtonCommand(t *testing.T) {
	assert.Equal(t, "neworder", ParseButtonCommand(buttonNewOrder))
	assert.Equal(t, "chat", ParseButtonCommand(buttonChat))
	assert.Equal(t, "files", ParseButtonCommand(buttonPriceLists))
	assert.Equal(t, "cancel", ParseButtonCommand(buttonCancel))
	assert.Equal(t, "menu", ParseButtonCommand(buttonMenu))
	assert.Empty(t, ParseButtonCommand("Dr. Smith"))
}

func TestKeyboardManager_GetKeyboard(t *testing.T) {
	km := NewKeyboardManager()

	first := func(k tgbotapi.ReplyKeyboardMarkup) string { return k.Keyboard[0][0].Text }

	assert.Equal(t, buttonNewOrder, first(km.GetKeyboard(models.StateMainMenu)))
	assert.Equal(t, buttonCancel, first(km.GetKeyboard(models.StateZone)))
	assert.Equal(t, buttonMenu, first(km.GetKeyboard(models.StateChatMode)))
	assert.Equal(t, buttonMenu, first(km.GetKeyboard(models.StateFilesMode)))
	assert.True(t, km.GetKeyboard(models.StateDoctor).ResizeKeyboard)
}

func TestPriceListKeyboard_SkipsLongNames(t *testing.T) {
	long := strings.Repeat("a", maxCallbackData) + ".pdf"

	markup, skipped := PriceListKeyboard([]string{"nobel.pdf", long})

	require.Len(t, markup.InlineKeyboard, 1)
	assert.Equal(t, "file:nobel.pdf", *markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, []string{long}, skipped)
}
