package top_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/guild-top/internal/common"
	"serotonyl.ru/guild-top/internal/features/economy"
	"serotonyl.ru/guild-top/internal/features/members"
	"serotonyl.ru/guild-top/internal/features/top"
)

type fakeTelegram struct {
	sent     []*telego.SendMessageParams
	edited   []*telego.EditMessageTextParams
	answered []*telego.AnswerCallbackQueryParams
}

func (f *fakeTelegram) SendMessage(_ context.Context, p *telego.SendMessageParams) (*telego.Message, error) {
	f.sent = append(f.sent, p)
	return &telego.Message{MessageID: len(f.sent)}, nil
}

// EditMessageText ведёт себя как Bot API: правка тем же текстом отклоняется.
func (f *fakeTelegram) EditMessageText(_ context.Context, p *telego.EditMessageTextParams) (*telego.Message, error) {
	for i := len(f.edited) - 1; i >= 0; i-- {
		if f.edited[i].MessageID == p.MessageID {
			if f.edited[i].Text == p.Text {
				f.edited = append(f.edited, p)
				return nil, errors.New(`telego: editMessageText: api: 400 "Bad Request: message is not modified"`)
			}
			break
		}
	}
	f.edited = append(f.edited, p)
	return &telego.Message{MessageID: p.MessageID}, nil
}

func (f *fakeTelegram) AnswerCallbackQuery(_ context.Context, p *telego.AnswerCallbackQueryParams) error {
	f.answered = append(f.answered, p)
	return nil
}

func newHandler(t *testing.T) (*top.Handler, *fakeTelegram, *fixture) {
	f := newFixture(t)
	api := &fakeTelegram{}
	return top.NewHandler(f.service, api, f.tr, time.UTC, time.Second), api, f
}

func groupMessage(chatType string) *telego.Message {
	return &telego.Message{
		MessageID: 10,
		Chat:      telego.Chat{ID: guild, Type: chatType},
		From:      &telego.User{ID: 1},
		Text:      "/top",
	}
}

func callbackData(t *testing.T, markup telego.ReplyMarkup, row int) string {
	t.Helper()
	kb, ok := markup.(*telego.InlineKeyboardMarkup)
	require.True(t, ok, "ожидалась inline-клавиатура")
	require.Greater(t, len(kb.InlineKeyboard), row)
	return kb.InlineKeyboard[row][0].CallbackData
}

func TestHandleTop_NotGuild(t *testing.T) {
	h, api, f := newHandler(t)
	h.HandleTop(context.Background(), groupMessage(telego.ChatTypePrivate))

	require.Len(t, api.sent, 1)
	assert.Equal(t, "❌ Команда работает только в сообществе", api.sent[0].Text)
	assert.Nil(t, api.sent[0].ReplyMarkup)
	assert.Zero(t, f.sessions.Len())
}

func TestHandleTop_SendsMenu(t *testing.T) {
	h, api, f := newHandler(t)
	f.members.byField[members.FieldVoice] = []members.Member{{UserID: 42, VoiceActivity: 2 * time.Hour}}

	h.HandleTop(context.Background(), groupMessage(telego.ChatTypeSupergroup))

	require.Len(t, api.sent, 1)
	msg := api.sent[0]
	assert.Equal(t, telego.ModeHTML, msg.ParseMode)
	assert.Contains(t, msg.Text, "<b>🎙 Топ по голосовому онлайну</b>")
	assert.Contains(t, msg.Text, `1. <a href="tg://user?id=42">42</a> — 2 ч 0 мин`)
	assert.Contains(t, msg.Text, "Меню активно 1 мин")

	kb := msg.ReplyMarkup.(*telego.InlineKeyboardMarkup)
	require.Len(t, kb.InlineKeyboard, 5)
	assert.Equal(t, "• Голосовой онлайн", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "Баланс", kb.InlineKeyboard[1][0].Text)
	assert.Equal(t, 1, f.sessions.Len())

	session, metric, ok := top.ParseCallbackData(callbackData(t, msg.ReplyMarkup, 3))
	require.True(t, ok)
	assert.NotEmpty(t, session)
	assert.Equal(t, top.MetricExperience, metric)
}

func TestHandleCallback_SwitchesMetric(t *testing.T) {
	h, api, f := newHandler(t)
	f.members.byField[members.FieldExperience] = []members.Member{{UserID: 7, Experience: 1500}}
	h.HandleTop(context.Background(), groupMessage(telego.ChatTypeGroup))
	require.Len(t, api.sent, 1)

	q := &telego.CallbackQuery{
		ID:      "cb-1",
		Data:    callbackData(t, api.sent[0].ReplyMarkup, 3),
		Message: &telego.Message{MessageID: 99, Chat: telego.Chat{ID: guild, Type: telego.ChatTypeGroup}},
	}
	h.HandleCallback(context.Background(), q)

	require.Len(t, api.edited, 1)
	edit := api.edited[0]
	assert.Equal(t, 99, edit.MessageID)
	assert.Contains(t, edit.Text, "⭐ Топ по опыту")
	assert.Contains(t, edit.Text, "1 500 опыта")
	assert.Equal(t, "• Опыт", edit.ReplyMarkup.InlineKeyboard[3][0].Text)

	require.Len(t, api.answered, 1)
	assert.Empty(t, api.answered[0].Text)

	// повторное нажатие перерисовывает топ, "not modified" не считается ошибкой
	h.HandleCallback(context.Background(), q)
	assert.Len(t, api.edited, 2)
	require.Len(t, api.answered, 2)
	assert.Empty(t, api.answered[1].Text)
	assert.Equal(t, 3, f.members.calls, "каждое нажатие читает топ заново")
}

func TestHandleCallback_RetryAfterStoreError(t *testing.T) {
	h, api, f := newHandler(t)
	f.members.byField[members.FieldExperience] = []members.Member{{UserID: 7, Experience: 1500}}
	h.HandleTop(context.Background(), groupMessage(telego.ChatTypeGroup))
	require.Len(t, api.sent, 1)

	q := &telego.CallbackQuery{
		ID:      "cb-1",
		Data:    callbackData(t, api.sent[0].ReplyMarkup, 3),
		Message: &telego.Message{MessageID: 99, Chat: telego.Chat{ID: guild, Type: telego.ChatTypeGroup}},
	}

	f.members.err = common.ErrStoreUnavailable
	h.HandleCallback(context.Background(), q)
	assert.Empty(t, api.edited)
	require.Len(t, api.answered, 1)
	assert.True(t, api.answered[0].ShowAlert)

	f.members.err = nil
	h.HandleCallback(context.Background(), q)
	require.Len(t, api.edited, 1, "после ошибки сообщение должно догнать выбранный топ")
	assert.Contains(t, api.edited[0].Text, "⭐ Топ по опыту")
	assert.Equal(t, "• Опыт", api.edited[0].ReplyMarkup.InlineKeyboard[3][0].Text)
}

func TestHandleTop_EscapesCoinName(t *testing.T) {
	h, api, f := newHandler(t)
	f.economy.settings = economy.Settings{Coin: "<b>&coins", Forms: []string{"c<oin", "c&oins"}}
	f.members.byField[members.FieldBalance] = []members.Member{{UserID: 7, Balance: 2}}
	h.HandleTop(context.Background(), groupMessage(telego.ChatTypeGroup))

	q := &telego.CallbackQuery{
		ID:      "cb-1",
		Data:    callbackData(t, api.sent[0].ReplyMarkup, 1),
		Message: &telego.Message{MessageID: 99, Chat: telego.Chat{ID: guild, Type: telego.ChatTypeGroup}},
	}
	h.HandleCallback(context.Background(), q)

	require.Len(t, api.edited, 1)
	text := api.edited[0].Text
	assert.Contains(t, text, "&lt;b&gt;&amp;coins")
	assert.Contains(t, text, "2 c&amp;oins")
	assert.NotContains(t, text, "<b>&coins")
}

func TestHandleCallback_Errors(t *testing.T) {
	h, api, _ := newHandler(t)
	h.HandleTop(context.Background(), groupMessage(telego.ChatTypeGroup))
	data := callbackData(t, api.sent[0].ReplyMarkup, 0)
	session, _, _ := top.ParseCallbackData(data)

	tests := []struct {
		name string
		data string
		want string
	}{
		{"устаревшая сессия", top.CallbackData("00000000-0000-0000-0000-000000000000", top.MetricVoice), "⌛ Меню устарело, вызовите топ ещё раз"},
		{"неизвестный топ", top.CallbackData(session, "karma"), "❌ Такого топа нет"},
		{"битые данные", "top:", "❌ Такого топа нет"},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h.HandleCallback(context.Background(), &telego.CallbackQuery{ID: tt.name, Data: tt.data})
			require.Len(t, api.answered, i+1)
			assert.Equal(t, tt.want, api.answered[i].Text)
			assert.True(t, api.answered[i].ShowAlert)
		})
	}
	assert.Empty(t, api.edited)
}

func TestCallbackData_RoundTrip(t *testing.T) {
	data := top.CallbackData("abc", top.MetricRelationship)
	assert.True(t, top.IsCallback(data))
	assert.LessOrEqual(t, len(top.CallbackData(strings.Repeat("f", 36), top.MetricRelationship)), 64, "лимит callback data в Telegram")

	session, metric, ok := top.ParseCallbackData(data)
	require.True(t, ok)
	assert.Equal(t, "abc", session)
	assert.Equal(t, top.MetricRelationship, metric)

	_, _, ok = top.ParseCallbackData("casino:spin")
	assert.False(t, ok)
}
