// Package top — handlers.go: команда топов и меню выбора в Telegram.
//
// /top отправляет сообщение с первым топом и кнопками всех топов.
// Нажатие кнопки (callback data "top:<сессия>:<топ>") перерисовывает
// то же сообщение.
package top

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/guild-top/internal/common"
	"serotonyl.ru/guild-top/internal/i18n"
)

const callbackPrefix = "top:"

// TelegramAPI — методы Bot API, которые нужны топам. *telego.Bot подходит.
type TelegramAPI interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
	EditMessageText(ctx context.Context, params *telego.EditMessageTextParams) (*telego.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *telego.AnswerCallbackQueryParams) error
}

// TelegramMarkup — HTML-разметка Telegram: ссылка на профиль и дата
// в часовом поясе бота.
type TelegramMarkup struct {
	Location *time.Location
}

func (m TelegramMarkup) Mention(userID int64) string {
	return fmt.Sprintf(`<a href="tg://user?id=%d">%d</a>`, userID, userID)
}

func (m TelegramMarkup) Timestamp(t time.Time) string {
	return common.FormatDateTime(t, m.Location)
}

func (m TelegramMarkup) Text(s string) string {
	return html.EscapeString(s)
}

// Handler обрабатывает команду топов и нажатия в меню.
type Handler struct {
	service      *Service
	api          TelegramAPI
	tr           i18n.Translator
	markup       Markup
	queryTimeout time.Duration
}

// NewHandler создаёт обработчик. queryTimeout ограничивает одну отрисовку топа.
func NewHandler(service *Service, api TelegramAPI, tr i18n.Translator, loc *time.Location, queryTimeout time.Duration) *Handler {
	return &Handler{
		service:      service,
		api:          api,
		tr:           tr,
		markup:       TelegramMarkup{Location: loc},
		queryTimeout: queryTimeout,
	}
}

// CallbackData кодирует нажатие кнопки меню.
func CallbackData(session string, metric MetricName) string {
	return callbackPrefix + session + ":" + string(metric)
}

// ParseCallbackData разбирает callback data. ok=false — нажатие не из меню топов.
func ParseCallbackData(data string) (session string, metric MetricName, ok bool) {
	rest, found := strings.CutPrefix(data, callbackPrefix)
	if !found {
		return "", "", false
	}
	session, name, found := strings.Cut(rest, ":")
	if !found || session == "" {
		return "", "", false
	}
	return session, MetricName(name), true
}

// IsCallback сообщает, относится ли нажатие к меню топов.
func IsCallback(data string) bool {
	return strings.HasPrefix(data, callbackPrefix)
}

// guildOf возвращает ID сообщества для чата. Личка и каналы сообществом не считаются.
func guildOf(chat telego.Chat) (int64, error) {
	switch chat.Type {
	case telego.ChatTypeGroup, telego.ChatTypeSupergroup:
		return chat.ID, nil
	default:
		return 0, common.ErrNotGuild
	}
}

// HandleTop обрабатывает команду !топ / /top.
func (h *Handler) HandleTop(ctx context.Context, msg *telego.Message) {
	chatID := msg.Chat.ID
	guildID, err := guildOf(msg.Chat)
	if err != nil {
		h.sendMessage(ctx, chatID, h.tr.T(ErrorKey(err)), nil)
		return
	}

	ctrl := NewController(guildID, h.service.Registry(h.tr, h.markup))

	renderCtx, cancel := context.WithTimeout(ctx, h.queryTimeout)
	defer cancel()
	view, err := ctrl.Initial(renderCtx)
	if err != nil {
		log.WithError(err).WithField("guild_id", guildID).Error("Ошибка отрисовки топа")
		h.sendMessage(ctx, chatID, h.tr.T(ErrorKey(err)), nil)
		return
	}

	id := h.service.Open(ctrl)
	h.sendMessage(ctx, chatID, h.renderText(view), h.keyboard(id, view))
}

// HandleCallback обрабатывает нажатие кнопки меню.
func (h *Handler) HandleCallback(ctx context.Context, q *telego.CallbackQuery) {
	sessionID, metric, ok := ParseCallbackData(q.Data)
	if !ok {
		h.answer(ctx, q.ID, h.tr.T(ErrorKey(common.ErrUnknownMetric)))
		return
	}

	ctrl, err := h.service.Session(sessionID)
	if err != nil {
		h.answer(ctx, q.ID, h.tr.T(ErrorKey(err)))
		return
	}

	renderCtx, cancel := context.WithTimeout(ctx, h.queryTimeout)
	defer cancel()
	view, err := ctrl.Select(renderCtx, metric)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guild_id": ctrl.GuildID(),
			"metric":   metric,
		}).Warn("Ошибка выбора топа")
		h.answer(ctx, q.ID, h.tr.T(ErrorKey(err)))
		return
	}

	if q.Message == nil {
		h.answer(ctx, q.ID, "")
		return
	}

	// Каждое нажатие перерисовывает сообщение: после ошибки отрисовки
	// или при новых данных в базе оно должно догнать состояние меню.
	chat := q.Message.GetChat()
	_, err = h.api.EditMessageText(ctx, &telego.EditMessageTextParams{
		ChatID:      tu.ID(chat.ID),
		MessageID:   q.Message.GetMessageID(),
		Text:        h.renderText(view),
		ParseMode:   telego.ModeHTML,
		ReplyMarkup: h.keyboard(sessionID, view),
	})
	switch {
	case err == nil:
	case isNotModified(err):
		log.WithFields(log.Fields{"chat_id": chat.ID, "metric": view.Metric}).Debug("Меню топов не изменилось")
	default:
		log.WithError(err).WithField("chat_id", chat.ID).Error("Ошибка редактирования меню топов")
	}
	h.answer(ctx, q.ID, "")
}

// isNotModified узнаёт ответ Bot API на правку тем же текстом и клавиатурой.
func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}

func (h *Handler) renderText(view View) string {
	minutes := strconv.FormatInt(int64(h.service.SessionTTL()/time.Minute), 10)
	return "<b>" + view.Title + "</b>\n\n" +
		view.Description + "\n\n" +
		"<i>" + html.EscapeString(h.tr.T("top.expires", minutes)) + "</i>"
}

func (h *Handler) keyboard(sessionID string, view View) *telego.InlineKeyboardMarkup {
	rows := make([][]telego.InlineKeyboardButton, 0, len(view.Options))
	for _, o := range view.Options {
		label := o.Label
		if o.Active {
			label = "• " + label
		}
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label).WithCallbackData(CallbackData(sessionID, o.Name)),
		))
	}
	return tu.InlineKeyboard(rows...)
}

func (h *Handler) sendMessage(ctx context.Context, chatID int64, text string, markup *telego.InlineKeyboardMarkup) {
	params := &telego.SendMessageParams{
		ChatID:    tu.ID(chatID),
		Text:      text,
		ParseMode: telego.ModeHTML,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := h.api.SendMessage(ctx, params); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

func (h *Handler) answer(ctx context.Context, queryID, text string) {
	err := h.api.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
		CallbackQueryID: queryID,
		Text:            text,
		ShowAlert:       text != "",
	})
	if err != nil {
		log.WithError(err).Debug("Ошибка ответа на callback")
	}
}
