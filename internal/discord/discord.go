// Package discord — площадка Discord: слэш-команда /top и меню выбора
// топа под сообщением. Выбор пункта обновляет то же сообщение.
package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/guild-top/internal/common"
	"serotonyl.ru/guild-top/internal/features/top"
	"serotonyl.ru/guild-top/internal/i18n"
)

const (
	commandName    = "top"
	customIDPrefix = "top:"
	embedColor     = 0x5865F2
)

// Markup — разметка Discord: упоминание и метка времени, которую клиент
// показывает в часовом поясе читателя.
type Markup struct{}

func (Markup) Mention(userID int64) string {
	return "<@" + strconv.FormatInt(userID, 10) + ">"
}

func (Markup) Timestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:f>", t.Unix())
}

func (Markup) Text(s string) string {
	return s
}

// responder отвечает на interaction. *discordgo.Session подходит.
type responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

// Host — Discord-бот топов.
type Host struct {
	token        string
	service      *top.Service
	tr           i18n.Translator
	queryTimeout time.Duration
}

func New(token string, service *top.Service, tr i18n.Translator, queryTimeout time.Duration) *Host {
	return &Host{token: token, service: service, tr: tr, queryTimeout: queryTimeout}
}

// Start подключается к шлюзу, регистрирует /top и работает до отмены ctx.
func (h *Host) Start(ctx context.Context) error {
	s, err := discordgo.New("Bot " + h.token)
	if err != nil {
		return fmt.Errorf("ошибка создания Discord-сессии: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds

	s.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		h.HandleInteraction(ctx, s, ic.Interaction)
	})

	if err := s.Open(); err != nil {
		return fmt.Errorf("ошибка подключения к Discord: %w", err)
	}
	defer s.Close()

	dm := false
	_, err = s.ApplicationCommandCreate(s.State.User.ID, "", &discordgo.ApplicationCommand{
		Name:         commandName,
		Description:  h.tr.T("top.placeholder"),
		DMPermission: &dm,
	})
	if err != nil {
		return fmt.Errorf("ошибка регистрации команды /%s: %w", commandName, err)
	}

	log.WithField("user", s.State.User.Username).Info("Discord-бот запущен")
	<-ctx.Done()
	log.Info("Discord-бот останавливается...")
	return nil
}

// HandleInteraction обрабатывает слэш-команду и выбор в меню.
func (h *Host) HandleInteraction(ctx context.Context, r responder, i *discordgo.Interaction) {
	defer func() {
		if rec := recover(); rec != nil {
			log.WithField("panic", fmt.Sprintf("%v", rec)).Error("ПАНИКА в обработчике Discord — восстановлено")
		}
	}()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if i.ApplicationCommandData().Name == commandName {
			h.handleCommand(ctx, r, i)
		}
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		if sessionID, ok := strings.CutPrefix(data.CustomID, customIDPrefix); ok {
			h.handleSelect(ctx, r, i, sessionID, data.Values)
		}
	}
}

func (h *Host) handleCommand(ctx context.Context, r responder, i *discordgo.Interaction) {
	guildID, err := guildOf(i)
	if err != nil {
		h.respondError(r, i, err)
		return
	}

	ctrl := top.NewController(guildID, h.service.Registry(h.tr, Markup{}))
	renderCtx, cancel := context.WithTimeout(ctx, h.queryTimeout)
	defer cancel()
	view, err := ctrl.Initial(renderCtx)
	if err != nil {
		log.WithError(err).WithField("guild_id", guildID).Error("Ошибка отрисовки топа")
		h.respondError(r, i, err)
		return
	}

	sessionID := h.service.Open(ctrl)
	h.respond(r, i, discordgo.InteractionResponseChannelMessageWithSource, h.message(sessionID, view))
}

func (h *Host) handleSelect(ctx context.Context, r responder, i *discordgo.Interaction, sessionID string, values []string) {
	ctrl, err := h.service.Session(sessionID)
	if err != nil {
		h.respondError(r, i, err)
		return
	}
	if len(values) != 1 {
		h.respondError(r, i, common.ErrUnknownMetric)
		return
	}

	renderCtx, cancel := context.WithTimeout(ctx, h.queryTimeout)
	defer cancel()
	view, err := ctrl.Select(renderCtx, top.MetricName(values[0]))
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guild_id": ctrl.GuildID(),
			"metric":   values[0],
		}).Warn("Ошибка выбора топа")
		h.respondError(r, i, err)
		return
	}
	h.respond(r, i, discordgo.InteractionResponseUpdateMessage, h.message(sessionID, view))
}

// guildOf возвращает ID сервера. Команда вне сервера — common.ErrNotGuild.
func guildOf(i *discordgo.Interaction) (int64, error) {
	if i.GuildID == "" {
		return 0, common.ErrNotGuild
	}
	id, err := strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректный ID сервера %q: %w", i.GuildID, err)
	}
	return id, nil
}

func (h *Host) message(sessionID string, view top.View) *discordgo.InteractionResponseData {
	options := make([]discordgo.SelectMenuOption, len(view.Options))
	for n, o := range view.Options {
		options[n] = discordgo.SelectMenuOption{Label: o.Label, Value: string(o.Name), Default: o.Active}
	}
	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       view.Title,
			Description: view.Description,
			Color:       embedColor,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:    discordgo.StringSelectMenu,
					CustomID:    customIDPrefix + sessionID,
					Placeholder: h.tr.T("top.placeholder"),
					Options:     options,
				},
			}},
		},
	}
}

func (h *Host) respondError(r responder, i *discordgo.Interaction, err error) {
	h.respond(r, i, discordgo.InteractionResponseChannelMessageWithSource, &discordgo.InteractionResponseData{
		Content: h.tr.T(top.ErrorKey(err)),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

func (h *Host) respond(r responder, i *discordgo.Interaction, typ discordgo.InteractionResponseType, data *discordgo.InteractionResponseData) {
	if err := r.InteractionRespond(i, &discordgo.InteractionResponse{Type: typ, Data: data}); err != nil {
		log.WithError(err).WithField("interaction_id", i.ID).Error("Ошибка ответа Discord")
	}
}
