package top

import (
	"context"
	"errors"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/guild-top/internal/common"
	"serotonyl.ru/guild-top/internal/features/economy"
	"serotonyl.ru/guild-top/internal/features/members"
	"serotonyl.ru/guild-top/internal/features/relationships"
	"serotonyl.ru/guild-top/internal/features/reputation"
	"serotonyl.ru/guild-top/internal/i18n"
)

// MemberRanker — топ участников по числовому полю.
type MemberRanker interface {
	Top(ctx context.Context, guildID int64, field members.Field, limit int) ([]members.Member, error)
}

// ReputationRanker — топ по сумме голосов.
type ReputationRanker interface {
	Top(ctx context.Context, guildID int64, limit int) ([]reputation.Score, error)
}

// RelationshipRanker — самые старые отношения.
type RelationshipRanker interface {
	Oldest(ctx context.Context, guildID int64, limit int) ([]relationships.Pair, error)
}

// EconomySettings — настройки валюты сообщества.
type EconomySettings interface {
	Settings(ctx context.Context, guildID int64) (economy.Settings, error)
}

// Deps — всё, что нужно топам.
type Deps struct {
	Members       MemberRanker
	Reputation    ReputationRanker
	Relationships RelationshipRanker
	Economy       EconomySettings
	Sessions      *Sessions
	Logger        log.FieldLogger
}

// Service собирает реестры топов и ведёт открытые меню.
type Service struct {
	deps Deps
}

func NewService(deps Deps) *Service {
	if deps.Sessions == nil {
		deps.Sessions = NewSessions(DefaultSessionTTL)
	}
	if deps.Logger == nil {
		deps.Logger = log.StandardLogger()
	}
	return &Service{deps: deps}
}

// Registry собирает реестр топов с текстами tr и разметкой площадки.
func (s *Service) Registry(tr i18n.Translator, markup Markup) *Registry {
	metrics := make([]Metric, 0, len(metricOrder))
	for _, name := range metricOrder {
		metrics = append(metrics, Metric{
			Name:  name,
			Label: tr.T("top.select." + string(name)),
			load:  s.loader(name, tr, markup),
		})
	}
	return newRegistry(tr, metrics)
}

// Open регистрирует сессию меню и возвращает её ID.
func (s *Service) Open(ctrl *Controller) string {
	id := s.deps.Sessions.Open(ctrl)
	s.deps.Logger.WithFields(log.Fields{"guild_id": ctrl.GuildID(), "session": id}).Debug("меню топов открыто")
	return id
}

// Session возвращает открытое меню.
func (s *Service) Session(id string) (*Controller, error) {
	return s.deps.Sessions.Get(id)
}

// Sweep удаляет устаревшие меню.
func (s *Service) Sweep() int {
	removed := s.deps.Sessions.Sweep()
	if removed > 0 {
		s.deps.Logger.WithFields(log.Fields{"removed": removed, "open": s.deps.Sessions.Len()}).Debug("устаревшие меню удалены")
	}
	return removed
}

// SessionTTL — время жизни меню.
func (s *Service) SessionTTL() time.Duration {
	return s.deps.Sessions.TTL()
}

func (s *Service) loader(name MetricName, tr i18n.Translator, markup Markup) loader {
	line := func(userID int64, value string) string {
		return tr.T("top.line", markup.Mention(userID), value)
	}

	switch name {
	case MetricVoice:
		return func(ctx context.Context, guildID int64) (string, string, error) {
			top, err := s.deps.Members.Top(ctx, guildID, members.FieldVoice, Size)
			if err != nil {
				return "", "", err
			}
			return tr.T("top.title.voice"), OrderedList(top, func(m members.Member) string {
				h, mins := common.SplitDuration(m.VoiceActivity)
				return line(m.UserID, tr.T("top.voice", strconv.FormatInt(h, 10), strconv.FormatInt(mins, 10)))
			}), nil
		}
	case MetricBalance:
		return func(ctx context.Context, guildID int64) (string, string, error) {
			settings, err := s.deps.Economy.Settings(ctx, guildID)
			if err != nil {
				return "", "", err
			}
			top, err := s.deps.Members.Top(ctx, guildID, members.FieldBalance, Size)
			if err != nil {
				return "", "", err
			}
			return tr.T("top.title.balance", markup.Text(settings.Coin)), OrderedList(top, func(m members.Member) string {
				return line(m.UserID, tr.T("top.balance", common.FormatNumber(m.Balance), markup.Text(settings.CoinFor(m.Balance))))
			}), nil
		}
	case MetricReputation:
		return func(ctx context.Context, guildID int64) (string, string, error) {
			top, err := s.deps.Reputation.Top(ctx, guildID, Size)
			if err != nil {
				return "", "", err
			}
			return tr.T("top.title.reputation"), OrderedList(top, func(sc reputation.Score) string {
				return line(sc.UserID, tr.T("top.reputation", strconv.FormatInt(sc.Reputation, 10)))
			}), nil
		}
	case MetricExperience:
		return func(ctx context.Context, guildID int64) (string, string, error) {
			top, err := s.deps.Members.Top(ctx, guildID, members.FieldExperience, Size)
			if err != nil {
				return "", "", err
			}
			return tr.T("top.title.experience"), OrderedList(top, func(m members.Member) string {
				return line(m.UserID, tr.T("top.experience", common.FormatNumber(m.Experience)))
			}), nil
		}
	case MetricRelationship:
		return func(ctx context.Context, guildID int64) (string, string, error) {
			pairs, err := s.deps.Relationships.Oldest(ctx, guildID, Size)
			if err != nil {
				return "", "", err
			}
			return tr.T("top.title.relationship"), OrderedList(pairs, func(p relationships.Pair) string {
				return tr.T("top.relationship_repr", markup.Mention(p.First), markup.Mention(p.Second), markup.Timestamp(p.CreatedAt))
			}), nil
		}
	default:
		panic("top: нет загрузчика для " + string(name))
	}
}

// ErrorKey подбирает ключ текста ошибки для пользователя.
func ErrorKey(err error) string {
	switch {
	case errors.Is(err, common.ErrUnknownMetric):
		return "error.unknown_metric"
	case errors.Is(err, common.ErrMalformedRelationship):
		return "error.malformed_relationship"
	case errors.Is(err, common.ErrStoreUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return "error.store_unavailable"
	case errors.Is(err, common.ErrSessionExpired):
		return "error.session_expired"
	case errors.Is(err, common.ErrNotGuild):
		return "error.not_guild"
	default:
		return "error.internal"
	}
}
