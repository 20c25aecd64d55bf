// Package economy — service.go отдаёт настройки валюты остальным модулям.
package economy

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Service — поставщик настроек экономики.
type Service struct {
	repo   *Repository
	logger log.FieldLogger
}

func NewService(repo *Repository, logger log.FieldLogger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Settings возвращает настройки валюты сообщества.
// Сейчас настройки в памяти и ошибок нет, но ctx и error оставлены
// под хранение настроек в базе.
func (s *Service) Settings(ctx context.Context, guildID int64) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Settings{}, err
	}
	st := s.repo.Get(guildID)
	s.logger.WithFields(log.Fields{"guild_id": guildID, "coin": st.Coin}).Trace("настройки экономики")
	return st, nil
}
