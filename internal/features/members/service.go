// Package members — service.go содержит логику топов участников.
package members

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Service отдаёт топы участников.
type Service struct {
	repo   *Repository
	logger log.FieldLogger
}

// NewService создаёт сервис участников.
func NewService(repo *Repository, logger log.FieldLogger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Top возвращает топ сообщества по полю.
func (s *Service) Top(ctx context.Context, guildID int64, field Field, limit int) ([]Member, error) {
	out, err := s.repo.Top(ctx, TopQuery{GuildID: guildID, Field: field, Limit: limit})
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(log.Fields{
		"guild_id": guildID,
		"field":    field.String(),
		"rows":     len(out),
	}).Debug("топ участников загружен")
	return out, nil
}
