// Package reputation — service.go содержит логику топа репутации.
package reputation

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Service отдаёт топ репутации.
type Service struct {
	repo   *Repository
	logger log.FieldLogger
}

// NewService создаёт сервис репутации.
func NewService(repo *Repository, logger log.FieldLogger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Top возвращает не больше limit участников с наибольшей репутацией.
func (s *Service) Top(ctx context.Context, guildID int64, limit int) ([]Score, error) {
	out, err := s.repo.Top(ctx, TopQuery{GuildID: guildID, Limit: limit})
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(log.Fields{"guild_id": guildID, "rows": len(out)}).Debug("топ репутации загружен")
	return out, nil
}
