package relationships

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Service отдаёт самые долгие отношения сообщества.
type Service struct {
	repo   *Repository
	logger log.FieldLogger
}

func NewService(repo *Repository, logger log.FieldLogger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Oldest возвращает не больше limit пар, самые старые первыми.
func (s *Service) Oldest(ctx context.Context, guildID int64, limit int) ([]Pair, error) {
	rows, err := s.repo.Oldest(ctx, OldestQuery{GuildID: guildID, Limit: limit})
	if err != nil {
		return nil, err
	}
	pairs, err := BuildPairs(rows, limit)
	if err != nil {
		s.logger.WithError(err).WithField("guild_id", guildID).Error("участники отношений не складываются в пары")
		return nil, err
	}
	s.logger.WithFields(log.Fields{"guild_id": guildID, "pairs": len(pairs)}).Debug("отношения загружены")
	return pairs, nil
}
