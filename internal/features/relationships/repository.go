// Package relationships — repository.go читает участников самых старых отношений.
package relationships

import (
	"context"
	"fmt"

	"serotonyl.ru/guild-top/internal/common"
	"serotonyl.ru/guild-top/internal/db"
)

// OldestQuery — выборка участников Limit самых старых отношений сообщества.
type OldestQuery struct {
	GuildID int64
	Limit   int
}

// RowLimit — сколько строк просит внешний запрос: две на отношения и одна
// сверху, чтобы заметить лишнего участника.
func (q OldestQuery) RowLimit() int {
	return 2*q.Limit + 1
}

// Build собирает запрос. Подзапрос отбирает отношения целиком, поэтому
// граница LIMIT не режет пару. Участники одних отношений идут подряд.
func (q OldestQuery) Build() (string, []any, error) {
	if q.Limit <= 0 || q.Limit > common.TopSize {
		return "", nil, fmt.Errorf("лимит топа должен быть от 1 до %d, получено %d", common.TopSize, q.Limit)
	}
	query := `
		SELECT p.relationship_id, p.user_id, r.creation_time
		FROM (
			SELECT relationship_id, creation_time
			FROM relationships
			WHERE guild_id = ?
			ORDER BY creation_time ASC, relationship_id ASC
			LIMIT ?
		) r
		JOIN relationship_participants p ON p.relationship_id = r.relationship_id
		ORDER BY r.creation_time ASC, r.relationship_id ASC, p.user_id ASC
		LIMIT ?
	`
	return query, []any{q.GuildID, q.Limit, q.RowLimit()}, nil
}

type Repository struct {
	db db.Queryer
}

func NewRepository(db db.Queryer) *Repository {
	return &Repository{db: db}
}

// Oldest возвращает строки участников, не собирая их в пары.
func (r *Repository) Oldest(ctx context.Context, q OldestQuery) ([]Participant, error) {
	query, args, err := q.Build()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: участники отношений: %w", common.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	out := make([]Participant, 0, q.RowLimit())
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.RelationshipID, &p.UserID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: ошибка сканирования участника: %w", common.ErrStoreUnavailable, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ошибка чтения участников: %w", common.ErrStoreUnavailable, err)
	}
	return out, nil
}
