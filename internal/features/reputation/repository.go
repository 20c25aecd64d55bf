// Package reputation — repository.go считает топ репутации.
package reputation

import (
	"context"
	"fmt"

	"serotonyl.ru/guild-top/internal/common"
	"serotonyl.ru/guild-top/internal/db"
)

// TopQuery — параметры топа репутации.
type TopQuery struct {
	GuildID int64
	Limit   int
}

// Build собирает запрос: участники LEFT JOIN голоса, сумма с COALESCE в 0,
// группировка до LIMIT. Участники без голосов остаются в выборке со счётом 0,
// отрицательные суммы уходят ниже нулевых.
func (q TopQuery) Build() (string, []any, error) {
	if q.Limit <= 0 || q.Limit > common.TopSize {
		return "", nil, fmt.Errorf("лимит топа должен быть от 1 до %d, получено %d", common.TopSize, q.Limit)
	}
	query := `
		SELECT m.user_id, COALESCE(SUM(l.type), 0) AS reputation
		FROM members m
		LEFT JOIN likes l ON l.to_user_id = m.user_id
		WHERE m.guild_id = ?
		GROUP BY m.user_id
		ORDER BY reputation DESC, m.user_id ASC
		LIMIT ?
	`
	return query, []any{q.GuildID, q.Limit}, nil
}

// Repository читает голоса и участников.
type Repository struct {
	db db.Queryer
}

// NewRepository создаёт репозиторий репутации.
func NewRepository(db db.Queryer) *Repository {
	return &Repository{db: db}
}

// Top возвращает топ репутации сообщества.
func (r *Repository) Top(ctx context.Context, q TopQuery) ([]Score, error) {
	query, args, err := q.Build()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: топ репутации: %w", common.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []Score
	for rows.Next() {
		var s Score
		if err := rows.Scan(&s.UserID, &s.Reputation); err != nil {
			return nil, fmt.Errorf("%w: ошибка сканирования репутации: %w", common.ErrStoreUnavailable, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ошибка чтения репутации: %w", common.ErrStoreUnavailable, err)
	}
	return out, nil
}
