// Package members — repository.go строит и выполняет запрос топа участников.
package members

import (
	"context"
	"fmt"
	"time"

	"serotonyl.ru/guild-top/internal/common"
	"serotonyl.ru/guild-top/internal/db"
)

// TopQuery — параметры запроса топа: сообщество, поле и размер.
type TopQuery struct {
	GuildID int64
	Field   Field
	Limit   int
}

// Build собирает SQL с плейсхолдерами "?".
// Сортировка: поле по убыванию, при равенстве — user_id по возрастанию,
// чтобы порядок не зависел от того, как база отдаёт строки.
func (q TopQuery) Build() (string, []any, error) {
	col, err := q.Field.Column()
	if err != nil {
		return "", nil, err
	}
	if q.Limit <= 0 || q.Limit > common.TopSize {
		return "", nil, fmt.Errorf("лимит топа должен быть от 1 до %d, получено %d", common.TopSize, q.Limit)
	}
	query := `
		SELECT guild_id, user_id, voice_activity, balance, experience
		FROM members
		WHERE guild_id = ?
		ORDER BY ` + col + ` DESC, user_id ASC
		LIMIT ?
	`
	return query, []any{q.GuildID, q.Limit}, nil
}

type Repository struct {
	db db.Queryer
}

func NewRepository(db db.Queryer) *Repository {
	return &Repository{db: db}
}

// Top возвращает не больше q.Limit участников сообщества, отсортированных по полю.
func (r *Repository) Top(ctx context.Context, q TopQuery) ([]Member, error) {
	query, args, err := q.Build()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: топ участников по %s: %w", common.ErrStoreUnavailable, q.Field, err)
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		var (
			m     Member
			voice int64
		)
		if err := rows.Scan(&m.GuildID, &m.UserID, &voice, &m.Balance, &m.Experience); err != nil {
			return nil, fmt.Errorf("%w: ошибка сканирования строки: %w", common.ErrStoreUnavailable, err)
		}
		m.VoiceActivity = time.Duration(voice) * time.Second
		out = append(out, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ошибка чтения строк: %w", common.ErrStoreUnavailable, err)
	}
	return out, nil
}
