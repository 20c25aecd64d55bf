// Package postgres — queries.go содержит миграции схемы.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Migration — одна версия схемы.
type Migration struct {
	Version int
	SQL     string
}

// RunMigrations создаёт таблицу schema_migrations и применяет миграции по порядку.
// Каждая миграция выполняется в своей транзакции; уже применённые пропускаются.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, migrations []Migration) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("ошибка создания таблицы миграций: %w", err)
	}

	for _, m := range migrations {
		applied, err := execMigrationSQL(ctx, pool, m.Version, m.SQL)
		if err != nil {
			return fmt.Errorf("миграция %d: %w", m.Version, err)
		}
		if applied {
			log.Infof("Миграция %d применена", m.Version)
		}
	}
	return nil
}

// execMigrationSQL выполняет один SQL-запрос миграции в транзакции.
// Если запрос упадёт — транзакция откатится автоматически.
func execMigrationSQL(ctx context.Context, pool *pgxpool.Pool, version int, sql string) (bool, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", version,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки миграции: %w", err)
	}
	if exists {
		return false, nil
	}

	if _, err := tx.Exec(ctx, sql); err != nil {
		return false, fmt.Errorf("ошибка выполнения миграции %d: %w", version, err)
	}

	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version) VALUES ($1)", version,
	); err != nil {
		return false, fmt.Errorf("ошибка записи версии миграции: %w", err)
	}

	return true, tx.Commit(ctx)
}

// Schema — миграции таблиц сообщества. Порядок версий менять нельзя,
// новые изменения добавляются в конец.
var Schema = []Migration{
	{Version: 1, SQL: `
		CREATE TABLE IF NOT EXISTS members (
			guild_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			voice_activity BIGINT NOT NULL DEFAULT 0,
			balance BIGINT NOT NULL DEFAULT 0,
			experience BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (guild_id, user_id)
		)
	`},
	{Version: 2, SQL: `
		CREATE TABLE IF NOT EXISTS likes (
			id BIGSERIAL PRIMARY KEY,
			from_user_id BIGINT NOT NULL,
			to_user_id BIGINT NOT NULL,
			type SMALLINT NOT NULL CHECK (type IN (-1, 1)),
			created_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_likes_to_user ON likes(to_user_id);
	`},
	{Version: 3, SQL: `
		CREATE TABLE IF NOT EXISTS relationships (
			relationship_id BIGSERIAL PRIMARY KEY,
			guild_id BIGINT NOT NULL,
			creation_time TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_relationships_guild_time ON relationships(guild_id, creation_time);
		CREATE TABLE IF NOT EXISTS relationship_participants (
			relationship_id BIGINT NOT NULL REFERENCES relationships(relationship_id) ON DELETE CASCADE,
			user_id BIGINT NOT NULL,
			PRIMARY KEY (relationship_id, user_id)
		);
	`},
	{Version: 4, SQL: `CREATE INDEX IF NOT EXISTS idx_members_guild ON members(guild_id)`},
}
