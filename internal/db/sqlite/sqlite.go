// Package sqlite — локальное хранилище на SQLite (modernc.org/sqlite, без CGO).
// Используется в режиме DB_DRIVER=sqlite и в тестах репозиториев.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"serotonyl.ru/guild-top/internal/db"
)

// Memory — путь для базы в памяти.
const Memory = ":memory:"

// DB — обёртка над *sql.DB, реализующая db.Queryer.
type DB struct {
	*sql.DB
}

// Open открывает (или создаёт) базу и накатывает схему.
func Open(path string) (*DB, error) {
	dsn := ":memory:"
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("ошибка создания каталога базы: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия SQLite: %w", err)
	}
	if path == Memory {
		// каждое соединение к :memory: — отдельная пустая база
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("SQLite недоступна: %w", err)
	}
	if _, err := sqlDB.Exec(Schema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ошибка создания схемы SQLite: %w", err)
	}

	log.WithField("path", path).Info("SQLite открыта")
	return &DB{sqlDB}, nil
}

// Query выполняет читающий запрос.
func (d *DB) Query(ctx context.Context, query string, args ...any) (db.Rows, error) {
	rows, err := d.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &sqlRows{rows}, nil
}

// sqlRows приводит *sql.Rows к db.Rows (Close без ошибки, как у pgx).
type sqlRows struct {
	*sql.Rows
}

func (r *sqlRows) Close() {
	_ = r.Rows.Close()
}

// Schema — таблицы сообщества. Те же, что и в миграциях PostgreSQL.
const Schema = `
CREATE TABLE IF NOT EXISTS members (
    guild_id BIGINT NOT NULL,
    user_id BIGINT NOT NULL,
    voice_activity BIGINT NOT NULL DEFAULT 0,
    balance BIGINT NOT NULL DEFAULT 0,
    experience BIGINT NOT NULL DEFAULT 0,
    PRIMARY KEY (guild_id, user_id)
);
CREATE TABLE IF NOT EXISTS likes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    from_user_id BIGINT NOT NULL,
    to_user_id BIGINT NOT NULL,
    type SMALLINT NOT NULL CHECK (type IN (-1, 1)),
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_likes_to_user ON likes(to_user_id);
CREATE TABLE IF NOT EXISTS relationships (
    relationship_id INTEGER PRIMARY KEY AUTOINCREMENT,
    guild_id BIGINT NOT NULL,
    creation_time TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_relationships_guild_time ON relationships(guild_id, creation_time);
CREATE TABLE IF NOT EXISTS relationship_participants (
    relationship_id BIGINT NOT NULL REFERENCES relationships(relationship_id) ON DELETE CASCADE,
    user_id BIGINT NOT NULL,
    PRIMARY KEY (relationship_id, user_id)
);
`
