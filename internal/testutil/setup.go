// Package testutil — хелперы для тестов: база в памяти и заполнение данными.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"serotonyl.ru/guild-top/internal/db/sqlite"
	"serotonyl.ru/guild-top/internal/features/reputation"
)

// SetupTestDB создаёт SQLite в памяти со схемой сообщества.
// Внешние сервисы не нужны, каждый тест получает свою базу.
func SetupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	d, err := sqlite.Open(sqlite.Memory)
	require.NoError(t, err, "SetupTestDB: Open")
	t.Cleanup(func() { d.Close() })
	return d
}

// Member — строка для AddMembers.
type Member struct {
	GuildID, UserID     int64
	Voice               time.Duration
	Balance, Experience int64
}

// AddMembers вставляет участников.
func AddMembers(t *testing.T, d *sqlite.DB, members ...Member) {
	t.Helper()
	for _, m := range members {
		_, err := d.Exec(
			`INSERT INTO members (guild_id, user_id, voice_activity, balance, experience) VALUES (?, ?, ?, ?, ?)`,
			m.GuildID, m.UserID, int64(m.Voice/time.Second), m.Balance, m.Experience,
		)
		require.NoError(t, err, "AddMembers")
	}
}

// AddLike записывает голос репутации (+1 или -1).
func AddLike(t *testing.T, d *sqlite.DB, from, to int64, vote reputation.Vote) {
	t.Helper()
	_, err := d.Exec(`INSERT INTO likes (from_user_id, to_user_id, type) VALUES (?, ?, ?)`, from, to, int(vote))
	require.NoError(t, err, "AddLike")
}

// AddRelationship создаёт отношения и их участников, возвращает relationship_id.
func AddRelationship(t *testing.T, d *sqlite.DB, guildID int64, created time.Time, users ...int64) int64 {
	t.Helper()
	res, err := d.Exec(`INSERT INTO relationships (guild_id, creation_time) VALUES (?, ?)`, guildID, created.UTC())
	require.NoError(t, err, "AddRelationship")
	id, err := res.LastInsertId()
	require.NoError(t, err, "AddRelationship: LastInsertId")
	for _, u := range users {
		_, err := d.Exec(`INSERT INTO relationship_participants (relationship_id, user_id) VALUES (?, ?)`, id, u)
		require.NoError(t, err, "AddRelationship: participant")
	}
	return id
}
