package top_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/guild-top/internal/features/economy"
	"serotonyl.ru/guild-top/internal/features/members"
	"serotonyl.ru/guild-top/internal/features/relationships"
	"serotonyl.ru/guild-top/internal/features/reputation"
	"serotonyl.ru/guild-top/internal/features/top"
	"serotonyl.ru/guild-top/internal/i18n"
	"serotonyl.ru/guild-top/internal/testutil"
)

// newSQLService собирает топы поверх настоящих репозиториев на SQLite.
func newSQLService(t *testing.T) (*top.Service, *top.Registry, func(...testutil.Member)) {
	t.Helper()
	d := testutil.SetupTestDB(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	catalog, err := i18n.Load()
	require.NoError(t, err)

	svc := top.NewService(top.Deps{
		Members:       members.NewService(members.NewRepository(d), logger),
		Reputation:    reputation.NewService(reputation.NewRepository(d), logger),
		Relationships: relationships.NewService(relationships.NewRepository(d), logger),
		Economy: economy.NewService(economy.NewRepository(economy.Settings{
			Coin: "coins", Forms: []string{"coin", "coins"},
		}), logger),
		Logger: logger,
	})
	reg := svc.Registry(catalog.Printer("en-US"), top.PlainMarkup{Location: time.UTC})

	add := func(ms ...testutil.Member) { testutil.AddMembers(t, d, ms...) }
	return svc, reg, add
}

func TestService_SQL_TiedExperience(t *testing.T) {
	_, reg, add := newSQLService(t)
	add(
		testutil.Member{GuildID: guild, UserID: 30, Experience: 500},
		testutil.Member{GuildID: guild, UserID: 10, Experience: 500},
		testutil.Member{GuildID: guild, UserID: 20, Experience: 900},
	)

	view, err := top.NewController(guild, reg).Select(context.Background(), top.MetricExperience)
	require.NoError(t, err)
	assert.Equal(t, "⭐ Top by experience", view.Title)
	assert.Equal(t, "1. 20 — 900 XP\n2. 10 — 500 XP\n3. 30 — 500 XP", view.Description)
}

func TestService_SQL_BalanceLimitedToSize(t *testing.T) {
	_, reg, add := newSQLService(t)
	for u := int64(1); u <= 15; u++ {
		add(testutil.Member{GuildID: guild, UserID: u, Balance: u})
	}

	view, err := top.NewController(guild, reg).Select(context.Background(), top.MetricBalance)
	require.NoError(t, err)
	assert.Equal(t, "💰 Top by balance: coins", view.Title)
	lines := strings.Split(view.Description, "\n")
	require.Len(t, lines, top.Size)
	assert.Equal(t, "1. 15 — 15 coins", lines[0])
	assert.Equal(t, "10. 6 — 6 coins", lines[9])
}

func TestService_Sweep(t *testing.T) {
	svc, reg, _ := newSQLService(t)
	id := svc.Open(top.NewController(guild, reg))
	_, err := svc.Session(id)
	require.NoError(t, err)
	assert.Zero(t, svc.Sweep())
	assert.Equal(t, top.DefaultSessionTTL, svc.SessionTTL())
}
