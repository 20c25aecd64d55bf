package top_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/guild-top/internal/features/economy"
	"serotonyl.ru/guild-top/internal/features/members"
	"serotonyl.ru/guild-top/internal/features/relationships"
	"serotonyl.ru/guild-top/internal/features/reputation"
	"serotonyl.ru/guild-top/internal/features/top"
	"serotonyl.ru/guild-top/internal/i18n"
)

type fakeMembers struct {
	byField map[members.Field][]members.Member
	err     error
	calls   int
}

func (f *fakeMembers) Top(_ context.Context, _ int64, field members.Field, limit int) ([]members.Member, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := f.byField[field]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeReputation struct {
	scores []reputation.Score
	err    error
}

func (f *fakeReputation) Top(context.Context, int64, int) ([]reputation.Score, error) {
	return f.scores, f.err
}

type fakeRelationships struct {
	pairs []relationships.Pair
	err   error
}

func (f *fakeRelationships) Oldest(context.Context, int64, int) ([]relationships.Pair, error) {
	return f.pairs, f.err
}

type fakeEconomy struct {
	settings economy.Settings
}

func (f fakeEconomy) Settings(context.Context, int64) (economy.Settings, error) {
	return f.settings, nil
}

type fixture struct {
	members       *fakeMembers
	reputation    *fakeReputation
	relationships *fakeRelationships
	economy       *fakeEconomy
	sessions      *top.Sessions
	service       *top.Service
	tr            i18n.Translator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	catalog, err := i18n.Load()
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		members:       &fakeMembers{byField: map[members.Field][]members.Member{}},
		reputation:    &fakeReputation{},
		relationships: &fakeRelationships{},
		economy: &fakeEconomy{settings: economy.Settings{
			Coin:  "пленки",
			Forms: []string{"пленка", "пленки", "пленок"},
		}},
		sessions: top.NewSessions(time.Minute),
		tr:       catalog.Printer("ru-RU"),
	}
	f.service = top.NewService(top.Deps{
		Members:       f.members,
		Reputation:    f.reputation,
		Relationships: f.relationships,
		Economy:       f.economy,
		Sessions:      f.sessions,
		Logger:        logger,
	})
	return f
}

func (f *fixture) registry() *top.Registry {
	return f.service.Registry(f.tr, top.PlainMarkup{Location: time.UTC})
}
