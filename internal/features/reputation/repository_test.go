package reputation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/guild-top/internal/features/reputation"
	"serotonyl.ru/guild-top/internal/testutil"
)

const guild = int64(42)

func TestRepository_Top(t *testing.T) {
	d := testutil.SetupTestDB(t)
	const (
		alice = int64(1)
		bob   = int64(2)
		carol = int64(3)
		dave  = int64(4)
	)
	testutil.AddMembers(t, d,
		testutil.Member{GuildID: guild, UserID: alice},
		testutil.Member{GuildID: guild, UserID: bob},
		testutil.Member{GuildID: guild, UserID: carol},
		testutil.Member{GuildID: guild, UserID: dave},
	)
	// alice: +1 +1 +1 (повторы от одного и того же тоже считаются)
	testutil.AddLike(t, d, bob, alice, reputation.VoteUp)
	testutil.AddLike(t, d, bob, alice, reputation.VoteUp)
	testutil.AddLike(t, d, carol, alice, reputation.VoteUp)
	// bob: +1 -1 -1 = -1
	testutil.AddLike(t, d, alice, bob, reputation.VoteUp)
	testutil.AddLike(t, d, carol, bob, reputation.VoteDown)
	testutil.AddLike(t, d, dave, bob, reputation.VoteDown)
	// dave: +1
	testutil.AddLike(t, d, alice, dave, reputation.VoteUp)
	// carol без голосов

	top, err := reputation.NewRepository(d).Top(context.Background(), reputation.TopQuery{GuildID: guild, Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, []reputation.Score{
		{UserID: alice, Reputation: 3},
		{UserID: dave, Reputation: 1},
		{UserID: carol, Reputation: 0},
		{UserID: bob, Reputation: -1},
	}, top)
}

func TestRepository_Top_ZeroLikesIsZero(t *testing.T) {
	d := testutil.SetupTestDB(t)
	testutil.AddMembers(t, d, testutil.Member{GuildID: guild, UserID: 5})

	top, err := reputation.NewRepository(d).Top(context.Background(), reputation.TopQuery{GuildID: guild, Limit: 10})
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, reputation.Score{UserID: 5, Reputation: 0}, top[0])
}

func TestRepository_Top_GroupsBeforeLimit(t *testing.T) {
	d := testutil.SetupTestDB(t)
	for u := int64(1); u <= 12; u++ {
		testutil.AddMembers(t, d, testutil.Member{GuildID: guild, UserID: u})
	}
	// у участника 12 много голосов: при LIMIT до группировки он бы занял весь топ
	for i := 0; i < 15; i++ {
		testutil.AddLike(t, d, 1, 12, reputation.VoteUp)
	}

	top, err := reputation.NewRepository(d).Top(context.Background(), reputation.TopQuery{GuildID: guild, Limit: 10})
	require.NoError(t, err)
	require.Len(t, top, 10)
	assert.Equal(t, reputation.Score{UserID: 12, Reputation: 15}, top[0])
	for _, s := range top[1:] {
		assert.Zero(t, s.Reputation)
	}
}

func TestTopQuery_BuildRejectsLimitOutOfRange(t *testing.T) {
	_, _, err := reputation.TopQuery{GuildID: guild}.Build()
	assert.Error(t, err)

	_, _, err = reputation.TopQuery{GuildID: guild, Limit: 11}.Build()
	assert.Error(t, err)

	_, _, err = reputation.TopQuery{GuildID: guild, Limit: 10}.Build()
	assert.NoError(t, err)
}
