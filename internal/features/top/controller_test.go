package top_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/guild-top/internal/common"
	"serotonyl.ru/guild-top/internal/features/members"
	"serotonyl.ru/guild-top/internal/features/relationships"
	"serotonyl.ru/guild-top/internal/features/reputation"
	"serotonyl.ru/guild-top/internal/features/top"
)

const guild = int64(-100500)

func TestController_Initial(t *testing.T) {
	f := newFixture(t)
	f.members.byField[members.FieldVoice] = []members.Member{
		{UserID: 1, VoiceActivity: 5*time.Hour + 30*time.Minute},
		{UserID: 2, VoiceActivity: 45 * time.Minute},
	}

	ctrl := top.NewController(guild, f.registry())
	assert.Equal(t, top.MetricVoice, ctrl.Active())

	view, err := ctrl.Initial(context.Background())
	require.NoError(t, err)
	assert.Equal(t, top.MetricVoice, view.Metric)
	assert.Equal(t, "🎙 Топ по голосовому онлайну", view.Title)
	assert.Equal(t, "1. 1 — 5 ч 30 мин\n2. 2 — 0 ч 45 мин", view.Description)
	require.Len(t, view.Options, 5)
	assert.True(t, view.Options[0].Active)
	for _, o := range view.Options[1:] {
		assert.False(t, o.Active)
	}
}

func TestController_SelectEachMetric(t *testing.T) {
	f := newFixture(t)
	created := time.Date(2024, 2, 14, 20, 0, 0, 0, time.UTC)
	f.members.byField[members.FieldBalance] = []members.Member{{UserID: 3, Balance: 2350}, {UserID: 4, Balance: 1}}
	f.members.byField[members.FieldExperience] = []members.Member{{UserID: 5, Experience: 12000}}
	f.reputation.scores = []reputation.Score{{UserID: 6, Reputation: 4}, {UserID: 7, Reputation: -2}}
	f.relationships.pairs = []relationships.Pair{{RelationshipID: 1, First: 8, Second: 9, CreatedAt: created}}

	tests := []struct {
		metric top.MetricName
		title  string
		desc   string
	}{
		{top.MetricBalance, "💰 Топ по балансу: пленки", "1. 3 — 2 350 пленок\n2. 4 — 1 пленка"},
		{top.MetricExperience, "⭐ Топ по опыту", "1. 5 — 12 000 опыта"},
		{top.MetricReputation, "💞 Топ по репутации", "1. 6 — 4 💞\n2. 7 — -2 💞"},
		{top.MetricRelationship, "💍 Самые долгие отношения", "1. 8 и 9 вместе с 14.02.2024 20:00"},
	}
	ctrl := top.NewController(guild, f.registry())
	for _, tt := range tests {
		t.Run(string(tt.metric), func(t *testing.T) {
			view, err := ctrl.Select(context.Background(), tt.metric)
			require.NoError(t, err)
			assert.Equal(t, tt.metric, ctrl.Active())
			assert.Equal(t, tt.metric, view.Metric)
			assert.Equal(t, tt.title, view.Title)
			assert.Equal(t, tt.desc, view.Description)
		})
	}
}

func TestController_SelectSameTwiceIsIdentical(t *testing.T) {
	f := newFixture(t)
	f.members.byField[members.FieldExperience] = []members.Member{{UserID: 1, Experience: 10}, {UserID: 2, Experience: 10}}
	ctrl := top.NewController(guild, f.registry())

	first, err := ctrl.Select(context.Background(), top.MetricExperience)
	require.NoError(t, err)
	second, err := ctrl.Select(context.Background(), top.MetricExperience)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, f.members.calls, "каждый выбор читает базу заново")
}

func TestController_SelectUnknownKeepsState(t *testing.T) {
	f := newFixture(t)
	ctrl := top.NewController(guild, f.registry())
	_, err := ctrl.Select(context.Background(), top.MetricBalance)
	require.NoError(t, err)

	_, err = ctrl.Select(context.Background(), "karma")
	assert.ErrorIs(t, err, common.ErrUnknownMetric)
	assert.Equal(t, top.MetricBalance, ctrl.Active())
}

func TestController_EmptyTopHasPlaceholder(t *testing.T) {
	f := newFixture(t)
	view, err := top.NewController(guild, f.registry()).Initial(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Здесь пока никого нет", view.Description)
}

func TestController_RenderErrors(t *testing.T) {
	f := newFixture(t)
	f.relationships.err = fmt.Errorf("пары: %w", common.ErrMalformedRelationship)
	f.reputation.err = fmt.Errorf("%w: timeout", common.ErrStoreUnavailable)
	ctrl := top.NewController(guild, f.registry())

	_, err := ctrl.Select(context.Background(), top.MetricRelationship)
	assert.ErrorIs(t, err, common.ErrMalformedRelationship)
	assert.Equal(t, top.MetricRelationship, ctrl.Active(), "выбор сделан, упала только отрисовка")

	_, err = ctrl.Select(context.Background(), top.MetricReputation)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestErrorKey(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("x: %w", common.ErrUnknownMetric), "error.unknown_metric"},
		{common.ErrMalformedRelationship, "error.malformed_relationship"},
		{fmt.Errorf("%w: refused", common.ErrStoreUnavailable), "error.store_unavailable"},
		{context.DeadlineExceeded, "error.store_unavailable"},
		{common.ErrSessionExpired, "error.session_expired"},
		{common.ErrNotGuild, "error.not_guild"},
		{errors.New("boom"), "error.internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, top.ErrorKey(tt.err), tt.err.Error())
	}
}
