// Package top — топы участников сообщества: реестр топов, меню выбора
// и его сессии, а также обработчики Telegram.
package top

import (
	"context"
	"fmt"

	"serotonyl.ru/guild-top/internal/common"
	"serotonyl.ru/guild-top/internal/i18n"
)

// Size — сколько строк в любом топе.
const Size = common.TopSize

// MetricName — стабильный ключ топа. Он уходит в callback data и custom id,
// пользователь видит только Label.
type MetricName string

const (
	MetricVoice        MetricName = "voice"
	MetricBalance      MetricName = "balance"
	MetricReputation   MetricName = "reputation"
	MetricExperience   MetricName = "experience"
	MetricRelationship MetricName = "relationship"
)

// metricOrder — порядок пунктов меню. Первый показывается по умолчанию.
var metricOrder = []MetricName{
	MetricVoice,
	MetricBalance,
	MetricReputation,
	MetricExperience,
	MetricRelationship,
}

// Metric — пункт реестра.
type Metric struct {
	Name  MetricName
	Label string
	load  loader
}

// loader читает топ сообщества и возвращает заголовок и строки.
type loader func(ctx context.Context, guildID int64) (title string, lines string, err error)

// Registry — упорядоченный набор топов. Собирается один раз на вызов
// команды, после этого не меняется.
type Registry struct {
	metrics []Metric
	index   map[MetricName]int
	tr      i18n.Translator
}

func newRegistry(tr i18n.Translator, metrics []Metric) *Registry {
	r := &Registry{metrics: metrics, index: make(map[MetricName]int, len(metrics)), tr: tr}
	for i, m := range metrics {
		r.index[m.Name] = i
	}
	return r
}

// First — топ по умолчанию.
func (r *Registry) First() Metric {
	return r.metrics[0]
}

// Lookup ищет топ по имени.
func (r *Registry) Lookup(name MetricName) (Metric, error) {
	i, ok := r.index[name]
	if !ok {
		return Metric{}, fmt.Errorf("%w: %q", common.ErrUnknownMetric, name)
	}
	return r.metrics[i], nil
}

// Metrics возвращает копию списка топов в порядке меню.
func (r *Registry) Metrics() []Metric {
	out := make([]Metric, len(r.metrics))
	copy(out, r.metrics)
	return out
}

// render читает топ и собирает View. Пустой топ получает заглушку.
func (r *Registry) render(ctx context.Context, m Metric, guildID int64) (View, error) {
	title, desc, err := m.load(ctx, guildID)
	if err != nil {
		return View{}, fmt.Errorf("топ %s: %w", m.Name, err)
	}
	if desc == "" {
		desc = r.tr.T("top.empty")
	}

	options := make([]Option, len(r.metrics))
	for i, o := range r.metrics {
		options[i] = Option{Name: o.Name, Label: o.Label, Active: o.Name == m.Name}
	}
	return View{Metric: m.Name, Title: title, Description: desc, Options: options}, nil
}
