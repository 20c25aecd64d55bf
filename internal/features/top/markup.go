package top

import (
	"strconv"
	"time"

	"serotonyl.ru/guild-top/internal/common"
)

// Markup — как площадка показывает упоминание участника и время.
type Markup interface {
	Mention(userID int64) string
	Timestamp(t time.Time) string
	// Text готовит к выводу строку из настроек (название валюты и т.п.).
	Text(s string) string
}

// PlainMarkup — разметка без форматирования: ID участника и дата
// в часовом поясе Location. Используется в HTTP API.
type PlainMarkup struct {
	Location *time.Location
}

func (m PlainMarkup) Mention(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func (m PlainMarkup) Timestamp(t time.Time) string {
	return common.FormatDateTime(t, m.Location)
}

func (m PlainMarkup) Text(s string) string {
	return s
}
