// Package common — errors.go определяет ошибки, которые используются
// во всех модулях бота. По ним обработчики различают типы проблем
// и отправляют пользователю понятные сообщения.
package common

import "errors"

// Ошибки топов
var (
	// ErrUnknownMetric — выбран топ, которого нет в реестре (устаревшее или чужое меню)
	ErrUnknownMetric = errors.New("неизвестный топ")
	// ErrMalformedRelationship — участники отношений не складываются в пары
	ErrMalformedRelationship = errors.New("некорректные данные отношений: участники не образуют пары")
	// ErrStoreUnavailable — хранилище не ответило на запрос
	ErrStoreUnavailable = errors.New("хранилище недоступно")
)

// Ошибки интерактивных сессий
var (
	// ErrSessionExpired — меню топа устарело, его сессия удалена
	ErrSessionExpired = errors.New("сессия меню истекла")
	// ErrNotGuild — команда вызвана не в сообществе (личка, канал)
	ErrNotGuild = errors.New("команда работает только в сообществе")
)
