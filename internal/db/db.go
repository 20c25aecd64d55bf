// Package db описывает минимальный интерфейс хранилища, через который
// репозитории читают данные. Реализации: PostgreSQL (pgxpool) и SQLite.
//
// Запросы пишутся с плейсхолдерами "?", адаптер сам переводит их
// в диалект своей базы (см. Rebind).
package db

import (
	"context"
	"strconv"
	"strings"
)

// Rows — курсор по результату запроса. pgx.Rows подходит как есть.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// Queryer выполняет читающие запросы.
type Queryer interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
}

// Rebind заменяет плейсхолдеры "?" на нумерованные "$1, $2, ..." (PostgreSQL).
func Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
