package top

import (
	"strconv"
	"strings"
)

// OrderedList нумерует строки с единицы: "1. a\n2. b".
// Пустой срез даёт пустую строку.
func OrderedList[T any](items []T, format func(T) string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(format(item))
	}
	return b.String()
}
