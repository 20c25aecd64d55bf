// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, форматирование чисел, работа с временем.
package common

import (
	"fmt"
	"time"
)

// TopSize — сколько строк в любом топе. Запросы топов с большим лимитом не строятся.
const TopSize = 10

// Pluralize возвращает правильную форму слова для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → one (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → few (2, 3, 4, 22, 23, ...)
//   - Остальные случаи → many (0, 5-20, 25-30, 100, ...)
//
// Примеры:
//
//	Pluralize(1, "пленка", "пленки", "пленок")  → "пленка"
//	Pluralize(3, "пленка", "пленки", "пленок")  → "пленки"
//	Pluralize(11, "пленка", "пленки", "пленок") → "пленок"
func Pluralize(n int64, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	lastDigit := n % 10
	lastTwoDigits := n % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return one
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return few
	}
	return many
}

// FormatNumber форматирует число с разделителями тысяч (пробелами).
// Пример: FormatNumber(2350) → "2 350"
func FormatNumber(n int64) string {
	if n < 0 {
		// модуль через uint64: -math.MinInt64 в int64 не помещается
		return "-" + formatUnsigned(uint64(-(n+1))+1)
	}
	return formatUnsigned(uint64(n))
}

func formatUnsigned(n uint64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s %03d", formatUnsigned(n/1000), n%1000)
}

// SplitDuration раскладывает длительность на целые часы и минуты.
// Секунды отбрасываются, отрицательные значения считаются нулём.
func SplitDuration(d time.Duration) (hours, minutes int64) {
	if d < 0 {
		return 0, 0
	}
	total := int64(d / time.Minute)
	return total / 60, total % 60
}

// LoadLocation загружает часовой пояс по имени.
// Если не удалось — используем UTC+3 (Москва) вручную.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04" (день.месяц.год часы:минуты)
// в заданном часовом поясе.
func FormatDateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("02.01.2006 15:04")
}
