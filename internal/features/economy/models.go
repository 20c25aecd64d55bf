// Package economy отвечает за настройки валюты сообществ: как называется
// монета и как её название склоняется рядом с числом.
// models.go описывает настройки и формы слова.
package economy

import (
	"fmt"

	"serotonyl.ru/guild-top/internal/common"
)

// Settings — настройки экономики одного сообщества.
type Settings struct {
	// Coin — название валюты в заголовках («пленки»)
	Coin string `toml:"coin"`
	// Forms — формы слова рядом с числом: три (1, 2-4, 5+) для русского
	// или две (1, остальные) для языков вроде английского
	Forms []string `toml:"forms"`
}

// Validate проверяет, что название есть и форм две или три.
func (s Settings) Validate() error {
	if s.Coin == "" {
		return fmt.Errorf("не задано название валюты")
	}
	if n := len(s.Forms); n != 0 && n != 2 && n != 3 {
		return fmt.Errorf("форм валюты должно быть 2 или 3, получено %d", n)
	}
	return nil
}

// CoinFor возвращает название валюты в форме для числа n.
// Без форм возвращается Coin как есть.
func (s Settings) CoinFor(n int64) string {
	switch len(s.Forms) {
	case 3:
		return common.Pluralize(n, s.Forms[0], s.Forms[1], s.Forms[2])
	case 2:
		if n == 1 || n == -1 {
			return s.Forms[0]
		}
		return s.Forms[1]
	default:
		return s.Coin
	}
}
