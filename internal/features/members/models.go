// Package members — участники сообщества и топы по их числовым полям.
// models.go описывает строку таблицы members и поля, по которым строится топ.
package members

import (
	"fmt"
	"time"
)

// Member — участник сообщества. Запись уникальна по (guild_id, user_id).
// Заполняется внешними подсистемами (голос, экономика, опыт), здесь только читается.
type Member struct {
	GuildID       int64         `db:"guild_id"`
	UserID        int64         `db:"user_id"`
	VoiceActivity time.Duration `db:"voice_activity"` // В базе — целые секунды
	Balance       int64         `db:"balance"`
	Experience    int64         `db:"experience"`
}

// Field — числовое поле участника, по которому строится топ.
type Field int

const (
	FieldVoice Field = iota + 1
	FieldBalance
	FieldExperience
)

// Column возвращает колонку таблицы members для поля.
// Только эти колонки попадают в ORDER BY, пользовательский ввод туда не доходит.
func (f Field) Column() (string, error) {
	switch f {
	case FieldVoice:
		return "voice_activity", nil
	case FieldBalance:
		return "balance", nil
	case FieldExperience:
		return "experience", nil
	default:
		return "", fmt.Errorf("неизвестное поле топа: %d", int(f))
	}
}

// Value возвращает значение поля у участника (голос — в секундах).
func (f Field) Value(m Member) int64 {
	switch f {
	case FieldVoice:
		return int64(m.VoiceActivity / time.Second)
	case FieldBalance:
		return m.Balance
	case FieldExperience:
		return m.Experience
	default:
		return 0
	}
}

func (f Field) String() string {
	col, err := f.Column()
	if err != nil {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return col
}
