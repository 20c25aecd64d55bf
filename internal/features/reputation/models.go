// Package reputation — репутация участников: сумма голосов (+1/-1),
// полученных от других. models.go описывает голос и итоговый счёт.
package reputation

// Vote — тип голоса в таблице likes. Голоса не меняются после создания,
// повторные не схлопываются: сумма учитывает всю историю.
type Vote int

const (
	VoteDown Vote = -1
	VoteUp   Vote = 1
)

// Score — репутация участника сообщества. Без голосов — 0.
type Score struct {
	UserID     int64 `db:"user_id"`
	Reputation int64 `db:"reputation"`
}
