// Package relationships — отношения между двумя участниками сообщества
// и сборка их в пары для топа «самые долгие отношения».
package relationships

import "time"

// Participant — строка выборки: участник отношений и время их создания.
type Participant struct {
	RelationshipID int64     `db:"relationship_id"`
	UserID         int64     `db:"user_id"`
	CreatedAt      time.Time `db:"creation_time"`
}

// Pair — отношения, собранные из двух строк участников.
type Pair struct {
	RelationshipID int64
	First          int64
	Second         int64
	CreatedAt      time.Time
}
