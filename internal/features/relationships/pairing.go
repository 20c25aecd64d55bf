package relationships

import (
	"fmt"

	"serotonyl.ru/guild-top/internal/common"
)

// BuildPairs режет строки участников на пары по две подряд.
// Строки должны идти так, как их отдаёт OldestQuery: по времени создания,
// затем по relationship_id, участники одних отношений рядом.
//
// Любое нарушение «ровно два разных участника на отношения» даёт
// common.ErrMalformedRelationship: лучше не показать топ, чем показать
// пару из участников разных отношений.
func BuildPairs(rows []Participant, limit int) ([]Pair, error) {
	if len(rows) > 2*limit {
		return nil, fmt.Errorf("%w: строк %d при лимите %d пар", common.ErrMalformedRelationship, len(rows), limit)
	}
	if len(rows)%2 != 0 {
		return nil, fmt.Errorf("%w: нечётное число строк (%d)", common.ErrMalformedRelationship, len(rows))
	}

	pairs := make([]Pair, 0, len(rows)/2)
	seen := make(map[int64]struct{}, len(rows)/2)
	for i := 0; i < len(rows); i += 2 {
		a, b := rows[i], rows[i+1]
		if a.RelationshipID != b.RelationshipID {
			return nil, fmt.Errorf("%w: в паре отношения %d и %d", common.ErrMalformedRelationship, a.RelationshipID, b.RelationshipID)
		}
		if a.UserID == b.UserID {
			return nil, fmt.Errorf("%w: отношения %d с самим собой (%d)", common.ErrMalformedRelationship, a.RelationshipID, a.UserID)
		}
		if _, dup := seen[a.RelationshipID]; dup {
			return nil, fmt.Errorf("%w: у отношений %d больше двух участников", common.ErrMalformedRelationship, a.RelationshipID)
		}
		seen[a.RelationshipID] = struct{}{}

		pairs = append(pairs, Pair{
			RelationshipID: a.RelationshipID,
			First:          a.UserID,
			Second:         b.UserID,
			CreatedAt:      a.CreatedAt,
		})
	}
	return pairs, nil
}
