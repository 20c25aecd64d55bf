package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	assert.Equal(t, "SELECT 1", Rebind("SELECT 1"))
	assert.Equal(t,
		"SELECT * FROM members WHERE guild_id = $1 LIMIT $2",
		Rebind("SELECT * FROM members WHERE guild_id = ? LIMIT ?"),
	)
	assert.Equal(t, "Ёлка = $1", Rebind("Ёлка = ?"))
}
