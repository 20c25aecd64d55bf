package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, k := range []string{"TELEGRAM_BOT_TOKEN", "DISCORD_BOT_TOKEN", "HTTP_ADDR", "ECONOMY_SETTINGS_PATH"} {
		t.Setenv(k, "")
	}
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func TestRun_BadConfigExitsNonZero(t *testing.T) {
	setEnv(t, map[string]string{"DB_DRIVER": "sqlite"})
	assert.Equal(t, 1, run(context.Background()))
}

func TestRun_HostFailureExitsNonZero(t *testing.T) {
	setEnv(t, map[string]string{
		"DB_DRIVER":   "sqlite",
		"SQLITE_PATH": filepath.Join(t.TempDir(), "guild.db"),
		"HTTP_ADDR":   "127.0.0.1:-1",
	})
	assert.Equal(t, 1, run(context.Background()))
}

func TestRun_CancelExitsZero(t *testing.T) {
	setEnv(t, map[string]string{
		"DB_DRIVER":   "sqlite",
		"SQLITE_PATH": filepath.Join(t.TempDir(), "guild.db"),
		"HTTP_ADDR":   "127.0.0.1:0",
	})
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	assert.Equal(t, 0, run(ctx))
}
