package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *AppConfig {
	return &AppConfig{
		Host:                  "localhost",
		Port:                  8080,
		LogLevel:              "INFO",
		PlaylistLimit:         25,
		ChatHistoryLimit:      200,
		ReaperIntervalSeconds: 60,
		RoomInactiveMinutes:   30,
		RedisHost:             "localhost",
		RedisPort:             6379,
	}
}

func TestAppConfigValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.PlaylistLimit = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.ChatHistoryLimit = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.ReaperIntervalSeconds = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.RoomInactiveMinutes = -1
	assert.Error(t, cfg.Validate())
}
