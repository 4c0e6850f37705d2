package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_ContainsAllSubConfigs(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultServerConfig(), cfg.Server)
	assert.Equal(t, DefaultLLMConfig(), cfg.LLM)
	assert.Equal(t, DefaultSessionConfig(), cfg.Session)
	assert.Equal(t, DefaultGamificationConfig(), cfg.Gamification)
	assert.Equal(t, DefaultRedisConfig(), cfg.Redis)
	assert.Equal(t, DefaultDatabaseConfig(), cfg.Database)
	assert.Equal(t, DefaultLogConfig(), cfg.Log)
	assert.Equal(t, DefaultTelemetryConfig(), cfg.Telemetry)
	assert.False(t, cfg.JWT.Enabled())
}

func TestDefaultLLMConfig(t *testing.T) {
	cfg := DefaultLLMConfig()
	assert.Equal(t, "auto", cfg.Provider)
	assert.Equal(t, "gemini-1.5-pro-latest", cfg.PrimaryModel)
	assert.Equal(t, "gemini-1.5-flash", cfg.LightModel)
	assert.Equal(t, "https://models.github.ai/inference", cfg.GitHubBaseURL)
	assert.Equal(t, "openai/gpt-4o", cfg.GitHubModel)
	assert.Equal(t, time.Second, cfg.MinInterval)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.BaseDelay)
}

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 9091, cfg.MetricsPort)
	assert.Greater(t, cfg.WriteTimeout, DefaultLLMConfig().Timeout)
	assert.Empty(t, cfg.APIKeys)
}

func TestDefaultDatabaseConfig(t *testing.T) {
	cfg := DefaultDatabaseConfig()
	assert.Equal(t, "sqlite", cfg.Driver)
	assert.Equal(t, "mindflow.db", cfg.DSN())
}

func TestDefaultGamificationConfig(t *testing.T) {
	cfg := DefaultGamificationConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 10, cfg.LeaderboardLimit)
}

func TestDefaultTelemetryConfig(t *testing.T) {
	cfg := DefaultTelemetryConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "mindflow", cfg.ServiceName)
}
