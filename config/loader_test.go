// 配置加载器测试。
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Loader 测试 ---

func TestLoader_LoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "auto", cfg.LLM.Provider)
	assert.NoError(t, cfg.Validate())
}

func TestLoader_LoadFromYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  http_port: 8888
  read_timeout: 60s
  api_keys: ["k1", "k2"]

llm:
  provider: gemini
  gemini_api_key: "g-key"
  min_interval: 250ms
  max_retries: 4

session:
  ttl: 10m

redis:
  addr: "redis.example.com:6379"
  password: "secret"
  db: 1

log:
  level: "debug"
  format: "console"
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	cfg, err := NewLoader().WithConfigPath(configPath).Load()
	require.NoError(t, err)

	assert.Equal(t, 8888, cfg.Server.HTTPPort)
	assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"k1", "k2"}, cfg.Server.APIKeys)

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "g-key", cfg.LLM.GeminiAPIKey)
	assert.Equal(t, 250*time.Millisecond, cfg.LLM.MinInterval)
	assert.Equal(t, 4, cfg.LLM.MaxRetries)
	// 未出现在 YAML 中的字段保留默认值
	assert.Equal(t, "gemini-1.5-flash", cfg.LLM.LightModel)

	assert.Equal(t, 10*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "redis.example.com:6379", cfg.Redis.Addr)
	assert.Equal(t, 1, cfg.Redis.DB)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoader_LoadFromEnv(t *testing.T) {
	t.Setenv("MINDFLOW_SERVER_HTTP_PORT", "7777")
	t.Setenv("MINDFLOW_SERVER_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("MINDFLOW_LLM_GITHUB_TOKEN", "ghp_test")
	t.Setenv("MINDFLOW_LLM_BASE_DELAY", "2s")
	t.Setenv("MINDFLOW_GAMIFICATION_ENABLED", "false")
	t.Setenv("MINDFLOW_TELEMETRY_SAMPLE_RATE", "0.5")
	t.Setenv("MINDFLOW_JWT_SECRET", "s3cret")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.HTTPPort)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "ghp_test", cfg.LLM.GitHubToken)
	assert.Equal(t, 2*time.Second, cfg.LLM.BaseDelay)
	assert.False(t, cfg.Gamification.Enabled)
	assert.Equal(t, 0.5, cfg.Telemetry.SampleRate)
	assert.True(t, cfg.JWT.Enabled())
}

func TestLoader_EnvOverridesYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  http_port: 8888\nllm:\n  provider: github\n"), 0644))

	t.Setenv("MINDFLOW_SERVER_HTTP_PORT", "9999")

	cfg, err := NewLoader().WithConfigPath(configPath).Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.HTTPPort)
	assert.Equal(t, "github", cfg.LLM.Provider)
}

func TestLoader_CustomEnvPrefix(t *testing.T) {
	t.Setenv("TUTOR_SERVER_HTTP_PORT", "6666")

	cfg, err := NewLoader().WithEnvPrefix("TUTOR").Load()
	require.NoError(t, err)
	assert.Equal(t, 6666, cfg.Server.HTTPPort)
}

func TestLoader_BareKeyAlias(t *testing.T) {
	env := map[string]string{
		"GEMINI_API_KEY":            "bare-gemini",
		"GITHUB_TOKEN":              "bare-gh",
		"MINDFLOW_LLM_GITHUB_TOKEN": "prefixed-gh",
		"HTTP_PORT":                 "1234", // 没有 alias 标签，不生效
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg, err := NewLoader().WithEnvLookup(lookup).Load()
	require.NoError(t, err)

	assert.Equal(t, "bare-gemini", cfg.LLM.GeminiAPIKey)
	assert.Equal(t, "prefixed-gh", cfg.LLM.GitHubToken, "prefixed key wins over alias")
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
	assert.Empty(t, splitList(" , "))
}

func TestLoader_InvalidEnvValue(t *testing.T) {
	t.Setenv("MINDFLOW_LLM_MIN_INTERVAL", "soon")

	_, err := NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MINDFLOW_LLM_MIN_INTERVAL")
}

func TestLoader_WithValidator(t *testing.T) {
	_, err := NewLoader().
		WithValidator(func(c *Config) error { return c.Validate() }).
		Load()
	assert.NoError(t, err)

	t.Setenv("MINDFLOW_LLM_PROVIDER", "openai")
	_, err = NewLoader().
		WithValidator(func(c *Config) error { return c.Validate() }).
		Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown llm provider")
}

func TestLoader_NonExistentFile(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/non/existent/path/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
}

func TestLoader_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  http_port: [\n"), 0644))

	_, err := NewLoader().WithConfigPath(configPath).Load()
	assert.Error(t, err)
}

// --- Config 方法测试 ---

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "valid default config", modify: func(c *Config) {}},
		{name: "negative HTTP port", modify: func(c *Config) { c.Server.HTTPPort = -1 }, wantErr: true},
		{name: "HTTP port too large", modify: func(c *Config) { c.Server.HTTPPort = 70000 }, wantErr: true},
		{name: "unknown provider", modify: func(c *Config) { c.LLM.Provider = "openai" }, wantErr: true},
		{name: "mock provider", modify: func(c *Config) { c.LLM.Provider = "mock" }},
		{name: "negative retries", modify: func(c *Config) { c.LLM.MaxRetries = -1 }, wantErr: true},
		{name: "zero retries", modify: func(c *Config) { c.LLM.MaxRetries = 0 }},
		{name: "zero session ttl", modify: func(c *Config) { c.Session.TTL = 0 }, wantErr: true},
		{name: "zero leaderboard limit", modify: func(c *Config) { c.Gamification.LeaderboardLimit = 0 }, wantErr: true},
		{name: "sample rate above one", modify: func(c *Config) { c.Telemetry.SampleRate = 1.5 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "postgres",
			cfg:  DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", Name: "mindflow", SSLMode: "disable"},
			want: "host=db port=5432 user=u password=p dbname=mindflow sslmode=disable",
		},
		{
			name: "mysql",
			cfg:  DatabaseConfig{Driver: "mysql", Host: "db", Port: 3306, User: "u", Password: "p", Name: "mindflow"},
			want: "u:p@tcp(db:3306)/mindflow?parseTime=true",
		},
		{
			name: "sqlite",
			cfg:  DatabaseConfig{Driver: "sqlite", Name: "mindflow.db"},
			want: "mindflow.db",
		},
		{
			name: "unknown driver",
			cfg:  DatabaseConfig{Driver: "oracle"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}

func TestJWTConfig_Enabled(t *testing.T) {
	assert.False(t, JWTConfig{}.Enabled())
	assert.True(t, JWTConfig{PublicKey: "-----BEGIN PUBLIC KEY-----"}.Enabled())
}

// --- 辅助函数测试 ---

func TestMustLoad_Success(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  http_port: 8123\n"), 0644))

	cfg := MustLoad(configPath)
	assert.Equal(t, 8123, cfg.Server.HTTPPort)
}

func TestMustLoad_InvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("{{{"), 0644))

	assert.Panics(t, func() { MustLoad(configPath) })
}

func TestLoadFromEnv_Function(t *testing.T) {
	t.Setenv("MINDFLOW_LOG_LEVEL", "warn")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}
