// =============================================================================
// 📦 MindFlow 默认配置
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:       DefaultServerConfig(),
		LLM:          DefaultLLMConfig(),
		Session:      DefaultSessionConfig(),
		Gamification: DefaultGamificationConfig(),
		Redis:        DefaultRedisConfig(),
		Database:     DefaultDatabaseConfig(),
		Log:          DefaultLogConfig(),
		Telemetry:    DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		MetricsPort:     9091,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    2 * time.Minute,
		ShutdownTimeout: 15 * time.Second,
		RateLimitRPS:    20,
		RateLimitBurst:  40,
	}
}

// DefaultLLMConfig 请求间隔 1s，失败后再试 2 次，退避基数 500ms
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:      "auto",
		PrimaryModel:  "gemini-1.5-pro-latest",
		LightModel:    "gemini-1.5-flash",
		GitHubBaseURL: "https://models.github.ai/inference",
		GitHubModel:   "openai/gpt-4o",
		Timeout:       60 * time.Second,
		MinInterval:   time.Second,
		MaxRetries:    2,
		BaseDelay:     500 * time.Millisecond,
	}
}

// DefaultSessionConfig 返回默认会话配置
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		TTL:             30 * time.Minute,
		JanitorInterval: time.Minute,
	}
}

// DefaultGamificationConfig 返回默认积分配置
func DefaultGamificationConfig() GamificationConfig {
	return GamificationConfig{
		Enabled:          true,
		LeaderboardTTL:   30 * time.Second,
		LeaderboardLimit: 10,
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// DefaultDatabaseConfig 默认使用本地 sqlite 文件
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:          "sqlite",
		Host:            "localhost",
		Port:            5432,
		User:            "mindflow",
		Name:            "mindflow.db",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "mindflow",
		SampleRate:   0.1,
	}
}
