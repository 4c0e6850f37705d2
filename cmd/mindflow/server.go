package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BaSui01/mindflow/agent/content"
	"github.com/BaSui01/mindflow/agent/gateway"
	"github.com/BaSui01/mindflow/agent/orchestrator"
	"github.com/BaSui01/mindflow/agent/roles"
	"github.com/BaSui01/mindflow/api/handlers"
	"github.com/BaSui01/mindflow/config"
	"github.com/BaSui01/mindflow/gamification"
	"github.com/BaSui01/mindflow/internal/cache"
	"github.com/BaSui01/mindflow/internal/database"
	"github.com/BaSui01/mindflow/internal/metrics"
	"github.com/BaSui01/mindflow/internal/migration"
	"github.com/BaSui01/mindflow/internal/server"
	"github.com/BaSui01/mindflow/internal/telemetry"
	"github.com/BaSui01/mindflow/llm"
	"github.com/BaSui01/mindflow/llm/ratelimit"
	"github.com/BaSui01/mindflow/llm/tokenizer"
)

// ledgerTxRetries 积分事务遇到死锁或序列化失败时的重试次数
const ledgerTxRetries = 3

// skipAuthPaths 探针不做认证
var skipAuthPaths = []string{"/health", "/healthz", "/ready", "/readyz", "/version"}

// =============================================================================
// 🖥️ Server
// =============================================================================

// Server MindFlow 主服务，持有所有组件的生命周期
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	otel      *telemetry.Providers
	collector *metrics.Collector
	registry  *orchestrator.Registry
	content   *content.Service
	cache     *cache.Manager
	pool      *database.PoolManager
	ledger    *gamification.Service

	healthHandler *handlers.HealthHandler

	httpManager    *server.Manager
	metricsManager *server.Manager

	limiterCancel context.CancelFunc
}

// NewServer 创建服务实例
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, logger: logger}
}

// Start 依次初始化遥测、指标、LLM、会话、账本，然后启动两个监听端口（非阻塞）
func (s *Server) Start(ctx context.Context) error {
	otelProviders, err := telemetry.Init(ctx, s.cfg.Telemetry, s.logger)
	if err != nil {
		s.logger.Warn("failed to initialize telemetry", zap.Error(err))
	}
	s.otel = otelProviders

	s.collector = metrics.NewCollector("mindflow", s.logger)
	s.healthHandler = handlers.NewHealthHandler(s.logger)

	provider, err := buildProvider(ctx, s.cfg.LLM, s.logger)
	if err != nil {
		return fmt.Errorf("init llm provider: %w", err)
	}
	lead, light := s.newGateways(provider)
	s.registry = s.newRegistry(lead)
	s.content = content.New(lead, s.logger, content.WithLightCompleter(light))

	if s.cfg.Gamification.Enabled {
		if err := s.initLedger(ctx); err != nil {
			s.logger.Warn("gamification ledger unavailable, points endpoints disabled", zap.Error(err))
		}
	}

	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("start api server: %w", err)
	}
	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("start metrics server: %w", err)
	}

	s.logger.Info("all servers started",
		zap.String("api_addr", s.httpManager.Addr()),
		zap.String("metrics_addr", s.metricsManager.Addr()),
		zap.Bool("gamification", s.ledger != nil),
		zap.Bool("telemetry", s.otel.Enabled()),
	)
	return nil
}

// =============================================================================
// 🔧 组件初始化
// =============================================================================

// newGateways 主力网关与轻量模型网关共用一个限流器，保证到上游的最小请求间隔是全局的
func (s *Server) newGateways(provider llm.Provider) (lead, light *gateway.Gateway) {
	llmCfg := s.cfg.LLM
	limiter := ratelimit.NewIntervalLimiter(llmCfg.MinInterval)
	build := func(model, tokenizerModel string) *gateway.Gateway {
		return gateway.New(provider, gateway.Config{
			Model:         model,
			RetryAttempts: llmCfg.MaxRetries,
			BaseDelay:     llmCfg.BaseDelay,
		}, s.logger,
			gateway.WithLimiter(limiter),
			gateway.WithRecorder(s.collector),
			gateway.WithTokenizer(tokenizer.ForModel(tokenizerModel)),
		)
	}
	lead = build("", leadModel(llmCfg))
	light = lead
	if llmCfg.LightModel != "" {
		light = build(llmCfg.LightModel, llmCfg.LightModel)
	}
	return lead, light
}

// newRegistry 所有会话共享主力网关
func (s *Server) newRegistry(gw *gateway.Gateway) *orchestrator.Registry {
	agents := roles.New(gw, s.logger)

	factory := func() *orchestrator.Orchestrator {
		return orchestrator.New(agents, s.logger, orchestrator.WithRecorder(s.collector))
	}
	return orchestrator.NewRegistry(factory, orchestrator.RegistryConfig{
		TTL:             s.cfg.Session.TTL,
		JanitorInterval: s.cfg.Session.JanitorInterval,
	}, s.logger, orchestrator.WithSessionGauge(s.collector))
}

// initLedger 迁移表结构、建立连接池，Redis 可选
func (s *Server) initLedger(ctx context.Context) error {
	if err := s.migrate(ctx); err != nil {
		return err
	}

	db, err := database.Open(s.cfg.Database, s.logger)
	if err != nil {
		return err
	}
	if err := database.InstrumentQueries(db, s.cfg.Database.Driver, s.collector); err != nil {
		return fmt.Errorf("instrument queries: %w", err)
	}
	pool, err := database.NewPoolManager(db, database.PoolConfigFrom(s.cfg.Database), s.logger,
		database.WithStatsRecorder(s.cfg.Database.Driver, s.collector))
	if err != nil {
		return fmt.Errorf("init connection pool: %w", err)
	}
	s.pool = pool
	s.healthHandler.RegisterCheck(handlers.NewPingCheck("database", pool.Ping))

	opts := []gamification.Option{
		gamification.WithPointsRecorder(s.collector),
		gamification.WithLeaderboardTTL(s.cfg.Gamification.LeaderboardTTL),
		gamification.WithTxRunner(func(ctx context.Context, fn func(tx *gorm.DB) error) error {
			return pool.WithTransactionRetry(ctx, ledgerTxRetries, fn)
		}),
	}
	if s.cfg.Redis.Addr != "" {
		if err := s.initCache(); err != nil {
			s.logger.Warn("redis unavailable, leaderboard cache disabled", zap.Error(err))
		} else {
			opts = append(opts, gamification.WithCache(s.cache))
		}
	}

	s.ledger = gamification.NewService(pool.DB(), s.logger, opts...)
	if err := s.ledger.EnsureBadges(ctx); err != nil {
		return fmt.Errorf("seed badges: %w", err)
	}
	return nil
}

// migrate 启动时把表结构升到最新
func (s *Server) migrate(ctx context.Context) error {
	m, err := migration.NewMigratorFromConfig(s.cfg, s.logger)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()
	if err := m.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *Server) initCache() error {
	cc := cache.DefaultConfig()
	cc.Addr = s.cfg.Redis.Addr
	cc.Password = s.cfg.Redis.Password
	cc.DB = s.cfg.Redis.DB
	if s.cfg.Redis.PoolSize > 0 {
		cc.PoolSize = s.cfg.Redis.PoolSize
	}
	if s.cfg.Redis.MinIdleConns > 0 {
		cc.MinIdleConns = s.cfg.Redis.MinIdleConns
	}

	mgr, err := cache.NewManager(cc, s.logger, cache.WithHitRecorder(s.collector))
	if err != nil {
		return err
	}
	s.cache = mgr
	s.healthHandler.RegisterCheck(handlers.NewPingCheck("redis", mgr.Ping))
	return nil
}

// =============================================================================
// 🌐 路由与中间件
// =============================================================================

// routes 注册全部业务路由，账本不可用时不挂积分相关路由
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler.HandleHealth)
	mux.HandleFunc("GET /healthz", s.healthHandler.HandleHealthz)
	mux.HandleFunc("GET /ready", s.healthHandler.HandleReady)
	mux.HandleFunc("GET /readyz", s.healthHandler.HandleReady)
	mux.HandleFunc("GET /version", s.healthHandler.HandleVersion(handlers.VersionInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
	}))

	learn := handlers.NewLearnHandler(s.registry, s.logger)
	mux.HandleFunc("POST /api/v1/learn/turn", learn.HandleTurn)
	mux.HandleFunc("POST /api/v1/learn/safety", learn.HandleSafety)
	mux.HandleFunc("GET /api/v1/learn/summary", learn.HandleSummary)
	mux.HandleFunc("GET /api/v1/learn/session", learn.HandleSession)
	mux.HandleFunc("DELETE /api/v1/learn/session", learn.HandleEndSession)
	mux.HandleFunc("GET /api/v1/learn/ws", learn.HandleWebSocket(s.cfg.Server.CORSAllowedOrigins))

	var contentOpts []handlers.ContentOption
	if s.ledger != nil {
		contentOpts = append(contentOpts, handlers.WithActivityAwarder(s.ledger))
	}
	c := handlers.NewContentHandler(s.content, s.logger, contentOpts...)
	mux.HandleFunc("POST /api/v1/content/explain-more", c.HandleExplainMore)
	mux.HandleFunc("POST /api/v1/content/interactive-questions", c.HandleInteractiveQuestions)
	mux.HandleFunc("POST /api/v1/content/process", c.HandleProcess)

	if s.ledger != nil {
		g := handlers.NewGamificationHandler(s.ledger, s.logger,
			handlers.WithDefaultLeaderboardLimit(s.cfg.Gamification.LeaderboardLimit))
		mux.HandleFunc("POST /api/v1/users/initialize", g.HandleInitializeUser)
		mux.HandleFunc("GET /api/v1/users/{id}/stats", g.HandleUserStats)
		mux.HandleFunc("GET /api/v1/users/{id}/badges", g.HandleUserBadges)
		mux.HandleFunc("POST /api/v1/quiz/submit", g.HandleSubmitQuiz)
		mux.HandleFunc("POST /api/v1/points/award", g.HandleAwardPoints)
		mux.HandleFunc("GET /api/v1/leaderboard", g.HandleLeaderboard)
	}
	return mux
}

// handler 路由外包中间件链；API Key 优先于 JWT
func (s *Server) handler(ctx context.Context) http.Handler {
	srv := s.cfg.Server
	chain := []Middleware{
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		MetricsMiddleware(s.collector),
		OTelTracing(),
		CORS(srv.CORSAllowedOrigins),
	}
	if srv.RateLimitRPS > 0 {
		chain = append(chain, RateLimiter(ctx, float64(srv.RateLimitRPS), srv.RateLimitBurst, s.logger))
	}
	switch {
	case len(srv.APIKeys) > 0:
		chain = append(chain, APIKeyAuth(srv.APIKeys, skipAuthPaths, srv.AllowQueryAPIKey, s.logger))
	case s.cfg.JWT.Enabled():
		chain = append(chain, JWTAuth(s.cfg.JWT, skipAuthPaths, s.logger))
	default:
		s.logger.Warn("no api keys or jwt configured, api is unauthenticated")
	}
	return Chain(s.routes(), chain...)
}

func (s *Server) startHTTPServer() error {
	limiterCtx, cancel := context.WithCancel(context.Background())
	s.limiterCancel = cancel

	s.httpManager = server.NewManager(s.handler(limiterCtx), server.APIConfig(s.cfg.Server), s.logger)
	return s.httpManager.Start()
}

func (s *Server) startMetricsServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	s.metricsManager = server.NewManager(mux, server.MetricsConfig(s.cfg.Server), s.logger)
	return s.metricsManager.Start()
}

// =============================================================================
// 🛑 关闭流程
// =============================================================================

// Run 启动后阻塞到 ctx 结束或 API 端口异常退出，随后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		s.Shutdown(context.Background())
		return err
	}
	serveErr := s.httpManager.Wait(ctx)
	return errors.Join(serveErr, s.Shutdown(context.Background()))
}

// Shutdown 逆序关闭各组件，可重复调用
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("starting graceful shutdown")
	var errs []error

	if s.limiterCancel != nil {
		s.limiterCancel()
	}
	if s.httpManager != nil && s.httpManager.IsRunning() {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("api server: %w", err))
		}
	}
	if s.metricsManager != nil && s.metricsManager.IsRunning() {
		if err := s.metricsManager.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server: %w", err))
		}
	}
	if s.registry != nil {
		s.registry.Close()
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
		s.cache = nil
	}
	if s.pool != nil {
		if err := s.pool.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
		s.pool = nil
	}
	if err := s.otel.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}

	err := errors.Join(errs...)
	if err != nil {
		s.logger.Error("shutdown finished with errors", zap.Error(err))
	} else {
		s.logger.Info("graceful shutdown completed")
	}
	return err
}
