package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRequestSize     *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// LLM 指标
	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec
	llmTokensUsed      *prometheus.CounterVec

	// 编排指标
	agentExecutionsTotal   *prometheus.CounterVec
	agentExecutionDuration *prometheus.HistogramVec
	agentStateTransitions  *prometheus.CounterVec
	safetyDecisions        *prometheus.CounterVec
	activeSessions         prometheus.Gauge

	// 积分指标
	pointsAwarded *prometheus.CounterVec

	// 缓存指标
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	// 数据库指标
	dbConnectionsOpen *prometheus.GaugeVec
	dbConnectionsIdle *prometheus.GaugeVec
	dbQueryDuration   *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector 在默认 Registry 上创建指标收集器
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	return NewCollectorWithRegistry(namespace, prometheus.DefaultRegisterer, logger)
}

// 各类耗时直方图的桶
var (
	llmLatencyBuckets  = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60}
	turnLatencyBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}
	sizeBuckets        = prometheus.ExponentialBuckets(100, 10, 8)
)

// NewCollectorWithRegistry 在指定 Registerer 上创建指标收集器，测试与多实例场景使用独立 Registry
func NewCollectorWithRegistry(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := builder{factory: promauto.With(reg), ns: namespace}

	c := &Collector{
		httpRequestsTotal:   b.counter("http_requests_total", "Total number of HTTP requests", "method", "path", "status"),
		httpRequestDuration: b.histogram("http_request_duration_seconds", "HTTP request duration in seconds", prometheus.DefBuckets, "method", "path"),
		httpRequestSize:     b.histogram("http_request_size_bytes", "HTTP request size in bytes", sizeBuckets, "method", "path"),
		httpResponseSize:    b.histogram("http_response_size_bytes", "HTTP response size in bytes", sizeBuckets, "method", "path"),

		// status: success / error / filtered
		llmRequestsTotal:   b.counter("llm_requests_total", "Total number of LLM gateway calls", "provider", "model", "status"),
		llmRequestDuration: b.histogram("llm_request_duration_seconds", "LLM gateway call duration in seconds, retries included", llmLatencyBuckets, "provider", "model"),
		llmTokensUsed:      b.counter("llm_tokens_used_total", "Total number of tokens used", "provider", "model", "type"),

		agentExecutionsTotal:   b.counter("agent_executions_total", "Total number of orchestrated turns by handling agent", "agent", "status"),
		agentExecutionDuration: b.histogram("agent_execution_duration_seconds", "Turn duration in seconds", turnLatencyBuckets, "agent"),
		agentStateTransitions:  b.counter("agent_state_transitions_total", "Total number of session phase transitions", "from_state", "to_state"),
		safetyDecisions:        b.counter("safety_decisions_total", "Total number of safety gate decisions", "status"),
		activeSessions: b.factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of learning sessions held in memory",
		}),

		pointsAwarded: b.counter("points_awarded_total", "Total number of gamification points awarded", "activity"),

		cacheHits:   b.counter("cache_hits_total", "Total number of cache hits", "cache_type"),
		cacheMisses: b.counter("cache_misses_total", "Total number of cache misses", "cache_type"),

		dbConnectionsOpen: b.gauge("db_connections_open", "Number of open database connections", "database"),
		dbConnectionsIdle: b.gauge("db_connections_idle", "Number of idle database connections", "database"),
		dbQueryDuration:   b.histogram("db_query_duration_seconds", "Database query duration in seconds", prometheus.DefBuckets, "database", "operation"),

		logger: logger.With(zap.String("component", "metrics")),
	}

	c.logger.Info("metrics collector initialized", zap.String("namespace", namespace))
	return c
}

// builder 统一命名空间，省去每个指标重复的 Opts
type builder struct {
	factory promauto.Factory
	ns      string
}

func (b builder) counter(name, help string, labels ...string) *prometheus.CounterVec {
	return b.factory.NewCounterVec(prometheus.CounterOpts{Namespace: b.ns, Name: name, Help: help}, labels)
}

func (b builder) gauge(name, help string, labels ...string) *prometheus.GaugeVec {
	return b.factory.NewGaugeVec(prometheus.GaugeOpts{Namespace: b.ns, Name: name, Help: help}, labels)
}

func (b builder) histogram(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return b.factory.NewHistogramVec(prometheus.HistogramOpts{Namespace: b.ns, Name: name, Help: help, Buckets: buckets}, labels)
}

// =============================================================================
// 🎯 HTTP 指标记录
// =============================================================================

// RecordHTTPRequest 记录 HTTP 请求
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration, requestSize, responseSize int64) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	c.httpRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	c.httpResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// =============================================================================
// 🤖 LLM 指标记录
// =============================================================================

// RecordLLMRequest 记录一次网关调用
func (c *Collector) RecordLLMRequest(provider, model, status string, duration time.Duration, promptTokens, completionTokens int) {
	c.llmRequestsTotal.WithLabelValues(provider, model, status).Inc()
	c.llmRequestDuration.WithLabelValues(provider, model).Observe(duration.Seconds())
	c.llmTokensUsed.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
	c.llmTokensUsed.WithLabelValues(provider, model, "completion").Add(float64(completionTokens))
}

// =============================================================================
// 🎭 编排指标记录
// =============================================================================

// RecordAgentExecution 记录一轮对话由哪个角色处理
func (c *Collector) RecordAgentExecution(agent, status string, duration time.Duration) {
	c.agentExecutionsTotal.WithLabelValues(agent, status).Inc()
	c.agentExecutionDuration.WithLabelValues(agent).Observe(duration.Seconds())
}

// RecordAgentStateTransition 记录会话阶段转换
func (c *Collector) RecordAgentStateTransition(fromState, toState string) {
	c.agentStateTransitions.WithLabelValues(fromState, toState).Inc()
}

// RecordSafetyDecision 记录安全门判定
func (c *Collector) RecordSafetyDecision(status string) {
	c.safetyDecisions.WithLabelValues(status).Inc()
}

// SetActiveSessions 设置内存中的会话数
func (c *Collector) SetActiveSessions(n int) {
	c.activeSessions.Set(float64(n))
}

// RecordPointsAwarded 记录发放的积分
func (c *Collector) RecordPointsAwarded(activity string, points int) {
	c.pointsAwarded.WithLabelValues(activity).Add(float64(points))
}

// =============================================================================
// 💾 缓存指标记录
// =============================================================================

// RecordCacheHit 记录缓存命中
func (c *Collector) RecordCacheHit(cacheType string) {
	c.cacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss 记录缓存未命中
func (c *Collector) RecordCacheMiss(cacheType string) {
	c.cacheMisses.WithLabelValues(cacheType).Inc()
}

// =============================================================================
// 🗄️ 数据库指标记录
// =============================================================================

// RecordDBConnections 记录数据库连接数
func (c *Collector) RecordDBConnections(database string, open, idle int) {
	c.dbConnectionsOpen.WithLabelValues(database).Set(float64(open))
	c.dbConnectionsIdle.WithLabelValues(database).Set(float64(idle))
}

// RecordDBQuery 记录数据库查询
func (c *Collector) RecordDBQuery(database, operation string, duration time.Duration) {
	c.dbQueryDuration.WithLabelValues(database, operation).Observe(duration.Seconds())
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// statusCode 按状态码首位归类，控制标签基数
func statusCode(code int) string {
	if code < 200 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
