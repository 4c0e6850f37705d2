package orchestrator

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrRegistryClosed 注册表已关闭
var ErrRegistryClosed = errors.New("session registry closed")

// SessionGauge 活跃会话数上报，*metrics.Collector 满足该接口
type SessionGauge interface {
	SetActiveSessions(n int)
}

// RegistryConfig 注册表配置
type RegistryConfig struct {
	// TTL 会话空闲多久后回收
	TTL time.Duration
	// JanitorInterval 回收扫描间隔，<=0 时不启动 janitor
	JanitorInterval time.Duration
}

// Session 注册表中的单个会话。Do 持有会话锁，同一会话的轮次串行执行。
// pins 由注册表锁保护，大于 0 时 Evict 不回收。
type Session struct {
	ID string

	mu       sync.Mutex
	orch     *Orchestrator
	lastUsed time.Time
	now      func() time.Time

	pins int
}

// Do 在会话锁内执行 fn
func (s *Session) Do(fn func(o *Orchestrator)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = s.now()
	fn(s.orch)
	s.lastUsed = s.now()
}

// Registry 按会话 ID 持有编排器
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool

	factory func() *Orchestrator
	cfg     RegistryConfig
	gauge   SessionGauge
	now     func() time.Time
	logger  *zap.Logger

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// RegistryOption 注册表配置项
type RegistryOption func(*Registry)

// WithSessionGauge 上报活跃会话数
func WithSessionGauge(g SessionGauge) RegistryOption {
	return func(r *Registry) { r.gauge = g }
}

// WithRegistryClock 替换时间源
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// NewRegistry 创建注册表，JanitorInterval > 0 时启动后台回收
func NewRegistry(factory func() *Orchestrator, cfg RegistryConfig, logger *zap.Logger, opts ...RegistryOption) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		sessions: make(map[string]*Session),
		factory:  factory,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger.With(zap.String("component", "session_registry")),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	if cfg.JanitorInterval > 0 && cfg.TTL > 0 {
		go r.janitor()
	} else {
		close(r.done)
	}
	return r
}

// NewSessionID 生成会话 ID
func NewSessionID() string {
	return uuid.NewString()
}

// Get 取出会话，不存在时创建。id 为空时生成新 ID。取出即视为一次使用。
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(id)
}

// Acquire 取出会话并钉住，release 调用前 Evict 不会回收它。
// 长连接在整个生命周期内持有，release 可重复调用。
func (r *Registry) Acquire(id string) (*Session, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.getLocked(id)
	if err != nil {
		return nil, nil, err
	}
	s.pins++

	var once sync.Once
	release := func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			s.pins--
			s.touch()
		})
	}
	return s, release, nil
}

func (r *Registry) getLocked(id string) (*Session, error) {
	if r.closed {
		return nil, ErrRegistryClosed
	}
	if id == "" {
		id = NewSessionID()
	}
	if s, ok := r.sessions[id]; ok {
		s.touch()
		return s, nil
	}

	s := &Session{ID: id, orch: r.factory(), lastUsed: r.now(), now: r.now}
	r.sessions[id] = s
	r.reportLocked()
	r.logger.Debug("session created", zap.String("session_id", id))
	return s, nil
}

// touch 刷新 lastUsed。会话正在执行轮次时 Do 结束会再刷新一次，这里跳过。
func (s *Session) touch() {
	if s.mu.TryLock() {
		s.lastUsed = s.now()
		s.mu.Unlock()
	}
}

// Ephemeral 创建不登记的编排器，用于无会话的一次性调用（如安全探测）
func (r *Registry) Ephemeral() *Orchestrator {
	return r.factory()
}

// Lookup 只查找不创建，命中时刷新 lastUsed
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		s.touch()
	}
	return s, ok
}

// Remove 删除会话
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; ok {
		delete(r.sessions, id)
		r.reportLocked()
	}
}

// Len 当前会话数
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Evict 回收空闲超过 TTL 的会话，返回回收数量。
// 被钉住或正在执行轮次的会话跳过。
func (r *Registry) Evict() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.cfg.TTL)
	evicted := 0
	for id, s := range r.sessions {
		if s.pins > 0 || !s.mu.TryLock() {
			continue
		}
		idle := s.lastUsed.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(r.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.reportLocked()
		r.logger.Debug("idle sessions evicted", zap.Int("count", evicted))
	}
	return evicted
}

func (r *Registry) janitor() {
	defer close(r.done)
	ticker := time.NewTicker(r.cfg.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.Evict()
		}
	}
}

func (r *Registry) reportLocked() {
	if r.gauge != nil {
		r.gauge.SetActiveSessions(len(r.sessions))
	}
}

// Close 停止 janitor 并清空会话，可重复调用
func (r *Registry) Close() {
	r.closeOnce.Do(func() {
		close(r.stop)
		<-r.done

		r.mu.Lock()
		r.closed = true
		r.sessions = make(map[string]*Session)
		r.reportLocked()
		r.mu.Unlock()
	})
}
