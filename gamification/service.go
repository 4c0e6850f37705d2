package gamification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidUserID   = errors.New("user_id is required")
	ErrUnknownActivity = errors.New("unknown activity type")
	ErrInvalidScore    = errors.New("quiz score must be between 0 and 1")
)

const (
	leaderboardCacheType = "leaderboard"
	leaderboardKeyPrefix = "leaderboard:"

	DefaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// Cache 排行榜缓存，*cache.Manager 满足该接口
type Cache interface {
	GetOrLoadJSON(ctx context.Context, cacheType, key string, ttl time.Duration, dest any, load func(ctx context.Context) (any, error)) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// PointsRecorder 积分发放指标，*metrics.Collector 满足该接口
type PointsRecorder interface {
	RecordPointsAwarded(activity string, points int)
}

// TxRunner 在事务中执行 fn。默认使用 gorm 的 Transaction，
// 生产环境接到 database.PoolManager.WithTransactionRetry。
type TxRunner func(ctx context.Context, fn func(tx *gorm.DB) error) error

// Option 配置 Service
type Option func(*Service)

func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

func WithPointsRecorder(r PointsRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithTxRunner(run TxRunner) Option {
	return func(s *Service) { s.runTx = run }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLeaderboardTTL(ttl time.Duration) Option {
	return func(s *Service) { s.leaderboardTTL = ttl }
}

// Service 积分、等级、徽章与排行榜。
// 编排器从不调用它，由 HTTP 层在学习事件后调用。
type Service struct {
	db             *gorm.DB
	runTx          TxRunner
	cache          Cache
	recorder       PointsRecorder
	now            func() time.Time
	leaderboardTTL time.Duration
	logger         *zap.Logger
}

func NewService(db *gorm.DB, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		db:             db,
		now:            time.Now,
		leaderboardTTL: 30 * time.Second,
		logger:         logger.With(zap.String("component", "gamification")),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runTx == nil {
		s.runTx = func(ctx context.Context, fn func(tx *gorm.DB) error) error {
			return s.db.WithContext(ctx).Transaction(fn)
		}
	}
	return s
}

// Award 一次积分发放的结果
type Award struct {
	TransactionID string   `json:"transaction_id"`
	PointsEarned  int      `json:"points_earned"`
	ActivityType  string   `json:"activity_type"`
	TotalPoints   int      `json:"total_points"`
	Level         int      `json:"level"`
	NewBadges     []string `json:"new_badges,omitempty"`
}

// QuizResult 测验提交结果
type QuizResult struct {
	Award
	IsFirstQuiz bool `json:"is_first_quiz"`
}

// UserStats 用户统计与当前排名
type UserStats struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	TotalPoints  int    `json:"total_points"`
	Level        int    `json:"level"`
	StreakDays   int    `json:"streak_days"`
	BadgesEarned int    `json:"badges_earned"`
	CurrentRank  int    `json:"current_rank"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	TotalPoints int    `json:"total_points"`
	Level       int    `json:"level"`
}

// EarnedBadge 用户已获得的徽章
type EarnedBadge struct {
	BadgeID     string    `json:"badge_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IconURL     string    `json:"icon_url"`
	Category    string    `json:"category"`
	EarnedDate  time.Time `json:"earned_date"`
}

// placeholderEmail email 唯一，占位邮箱带上用户 ID
func placeholderEmail(local, userID string) string {
	return fmt.Sprintf("%s+%s@example.com", local, userID)
}

// =============================================================================
// 👤 用户
// =============================================================================

// InitializeUser 创建或更新用户。username 默认 "Anonymous"。
func (s *Service) InitializeUser(ctx context.Context, userID, username, email string) (*User, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if username == "" {
		username = "Anonymous"
	}
	if email == "" {
		email = placeholderEmail("unknown", userID)
	}

	now := s.now().UTC()
	user := User{
		UserID:     userID,
		Username:   username,
		Email:      email,
		Level:      1,
		LastActive: now,
		CreatedAt:  now,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "email", "last_active"}),
	}).Create(&user).Error
	if err != nil {
		return nil, fmt.Errorf("initialize user %s: %w", userID, err)
	}
	return s.GetUser(ctx, userID)
}

// GetUser 查询用户，不存在返回 ErrUserNotFound
func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	return &user, nil
}

// =============================================================================
// 💰 积分发放
// =============================================================================

// AwardPoints 在一个事务内写流水、更新总分与等级、检查徽章，返回流水 ID。
func (s *Service) AwardPoints(ctx context.Context, userID string, points int, activity, description string, metadata map[string]any) (string, error) {
	award, err := s.award(ctx, userID, points, activity, description, metadata)
	if err != nil {
		return "", err
	}
	return award.TransactionID, nil
}

func (s *Service) award(ctx context.Context, userID string, points int, activity, description string, metadata map[string]any) (*Award, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	var meta string
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("encode metadata: %w", err)
		}
		meta = string(raw)
	}

	now := s.now().UTC()
	award := &Award{
		TransactionID: uuid.NewString(),
		PointsEarned:  points,
		ActivityType:  activity,
	}

	err := s.runTx(ctx, func(tx *gorm.DB) error {
		// 外键要求用户先存在
		if err := ensureUser(tx, userID, now); err != nil {
			return err
		}

		var user User
		if err := lockUser(tx, userID).First(&user).Error; err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		if err := tx.Create(&PointTransaction{
			TransactionID: award.TransactionID,
			UserID:        userID,
			PointsEarned:  points,
			ActivityType:  activity,
			Timestamp:     now,
			Description:   description,
			Metadata:      meta,
		}).Error; err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}

		user.TotalPoints += points
		user.Level = LevelFor(user.TotalPoints)
		user.StreakDays = nextStreak(user.StreakDays, user.LastActive, now)
		user.LastActive = now

		if err := tx.Model(&User{}).Where("user_id = ?", userID).Updates(map[string]any{
			"total_points": user.TotalPoints,
			"level":        user.Level,
			"streak_days":  user.StreakDays,
			"last_active":  now,
		}).Error; err != nil {
			return fmt.Errorf("update user totals: %w", err)
		}

		earned, err := s.checkBadges(tx, user, now)
		if err != nil {
			return err
		}
		award.TotalPoints = user.TotalPoints
		award.Level = user.Level
		award.NewBadges = earned
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("award points to %s: %w", userID, err)
	}

	s.invalidateLeaderboard(ctx)
	if s.recorder != nil {
		s.recorder.RecordPointsAwarded(activity, points)
	}
	s.logger.Info("points awarded",
		zap.String("user_id", userID),
		zap.String("activity", activity),
		zap.Int("points", points),
		zap.Int("total_points", award.TotalPoints),
		zap.Strings("new_badges", award.NewBadges))
	return award, nil
}

func ensureUser(tx *gorm.DB, userID string, now time.Time) error {
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&User{
		UserID:     userID,
		Username:   "Anonymous",
		Email:      placeholderEmail("unknown", userID),
		Level:      1,
		LastActive: now,
		CreatedAt:  now,
	}).Error
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// lockUser 以 SELECT ... FOR UPDATE 读取用户行，并发发放时等级、连续天数与总分
// 基于同一份数据计算。sqlite 方言忽略该子句，写事务本身已串行。
func lockUser(tx *gorm.DB, userID string) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("user_id = ?", userID)
}

// nextStreak 同一天不变（首次记为 1），隔天 +1，断档重置为 1。
func nextStreak(current int, lastActive, now time.Time) int {
	y1, m1, d1 := lastActive.UTC().Date()
	y2, m2, d2 := now.UTC().Date()
	last := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	today := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)

	switch today.Sub(last) {
	case 0:
		if current == 0 {
			return 1
		}
		return current
	case 24 * time.Hour:
		return current + 1
	default:
		return 1
	}
}

// checkBadges 评估全部规则，写入新获得且已在 badges 表登记的徽章。
func (s *Service) checkBadges(tx *gorm.DB, user User, now time.Time) ([]string, error) {
	var records []activityRecord
	if err := tx.Model(&PointTransaction{}).
		Select("activity_type, timestamp").
		Where("user_id = ?", user.UserID).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}
	progress := deriveProgress(user, records)

	var owned, registered []string
	if err := tx.Model(&UserBadge{}).Where("user_id = ?", user.UserID).Pluck("badge_id", &owned).Error; err != nil {
		return nil, fmt.Errorf("load user badges: %w", err)
	}
	if err := tx.Model(&Badge{}).Pluck("badge_id", &registered).Error; err != nil {
		return nil, fmt.Errorf("load badges: %w", err)
	}
	has := make(map[string]bool, len(owned))
	for _, id := range owned {
		has[id] = true
	}
	known := make(map[string]bool, len(registered))
	for _, id := range registered {
		known[id] = true
	}

	var earned []string
	for _, rule := range defaultBadges {
		id := rule.BadgeID
		if has[id] || !known[id] || !rule.Eligible(progress) {
			continue
		}
		if err := tx.Create(&UserBadge{
			UserID:             user.UserID,
			BadgeID:            id,
			EarnedDate:         now,
			ProgressPercentage: 100,
		}).Error; err != nil {
			return nil, fmt.Errorf("grant badge %s: %w", id, err)
		}
		earned = append(earned, id)
	}
	return earned, nil
}

// SubmitQuiz 按得分发放测验积分。没有任何测验流水的用户视为首次测验。
func (s *Service) SubmitQuiz(ctx context.Context, userID string, score float64, quizData map[string]any) (*QuizResult, error) {
	if math.IsNaN(score) || score < 0 || score > 1 {
		return nil, ErrInvalidScore
	}
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	var prior int64
	if err := s.db.WithContext(ctx).Model(&PointTransaction{}).
		Where("user_id = ? AND (activity_type LIKE ? OR activity_type = ?)", userID, "quiz%", ActivityPerfectQuiz).
		Count(&prior).Error; err != nil {
		return nil, fmt.Errorf("count quizzes: %w", err)
	}
	first := prior == 0

	points, activity := CalculateQuizPoints(score, first)
	description := fmt.Sprintf("Quiz completed with %d%% score", int(math.Round(score*100)))
	if first {
		description += " (First Quiz Bonus!)"
	}

	topic := "Unknown"
	if t, ok := quizData["topic"].(string); ok && t != "" {
		topic = t
	}
	metadata := map[string]any{
		"quiz_score":    score,
		"quiz_topic":    topic,
		"is_first_quiz": first,
	}

	award, err := s.award(ctx, userID, points, activity, description, metadata)
	if err != nil {
		return nil, err
	}
	return &QuizResult{Award: *award, IsFirstQuiz: first}, nil
}

// AwardActivity 发放固定分值活动，description 为空时使用默认描述。
func (s *Service) AwardActivity(ctx context.Context, userID, activity, description string) (*Award, error) {
	defaultDesc, ok := fixedActivities[activity]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownActivity, activity)
	}
	if description == "" {
		description = defaultDesc
	}
	return s.award(ctx, userID, PointValues[activity], activity, description, nil)
}

// =============================================================================
// 📊 查询
// =============================================================================

// UserStats 返回统计与排名，用户不存在时以默认资料创建。
func (s *Service) UserStats(ctx context.Context, userID string) (*UserStats, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	user, err := s.GetUser(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		user, err = s.InitializeUser(ctx, userID, "New User", placeholderEmail("user", userID))
	}
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var badges, ahead int64
	if err := db.Model(&UserBadge{}).Where("user_id = ?", userID).Count(&badges).Error; err != nil {
		return nil, fmt.Errorf("count badges: %w", err)
	}
	if err := db.Model(&User{}).Where("total_points > ?", user.TotalPoints).Count(&ahead).Error; err != nil {
		return nil, fmt.Errorf("compute rank: %w", err)
	}

	return &UserStats{
		UserID:       user.UserID,
		Username:     user.Username,
		Email:        user.Email,
		TotalPoints:  user.TotalPoints,
		Level:        user.Level,
		StreakDays:   user.StreakDays,
		BadgesEarned: int(badges),
		CurrentRank:  int(ahead) + 1,
	}, nil
}

// Leaderboard 积分大于 0 的用户按积分降序。有缓存时走缓存，
// 缓存不可用则直接查库。
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	load := func(ctx context.Context) (any, error) {
		return s.loadLeaderboard(ctx, limit)
	}
	if s.cache == nil {
		return s.loadLeaderboard(ctx, limit)
	}

	var entries []LeaderboardEntry
	key := fmt.Sprintf("%s%d", leaderboardKeyPrefix, limit)
	if err := s.cache.GetOrLoadJSON(ctx, leaderboardCacheType, key, s.leaderboardTTL, &entries, load); err != nil {
		s.logger.Warn("leaderboard cache unavailable, reading database", zap.Error(err))
		return s.loadLeaderboard(ctx, limit)
	}
	return entries, nil
}

func (s *Service) loadLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	var users []User
	if err := s.db.WithContext(ctx).
		Where("total_points > ?", 0).
		Order("total_points DESC").
		Order("user_id ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}

	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = LeaderboardEntry{
			Rank:        i + 1,
			UserID:      u.UserID,
			Username:    u.Username,
			TotalPoints: u.TotalPoints,
			Level:       u.Level,
		}
	}
	return entries, nil
}

func (s *Service) invalidateLeaderboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.DeletePrefix(ctx, leaderboardKeyPrefix); err != nil {
		s.logger.Warn("leaderboard invalidation failed", zap.Error(err))
	}
}

// UserBadges 已获得的徽章，最新在前
func (s *Service) UserBadges(ctx context.Context, userID string) ([]EarnedBadge, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	var out []EarnedBadge
	err := s.db.WithContext(ctx).
		Table("user_badges").
		Select("badges.badge_id, badges.name, badges.description, badges.icon_url, badges.category, user_badges.earned_date").
		Joins("JOIN badges ON badges.badge_id = user_badges.badge_id").
		Where("user_badges.user_id = ?", userID).
		Order("user_badges.earned_date DESC").
		Order("badges.badge_id ASC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("load badges for %s: %w", userID, err)
	}
	if out == nil {
		out = []EarnedBadge{}
	}
	return out, nil
}

// EnsureBadges 写入内置徽章定义，已存在的跳过。
func (s *Service) EnsureBadges(ctx context.Context) error {
	badges := make([]Badge, len(defaultBadges))
	for i, rule := range defaultBadges {
		badges[i] = rule.Badge
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&badges).Error; err != nil {
		return fmt.Errorf("seed badges: %w", err)
	}
	return nil
}

// Ping 数据库可用性，供就绪探针使用
func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
