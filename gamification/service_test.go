package gamification

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BaSui01/mindflow/internal/cache"
)

// =============================================================================
// 🧪 测试辅助
// =============================================================================

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库每个连接独立，固定为单连接
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(Models()...))
	return db
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// 下午三点，既不算早晨也不算晚间
var afternoon = time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) (*Service, *gorm.DB, *fixedClock) {
	t.Helper()
	db := openTestDB(t)
	clock := &fixedClock{now: afternoon}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	svc := NewService(db, zap.NewNop(), opts...)
	require.NoError(t, svc.EnsureBadges(context.Background()))
	return svc, db, clock
}

type pointsCounter struct {
	mu     sync.Mutex
	points map[string]int
}

func (p *pointsCounter) RecordPointsAwarded(activity string, points int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.points == nil {
		p.points = map[string]int{}
	}
	p.points[activity] += points
}

type hitCounter struct {
	mu           sync.Mutex
	hits, misses int
}

func (h *hitCounter) RecordCacheHit(string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
}

func (h *hitCounter) RecordCacheMiss(string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses++
}

func (h *hitCounter) counts() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hits, h.misses
}

// =============================================================================
// 👤 用户
// =============================================================================

func TestInitializeUser_DefaultsAndUpsert(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.InitializeUser(ctx, "u1", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", u.Username)
	assert.Equal(t, "unknown+u1@example.com", u.Email)
	assert.Equal(t, 1, u.Level)
	assert.Zero(t, u.TotalPoints)

	// 两个默认用户不会撞上 email 唯一约束
	_, err = svc.InitializeUser(ctx, "u2", "", "")
	require.NoError(t, err)

	u, err = svc.InitializeUser(ctx, "u1", "Ada", "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Username)
	assert.Equal(t, "ada@example.com", u.Email)

	_, err = svc.InitializeUser(ctx, "", "x", "")
	assert.ErrorIs(t, err, ErrInvalidUserID)
}

func TestGetUser_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.GetUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

// =============================================================================
// 💰 积分发放
// =============================================================================

func TestAwardPoints_CreatesUserAndUpdatesTotals(t *testing.T) {
	rec := &pointsCounter{}
	svc, db, _ := newTestService(t, WithPointsRecorder(rec))
	ctx := context.Background()

	txID, err := svc.AwardPoints(ctx, "learner", 120, "custom", "manual grant", map[string]any{"reason": "test"})
	require.NoError(t, err)
	_, err = uuid.Parse(txID)
	assert.NoError(t, err, "transaction id should be a uuid")

	user, err := svc.GetUser(ctx, "learner")
	require.NoError(t, err)
	assert.Equal(t, 120, user.TotalPoints)
	assert.Equal(t, 2, user.Level)
	assert.Equal(t, "Anonymous", user.Username)
	assert.Equal(t, 1, user.StreakDays)

	var tx PointTransaction
	require.NoError(t, db.Where("transaction_id = ?", txID).First(&tx).Error)
	assert.Equal(t, "custom", tx.ActivityType)
	assert.Equal(t, 120, tx.PointsEarned)
	assert.Equal(t, "manual grant", tx.Description)
	assert.JSONEq(t, `{"reason":"test"}`, tx.Metadata)

	assert.Equal(t, 120, rec.points["custom"])
}

func TestAwardPoints_LevelBoundaries(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AwardPoints(ctx, "u", 99, "custom", "", nil)
	require.NoError(t, err)
	u, _ := svc.GetUser(ctx, "u")
	assert.Equal(t, 1, u.Level)

	_, err = svc.AwardPoints(ctx, "u", 1, "custom", "", nil)
	require.NoError(t, err)
	u, _ = svc.GetUser(ctx, "u")
	assert.Equal(t, 100, u.TotalPoints)
	assert.Equal(t, 2, u.Level)
}

func TestAwardPoints_PointBadges(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	award, err := svc.award(ctx, "u", 100, "custom", "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"points_100"}, award.NewBadges)

	award, err = svc.award(ctx, "u", 400, "custom", "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"points_500"}, award.NewBadges, "already owned badges are not granted twice")

	stats, err := svc.UserStats(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.BadgesEarned)
}

func TestAwardPoints_UsesTxRunner(t *testing.T) {
	var runs int
	var svc *Service
	svc, _, _ = newTestService(t, WithTxRunner(func(ctx context.Context, fn func(tx *gorm.DB) error) error {
		runs++
		return svc.db.WithContext(ctx).Transaction(fn)
	}))

	_, err := svc.AwardPoints(context.Background(), "u", 5, ActivityDailyLogin, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, runs)
}

func TestAwardPoints_RollsBackOnBadgeFailure(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, db.Migrator().DropTable(&UserBadge{}))

	_, err := svc.AwardPoints(ctx, "u", 50, "custom", "", nil)
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&PointTransaction{}).Count(&count).Error)
	assert.Zero(t, count)
	_, err = svc.GetUser(ctx, "u")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

// =============================================================================
// 📝 测验
// =============================================================================

func TestSubmitQuiz_FirstQuizBonusThenRegular(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.SubmitQuiz(ctx, "u", 0.9, map[string]any{"topic": "Photosynthesis"})
	require.NoError(t, err)
	assert.True(t, res.IsFirstQuiz)
	assert.Equal(t, 70, res.PointsEarned)
	assert.Equal(t, ActivityQuizCompleted, res.ActivityType)
	assert.Contains(t, res.NewBadges, "first_quiz")

	var tx PointTransaction
	require.NoError(t, db.Where("transaction_id = ?", res.TransactionID).First(&tx).Error)
	assert.Equal(t, "Quiz completed with 90% score (First Quiz Bonus!)", tx.Description)

	var meta map[string]any
	require.NoError(t, json.Unmarshal([]byte(tx.Metadata), &meta))
	assert.Equal(t, "Photosynthesis", meta["quiz_topic"])
	assert.Equal(t, true, meta["is_first_quiz"])
	assert.InDelta(t, 0.9, meta["quiz_score"], 1e-9)

	res, err = svc.SubmitQuiz(ctx, "u", 1.0, nil)
	require.NoError(t, err)
	assert.False(t, res.IsFirstQuiz)
	assert.Equal(t, 25, res.PointsEarned)
	assert.Equal(t, ActivityPerfectQuiz, res.ActivityType)
	assert.Equal(t, []string{"perfect_quiz"}, res.NewBadges)
	assert.Equal(t, 95, res.TotalPoints)

	tx = PointTransaction{}
	require.NoError(t, db.Where("transaction_id = ?", res.TransactionID).First(&tx).Error)
	assert.Equal(t, "Quiz completed with 100% score", tx.Description)
	require.NoError(t, json.Unmarshal([]byte(tx.Metadata), &meta))
	assert.Equal(t, "Unknown", meta["quiz_topic"])
}

func TestSubmitQuiz_RejectsBadInput(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, score := range []float64{-0.1, 1.01} {
		_, err := svc.SubmitQuiz(ctx, "u", score, nil)
		assert.ErrorIs(t, err, ErrInvalidScore)
	}
	_, err := svc.SubmitQuiz(ctx, "", 0.5, nil)
	assert.ErrorIs(t, err, ErrInvalidUserID)
}

func TestAwardActivity(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	award, err := svc.AwardActivity(ctx, "u", ActivityDailyLogin, "")
	require.NoError(t, err)
	assert.Equal(t, 5, award.PointsEarned)

	var tx PointTransaction
	require.NoError(t, db.Where("transaction_id = ?", award.TransactionID).First(&tx).Error)
	assert.Equal(t, "Daily login bonus", tx.Description)

	award, err = svc.AwardActivity(ctx, "u", ActivityContentUpload, "Uploaded notes.pdf")
	require.NoError(t, err)
	assert.Equal(t, 30, award.PointsEarned)
	assert.Equal(t, 35, award.TotalPoints)

	_, err = svc.AwardActivity(ctx, "u", "quiz_perfect", "")
	assert.ErrorIs(t, err, ErrUnknownActivity)
}

func TestAwardActivity_HabitAndSocialBadges(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	clock.Set(time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC))
	var last *Award
	for i := 0; i < 5; i++ {
		var err error
		last, err = svc.AwardActivity(ctx, "u", ActivityHelpPeer, "")
		require.NoError(t, err)
	}
	assert.ElementsMatch(t, []string{"social_learner", "early_bird"}, last.NewBadges)

	for i := 0; i < 5; i++ {
		clock.Set(time.Date(2026, 3, 2, 20, i, 0, 0, time.UTC))
		var err error
		last, err = svc.AwardActivity(ctx, "u", ActivityContentUpload, "")
		require.NoError(t, err)
	}
	assert.ElementsMatch(t, []string{"content_creator", "night_owl"}, last.NewBadges)
}

func TestAwardPoints_StreakAcrossDays(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	var last *Award
	for day := 0; day < 7; day++ {
		clock.Set(start.AddDate(0, 0, day))
		var err error
		last, err = svc.AwardActivity(ctx, "u", ActivityDailyLogin, "")
		require.NoError(t, err)
	}
	assert.Contains(t, last.NewBadges, "streak_7")

	u, err := svc.GetUser(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 7, u.StreakDays)

	clock.Set(start.AddDate(0, 0, 10))
	_, err = svc.AwardActivity(ctx, "u", ActivityDailyLogin, "")
	require.NoError(t, err)
	u, _ = svc.GetUser(ctx, "u")
	assert.Equal(t, 1, u.StreakDays)
}

// =============================================================================
// 📊 查询
// =============================================================================

func TestUserStats_RankAndDefaultUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AwardPoints(ctx, "alice", 300, "custom", "", nil)
	require.NoError(t, err)
	_, err = svc.AwardPoints(ctx, "bob", 150, "custom", "", nil)
	require.NoError(t, err)

	stats, err := svc.UserStats(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 150, stats.TotalPoints)
	assert.Equal(t, 2, stats.CurrentRank)
	assert.Equal(t, 1, stats.BadgesEarned)

	stats, err = svc.UserStats(ctx, "newcomer")
	require.NoError(t, err)
	assert.Equal(t, "New User", stats.Username)
	assert.Equal(t, "user+newcomer@example.com", stats.Email)
	assert.Equal(t, 3, stats.CurrentRank)
	assert.Equal(t, 1, stats.Level)
}

func TestLeaderboard_OrderingWithoutCache(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for id, pts := range map[string]int{"a": 50, "b": 200, "c": 120} {
		_, err := svc.AwardPoints(ctx, id, pts, "custom", "", nil)
		require.NoError(t, err)
	}
	_, err := svc.InitializeUser(ctx, "zero", "Zero", "")
	require.NoError(t, err)

	board, err := svc.Leaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, board, 3, "users without points are excluded")
	assert.Equal(t, LeaderboardEntry{Rank: 1, UserID: "b", Username: "Anonymous", TotalPoints: 200, Level: 3}, board[0])
	assert.Equal(t, "c", board[1].UserID)
	assert.Equal(t, 2, board[1].Rank)
	assert.Equal(t, "a", board[2].UserID)

	board, err = svc.Leaderboard(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, board, 2)
}

func TestLeaderboard_CachedAndInvalidatedOnAward(t *testing.T) {
	mr := miniredis.RunT(t)
	hits := &hitCounter{}
	cfg := cache.DefaultConfig()
	cfg.Addr = mr.Addr()
	cfg.HealthCheckInterval = 0
	cm, err := cache.NewManager(cfg, zap.NewNop(), cache.WithHitRecorder(hits))
	require.NoError(t, err)
	t.Cleanup(func() { cm.Close() })

	svc, _, _ := newTestService(t, WithCache(cm), WithLeaderboardTTL(time.Minute))
	ctx := context.Background()

	_, err = svc.AwardPoints(ctx, "a", 10, "custom", "", nil)
	require.NoError(t, err)

	board, err := svc.Leaderboard(ctx, 5)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.True(t, mr.Exists("leaderboard:5"))

	board, err = svc.Leaderboard(ctx, 5)
	require.NoError(t, err)
	require.Len(t, board, 1)
	h, m := hits.counts()
	assert.Equal(t, 1, h)
	assert.Equal(t, 1, m)

	_, err = svc.AwardPoints(ctx, "b", 20, "custom", "", nil)
	require.NoError(t, err)
	assert.False(t, mr.Exists("leaderboard:5"), "award invalidates cached leaderboards")

	board, err = svc.Leaderboard(ctx, 5)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "b", board[0].UserID)
}

func TestLeaderboard_FallsBackWhenCacheDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	cfg := cache.DefaultConfig()
	cfg.Addr = mr.Addr()
	cfg.HealthCheckInterval = 0
	cfg.MaxRetries = -1
	cfg.MinIdleConns = 0
	cm, err := cache.NewManager(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { cm.Close() })

	svc, _, _ := newTestService(t, WithCache(cm))
	ctx := context.Background()
	_, err = svc.AwardPoints(ctx, "a", 10, "custom", "", nil)
	require.NoError(t, err)

	mr.Close()
	board, err := svc.Leaderboard(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, board, 1)
}

func TestUserBadges_NewestFirst(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	_, err := svc.SubmitQuiz(ctx, "u", 0.5, nil)
	require.NoError(t, err)

	clock.Set(afternoon.Add(time.Hour))
	_, err = svc.AwardPoints(ctx, "u", 100, "custom", "", nil)
	require.NoError(t, err)

	badges, err := svc.UserBadges(ctx, "u")
	require.NoError(t, err)
	require.Len(t, badges, 2)
	assert.Equal(t, "points_100", badges[0].BadgeID)
	assert.Equal(t, "first_quiz", badges[1].BadgeID)
	assert.Equal(t, "First Quiz", badges[1].Name)
	assert.True(t, badges[0].EarnedDate.After(badges[1].EarnedDate))

	_, err = svc.UserBadges(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.InitializeUser(ctx, "fresh", "", "")
	require.NoError(t, err)
	badges, err = svc.UserBadges(ctx, "fresh")
	require.NoError(t, err)
	assert.Empty(t, badges)
	assert.NotNil(t, badges)
}

func TestEnsureBadges_Idempotent(t *testing.T) {
	svc, db, _ := newTestService(t)
	require.NoError(t, svc.EnsureBadges(context.Background()))

	var count int64
	require.NoError(t, db.Model(&Badge{}).Count(&count).Error)
	assert.Equal(t, int64(len(DefaultBadges())), count)
	assert.NoError(t, svc.Ping(context.Background()))
}
