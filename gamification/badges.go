package gamification

import "time"

// UserProgress 徽章判定所需的计数，均由积分流水推导。
type UserProgress struct {
	TotalPoints      int
	QuizzesCompleted int
	PerfectScores    int
	StreakDays       int
	PeersHelped      int
	Uploads          int
	MorningSessions  int
	EveningSessions  int
}

// BadgeRule 徽章定义加类型化的解锁判定
type BadgeRule struct {
	Badge
	Eligible func(UserProgress) bool
}

var defaultBadges = []BadgeRule{
	{
		Badge:    Badge{BadgeID: "first_quiz", Name: "First Quiz", Description: "Complete your first quiz", IconURL: "/badges/first_quiz.svg", Category: "quiz", UnlockCondition: "quizzes_completed >= 1"},
		Eligible: func(p UserProgress) bool { return p.QuizzesCompleted >= 1 },
	},
	{
		Badge:    Badge{BadgeID: "quiz_master", Name: "Quiz Master", Description: "Complete 10 quizzes", IconURL: "/badges/quiz_master.svg", Category: "quiz", UnlockCondition: "quizzes_completed >= 10"},
		Eligible: func(p UserProgress) bool { return p.QuizzesCompleted >= 10 },
	},
	{
		Badge:    Badge{BadgeID: "streak_7", Name: "Week Warrior", Description: "Keep a 7 day learning streak", IconURL: "/badges/streak_7.svg", Category: "streak", UnlockCondition: "streak_days >= 7"},
		Eligible: func(p UserProgress) bool { return p.StreakDays >= 7 },
	},
	{
		Badge:    Badge{BadgeID: "points_100", Name: "Century", Description: "Earn 100 points", IconURL: "/badges/points_100.svg", PointsRequired: 100, Category: "points", UnlockCondition: "total_points >= 100"},
		Eligible: func(p UserProgress) bool { return p.TotalPoints >= 100 },
	},
	{
		Badge:    Badge{BadgeID: "points_500", Name: "High Achiever", Description: "Earn 500 points", IconURL: "/badges/points_500.svg", PointsRequired: 500, Category: "points", UnlockCondition: "total_points >= 500"},
		Eligible: func(p UserProgress) bool { return p.TotalPoints >= 500 },
	},
	{
		Badge:    Badge{BadgeID: "perfect_quiz", Name: "Perfectionist", Description: "Score 100% on a quiz", IconURL: "/badges/perfect_quiz.svg", Category: "quiz", UnlockCondition: "perfect_scores >= 1"},
		Eligible: func(p UserProgress) bool { return p.PerfectScores >= 1 },
	},
	{
		Badge:    Badge{BadgeID: "social_learner", Name: "Social Learner", Description: "Help 5 peers", IconURL: "/badges/social_learner.svg", Category: "social", UnlockCondition: "peers_helped >= 5"},
		Eligible: func(p UserProgress) bool { return p.PeersHelped >= 5 },
	},
	{
		Badge:    Badge{BadgeID: "content_creator", Name: "Content Creator", Description: "Upload 5 pieces of content", IconURL: "/badges/content_creator.svg", Category: "content", UnlockCondition: "uploads >= 5"},
		Eligible: func(p UserProgress) bool { return p.Uploads >= 5 },
	},
	{
		Badge:    Badge{BadgeID: "early_bird", Name: "Early Bird", Description: "Study in the morning 5 times", IconURL: "/badges/early_bird.svg", Category: "habit", UnlockCondition: "morning_sessions >= 5"},
		Eligible: func(p UserProgress) bool { return p.MorningSessions >= 5 },
	},
	{
		Badge:    Badge{BadgeID: "night_owl", Name: "Night Owl", Description: "Study in the evening 5 times", IconURL: "/badges/night_owl.svg", Category: "habit", UnlockCondition: "evening_sessions >= 5"},
		Eligible: func(p UserProgress) bool { return p.EveningSessions >= 5 },
	},
}

// DefaultBadges 内置徽章，顺序与种子迁移一致。返回副本。
func DefaultBadges() []BadgeRule {
	out := make([]BadgeRule, len(defaultBadges))
	copy(out, defaultBadges)
	return out
}

// activityRecord 推导进度时读取的流水列
type activityRecord struct {
	ActivityType string
	Timestamp    time.Time
}

// deriveProgress 从流水计算进度。早晨为 5–11 点，晚间为 18–23 点（UTC）。
func deriveProgress(user User, records []activityRecord) UserProgress {
	p := UserProgress{TotalPoints: user.TotalPoints, StreakDays: user.StreakDays}
	for _, r := range records {
		switch r.ActivityType {
		case ActivityQuizCompleted:
			p.QuizzesCompleted++
		case ActivityPerfectQuiz:
			p.QuizzesCompleted++
			p.PerfectScores++
		case ActivityHelpPeer:
			p.PeersHelped++
		case ActivityContentUpload:
			p.Uploads++
		}

		switch h := r.Timestamp.UTC().Hour(); {
		case h >= 5 && h <= 11:
			p.MorningSessions++
		case h >= 18 && h <= 23:
			p.EveningSessions++
		}
	}
	return p
}
