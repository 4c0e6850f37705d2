package gamification

// 活动类型，写入 point_transactions.activity_type
const (
	ActivityQuizCompleted = "quiz_completed"
	ActivityPerfectQuiz   = "perfect_quiz"
	ActivityContentUpload = "content_upload"
	ActivityDailyLogin    = "daily_login"
	ActivityStreakBonus   = "streak_bonus"
	ActivityHelpPeer      = "help_peer"
	ActivityShareContent  = "share_content"
)

// PointValues 各项活动的分值
var PointValues = map[string]int{
	"quiz_completed":   15,
	"quiz_perfect":     25,
	"quiz_good":        20, // 得分 >= 0.8
	"quiz_average":     10, // 得分 >= 0.6
	"content_upload":   30,
	"daily_login":      5,
	"streak_bonus":     10,
	"first_time_bonus": 50,
	"help_peer":        15,
	"share_content":    10,
}

// fixedActivities 可通过 AwardActivity 直接发放的活动及默认描述
var fixedActivities = map[string]string{
	ActivityContentUpload: "Uploaded learning content",
	ActivityDailyLogin:    "Daily login bonus",
	ActivityStreakBonus:   "Learning streak bonus",
	ActivityHelpPeer:      "Helped a peer",
	ActivityShareContent:  "Shared content",
}

// CalculateQuizPoints 按得分档位计算积分，首次测验额外加分。
func CalculateQuizPoints(score float64, firstQuiz bool) (int, string) {
	var points int
	activity := ActivityQuizCompleted

	switch {
	case score >= 1.0:
		points = PointValues["quiz_perfect"]
		activity = ActivityPerfectQuiz
	case score >= 0.8:
		points = PointValues["quiz_good"]
	case score >= 0.6:
		points = PointValues["quiz_average"]
	default:
		points = PointValues["quiz_completed"]
	}

	if firstQuiz {
		points += PointValues["first_time_bonus"]
	}
	return points, activity
}

// LevelFor 每 100 分升一级，从 1 级开始
func LevelFor(totalPoints int) int {
	if totalPoints < 0 {
		return 1
	}
	return totalPoints/100 + 1
}
