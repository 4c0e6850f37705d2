package gamification

import "time"

// =============================================================================
// 🗄️ 账本表模型，与 internal/migration 的内嵌 SQL 对齐
// =============================================================================

// User 学习者账户
type User struct {
	UserID      string    `gorm:"primaryKey;size:64" json:"user_id"`
	Username    string    `gorm:"size:100;not null;default:Anonymous" json:"username"`
	Email       string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	TotalPoints int       `gorm:"not null;default:0;index" json:"total_points"`
	Level       int       `gorm:"not null;default:1" json:"level"`
	StreakDays  int       `gorm:"not null;default:0" json:"streak_days"`
	LastActive  time.Time `gorm:"not null" json:"last_active"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (User) TableName() string { return "users" }

// PointTransaction 积分流水，只追加
type PointTransaction struct {
	TransactionID string    `gorm:"primaryKey;size:36" json:"transaction_id"`
	UserID        string    `gorm:"size:64;not null;index" json:"user_id"`
	PointsEarned  int       `gorm:"not null" json:"points_earned"`
	ActivityType  string    `gorm:"size:50;not null;index" json:"activity_type"`
	Timestamp     time.Time `gorm:"not null" json:"timestamp"`
	Description   string    `gorm:"type:text" json:"description"`
	Metadata      string    `gorm:"type:text" json:"metadata"` // JSON 文本
}

func (PointTransaction) TableName() string { return "point_transactions" }

// Badge 徽章定义
type Badge struct {
	BadgeID         string `gorm:"primaryKey;size:64" json:"badge_id"`
	Name            string `gorm:"size:100;not null" json:"name"`
	Description     string `gorm:"type:text" json:"description"`
	IconURL         string `gorm:"size:255" json:"icon_url"`
	PointsRequired  int    `gorm:"not null;default:0" json:"points_required"`
	Category        string `gorm:"size:50" json:"category"`
	UnlockCondition string `gorm:"size:255" json:"unlock_condition"` // 仅作展示，判定由 BadgeRule 完成
}

func (Badge) TableName() string { return "badges" }

// UserBadge 已获得的徽章
type UserBadge struct {
	UserID             string    `gorm:"primaryKey;size:64" json:"user_id"`
	BadgeID            string    `gorm:"primaryKey;size:64" json:"badge_id"`
	EarnedDate         time.Time `gorm:"not null" json:"earned_date"`
	ProgressPercentage float64   `gorm:"not null;default:100" json:"progress_percentage"`
}

func (UserBadge) TableName() string { return "user_badges" }

// Models 全部账本模型，测试中用于 AutoMigrate
func Models() []any {
	return []any{&User{}, &PointTransaction{}, &Badge{}, &UserBadge{}}
}
