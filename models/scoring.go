// models/scoring.go
package models

// ScoringConfigKey is the fixed record key of the one ScoringConfig row per
// deployment (namespace tag, no business identifier).
const ScoringConfigKey = "scoring"

// ScoringConfig is the global reward-program state. Exactly one row exists,
// created by the initialize operation, mutated only through the reward
// disbursement path.
type ScoringConfig struct {
	Key              string `gorm:"primaryKey;type:varchar(32)" json:"key"`
	AuthorityID      string `gorm:"type:uuid;not null" json:"authority_id"`
	RewardMintID     string `gorm:"type:uuid;not null" json:"reward_mint_id"`
	TotalDistributed int64  `json:"total_distributed" gorm:"not null;default:0"`
	DailyDistributed int64  `json:"daily_distributed" gorm:"not null;default:0"`
	DailyLimit       int64  `json:"daily_limit" gorm:"not null"`
	LastResetDay     int64  `json:"last_reset_day" gorm:"not null;default:0"`

	Timestamps
}

// UserScoring tracks a user's accumulated reward state (denormalized for
// reputation scoring)
type UserScoring struct {
	ID     string `gorm:"primaryKey;type:uuid;not null" json:"id"`
	UserID string `gorm:"uniqueIndex;type:uuid;not null" json:"user_id"` // links to profile service

	TotalEarned            int64 `json:"total_earned" gorm:"not null;default:0"`
	LastDailyContribution  int64 `json:"last_daily_contribution" gorm:"not null;default:0"` // epoch day of last daily reward
	ReferralCount          int64 `json:"referral_count" gorm:"not null;default:0"`
	ContentScore           int64 `json:"content_score" gorm:"not null;default:0"`
	CommunityParticipation int64 `json:"community_participation" gorm:"not null;default:0"`

	Timestamps
}
