// models/event.go
package models

import "time"

type RewardType string

const (
	RewardTypeDailyContribution      RewardType = "daily_contribution"
	RewardTypeReferral               RewardType = "referral"
	RewardTypeContentEngagement      RewardType = "content_engagement"
	RewardTypeCommunityParticipation RewardType = "community_participation"
)

// RewardEvent is one audit-log entry appended per successful disbursement.
type RewardEvent struct {
	ID         string     `gorm:"primaryKey;type:uuid;not null" json:"id"`
	UserID     string     `gorm:"index;type:uuid;not null" json:"user_id"`
	RewardType RewardType `gorm:"type:varchar(32);not null" json:"reward_type"`
	Amount     int64      `json:"amount" gorm:"not null"`
	Timestamp  time.Time  `gorm:"index;not null" json:"timestamp"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// ReputationEvent records a reputation propagation to the profile service.
type ReputationEvent struct {
	ID              string    `gorm:"primaryKey;type:uuid;not null" json:"id"`
	UserID          string    `gorm:"index;type:uuid;not null" json:"user_id"`
	ReputationScore int64     `json:"reputation_score" gorm:"not null"`
	DsxEarned       int64     `json:"dsx_earned" gorm:"not null"`
	Referrals       int64     `json:"referrals" gorm:"not null"`
	ContentScore    int64     `json:"content_score" gorm:"not null"`
	Timestamp       time.Time `gorm:"not null" json:"timestamp"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// BadgeEvent records an achievement badge awarded via the profile service.
type BadgeEvent struct {
	ID             string    `gorm:"primaryKey;type:uuid;not null" json:"id"`
	UserID         string    `gorm:"index;type:uuid;not null" json:"user_id"`
	BadgeID        string    `gorm:"type:varchar(32);not null" json:"badge_id"`
	RequirementMet int64     `json:"requirement_met" gorm:"not null"`
	Timestamp      time.Time `gorm:"not null" json:"timestamp"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type CosmeticEventKind string

const (
	CosmeticEventTemplateCreated CosmeticEventKind = "template_created"
	CosmeticEventMinted          CosmeticEventKind = "minted"
	CosmeticEventStaked          CosmeticEventKind = "staked"
	CosmeticEventUnstaked        CosmeticEventKind = "unstaked"
)

// CosmeticEvent is the audit-log entry for template/mint/stake operations.
type CosmeticEvent struct {
	ID             string            `gorm:"primaryKey;type:uuid;not null" json:"id"`
	Kind           CosmeticEventKind `gorm:"type:varchar(32);index;not null" json:"kind"`
	UserID         string            `gorm:"index" json:"user_id,omitempty"` // recipient or staker; empty for template_created
	TemplateID     string            `gorm:"type:varchar(64)" json:"template_id,omitempty"`
	CosmeticMintID string            `gorm:"type:uuid" json:"cosmetic_mint_id,omitempty"`
	ProfileID      string            `gorm:"type:uuid" json:"profile_id,omitempty"`
	CosmeticType   string            `gorm:"type:varchar(16)" json:"cosmetic_type,omitempty"`
	Rarity         string            `gorm:"type:varchar(16)" json:"rarity,omitempty"`
	Tradable       bool              `json:"tradable,omitempty"`
	Timestamp      time.Time         `gorm:"index;not null" json:"timestamp"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"created_at"`
}
