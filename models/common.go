package models

import (
	"time"

	"gorm.io/gorm"
)

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TokenUnit is the number of base units in one whole DSX token (9 decimals).
const TokenUnit int64 = 1_000_000_000

// EpochSeconds is the length of one reward epoch ("day").
const EpochSeconds int64 = 86400

// EpochDay converts a wall-clock time to the epoch (day) bucket it falls in.
func EpochDay(t time.Time) int64 {
	return t.Unix() / EpochSeconds
}
