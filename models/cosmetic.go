// models/cosmetic.go
package models

import "time"

// CosmeticRegistryKey is the fixed record key of the singleton registry row.
const CosmeticRegistryKey = "cosmetic_registry"

// CosmeticRegistry holds the global cosmetic-program counters.
type CosmeticRegistry struct {
	Key                   string `gorm:"primaryKey;type:varchar(32)" json:"key"`
	AuthorityID           string `gorm:"type:uuid;not null" json:"authority_id"`
	TotalCosmeticsCreated int64  `json:"total_cosmetics_created" gorm:"not null;default:0"`
	ActiveStakes          int64  `json:"active_stakes" gorm:"not null;default:0"`

	Timestamps
}

// CosmeticTemplate is an admin-defined item type.
// TemplateID is caller-supplied and unique (e.g., "neon-frame-genesis").
type CosmeticTemplate struct {
	TemplateID  string `gorm:"primaryKey;type:varchar(64)" json:"template_id"`
	Name        string `gorm:"type:varchar(64);not null" json:"name"`
	Description string `gorm:"type:varchar(200)" json:"description"`
	CosmeticType string `gorm:"type:varchar(16);not null" json:"cosmetic_type"`        // "frame", "background", "animation", "badge_effect"
	Rarity      string `gorm:"type:varchar(16);default:'common'" json:"rarity"`        // common, rare, epic, legendary
	Collection  string `gorm:"type:varchar(32)" json:"collection"`                     // "Genesis", "Winter 2024", etc
	ImageURL    string `gorm:"type:text" json:"image_url"`                             // R2/CDN URL for artwork
	Tradable    bool   `json:"tradable" gorm:"not null;default:true"`                  // false for milestone rewards
	MaxSupply   int64  `json:"max_supply" gorm:"not null;default:0"`                   // 0 = unlimited
	TotalMinted int64  `json:"total_minted" gorm:"not null;default:0"`

	Timestamps
}

// CosmeticMint is one minted cosmetic item: a 0-decimal token plus the
// descriptive metadata composed from its template at mint time.
type CosmeticMint struct {
	MintID       string `gorm:"primaryKey;type:uuid;not null" json:"mint_id"`
	TemplateID   string `gorm:"index;type:varchar(64);not null" json:"template_id"`
	CosmeticType string `gorm:"type:varchar(16);not null" json:"cosmetic_type"`
	Rarity       string `gorm:"type:varchar(16);not null" json:"rarity"`
	Tradable     bool   `json:"tradable" gorm:"not null"`
	MetadataURI  string `gorm:"type:text" json:"metadata_uri"`

	Timestamps
}

// CosmeticStakeRecord is one active stake of one cosmetic on one profile.
// It exists iff the matching vault holds the item; unstake hard-deletes it.
type CosmeticStakeRecord struct {
	ID             string    `gorm:"primaryKey;type:uuid;not null" json:"id"`
	UserID         string    `gorm:"index;type:uuid;not null" json:"user_id"`
	CosmeticMintID string    `gorm:"uniqueIndex:idx_stake_cosmetic_profile;type:uuid;not null" json:"cosmetic_mint_id"`
	ProfileID      string    `gorm:"uniqueIndex:idx_stake_cosmetic_profile;type:uuid;not null" json:"profile_id"`
	CosmeticType   string    `gorm:"type:varchar(16);not null" json:"cosmetic_type"`
	StakedAt       time.Time `gorm:"not null" json:"staked_at"`
}

// UserCosmeticInfo is the inventory view of one cosmetic owned or staked by
// a user.
type UserCosmeticInfo struct {
	MintID          string `json:"mint_id"`
	TemplateID      string `json:"template_id"`
	Name            string `json:"name"`
	CosmeticType    string `json:"cosmetic_type"`
	Rarity          string `json:"rarity"`
	IsStaked        bool   `json:"is_staked"`
	StakedToProfile string `json:"staked_to_profile,omitempty"`
}
