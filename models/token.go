// models/token.go
package models

import "fmt"

// TokenMint is a token definition. The DSX reward mint has 9 decimals;
// cosmetic item mints have 0 decimals and a supply of exactly 1.
type TokenMint struct {
	ID          string `gorm:"primaryKey;type:uuid;not null" json:"id"`
	AuthorityID string `gorm:"index;not null" json:"authority_id"` // only this holder may mint
	Decimals    int    `json:"decimals" gorm:"not null;default:0"`
	Supply      int64  `json:"supply" gorm:"not null;default:0"`

	Timestamps
}

// TokenAccount holds a balance of one mint for one owner. Owner is normally
// an external user ID, but vault accounts use a derived scope key instead
// (see StakeVaultOwner).
type TokenAccount struct {
	ID      string `gorm:"primaryKey;type:uuid;not null" json:"id"`
	OwnerID string `gorm:"uniqueIndex:idx_token_account_owner_mint;not null" json:"owner_id"`
	MintID  string `gorm:"uniqueIndex:idx_token_account_owner_mint;type:uuid;not null" json:"mint_id"`
	Balance int64  `json:"balance" gorm:"not null;default:0"`

	Timestamps
}

// StakeVaultOwner derives the owner key of the custody vault that holds a
// cosmetic while it is staked to a profile. The key is a pure function of
// (cosmetic mint, profile) so the escrow needs no separate credential to
// release the token on unstake.
func StakeVaultOwner(cosmeticMintID, profileID string) string {
	return fmt.Sprintf("stake_vault:%s:%s", cosmeticMintID, profileID)
}
