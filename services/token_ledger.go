// services/token_ledger.go
package services

import (
	"errors"
	"fmt"

	"neoengine-ledger-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenLedger is the token custody primitive: movable balances held in named
// accounts. It carries no state of its own — every mutator runs against the
// caller's transaction so the enclosing operation stays all-or-nothing.
type TokenLedger struct{}

func NewTokenLedger() *TokenLedger {
	return &TokenLedger{}
}

// CreateMint registers a new token mint controlled by authorityID.
func (l *TokenLedger) CreateMint(tx *gorm.DB, authorityID string, decimals int) (*models.TokenMint, error) {
	mint := &models.TokenMint{
		ID:          uuid.NewString(),
		AuthorityID: authorityID,
		Decimals:    decimals,
	}
	if err := tx.Create(mint).Error; err != nil {
		return nil, fmt.Errorf("create mint: %w", err)
	}
	return mint, nil
}

// MintTo mints amount base units of mintID into ownerID's account. Only the
// mint authority may mint.
func (l *TokenLedger) MintTo(tx *gorm.DB, authorityID, mintID, ownerID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: mint amount must be positive", ErrValidation)
	}

	var mint models.TokenMint
	if err := tx.First(&mint, "id = ?", mintID).Error; err != nil {
		return fmt.Errorf("load mint %s: %w", mintID, err)
	}
	if mint.AuthorityID != authorityID {
		return fmt.Errorf("mint %s: %w", mintID, ErrUnauthorized)
	}

	account, err := l.ensureAccount(tx, mintID, ownerID)
	if err != nil {
		return err
	}

	account.Balance += amount
	if err := tx.Save(account).Error; err != nil {
		return fmt.Errorf("credit account: %w", err)
	}

	mint.Supply += amount
	if err := tx.Save(&mint).Error; err != nil {
		return fmt.Errorf("update supply: %w", err)
	}
	return nil
}

// Transfer moves amount base units of mintID from one account to another.
// Only the source account's owner has transfer authority.
func (l *TokenLedger) Transfer(tx *gorm.DB, authorityID, mintID, fromOwner, toOwner string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: transfer amount must be positive", ErrValidation)
	}
	if authorityID != fromOwner {
		return fmt.Errorf("transfer from %s: %w", fromOwner, ErrUnauthorized)
	}

	var from models.TokenAccount
	err := tx.Where("owner_id = ? AND mint_id = ?", fromOwner, mintID).First(&from).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("source account %s: %w", fromOwner, ErrInsufficientBalance)
	}
	if err != nil {
		return fmt.Errorf("load source account: %w", err)
	}
	if from.Balance < amount {
		return fmt.Errorf("account %s holds %d of mint %s: %w", fromOwner, from.Balance, mintID, ErrInsufficientBalance)
	}

	to, err := l.ensureAccount(tx, mintID, toOwner)
	if err != nil {
		return err
	}

	from.Balance -= amount
	to.Balance += amount
	if err := tx.Save(&from).Error; err != nil {
		return fmt.Errorf("debit source: %w", err)
	}
	if err := tx.Save(to).Error; err != nil {
		return fmt.Errorf("credit destination: %w", err)
	}
	return nil
}

// Balance returns ownerID's balance of mintID (0 if no account exists).
func (l *TokenLedger) Balance(db *gorm.DB, mintID, ownerID string) (int64, error) {
	var account models.TokenAccount
	err := db.Where("owner_id = ? AND mint_id = ?", ownerID, mintID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load account: %w", err)
	}
	return account.Balance, nil
}

func (l *TokenLedger) ensureAccount(tx *gorm.DB, mintID, ownerID string) (*models.TokenAccount, error) {
	var account models.TokenAccount
	err := tx.Where("owner_id = ? AND mint_id = ?", ownerID, mintID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		account = models.TokenAccount{
			ID:      uuid.NewString(),
			OwnerID: ownerID,
			MintID:  mintID,
		}
		if err := tx.Create(&account).Error; err != nil {
			return nil, fmt.Errorf("create token account: %w", err)
		}
		return &account, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load token account: %w", err)
	}
	return &account, nil
}
