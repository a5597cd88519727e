// workers/vault_audit_worker.go
package workers

import (
	"context"
	"errors"
	"log"
	"time"

	"neoengine-ledger-service/models"

	"gorm.io/gorm"
)

// VaultAuditor cross-checks the stake escrow: every active stake record must
// have exactly one item in its vault, and the registry counter must match
// the record count. Read-only — drift is reported, never repaired here.
type VaultAuditor struct {
	DB *gorm.DB
}

func NewVaultAuditor(db *gorm.DB) *VaultAuditor {
	return &VaultAuditor{DB: db}
}

func (a *VaultAuditor) auditOnce() (checked, drift int, err error) {
	var records []models.CosmeticStakeRecord
	if err := a.DB.Find(&records).Error; err != nil {
		return 0, 0, err
	}

	for _, r := range records {
		vault := models.StakeVaultOwner(r.CosmeticMintID, r.ProfileID)

		var account models.TokenAccount
		err := a.DB.Where("owner_id = ? AND mint_id = ?", vault, r.CosmeticMintID).First(&account).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			drift++
			log.Printf("⚠️ [VAULT_AUDIT] stake %s has no vault account (cosmetic %s, profile %s)",
				r.ID, r.CosmeticMintID, r.ProfileID)
		case err != nil:
			return checked, drift, err
		case account.Balance != 1:
			drift++
			log.Printf("⚠️ [VAULT_AUDIT] vault for cosmetic %s / profile %s holds %d, want 1",
				r.CosmeticMintID, r.ProfileID, account.Balance)
		}
		checked++
	}

	var registry models.CosmeticRegistry
	err = a.DB.First(&registry, "key = ?", models.CosmeticRegistryKey).Error
	if err == nil && registry.ActiveStakes != int64(len(records)) {
		drift++
		log.Printf("⚠️ [VAULT_AUDIT] registry active_stakes=%d but %d stake records exist",
			registry.ActiveStakes, len(records))
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = nil // registry not initialized yet — nothing to audit
	}
	return checked, drift, err
}

// PollVaults runs the audit on a fixed interval until ctx is cancelled.
func PollVaults(ctx context.Context, auditor *VaultAuditor, pollInterval time.Duration) {
	log.Println("Starting stake vault audit loop...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Vault audit loop stopped.")
			return
		case <-ticker.C:
			checked, drift, err := auditor.auditOnce()
			if err != nil {
				log.Printf("❌ [VAULT_AUDIT] audit pass failed: %v", err)
				continue
			}
			if drift > 0 {
				log.Printf("⚠️ [VAULT_AUDIT] %d of %d stakes show custody drift", drift, checked)
			}
		}
	}
}
