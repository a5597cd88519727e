// services/cosmetic_service.go
package services

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"neoengine-ledger-service/models"
	"neoengine-ledger-service/utils"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

func stakeScopeKey(cosmeticMintID, profileID string) string {
	return "stake:" + cosmeticMintID + ":" + profileID
}

func templateKey(templateID string) string {
	return "cosmetic_template:" + templateID
}

// CosmeticService manages item templates, minting and the stake escrow.
type CosmeticService struct {
	DB     *gorm.DB
	Ledger *TokenLedger
	Locks  *utils.KeyLock

	Now func() time.Time
}

func NewCosmeticService(db *gorm.DB, ledger *TokenLedger, locks *utils.KeyLock) *CosmeticService {
	return &CosmeticService{
		DB:     db,
		Ledger: ledger,
		Locks:  locks,
		Now:    time.Now,
	}
}

// InitializeRegistry creates the singleton cosmetic registry.
func (s *CosmeticService) InitializeRegistry(authorityID string) (*models.CosmeticRegistry, error) {
	unlock := s.Locks.Lock(models.CosmeticRegistryKey)
	defer unlock()

	var existing models.CosmeticRegistry
	err := s.DB.First(&existing, "key = ?", models.CosmeticRegistryKey).Error
	if err == nil {
		return nil, fmt.Errorf("cosmetic registry: %w", ErrAlreadyInitialized)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load cosmetic registry: %w", err)
	}

	registry := models.CosmeticRegistry{
		Key:         models.CosmeticRegistryKey,
		AuthorityID: authorityID,
	}
	if err := s.DB.Create(&registry).Error; err != nil {
		return nil, fmt.Errorf("create cosmetic registry: %w", err)
	}

	log.Printf("✅ Cosmetic registry initialized: authority=%s", authorityID)
	return &registry, nil
}

// CreateTemplateInput carries the admin-supplied template fields.
type CreateTemplateInput struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	CosmeticType string `json:"cosmetic_type"` // "frame", "background", "animation", "badge_effect"
	Rarity       string `json:"rarity"`
	Collection   string `json:"collection"`
	ImageURL     string `json:"image_url"`
	Tradable     bool   `json:"tradable"`
	MaxSupply    int64  `json:"max_supply"` // 0 = unlimited
}

// CreateTemplate registers a new item template (registry authority only).
func (s *CosmeticService) CreateTemplate(authorityID, templateID string, input CreateTemplateInput) (*models.CosmeticTemplate, error) {
	name := norm.NFC.String(strings.TrimSpace(input.Name))
	description := norm.NFC.String(strings.TrimSpace(input.Description))

	switch {
	case templateID == "" || len(templateID) > 64:
		return nil, fmt.Errorf("%w: template id must be 1-64 characters", ErrValidation)
	case name == "" || len(name) > 64:
		return nil, fmt.Errorf("%w: name must be 1-64 characters", ErrValidation)
	case len(description) > 200:
		return nil, fmt.Errorf("%w: description must be at most 200 characters", ErrValidation)
	case input.CosmeticType == "" || len(input.CosmeticType) > 16:
		return nil, fmt.Errorf("%w: cosmetic type must be 1-16 characters", ErrValidation)
	case input.MaxSupply < 0:
		return nil, fmt.Errorf("%w: max supply must not be negative", ErrValidation)
	}

	rarity := input.Rarity
	if rarity == "" {
		rarity = "common"
	}

	unlock := s.Locks.Lock(models.CosmeticRegistryKey, templateKey(templateID))
	defer unlock()

	var template models.CosmeticTemplate
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		registry, err := s.loadRegistry(tx)
		if err != nil {
			return err
		}
		if registry.AuthorityID != authorityID {
			return fmt.Errorf("create template: %w", ErrUnauthorized)
		}

		var existing models.CosmeticTemplate
		err = tx.First(&existing, "template_id = ?", templateID).Error
		if err == nil {
			return fmt.Errorf("template %q: %w", templateID, ErrAlreadyInitialized)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("load template: %w", err)
		}

		template = models.CosmeticTemplate{
			TemplateID:   templateID,
			Name:         name,
			Description:  description,
			CosmeticType: input.CosmeticType,
			Rarity:       rarity,
			Collection:   input.Collection,
			ImageURL:     input.ImageURL,
			Tradable:     input.Tradable,
			MaxSupply:    input.MaxSupply,
		}
		if err := tx.Create(&template).Error; err != nil {
			return fmt.Errorf("create template: %w", err)
		}

		registry.TotalCosmeticsCreated++
		if err := tx.Save(registry).Error; err != nil {
			return fmt.Errorf("save registry: %w", err)
		}

		return appendCosmeticEvent(tx, &models.CosmeticEvent{
			Kind:         models.CosmeticEventTemplateCreated,
			TemplateID:   templateID,
			CosmeticType: template.CosmeticType,
			Rarity:       template.Rarity,
			Tradable:     template.Tradable,
			Timestamp:    s.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🎨 Template created: %s (%s/%s, max_supply=%d)", templateID, template.CosmeticType, template.Rarity, template.MaxSupply)
	return &template, nil
}

// MintCosmetic mints one item of the template to the recipient, enforcing
// the supply cap. The minted item is a fresh 0-decimal token whose metadata
// is composed deterministically from the template.
func (s *CosmeticService) MintCosmetic(authorityID, templateID, recipientID string) (*models.CosmeticMint, error) {
	unlock := s.Locks.Lock(models.CosmeticRegistryKey, templateKey(templateID))
	defer unlock()

	var minted models.CosmeticMint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		registry, err := s.loadRegistry(tx)
		if err != nil {
			return err
		}
		if registry.AuthorityID != authorityID {
			return fmt.Errorf("mint cosmetic: %w", ErrUnauthorized)
		}

		var template models.CosmeticTemplate
		if err := tx.First(&template, "template_id = ?", templateID).Error; err != nil {
			return fmt.Errorf("load template %q: %w", templateID, err)
		}
		if template.MaxSupply > 0 && template.TotalMinted >= template.MaxSupply {
			return fmt.Errorf("template %q minted %d of %d: %w", templateID, template.TotalMinted, template.MaxSupply, ErrMaxSupplyReached)
		}

		mint, err := s.Ledger.CreateMint(tx, authorityID, 0)
		if err != nil {
			return err
		}
		if err := s.Ledger.MintTo(tx, authorityID, mint.ID, recipientID, 1); err != nil {
			return err
		}

		minted = models.CosmeticMint{
			MintID:       mint.ID,
			TemplateID:   template.TemplateID,
			CosmeticType: template.CosmeticType,
			Rarity:       template.Rarity,
			Tradable:     template.Tradable,
			MetadataURI:  cosmeticMetadataURI(&template),
		}
		if err := tx.Create(&minted).Error; err != nil {
			return fmt.Errorf("create cosmetic mint: %w", err)
		}

		template.TotalMinted++
		if err := tx.Save(&template).Error; err != nil {
			return fmt.Errorf("save template: %w", err)
		}

		return appendCosmeticEvent(tx, &models.CosmeticEvent{
			Kind:           models.CosmeticEventMinted,
			UserID:         recipientID,
			TemplateID:     template.TemplateID,
			CosmeticMintID: mint.ID,
			CosmeticType:   template.CosmeticType,
			Rarity:         template.Rarity,
			Tradable:       template.Tradable,
			Timestamp:      s.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	metricCosmeticsMinted.Inc()
	log.Printf("✨ Cosmetic minted: %s → %s (template %s)", minted.MintID, recipientID, templateID)
	return &minted, nil
}

// StakeCosmeticToProfile escrows the caller's cosmetic in the vault scoped
// to (cosmetic, profile) and records the stake. The caller must actually
// hold the item — which is also what prevents staking it anywhere else
// while escrowed.
func (s *CosmeticService) StakeCosmeticToProfile(userID, cosmeticMintID, profileID, cosmeticType string) (*models.CosmeticStakeRecord, error) {
	unlock := s.Locks.Lock(models.CosmeticRegistryKey, stakeScopeKey(cosmeticMintID, profileID))
	defer unlock()

	var record models.CosmeticStakeRecord
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var cosmetic models.CosmeticMint
		if err := tx.First(&cosmetic, "mint_id = ?", cosmeticMintID).Error; err != nil {
			return fmt.Errorf("load cosmetic %s: %w", cosmeticMintID, err)
		}
		if cosmetic.CosmeticType != cosmeticType {
			return fmt.Errorf("cosmetic is %q not %q: %w", cosmetic.CosmeticType, cosmeticType, ErrInvalidCosmeticType)
		}

		var existing models.CosmeticStakeRecord
		err := tx.Where("cosmetic_mint_id = ? AND profile_id = ?", cosmeticMintID, profileID).First(&existing).Error
		if err == nil {
			return fmt.Errorf("cosmetic %s on profile %s: %w", cosmeticMintID, profileID, ErrCosmeticAlreadyStaked)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("load stake record: %w", err)
		}

		// The balance check doubles as the cross-profile exclusivity guard:
		// an item escrowed elsewhere is no longer in the caller's account.
		balance, err := s.Ledger.Balance(tx, cosmeticMintID, userID)
		if err != nil {
			return err
		}
		if balance != 1 {
			return fmt.Errorf("user %s does not hold cosmetic %s: %w", userID, cosmeticMintID, ErrCosmeticNotOwned)
		}

		vault := models.StakeVaultOwner(cosmeticMintID, profileID)
		if err := s.Ledger.Transfer(tx, userID, cosmeticMintID, userID, vault, 1); err != nil {
			return err
		}

		record = models.CosmeticStakeRecord{
			ID:             uuid.NewString(),
			UserID:         userID,
			CosmeticMintID: cosmeticMintID,
			ProfileID:      profileID,
			CosmeticType:   cosmeticType,
			StakedAt:       s.Now(),
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("create stake record: %w", err)
		}

		registry, err := s.loadRegistry(tx)
		if err != nil {
			return err
		}
		registry.ActiveStakes++
		if err := tx.Save(registry).Error; err != nil {
			return fmt.Errorf("save registry: %w", err)
		}

		return appendCosmeticEvent(tx, &models.CosmeticEvent{
			Kind:           models.CosmeticEventStaked,
			UserID:         userID,
			TemplateID:     cosmetic.TemplateID,
			CosmeticMintID: cosmeticMintID,
			ProfileID:      profileID,
			CosmeticType:   cosmeticType,
			Timestamp:      record.StakedAt,
		})
	})
	if err != nil {
		return nil, err
	}

	metricActiveStakes.Inc()
	log.Printf("📌 Cosmetic staked: %s → profile %s by %s", cosmeticMintID, profileID, userID)
	return &record, nil
}

// UnstakeCosmeticFromProfile releases the escrowed cosmetic back to the
// stake record's owner and deletes the record. The vault's authority is
// derived from the same (cosmetic, profile) scope, so no extra credential
// is involved.
func (s *CosmeticService) UnstakeCosmeticFromProfile(userID, cosmeticMintID, profileID string) error {
	unlock := s.Locks.Lock(models.CosmeticRegistryKey, stakeScopeKey(cosmeticMintID, profileID))
	defer unlock()

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var record models.CosmeticStakeRecord
		err := tx.Where("cosmetic_mint_id = ? AND profile_id = ?", cosmeticMintID, profileID).First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("cosmetic %s on profile %s: %w", cosmeticMintID, profileID, ErrCosmeticNotStaked)
		}
		if err != nil {
			return fmt.Errorf("load stake record: %w", err)
		}
		if record.UserID != userID {
			return fmt.Errorf("unstake by %s: %w", userID, ErrUnauthorized)
		}

		vault := models.StakeVaultOwner(cosmeticMintID, profileID)
		if err := s.Ledger.Transfer(tx, vault, cosmeticMintID, vault, record.UserID, 1); err != nil {
			return err
		}

		if err := tx.Delete(&record).Error; err != nil {
			return fmt.Errorf("delete stake record: %w", err)
		}

		registry, err := s.loadRegistry(tx)
		if err != nil {
			return err
		}
		registry.ActiveStakes--
		if err := tx.Save(registry).Error; err != nil {
			return fmt.Errorf("save registry: %w", err)
		}

		return appendCosmeticEvent(tx, &models.CosmeticEvent{
			Kind:           models.CosmeticEventUnstaked,
			UserID:         userID,
			CosmeticMintID: cosmeticMintID,
			ProfileID:      profileID,
			CosmeticType:   record.CosmeticType,
			Timestamp:      s.Now(),
		})
	})
	if err != nil {
		return err
	}

	metricActiveStakes.Dec()
	log.Printf("📤 Cosmetic unstaked: %s ← profile %s by %s", cosmeticMintID, profileID, userID)
	return nil
}

// IsStaked reports whether the cosmetic is currently escrowed on the
// profile.
func (s *CosmeticService) IsStaked(cosmeticMintID, profileID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.CosmeticStakeRecord{}).
		Where("cosmetic_mint_id = ? AND profile_id = ?", cosmeticMintID, profileID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count stake records: %w", err)
	}
	return count > 0, nil
}

// UserInventory lists the cosmetics the user holds plus the ones they have
// staked, with the stake target attached.
func (s *CosmeticService) UserInventory(userID string) ([]models.UserCosmeticInfo, error) {
	var held []models.TokenAccount
	err := s.DB.Where("owner_id = ? AND balance > 0", userID).Find(&held).Error
	if err != nil {
		return nil, fmt.Errorf("load token accounts: %w", err)
	}

	var staked []models.CosmeticStakeRecord
	if err := s.DB.Where("user_id = ?", userID).Find(&staked).Error; err != nil {
		return nil, fmt.Errorf("load stake records: %w", err)
	}

	mintIDs := make([]string, 0, len(held)+len(staked))
	for _, a := range held {
		mintIDs = append(mintIDs, a.MintID)
	}
	stakedBy := make(map[string]string, len(staked))
	for _, r := range staked {
		mintIDs = append(mintIDs, r.CosmeticMintID)
		stakedBy[r.CosmeticMintID] = r.ProfileID
	}
	if len(mintIDs) == 0 {
		return []models.UserCosmeticInfo{}, nil
	}

	var cosmetics []models.CosmeticMint
	if err := s.DB.Where("mint_id IN ?", mintIDs).Find(&cosmetics).Error; err != nil {
		return nil, fmt.Errorf("load cosmetics: %w", err)
	}

	templateIDs := make([]string, 0, len(cosmetics))
	for _, c := range cosmetics {
		templateIDs = append(templateIDs, c.TemplateID)
	}
	var templates []models.CosmeticTemplate
	if err := s.DB.Where("template_id IN ?", templateIDs).Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	names := make(map[string]string, len(templates))
	for _, t := range templates {
		names[t.TemplateID] = t.Name
	}

	inventory := make([]models.UserCosmeticInfo, 0, len(cosmetics))
	for _, c := range cosmetics {
		profile, isStaked := stakedBy[c.MintID]
		inventory = append(inventory, models.UserCosmeticInfo{
			MintID:          c.MintID,
			TemplateID:      c.TemplateID,
			Name:            names[c.TemplateID],
			CosmeticType:    c.CosmeticType,
			Rarity:          c.Rarity,
			IsStaked:        isStaked,
			StakedToProfile: profile,
		})
	}
	return inventory, nil
}

func (s *CosmeticService) loadRegistry(tx *gorm.DB) (*models.CosmeticRegistry, error) {
	var registry models.CosmeticRegistry
	err := tx.First(&registry, "key = ?", models.CosmeticRegistryKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("cosmetic registry: %w", ErrNotInitialized)
	}
	if err != nil {
		return nil, fmt.Errorf("load cosmetic registry: %w", err)
	}
	return &registry, nil
}

func appendCosmeticEvent(tx *gorm.DB, event *models.CosmeticEvent) error {
	event.ID = uuid.NewString()
	if err := tx.Create(event).Error; err != nil {
		return fmt.Errorf("append cosmetic event: %w", err)
	}
	return nil
}

// cosmeticMetadataURI composes the item's descriptive metadata document
// deterministically from its template and returns it as a data URI.
func cosmeticMetadataURI(template *models.CosmeticTemplate) string {
	sellerFee := 0
	if template.Tradable {
		sellerFee = 250 // 2.5%
	}

	doc := map[string]interface{}{
		"name":        template.Name,
		"symbol":      "NEOCOS",
		"description": template.Description,
		"image":       template.ImageURL,
		"external_url": fmt.Sprintf("https://neoengine.xyz/cosmetics/%s", slug.Make(template.Name)),
		"seller_fee_basis_points": sellerFee,
		"attributes": []map[string]interface{}{
			{"trait_type": "Type", "value": template.CosmeticType},
			{"trait_type": "Rarity", "value": template.Rarity},
			{"trait_type": "Collection", "value": template.Collection},
			{"trait_type": "Tradable", "value": template.Tradable},
		},
	}

	payload, _ := json.Marshal(doc)
	return "data:application/json;base64," + base64.StdEncoding.EncodeToString(payload)
}
