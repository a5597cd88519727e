package services

import (
	"fmt"
	"testing"
	"time"

	"neoengine-ledger-service/models"
	"neoengine-ledger-service/utils"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache DB so the pooled connections all see one store.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.ScoringConfig{},
		&models.UserScoring{},
		&models.TokenMint{},
		&models.TokenAccount{},
		&models.CosmeticRegistry{},
		&models.CosmeticTemplate{},
		&models.CosmeticMint{},
		&models.CosmeticStakeRecord{},
		&models.RewardEvent{},
		&models.ReputationEvent{},
		&models.BadgeEvent{},
		&models.CosmeticEvent{},
	))
	return db
}

// stubProfileService records calls; Fail makes the next call error out.
type stubProfileService struct {
	reputations map[string]int64
	badges      []string
	failWith    error
}

func newStubProfileService() *stubProfileService {
	return &stubProfileService{reputations: make(map[string]int64)}
}

func (s *stubProfileService) SetReputation(userID string, score int64) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.reputations[userID] = score
	return nil
}

func (s *stubProfileService) AttachBadge(userID, badgeID string) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.badges = append(s.badges, userID+"/"+badgeID)
	return nil
}

type scoringHarness struct {
	db      *gorm.DB
	svc     *ScoringService
	profile *stubProfileService
	clock   time.Time
}

func newScoringHarness(t *testing.T) *scoringHarness {
	t.Helper()

	h := &scoringHarness{
		db:      newTestDB(t),
		profile: newStubProfileService(),
		clock:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	h.svc = NewScoringService(h.db, NewTokenLedger(), h.profile, utils.NewKeyLock())
	h.svc.Now = func() time.Time { return h.clock }
	return h
}

func (h *scoringHarness) advance(d time.Duration) {
	h.clock = h.clock.Add(d)
}

func (h *scoringHarness) userScoring(t *testing.T, userID string) *models.UserScoring {
	t.Helper()
	var user models.UserScoring
	require.NoError(t, h.db.Where("user_id = ?", userID).First(&user).Error)
	return &user
}

func (h *scoringHarness) config(t *testing.T) *models.ScoringConfig {
	t.Helper()
	var cfg models.ScoringConfig
	require.NoError(t, h.db.First(&cfg, "key = ?", models.ScoringConfigKey).Error)
	return &cfg
}

type cosmeticHarness struct {
	db        *gorm.DB
	svc       *CosmeticService
	ledger    *TokenLedger
	authority string
	clock     time.Time
}

func newCosmeticHarness(t *testing.T) *cosmeticHarness {
	t.Helper()

	h := &cosmeticHarness{
		db:        newTestDB(t),
		ledger:    NewTokenLedger(),
		authority: uuid.NewString(),
		clock:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	h.svc = NewCosmeticService(h.db, h.ledger, utils.NewKeyLock())
	h.svc.Now = func() time.Time { return h.clock }

	_, err := h.svc.InitializeRegistry(h.authority)
	require.NoError(t, err)
	return h
}

func (h *cosmeticHarness) registry(t *testing.T) *models.CosmeticRegistry {
	t.Helper()
	var registry models.CosmeticRegistry
	require.NoError(t, h.db.First(&registry, "key = ?", models.CosmeticRegistryKey).Error)
	return &registry
}

func (h *cosmeticHarness) createTemplate(t *testing.T, templateID string, maxSupply int64) *models.CosmeticTemplate {
	t.Helper()
	template, err := h.svc.CreateTemplate(h.authority, templateID, CreateTemplateInput{
		Name:         "Neon Frame",
		Description:  "A glowing frame effect",
		CosmeticType: "frame",
		Rarity:       "epic",
		Collection:   "Genesis",
		Tradable:     true,
		MaxSupply:    maxSupply,
	})
	require.NoError(t, err)
	return template
}
