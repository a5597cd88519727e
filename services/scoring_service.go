// services/scoring_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"neoengine-ledger-service/models"
	"neoengine-ledger-service/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reward amounts in DSX base units (9 decimals), tuned against the daily
// quota below.
const (
	DailyContributionReward = 50 * models.TokenUnit
	ReferralReward          = 100 * models.TokenUnit
	ContentEngagementUnit   = models.TokenUnit      // 1 DSX per engagement point
	ContentEngagementCap    = 25 * models.TokenUnit // per call
	ParticipationUnit       = 10 * models.TokenUnit // 10 DSX per point

	DefaultDailyLimit = 1000 * models.TokenUnit
)

// Reputation weighting. The cap bounds the influence any single
// accumulating field can buy.
const (
	ReputationReferralWeight      = 50
	ReputationContentWeight       = 3
	ReputationParticipationWeight = 10
	ReputationCap                 = 100000
)

func userScoringKey(userID string) string {
	return "user_scoring:" + userID
}

// ScoringService is the reward engine: quota-checked DSX disbursement,
// reputation scoring, and badge eligibility.
type ScoringService struct {
	DB      *gorm.DB
	Ledger  *TokenLedger
	Profile ProfileService
	Locks   *utils.KeyLock

	// Now is swappable so epoch-sensitive behavior can be tested.
	Now func() time.Time
}

func NewScoringService(db *gorm.DB, ledger *TokenLedger, profile ProfileService, locks *utils.KeyLock) *ScoringService {
	return &ScoringService{
		DB:      db,
		Ledger:  ledger,
		Profile: profile,
		Locks:   locks,
		Now:     time.Now,
	}
}

// InitializeScoring creates the singleton ScoringConfig and the DSX reward
// mint. The mint authority is the config record itself, so only the reward
// engine can issue DSX.
func (s *ScoringService) InitializeScoring(authorityID string) (*models.ScoringConfig, error) {
	unlock := s.Locks.Lock(models.ScoringConfigKey)
	defer unlock()

	var cfg models.ScoringConfig
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.ScoringConfig
		err := tx.First(&existing, "key = ?", models.ScoringConfigKey).Error
		if err == nil {
			return fmt.Errorf("scoring config: %w", ErrAlreadyInitialized)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("load scoring config: %w", err)
		}

		mint, err := s.Ledger.CreateMint(tx, models.ScoringConfigKey, 9)
		if err != nil {
			return err
		}

		cfg = models.ScoringConfig{
			Key:          models.ScoringConfigKey,
			AuthorityID:  authorityID,
			RewardMintID: mint.ID,
			DailyLimit:   DefaultDailyLimit,
		}
		return tx.Create(&cfg).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Scoring initialized: authority=%s mint=%s daily_limit=%d", authorityID, cfg.RewardMintID, cfg.DailyLimit)
	return &cfg, nil
}

// InitializeUserScoring creates the per-user scoring record (create-once).
func (s *ScoringService) InitializeUserScoring(userID string) (*models.UserScoring, error) {
	unlock := s.Locks.Lock(userScoringKey(userID))
	defer unlock()

	var existing models.UserScoring
	err := s.DB.Where("user_id = ?", userID).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("user scoring for %s: %w", userID, ErrAlreadyInitialized)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load user scoring: %w", err)
	}

	record := models.UserScoring{
		ID:     uuid.NewString(),
		UserID: userID,
	}
	if err := s.DB.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create user scoring: %w", err)
	}
	return &record, nil
}

// RewardDailyContribution pays the fixed daily reward, at most once per
// epoch day per user.
func (s *ScoringService) RewardDailyContribution(userID string) (*models.RewardEvent, error) {
	unlock := s.Locks.Lock(models.ScoringConfigKey, userScoringKey(userID))
	defer unlock()

	now := s.Now()
	day := models.EpochDay(now)
	if err := s.rolloverEpoch(day); err != nil {
		return nil, err
	}

	var event *models.RewardEvent
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		cfg, user, err := s.loadRewardState(tx, userID)
		if err != nil {
			return err
		}
		if user.LastDailyContribution == day {
			return ErrAlreadyRewardedToday
		}

		if err := s.disburse(tx, cfg, user, DailyContributionReward); err != nil {
			return err
		}
		user.LastDailyContribution = day
		if err := tx.Save(user).Error; err != nil {
			return fmt.Errorf("save user scoring: %w", err)
		}

		event, err = appendRewardEvent(tx, userID, models.RewardTypeDailyContribution, DailyContributionReward, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.noteDisbursement(event)
	return event, nil
}

// RewardReferral pays the fixed referral reward. There is no dedup against
// the referred user: the referral pipeline upstream verifies each referral
// before calling in.
func (s *ScoringService) RewardReferral(userID, referredUserID string) (*models.RewardEvent, error) {
	unlock := s.Locks.Lock(models.ScoringConfigKey, userScoringKey(userID))
	defer unlock()

	now := s.Now()
	if err := s.rolloverEpoch(models.EpochDay(now)); err != nil {
		return nil, err
	}

	var event *models.RewardEvent
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		cfg, user, err := s.loadRewardState(tx, userID)
		if err != nil {
			return err
		}

		if err := s.disburse(tx, cfg, user, ReferralReward); err != nil {
			return err
		}
		user.ReferralCount++
		if err := tx.Save(user).Error; err != nil {
			return fmt.Errorf("save user scoring: %w", err)
		}

		event, err = appendRewardEvent(tx, userID, models.RewardTypeReferral, ReferralReward, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🤝 Referral rewarded: %s referred %s", userID, referredUserID)
	s.noteDisbursement(event)
	return event, nil
}

// RewardContentEngagement pays 1 DSX per engagement point, capped per call.
func (s *ScoringService) RewardContentEngagement(userID string, engagementScore int64) (*models.RewardEvent, error) {
	if engagementScore < 0 {
		return nil, fmt.Errorf("%w: engagement score must not be negative", ErrValidation)
	}
	// Bound the multiplication below so the amount cannot wrap.
	if engagementScore > math.MaxInt64/ContentEngagementUnit {
		return nil, fmt.Errorf("%w: engagement score too large", ErrValidation)
	}

	unlock := s.Locks.Lock(models.ScoringConfigKey, userScoringKey(userID))
	defer unlock()

	now := s.Now()
	if err := s.rolloverEpoch(models.EpochDay(now)); err != nil {
		return nil, err
	}

	amount := engagementScore * ContentEngagementUnit
	if amount > ContentEngagementCap {
		amount = ContentEngagementCap
	}
	if amount == 0 {
		return nil, ErrNoRewardEarned
	}

	var event *models.RewardEvent
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		cfg, user, err := s.loadRewardState(tx, userID)
		if err != nil {
			return err
		}

		if err := s.disburse(tx, cfg, user, amount); err != nil {
			return err
		}
		user.ContentScore += engagementScore
		if err := tx.Save(user).Error; err != nil {
			return fmt.Errorf("save user scoring: %w", err)
		}

		event, err = appendRewardEvent(tx, userID, models.RewardTypeContentEngagement, amount, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.noteDisbursement(event)
	return event, nil
}

// RewardCommunityParticipation pays 10 DSX per participation point, no per-
// call cap (the daily quota still applies).
func (s *ScoringService) RewardCommunityParticipation(userID string, points int64) (*models.RewardEvent, error) {
	if points <= 0 {
		return nil, fmt.Errorf("%w: participation points must be positive", ErrValidation)
	}
	if points > math.MaxInt64/ParticipationUnit {
		return nil, fmt.Errorf("%w: participation points too large", ErrValidation)
	}

	unlock := s.Locks.Lock(models.ScoringConfigKey, userScoringKey(userID))
	defer unlock()

	now := s.Now()
	if err := s.rolloverEpoch(models.EpochDay(now)); err != nil {
		return nil, err
	}

	amount := points * ParticipationUnit

	var event *models.RewardEvent
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		cfg, user, err := s.loadRewardState(tx, userID)
		if err != nil {
			return err
		}

		if err := s.disburse(tx, cfg, user, amount); err != nil {
			return err
		}
		user.CommunityParticipation += points
		if err := tx.Save(user).Error; err != nil {
			return fmt.Errorf("save user scoring: %w", err)
		}

		event, err = appendRewardEvent(tx, userID, models.RewardTypeCommunityParticipation, amount, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.noteDisbursement(event)
	return event, nil
}

// ReputationScore computes the caller's current reputation. Read-only.
func (s *ScoringService) ReputationScore(userID string) (int64, error) {
	var user models.UserScoring
	if err := s.DB.Where("user_id = ?", userID).First(&user).Error; err != nil {
		return 0, fmt.Errorf("load user scoring: %w", err)
	}
	return reputationOf(&user), nil
}

// UpdateReputationScore computes the reputation and pushes it to the profile
// service. The push is synchronous: if it fails, nothing is recorded.
func (s *ScoringService) UpdateReputationScore(userID string) (*models.ReputationEvent, error) {
	var user models.UserScoring
	if err := s.DB.Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("load user scoring: %w", err)
	}

	score := reputationOf(&user)
	if err := s.Profile.SetReputation(userID, score); err != nil {
		return nil, err
	}

	event := &models.ReputationEvent{
		ID:              uuid.NewString(),
		UserID:          userID,
		ReputationScore: score,
		DsxEarned:       user.TotalEarned,
		Referrals:       user.ReferralCount,
		ContentScore:    user.ContentScore,
		Timestamp:       s.Now(),
	}
	if err := s.DB.Create(event).Error; err != nil {
		return nil, fmt.Errorf("append reputation event: %w", err)
	}

	log.Printf("📊 Reputation synced: %s → %d", userID, score)
	return event, nil
}

// AwardAchievementBadge checks the badge's eligibility predicate and, when
// met, attaches the badge via the profile service. requirementMet carries
// externally-tracked progress (daily streaks) that this ledger does not
// derive itself.
func (s *ScoringService) AwardAchievementBadge(userID, badgeID string, requirementMet int64) (*models.BadgeEvent, error) {
	var user models.UserScoring
	if err := s.DB.Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("load user scoring: %w", err)
	}

	if !badgeEligible(&user, badgeID, requirementMet) {
		return nil, fmt.Errorf("badge %q: %w", badgeID, ErrBadgeRequirementNotMet)
	}

	if err := s.Profile.AttachBadge(userID, badgeID); err != nil {
		return nil, err
	}

	event := &models.BadgeEvent{
		ID:             uuid.NewString(),
		UserID:         userID,
		BadgeID:        badgeID,
		RequirementMet: requirementMet,
		Timestamp:      s.Now(),
	}
	if err := s.DB.Create(event).Error; err != nil {
		return nil, fmt.Errorf("append badge event: %w", err)
	}

	metricBadgesAwarded.Inc()
	log.Printf("🎖️ Badge awarded: %s → %s", badgeID, userID)
	return event, nil
}

// badgeEligible is the fixed eligibility table. Unknown badge ids are never
// eligible.
func badgeEligible(user *models.UserScoring, badgeID string, requirementMet int64) bool {
	switch badgeID {
	case "founder":
		return user.ReferralCount >= 1
	case "influencer":
		return user.ReferralCount >= 10
	case "content_creator":
		return user.ContentScore >= 100
	case "daily_streak_7":
		return requirementMet >= 7
	case "daily_streak_30":
		return requirementMet >= 30
	case "whale":
		return user.TotalEarned >= 10000*models.TokenUnit
	default:
		return false
	}
}

// reputationOf is the pure weighted reputation score of a scoring record.
func reputationOf(user *models.UserScoring) int64 {
	base := user.TotalEarned / models.TokenUnit // 1 point per whole DSX
	total := base +
		user.ReferralCount*ReputationReferralWeight +
		user.ContentScore*ReputationContentWeight +
		user.CommunityParticipation*ReputationParticipationWeight

	if total > ReputationCap {
		total = ReputationCap
	}
	return total
}

// rolloverEpoch advances the quota window. It commits on its own, before the
// payment transaction: a payment that later fails does not resurrect the
// previous day's counter.
func (s *ScoringService) rolloverEpoch(day int64) error {
	var cfg models.ScoringConfig
	err := s.DB.First(&cfg, "key = ?", models.ScoringConfigKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("scoring config: %w", ErrNotInitialized)
	}
	if err != nil {
		return fmt.Errorf("load scoring config: %w", err)
	}

	if day <= cfg.LastResetDay {
		return nil
	}
	cfg.DailyDistributed = 0
	cfg.LastResetDay = day
	if err := s.DB.Save(&cfg).Error; err != nil {
		return fmt.Errorf("roll epoch: %w", err)
	}
	return nil
}

func (s *ScoringService) loadRewardState(tx *gorm.DB, userID string) (*models.ScoringConfig, *models.UserScoring, error) {
	var cfg models.ScoringConfig
	err := tx.First(&cfg, "key = ?", models.ScoringConfigKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("scoring config: %w", ErrNotInitialized)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load scoring config: %w", err)
	}

	var user models.UserScoring
	if err := tx.Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, nil, fmt.Errorf("load user scoring for %s: %w", userID, err)
	}
	return &cfg, &user, nil
}

// disburse is the shared quota-checked payment step: enforce the daily
// limit, mint DSX to the user, advance the program counters.
func (s *ScoringService) disburse(tx *gorm.DB, cfg *models.ScoringConfig, user *models.UserScoring, amount int64) error {
	if cfg.DailyDistributed+amount > cfg.DailyLimit {
		return fmt.Errorf("distributed %d of %d today: %w", cfg.DailyDistributed, cfg.DailyLimit, ErrDailyLimitExceeded)
	}

	if err := s.Ledger.MintTo(tx, models.ScoringConfigKey, cfg.RewardMintID, user.UserID, amount); err != nil {
		return err
	}

	cfg.DailyDistributed += amount
	cfg.TotalDistributed += amount
	if err := tx.Save(cfg).Error; err != nil {
		return fmt.Errorf("save scoring config: %w", err)
	}

	user.TotalEarned += amount
	return nil
}

func (s *ScoringService) noteDisbursement(event *models.RewardEvent) {
	metricRewardsDistributed.WithLabelValues(string(event.RewardType)).Inc()
	metricRewardUnitsDistributed.Add(float64(event.Amount))
	log.Printf("💰 Reward disbursed: %s → %d (%s)", event.UserID, event.Amount, event.RewardType)
}

func appendRewardEvent(tx *gorm.DB, userID string, rewardType models.RewardType, amount int64, at time.Time) (*models.RewardEvent, error) {
	event := &models.RewardEvent{
		ID:         uuid.NewString(),
		UserID:     userID,
		RewardType: rewardType,
		Amount:     amount,
		Timestamp:  at,
	}
	if err := tx.Create(event).Error; err != nil {
		return nil, fmt.Errorf("append reward event: %w", err)
	}
	return event, nil
}
