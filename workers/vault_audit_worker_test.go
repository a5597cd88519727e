package workers

import (
	"fmt"
	"testing"
	"time"

	"neoengine-ledger-service/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newAuditDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.CosmeticRegistry{},
		&models.CosmeticStakeRecord{},
		&models.TokenAccount{},
	))
	return db
}

func seedStake(t *testing.T, db *gorm.DB) models.CosmeticStakeRecord {
	t.Helper()

	record := models.CosmeticStakeRecord{
		ID:             uuid.NewString(),
		UserID:         uuid.NewString(),
		CosmeticMintID: uuid.NewString(),
		ProfileID:      uuid.NewString(),
		CosmeticType:   "frame",
		StakedAt:       time.Now(),
	}
	require.NoError(t, db.Create(&record).Error)

	vault := models.TokenAccount{
		ID:      uuid.NewString(),
		OwnerID: models.StakeVaultOwner(record.CosmeticMintID, record.ProfileID),
		MintID:  record.CosmeticMintID,
		Balance: 1,
	}
	require.NoError(t, db.Create(&vault).Error)
	return record
}

func TestAuditCleanState(t *testing.T) {
	db := newAuditDB(t)
	require.NoError(t, db.Create(&models.CosmeticRegistry{
		Key:          models.CosmeticRegistryKey,
		AuthorityID:  uuid.NewString(),
		ActiveStakes: 2,
	}).Error)
	seedStake(t, db)
	seedStake(t, db)

	checked, drift, err := NewVaultAuditor(db).auditOnce()
	require.NoError(t, err)
	assert.Equal(t, 2, checked)
	assert.Zero(t, drift)
}

func TestAuditDetectsEmptyVault(t *testing.T) {
	db := newAuditDB(t)
	require.NoError(t, db.Create(&models.CosmeticRegistry{
		Key:          models.CosmeticRegistryKey,
		AuthorityID:  uuid.NewString(),
		ActiveStakes: 1,
	}).Error)
	record := seedStake(t, db)

	vault := models.StakeVaultOwner(record.CosmeticMintID, record.ProfileID)
	require.NoError(t, db.Model(&models.TokenAccount{}).
		Where("owner_id = ? AND mint_id = ?", vault, record.CosmeticMintID).
		Update("balance", 0).Error)

	checked, drift, err := NewVaultAuditor(db).auditOnce()
	require.NoError(t, err)
	assert.Equal(t, 1, checked)
	assert.Equal(t, 1, drift)
}

func TestAuditDetectsMissingVaultAccount(t *testing.T) {
	db := newAuditDB(t)
	require.NoError(t, db.Create(&models.CosmeticRegistry{
		Key:          models.CosmeticRegistryKey,
		AuthorityID:  uuid.NewString(),
		ActiveStakes: 1,
	}).Error)
	record := seedStake(t, db)

	vault := models.StakeVaultOwner(record.CosmeticMintID, record.ProfileID)
	require.NoError(t, db.
		Where("owner_id = ? AND mint_id = ?", vault, record.CosmeticMintID).
		Delete(&models.TokenAccount{}).Error)

	_, drift, err := NewVaultAuditor(db).auditOnce()
	require.NoError(t, err)
	assert.Equal(t, 1, drift)
}

func TestAuditDetectsCounterMismatch(t *testing.T) {
	db := newAuditDB(t)
	require.NoError(t, db.Create(&models.CosmeticRegistry{
		Key:          models.CosmeticRegistryKey,
		AuthorityID:  uuid.NewString(),
		ActiveStakes: 5,
	}).Error)
	seedStake(t, db)

	checked, drift, err := NewVaultAuditor(db).auditOnce()
	require.NoError(t, err)
	assert.Equal(t, 1, checked)
	assert.Equal(t, 1, drift)
}

func TestAuditWithoutRegistry(t *testing.T) {
	db := newAuditDB(t)

	checked, drift, err := NewVaultAuditor(db).auditOnce()
	require.NoError(t, err)
	assert.Zero(t, checked)
	assert.Zero(t, drift)
}
