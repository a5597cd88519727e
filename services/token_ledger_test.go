package services

import (
	"testing"

	"neoengine-ledger-service/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintToAuthorityEnforced(t *testing.T) {
	db := newTestDB(t)
	ledger := NewTokenLedger()
	authority := uuid.NewString()
	owner := uuid.NewString()

	mint, err := ledger.CreateMint(db, authority, 9)
	require.NoError(t, err)

	require.NoError(t, ledger.MintTo(db, authority, mint.ID, owner, 5*models.TokenUnit))

	err = ledger.MintTo(db, uuid.NewString(), mint.ID, owner, models.TokenUnit)
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = ledger.MintTo(db, authority, mint.ID, owner, 0)
	assert.ErrorIs(t, err, ErrValidation)

	balance, err := ledger.Balance(db, mint.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, 5*models.TokenUnit, balance)

	var stored models.TokenMint
	require.NoError(t, db.First(&stored, "id = ?", mint.ID).Error)
	assert.Equal(t, 5*models.TokenUnit, stored.Supply)
}

func TestTransferMovesBalance(t *testing.T) {
	db := newTestDB(t)
	ledger := NewTokenLedger()
	authority := uuid.NewString()
	alice := uuid.NewString()
	bob := uuid.NewString()

	mint, err := ledger.CreateMint(db, authority, 9)
	require.NoError(t, err)
	require.NoError(t, ledger.MintTo(db, authority, mint.ID, alice, 10*models.TokenUnit))

	require.NoError(t, ledger.Transfer(db, alice, mint.ID, alice, bob, 3*models.TokenUnit))

	aliceBalance, err := ledger.Balance(db, mint.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, 7*models.TokenUnit, aliceBalance)

	bobBalance, err := ledger.Balance(db, mint.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, 3*models.TokenUnit, bobBalance)
}

func TestTransferAuthorityAndFunds(t *testing.T) {
	db := newTestDB(t)
	ledger := NewTokenLedger()
	authority := uuid.NewString()
	alice := uuid.NewString()
	bob := uuid.NewString()

	mint, err := ledger.CreateMint(db, authority, 9)
	require.NoError(t, err)
	require.NoError(t, ledger.MintTo(db, authority, mint.ID, alice, 2*models.TokenUnit))

	// Only the source owner may move funds out.
	err = ledger.Transfer(db, bob, mint.ID, alice, bob, models.TokenUnit)
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = ledger.Transfer(db, alice, mint.ID, alice, bob, 3*models.TokenUnit)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// No account at all reads the same as an empty one.
	err = ledger.Transfer(db, bob, mint.ID, bob, alice, models.TokenUnit)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	balance, err := ledger.Balance(db, mint.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, 2*models.TokenUnit, balance)
}

func TestBalanceMissingAccountIsZero(t *testing.T) {
	db := newTestDB(t)
	ledger := NewTokenLedger()

	balance, err := ledger.Balance(db, uuid.NewString(), uuid.NewString())
	require.NoError(t, err)
	assert.Zero(t, balance)
}
