// services/errors.go
package services

import "errors"

// Ledger failure modes. Every operation either commits fully or returns one
// of these (or a wrapped storage error) with no partial state change.
var (
	// Authorization
	ErrUnauthorized = errors.New("unauthorized")

	// State conflicts — reward engine
	ErrAlreadyRewardedToday = errors.New("user already contributed today")
	ErrDailyLimitExceeded   = errors.New("daily distribution limit exceeded")
	ErrNoRewardEarned       = errors.New("no reward earned")

	// State conflicts — badges
	ErrBadgeRequirementNotMet = errors.New("badge requirement not met")

	// State conflicts — cosmetics
	ErrMaxSupplyReached      = errors.New("maximum supply reached")
	ErrCosmeticNotOwned      = errors.New("cosmetic not owned")
	ErrInvalidCosmeticType   = errors.New("invalid cosmetic type")
	ErrCosmeticNotStaked     = errors.New("cosmetic not staked")
	ErrCosmeticAlreadyStaked = errors.New("cosmetic already staked")

	// Token custody
	ErrInsufficientBalance = errors.New("insufficient token balance")

	// Lifecycle / validation
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrNotInitialized     = errors.New("not initialized")
	ErrValidation         = errors.New("invalid input")
)
