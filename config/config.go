// Package config holds the platform protocol parameters. They are
// compile-time constants: changing any of them changes consensus-relevant
// behavior and is a platform upgrade, not a runtime option.
package config

import "time"

const (
	// MinCampaignDuration and MaxCampaignDuration bound the funding window
	// requested at launch.
	MinCampaignDuration = 24 * time.Hour
	MaxCampaignDuration = 90 * 24 * time.Hour

	// VestingCliff is the period after a successful finalize during which
	// nothing is claimable.
	VestingCliff = 30 * 24 * time.Hour
	// VestingDuration is the total vesting period, cliff included.
	VestingDuration = 180 * 24 * time.Hour

	// OrderTTL is the fixed lifetime of an order after creation.
	OrderTTL = 24 * time.Hour

	// MaxFeeBasisPoints is the ceiling for pool fee rates (10%).
	MaxFeeBasisPoints = 1000
	// BasisPointsDivisor converts basis points to a fraction.
	BasisPointsDivisor = 10000

	// MaxPlaintext is the ceiling for any decryptable aggregate value.
	// Decryption solves a discrete logarithm by baby-step giant-step, so
	// the cost grows with the square root of this bound.
	MaxPlaintext = uint64(1) << 40

	// Reputation parameters of the eligibility gate.
	ReputationBaseline     = 50
	ReputationVerifyBonus  = 20
	ReputationSuccessBonus = 10
	EligibilityThreshold   = 60
)
