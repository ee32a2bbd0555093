// Package registry is the authorization and reputation gate of the
// platform. Creators register to obtain a baseline reputation score,
// verifiers raise it by vetting campaigns, and finalized successful
// campaigns raise it further. Launching a campaign requires the score to
// clear a fixed eligibility threshold.
package registry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/crowdveil/crowdveil/config"
	"github.com/crowdveil/crowdveil/events"
	"github.com/crowdveil/crowdveil/log"
	"github.com/crowdveil/crowdveil/storage"
	"github.com/crowdveil/crowdveil/types"
)

var (
	// ErrUnauthorized is returned when the caller lacks the role an
	// operation requires.
	ErrUnauthorized = errors.New("caller not authorized")
	// ErrNotRegistered is returned when the referenced creator has no
	// profile.
	ErrNotRegistered = errors.New("creator not registered")
	// ErrAlreadyRegistered is returned on a duplicate registration.
	ErrAlreadyRegistered = errors.New("creator already registered")
)

// Registry manages creator profiles, reputation scores and role
// membership.
type Registry struct {
	stg  *storage.Storage
	bus  *events.Bus
	lock sync.Mutex
	now  func() time.Time
}

// New creates a registry. The admin address receives the admin role if it
// does not hold it yet, so a fresh deployment is never locked out.
func New(stg *storage.Storage, bus *events.Bus, admin common.Address) (*Registry, error) {
	r := &Registry{
		stg: stg,
		bus: bus,
		now: time.Now,
	}
	if !stg.HasRole(types.RoleAdmin, admin) {
		if err := stg.GrantRole(types.RoleAdmin, admin); err != nil {
			return nil, fmt.Errorf("bootstrap admin role: %w", err)
		}
		log.Infow("bootstrapped admin role", "address", admin.Hex())
	}
	return r, nil
}

// RegisterCreator creates a profile for sender with the baseline
// reputation score and grants the creator role.
func (r *Registry) RegisterCreator(sender common.Address) (*types.CreatorProfile, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, err := r.stg.Profile(sender); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	profile := &types.CreatorProfile{
		Address:      sender,
		Reputation:   config.ReputationBaseline,
		RegisteredAt: r.now().UTC(),
	}
	if err := r.stg.SetProfile(profile); err != nil {
		return nil, fmt.Errorf("store profile: %w", err)
	}
	if err := r.stg.GrantRole(types.RoleCreator, sender); err != nil {
		return nil, fmt.Errorf("grant creator role: %w", err)
	}
	log.Infow("creator registered", "address", sender.Hex(), "reputation", profile.Reputation)
	r.bus.Publish(events.CreatorRegistered, profile)
	return profile, nil
}

// Profile returns the profile of a creator. Returns ErrNotRegistered if
// none exists.
func (r *Registry) Profile(addr common.Address) (*types.CreatorProfile, error) {
	p, err := r.stg.Profile(addr)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotRegistered
	}
	return p, err
}

// IsEligible reports whether addr may launch a campaign: a registered
// creator whose reputation clears the threshold.
func (r *Registry) IsEligible(addr common.Address) bool {
	p, err := r.stg.Profile(addr)
	if err != nil {
		return false
	}
	return p.Reputation >= config.EligibilityThreshold
}

// MarkVerified flags the creator profile as verified and applies the
// verification reputation bonus. Only verifiers may call it.
func (r *Registry) MarkVerified(sender, creator common.Address) error {
	if !r.stg.HasRole(types.RoleVerifier, sender) && !r.stg.HasRole(types.RoleAdmin, sender) {
		return ErrUnauthorized
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	p, err := r.stg.Profile(creator)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotRegistered
	} else if err != nil {
		return err
	}
	if p.Verified {
		return nil
	}
	p.Verified = true
	p.Reputation += config.ReputationVerifyBonus
	if err := r.stg.SetProfile(p); err != nil {
		return fmt.Errorf("store profile: %w", err)
	}
	log.Infow("creator verified", "address", creator.Hex(), "reputation", p.Reputation)
	r.bus.Publish(events.ReputationChanged, p)
	return nil
}

// RecordSuccess applies the successful-campaign reputation bonus and
// increments the success counter. Called by the ledger at finalize time.
func (r *Registry) RecordSuccess(creator common.Address) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	p, err := r.stg.Profile(creator)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotRegistered
	} else if err != nil {
		return err
	}
	p.SuccessfulCampaigns++
	p.Reputation += config.ReputationSuccessBonus
	if err := r.stg.SetProfile(p); err != nil {
		return fmt.Errorf("store profile: %w", err)
	}
	r.bus.Publish(events.ReputationChanged, p)
	return nil
}

// AdjustReputation adds delta (which may be negative) to the creator's
// score, flooring at zero. Only verifiers and admins may call it.
func (r *Registry) AdjustReputation(sender, creator common.Address, delta int64) error {
	if !r.stg.HasRole(types.RoleVerifier, sender) && !r.stg.HasRole(types.RoleAdmin, sender) {
		return ErrUnauthorized
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	p, err := r.stg.Profile(creator)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotRegistered
	} else if err != nil {
		return err
	}
	if delta < 0 && uint64(-delta) > p.Reputation {
		p.Reputation = 0
	} else if delta < 0 {
		p.Reputation -= uint64(-delta)
	} else {
		p.Reputation += uint64(delta)
	}
	if err := r.stg.SetProfile(p); err != nil {
		return fmt.Errorf("store profile: %w", err)
	}
	log.Debugw("reputation adjusted", "address", creator.Hex(), "delta", delta, "reputation", p.Reputation)
	r.bus.Publish(events.ReputationChanged, p)
	return nil
}

// GrantRole adds addr to role. Only admins may call it.
func (r *Registry) GrantRole(sender common.Address, role string, addr common.Address) error {
	if !r.stg.HasRole(types.RoleAdmin, sender) {
		return ErrUnauthorized
	}
	if err := r.stg.GrantRole(role, addr); err != nil {
		return err
	}
	r.bus.Publish(events.RoleGranted, map[string]string{"role": role, "address": addr.Hex()})
	return nil
}

// RevokeRole removes addr from role. Only admins may call it.
func (r *Registry) RevokeRole(sender common.Address, role string, addr common.Address) error {
	if !r.stg.HasRole(types.RoleAdmin, sender) {
		return ErrUnauthorized
	}
	if err := r.stg.RevokeRole(role, addr); err != nil {
		return err
	}
	r.bus.Publish(events.RoleRevoked, map[string]string{"role": role, "address": addr.Hex()})
	return nil
}

// HasRole reports whether addr holds role.
func (r *Registry) HasRole(role string, addr common.Address) bool {
	return r.stg.HasRole(role, addr)
}
