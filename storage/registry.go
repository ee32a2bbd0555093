package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/crowdveil/crowdveil/types"
)

// SetProfile stores the reputation profile of a creator.
func (s *Storage) SetProfile(p *types.CreatorProfile) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	wTx := s.db.WriteTx()
	defer wTx.Discard()
	if err := setArtifact(wTx, profilePrefix, p.Address.Bytes(), p); err != nil {
		return fmt.Errorf("store profile: %w", err)
	}
	return wTx.Commit()
}

// Profile retrieves the reputation profile of a creator.
func (s *Storage) Profile(addr common.Address) (*types.CreatorProfile, error) {
	p := &types.CreatorProfile{}
	if err := s.getArtifact(profilePrefix, addr.Bytes(), p); err != nil {
		return nil, err
	}
	return p, nil
}

// GrantRole adds addr to the membership set of role. Granting an already
// held role is a no-op.
func (s *Storage) GrantRole(role string, addr common.Address) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	wTx := s.db.WriteTx()
	defer wTx.Discard()
	key := compositeKey([]byte(role), addr.Bytes())
	if err := setArtifact(wTx, rolePrefix, key, true); err != nil {
		return fmt.Errorf("grant role: %w", err)
	}
	return wTx.Commit()
}

// RevokeRole removes addr from the membership set of role. Revoking a role
// that is not held is a no-op.
func (s *Storage) RevokeRole(role string, addr common.Address) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	wTx := s.db.WriteTx()
	defer wTx.Discard()
	key := compositeKey([]byte(role), addr.Bytes())
	if err := setArtifact(wTx, rolePrefix, key, false); err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}
	return wTx.Commit()
}

// HasRole reports whether addr currently holds role.
func (s *Storage) HasRole(role string, addr common.Address) bool {
	var held bool
	key := compositeKey([]byte(role), addr.Bytes())
	if err := s.getArtifact(rolePrefix, key, &held); err != nil {
		return false
	}
	return held
}
