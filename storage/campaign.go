package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/crowdveil/crowdveil/types"
)

var campaignSeq = []byte("campaign")

// CreateCampaign allocates the next campaign id, stores the record and
// updates the creator index, all in one transaction. The assigned id is
// set on the passed campaign and returned.
func (s *Storage) CreateCampaign(c *types.Campaign) (uint64, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	wTx := s.db.WriteTx()
	defer wTx.Discard()

	id, err := nextSequence(wTx, campaignSeq)
	if err != nil {
		return 0, err
	}
	c.ID = id
	if err := setArtifact(wTx, campaignPrefix, uint64Key(id), c); err != nil {
		return 0, fmt.Errorf("store campaign: %w", err)
	}
	// creator index: ci/<address><id> -> empty
	idxKey := compositeKey(c.Owner.Bytes(), uint64Key(id))
	if err := setArtifact(wTx, creatorIndex, idxKey, id); err != nil {
		return 0, fmt.Errorf("index campaign: %w", err)
	}
	return id, wTx.Commit()
}

// UpdateCampaign overwrites an existing campaign record.
func (s *Storage) UpdateCampaign(c *types.Campaign) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	if !s.hasKey(campaignPrefix, uint64Key(c.ID)) {
		return ErrNotFound
	}
	wTx := s.db.WriteTx()
	defer wTx.Discard()
	if err := setArtifact(wTx, campaignPrefix, uint64Key(c.ID), c); err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return wTx.Commit()
}

// Campaign retrieves a campaign by id. Returns ErrNotFound if it does not
// exist.
func (s *Storage) Campaign(id uint64) (*types.Campaign, error) {
	c := &types.Campaign{}
	if err := s.getArtifact(campaignPrefix, uint64Key(id), c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCampaigns returns all campaign ids in ascending order.
func (s *Storage) ListCampaigns() ([]uint64, error) {
	var ids []uint64
	err := s.iterate(campaignPrefix, nil, func(k, _ []byte) bool {
		if len(k) == 8 {
			ids = append(ids, bytesToUint64(k))
		}
		return true
	})
	return ids, err
}

// CampaignsByCreator returns the campaign ids launched by the given
// address, in ascending id order.
func (s *Storage) CampaignsByCreator(creator common.Address) ([]uint64, error) {
	var ids []uint64
	err := s.iterate(creatorIndex, creator.Bytes(), func(_ []byte, v []byte) bool {
		var id uint64
		if err := decodeArtifact(v, &id); err == nil {
			ids = append(ids, id)
		}
		return true
	})
	return ids, err
}

// AppendBacking stores a backing at the next index of its campaign's
// append-only list and returns that index (starting at 0).
func (s *Storage) AppendBacking(b *types.Backing) (uint64, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	wTx := s.db.WriteTx()
	defer wTx.Discard()

	seqName := compositeKey([]byte("backing/"), uint64Key(b.CampaignID))
	seq, err := nextSequence(wTx, seqName)
	if err != nil {
		return 0, err
	}
	b.Index = seq - 1
	key := compositeKey(uint64Key(b.CampaignID), uint64Key(b.Index))
	if err := setArtifact(wTx, backingPrefix, key, b); err != nil {
		return 0, fmt.Errorf("store backing: %w", err)
	}
	// backer index: bi/<campaign><address> -> marker, kept for the
	// distinct backer count
	idxKey := compositeKey(uint64Key(b.CampaignID), b.Backer.Bytes())
	if err := setArtifact(wTx, backerIndex, idxKey, true); err != nil {
		return 0, fmt.Errorf("index backer: %w", err)
	}
	return b.Index, wTx.Commit()
}

// HasBacked reports whether backer already has at least one backing
// recorded for the campaign.
func (s *Storage) HasBacked(campaignID uint64, backer common.Address) bool {
	return s.hasKey(backerIndex, compositeKey(uint64Key(campaignID), backer.Bytes()))
}

// UpdateBacking overwrites a stored backing (used to mark it claimed).
func (s *Storage) UpdateBacking(b *types.Backing) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	key := compositeKey(uint64Key(b.CampaignID), uint64Key(b.Index))
	if !s.hasKey(backingPrefix, key) {
		return ErrNotFound
	}
	wTx := s.db.WriteTx()
	defer wTx.Discard()
	if err := setArtifact(wTx, backingPrefix, key, b); err != nil {
		return fmt.Errorf("update backing: %w", err)
	}
	return wTx.Commit()
}

// Backings returns all backings of a campaign in submission order.
func (s *Storage) Backings(campaignID uint64) ([]*types.Backing, error) {
	var list []*types.Backing
	err := s.iterate(backingPrefix, uint64Key(campaignID), func(_ []byte, v []byte) bool {
		b := &types.Backing{}
		if err := decodeArtifact(v, b); err == nil {
			list = append(list, b)
		}
		return true
	})
	return list, err
}

// SetVesting stores the vesting schedule of (campaign, backer).
func (s *Storage) SetVesting(v *types.VestingSchedule) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	wTx := s.db.WriteTx()
	defer wTx.Discard()
	key := compositeKey(uint64Key(v.CampaignID), v.Backer.Bytes())
	if err := setArtifact(wTx, vestingPrefix, key, v); err != nil {
		return fmt.Errorf("store vesting schedule: %w", err)
	}
	return wTx.Commit()
}

// Vesting retrieves the vesting schedule of (campaign, backer).
func (s *Storage) Vesting(campaignID uint64, backer common.Address) (*types.VestingSchedule, error) {
	v := &types.VestingSchedule{}
	key := compositeKey(uint64Key(campaignID), backer.Bytes())
	if err := s.getArtifact(vestingPrefix, key, v); err != nil {
		return nil, err
	}
	return v, nil
}
