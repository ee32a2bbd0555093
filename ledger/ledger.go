// Package ledger implements the fundraising campaign state machine.
// Campaigns advance one-way through their phases; the running raised total
// is an encrypted commitment that is only decrypted once, inside Finalize,
// with the campaign's own key. Every accepted backing is also appended to
// a per-campaign merkle tree whose root is published on the campaign
// record, so the backing list can be audited without trusting the node.
package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/arbo"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"

	"github.com/crowdveil/crowdveil/events"
	"github.com/crowdveil/crowdveil/registry"
	"github.com/crowdveil/crowdveil/storage"
	"github.com/crowdveil/crowdveil/tokens"
	"github.com/crowdveil/crowdveil/types"
)

const backingTreeMaxLevels = 64

var backingTreePrefix = []byte("bt/")

// Ledger executes campaign operations against storage, the balance vault
// and the reputation registry. All mutating operations are serialized.
type Ledger struct {
	stg      *storage.Storage
	vault    *tokens.Vault
	registry *registry.Registry
	bus      *events.Bus
	db       db.Database

	lock  sync.Mutex
	trees map[uint64]*arbo.Tree

	// now is replaceable in tests
	now func() time.Time
}

// New creates a ledger on the given components. The database is used for
// the per-campaign backing trees.
func New(stg *storage.Storage, vault *tokens.Vault, reg *registry.Registry,
	bus *events.Bus, database db.Database,
) *Ledger {
	return &Ledger{
		stg:      stg,
		vault:    vault,
		registry: reg,
		bus:      bus,
		db:       database,
		trees:    make(map[uint64]*arbo.Tree),
		now:      time.Now,
	}
}

// backingTree returns the merkle tree of a campaign, opening it on first
// use. Caller must hold the ledger lock.
func (l *Ledger) backingTree(campaignID uint64) (*arbo.Tree, error) {
	if tree, ok := l.trees[campaignID]; ok {
		return tree, nil
	}
	prefix := append([]byte{}, backingTreePrefix...)
	prefix = append(prefix, uint64ToBytes(campaignID)...)
	tree, err := arbo.NewTree(arbo.Config{
		Database:     prefixeddb.NewPrefixedDatabase(l.db, prefix),
		MaxLevels:    backingTreeMaxLevels,
		HashFunction: arbo.HashFunctionBlake2b,
	})
	if err != nil {
		return nil, fmt.Errorf("open backing tree: %w", err)
	}
	l.trees[campaignID] = tree
	return tree, nil
}

func uint64ToBytes(v uint64) []byte {
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[7-i] = byte(v >> (8 * i))
	}
	return buf
}

// Campaign returns a campaign by id.
func (l *Ledger) Campaign(id uint64) (*types.Campaign, error) {
	return l.stg.Campaign(id)
}

// ListCampaigns returns all campaign ids in ascending order.
func (l *Ledger) ListCampaigns() ([]uint64, error) {
	return l.stg.ListCampaigns()
}

// Backings returns the backing list of a campaign in submission order.
func (l *Ledger) Backings(campaignID uint64) ([]*types.Backing, error) {
	return l.stg.Backings(campaignID)
}

// Vesting returns the vesting schedule of (campaign, backer).
func (l *Ledger) Vesting(campaignID uint64, backer common.Address) (*types.VestingSchedule, error) {
	return l.stg.Vesting(campaignID, backer)
}
