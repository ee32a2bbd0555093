package registry

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/crowdveil/crowdveil/events"
	"github.com/crowdveil/crowdveil/storage"
	"github.com/crowdveil/crowdveil/types"
)

var (
	adminAddr    = common.HexToAddress("0xadadadadadadadadadadadadadadadadadadadad")
	verifierAddr = common.HexToAddress("0x0101010101010101010101010101010101010101")
	creatorAddr  = common.HexToAddress("0x0202020202020202020202020202020202020202")
)

func newTestRegistry(t *testing.T) *Registry {
	stg := storage.New(metadb.NewTest(t))
	bus := events.NewBus(nil)
	r, err := New(stg, bus, adminAddr)
	qt.Assert(t, err, qt.IsNil)
	return r
}

func TestRegisterCreator(t *testing.T) {
	c := qt.New(t)
	r := newTestRegistry(t)

	p, err := r.RegisterCreator(creatorAddr)
	c.Assert(err, qt.IsNil)
	c.Assert(p.Reputation, qt.Equals, uint64(50))
	c.Assert(p.Verified, qt.IsFalse)
	c.Assert(r.HasRole(types.RoleCreator, creatorAddr), qt.IsTrue)

	_, err = r.RegisterCreator(creatorAddr)
	c.Assert(err, qt.Equals, ErrAlreadyRegistered)
}

func TestEligibilityThreshold(t *testing.T) {
	c := qt.New(t)
	r := newTestRegistry(t)

	// unregistered addresses are never eligible
	c.Assert(r.IsEligible(creatorAddr), qt.IsFalse)

	_, err := r.RegisterCreator(creatorAddr)
	c.Assert(err, qt.IsNil)
	// baseline 50 is below the threshold of 60
	c.Assert(r.IsEligible(creatorAddr), qt.IsFalse)

	// verification pushes the score to 70
	c.Assert(r.MarkVerified(adminAddr, creatorAddr), qt.IsNil)
	c.Assert(r.IsEligible(creatorAddr), qt.IsTrue)
}

func TestMarkVerifiedAuthorization(t *testing.T) {
	c := qt.New(t)
	r := newTestRegistry(t)

	_, err := r.RegisterCreator(creatorAddr)
	c.Assert(err, qt.IsNil)

	// random address cannot verify
	c.Assert(r.MarkVerified(creatorAddr, creatorAddr), qt.Equals, ErrUnauthorized)

	// a granted verifier can
	c.Assert(r.GrantRole(adminAddr, types.RoleVerifier, verifierAddr), qt.IsNil)
	c.Assert(r.MarkVerified(verifierAddr, creatorAddr), qt.IsNil)

	p, err := r.Profile(creatorAddr)
	c.Assert(err, qt.IsNil)
	c.Assert(p.Verified, qt.IsTrue)
	c.Assert(p.Reputation, qt.Equals, uint64(70))

	// verifying twice does not stack the bonus
	c.Assert(r.MarkVerified(verifierAddr, creatorAddr), qt.IsNil)
	p, err = r.Profile(creatorAddr)
	c.Assert(err, qt.IsNil)
	c.Assert(p.Reputation, qt.Equals, uint64(70))
}

func TestAdjustReputationFloorsAtZero(t *testing.T) {
	c := qt.New(t)
	r := newTestRegistry(t)

	_, err := r.RegisterCreator(creatorAddr)
	c.Assert(err, qt.IsNil)

	// a decrease larger than the current score floors at exactly zero
	c.Assert(r.AdjustReputation(adminAddr, creatorAddr, -1000), qt.IsNil)
	p, err := r.Profile(creatorAddr)
	c.Assert(err, qt.IsNil)
	c.Assert(p.Reputation, qt.Equals, uint64(0))

	c.Assert(r.AdjustReputation(adminAddr, creatorAddr, 65), qt.IsNil)
	p, err = r.Profile(creatorAddr)
	c.Assert(err, qt.IsNil)
	c.Assert(p.Reputation, qt.Equals, uint64(65))

	// verifiers may adjust too
	verifier := common.HexToAddress("0x0505050505050505050505050505050505050505")
	c.Assert(r.GrantRole(adminAddr, types.RoleVerifier, verifier), qt.IsNil)
	c.Assert(r.AdjustReputation(verifier, creatorAddr, -5), qt.IsNil)
	p, err = r.Profile(creatorAddr)
	c.Assert(err, qt.IsNil)
	c.Assert(p.Reputation, qt.Equals, uint64(60))

	// callers without the verifier or admin role are rejected
	c.Assert(r.AdjustReputation(creatorAddr, creatorAddr, 10), qt.Equals, ErrUnauthorized)
}

func TestRecordSuccess(t *testing.T) {
	c := qt.New(t)
	r := newTestRegistry(t)

	c.Assert(r.RecordSuccess(creatorAddr), qt.Equals, ErrNotRegistered)

	_, err := r.RegisterCreator(creatorAddr)
	c.Assert(err, qt.IsNil)
	c.Assert(r.RecordSuccess(creatorAddr), qt.IsNil)

	p, err := r.Profile(creatorAddr)
	c.Assert(err, qt.IsNil)
	c.Assert(p.SuccessfulCampaigns, qt.Equals, uint64(1))
	c.Assert(p.Reputation, qt.Equals, uint64(60))
}

func TestRoleLifecycle(t *testing.T) {
	c := qt.New(t)
	r := newTestRegistry(t)

	c.Assert(r.GrantRole(creatorAddr, types.RoleVerifier, verifierAddr), qt.Equals, ErrUnauthorized)
	c.Assert(r.GrantRole(adminAddr, types.RoleVerifier, verifierAddr), qt.IsNil)
	c.Assert(r.HasRole(types.RoleVerifier, verifierAddr), qt.IsTrue)
	c.Assert(r.RevokeRole(adminAddr, types.RoleVerifier, verifierAddr), qt.IsNil)
	c.Assert(r.HasRole(types.RoleVerifier, verifierAddr), qt.IsFalse)
}
