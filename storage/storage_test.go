package storage

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/crowdveil/crowdveil/crypto/commitment"
	"github.com/crowdveil/crowdveil/crypto/ecc/curves"
	"github.com/crowdveil/crowdveil/types"
)

func testCommitment(t testing.TB, value int64) *commitment.Commitment {
	t.Helper()
	curve := curves.New(curves.CurveTypeBN254)
	pub, _, err := commitment.GenerateKey(curve)
	qt.Assert(t, err, qt.IsNil)
	nonce, err := commitment.RandNonce()
	qt.Assert(t, err, qt.IsNil)
	c, err := commitment.Commit(pub, big.NewInt(value), nonce)
	qt.Assert(t, err, qt.IsNil)
	return c
}

func TestCampaignLifecycle(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	owner := common.HexToAddress("0x1111111111111111111111111111111111111111")
	camp := &types.Campaign{
		Owner:     owner,
		Token:     common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Supply:    (*types.BigInt)(big.NewInt(1000000)),
		Goal:      (*types.BigInt)(big.NewInt(5000)),
		Price:     (*types.BigInt)(big.NewInt(2)),
		Raised:    testCommitment(t, 0),
		StartTime: time.Now().UTC().Truncate(time.Second),
		EndTime:   time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second),
		Phase:     types.PhaseLive,
		Live:      true,
	}

	id, err := stg.CreateCampaign(camp)
	c.Assert(err, qt.IsNil)
	c.Assert(id, qt.Equals, uint64(1))

	got, err := stg.Campaign(id)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Owner, qt.Equals, owner)
	c.Assert(got.Goal.Equal(camp.Goal), qt.IsTrue)
	c.Assert(got.Phase, qt.Equals, types.PhaseLive)

	// second campaign gets the next id
	camp2 := &types.Campaign{
		Owner:  owner,
		Raised: testCommitment(t, 0),
		Goal:   (*types.BigInt)(big.NewInt(100)),
	}
	id2, err := stg.CreateCampaign(camp2)
	c.Assert(err, qt.IsNil)
	c.Assert(id2, qt.Equals, uint64(2))

	ids, err := stg.ListCampaigns()
	c.Assert(err, qt.IsNil)
	c.Assert(ids, qt.DeepEquals, []uint64{1, 2})

	byCreator, err := stg.CampaignsByCreator(owner)
	c.Assert(err, qt.IsNil)
	c.Assert(byCreator, qt.DeepEquals, []uint64{1, 2})

	got.Phase = types.PhaseSuccessful
	got.Live = false
	c.Assert(stg.UpdateCampaign(got), qt.IsNil)
	got2, err := stg.Campaign(id)
	c.Assert(err, qt.IsNil)
	c.Assert(got2.Phase, qt.Equals, types.PhaseSuccessful)

	_, err = stg.Campaign(99)
	c.Assert(err, qt.Equals, ErrNotFound)
}

func TestBackings(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	backer := common.HexToAddress("0x3333333333333333333333333333333333333333")
	for i := 0; i < 3; i++ {
		b := &types.Backing{
			CampaignID: 7,
			Backer:     backer,
			Amount:     (*types.BigInt)(big.NewInt(int64(100 * (i + 1)))),
			Commitment: testCommitment(t, int64(100*(i+1))),
			Timestamp:  time.Now().UTC(),
		}
		idx, err := stg.AppendBacking(b)
		c.Assert(err, qt.IsNil)
		c.Assert(idx, qt.Equals, uint64(i))
	}

	list, err := stg.Backings(7)
	c.Assert(err, qt.IsNil)
	c.Assert(list, qt.HasLen, 3)
	c.Assert(list[0].Amount.MathBigInt().Int64(), qt.Equals, int64(100))
	c.Assert(list[2].Amount.MathBigInt().Int64(), qt.Equals, int64(300))

	// the backer index is scoped to the campaign
	c.Assert(stg.HasBacked(7, backer), qt.IsTrue)
	c.Assert(stg.HasBacked(8, backer), qt.IsFalse)
	stranger := common.HexToAddress("0x4444444444444444444444444444444444444444")
	c.Assert(stg.HasBacked(7, stranger), qt.IsFalse)

	// backings of another campaign do not leak in
	other, err := stg.Backings(8)
	c.Assert(err, qt.IsNil)
	c.Assert(other, qt.HasLen, 0)

	list[1].Claimed = true
	c.Assert(stg.UpdateBacking(list[1]), qt.IsNil)
	list, err = stg.Backings(7)
	c.Assert(err, qt.IsNil)
	c.Assert(list[1].Claimed, qt.IsTrue)
}

func TestVesting(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	backer := common.HexToAddress("0x4444444444444444444444444444444444444444")
	vs := &types.VestingSchedule{
		CampaignID: 1,
		Backer:     backer,
		Total:      (*types.BigInt)(big.NewInt(5000)),
		Claimed:    (*types.BigInt)(big.NewInt(0)),
		Start:      time.Now().UTC().Truncate(time.Second),
		Duration:   180 * 24 * time.Hour,
		Cliff:      30 * 24 * time.Hour,
		Active:     true,
	}
	c.Assert(stg.SetVesting(vs), qt.IsNil)

	got, err := stg.Vesting(1, backer)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Total.Equal(vs.Total), qt.IsTrue)
	c.Assert(got.Active, qt.IsTrue)

	_, err = stg.Vesting(1, common.HexToAddress("0x5555555555555555555555555555555555555555"))
	c.Assert(err, qt.Equals, ErrNotFound)
}

func TestPoolPairIndex(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	tokA := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	tokB := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	pool := &types.LiquidityPool{
		TokenA:         tokA,
		TokenB:         tokB,
		ReserveA:       testCommitment(t, 1000),
		ReserveB:       testCommitment(t, 1000),
		TotalShares:    testCommitment(t, 0),
		Active:         true,
		FeeBasisPoints: 30,
		CreatedAt:      time.Now().UTC(),
	}
	id, err := stg.CreatePool(pool)
	c.Assert(err, qt.IsNil)
	c.Assert(id, qt.Equals, uint64(1))

	// both orderings resolve to the same pool
	p1, err := stg.PoolByPair(tokA, tokB)
	c.Assert(err, qt.IsNil)
	p2, err := stg.PoolByPair(tokB, tokA)
	c.Assert(err, qt.IsNil)
	c.Assert(p1.ID, qt.Equals, p2.ID)

	// a second pool on the same unordered pair is rejected
	dup := &types.LiquidityPool{TokenA: tokB, TokenB: tokA}
	_, err = stg.CreatePool(dup)
	c.Assert(err, qt.IsNotNil)
}

func TestOrdersAndIndex(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	trader := common.HexToAddress("0x6666666666666666666666666666666666666666")
	now := time.Now().UTC().Truncate(time.Second)
	o := &types.Order{
		Trader:    trader,
		TokenA:    common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
		TokenB:    common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"),
		AmountA:   testCommitment(t, 500),
		AmountB:   testCommitment(t, 250),
		Price:     testCommitment(t, 2),
		Type:      types.OrderTypeBuy,
		Status:    types.OrderStatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}
	id, err := stg.CreateOrder(o)
	c.Assert(err, qt.IsNil)
	c.Assert(id, qt.Equals, uint64(1))

	got, err := stg.Order(id)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Status, qt.Equals, types.OrderStatusPending)

	got.Status = types.OrderStatusCancelled
	c.Assert(stg.UpdateOrder(got), qt.IsNil)
	got, err = stg.Order(id)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Status, qt.Equals, types.OrderStatusCancelled)

	ids, err := stg.OrdersByTrader(trader)
	c.Assert(err, qt.IsNil)
	c.Assert(ids, qt.DeepEquals, []uint64{1})
}

func TestRolesAndProfiles(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	addr := common.HexToAddress("0x7777777777777777777777777777777777777777")
	c.Assert(stg.HasRole(types.RoleVerifier, addr), qt.IsFalse)
	c.Assert(stg.GrantRole(types.RoleVerifier, addr), qt.IsNil)
	c.Assert(stg.HasRole(types.RoleVerifier, addr), qt.IsTrue)
	c.Assert(stg.HasRole(types.RoleAdmin, addr), qt.IsFalse)
	c.Assert(stg.RevokeRole(types.RoleVerifier, addr), qt.IsNil)
	c.Assert(stg.HasRole(types.RoleVerifier, addr), qt.IsFalse)

	p := &types.CreatorProfile{
		Address:      addr,
		Reputation:   50,
		RegisteredAt: time.Now().UTC().Truncate(time.Second),
	}
	c.Assert(stg.SetProfile(p), qt.IsNil)
	got, err := stg.Profile(addr)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Reputation, qt.Equals, uint64(50))
}

func TestEncryptionKeys(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	curve := curves.New(curves.CurveTypeBN254)
	pub, priv, err := commitment.GenerateKey(curve)
	c.Assert(err, qt.IsNil)

	_, _, err = stg.CampaignKeys(1)
	c.Assert(err, qt.Equals, ErrNotFound)

	c.Assert(stg.SetCampaignKeys(1, pub, priv), qt.IsNil)
	gotPub, gotPriv, err := stg.CampaignKeys(1)
	c.Assert(err, qt.IsNil)
	c.Assert(gotPub.Equal(pub), qt.IsTrue)
	c.Assert(gotPriv.Cmp(priv), qt.Equals, 0)

	c.Assert(stg.SetExchangeKeys(pub, priv), qt.IsNil)
	exPub, exPriv, err := stg.ExchangeKeys()
	c.Assert(err, qt.IsNil)
	c.Assert(exPub.Equal(pub), qt.IsTrue)
	c.Assert(exPriv.Cmp(priv), qt.Equals, 0)
}
