package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/crowdveil/crowdveil/crypto/commitment"
	"github.com/crowdveil/crowdveil/crypto/ethereum"
	"github.com/crowdveil/crowdveil/events"
	"github.com/crowdveil/crowdveil/exchange"
	"github.com/crowdveil/crowdveil/ledger"
	"github.com/crowdveil/crowdveil/registry"
	"github.com/crowdveil/crowdveil/storage"
	"github.com/crowdveil/crowdveil/tokens"
	"github.com/crowdveil/crowdveil/types"
)

type testServer struct {
	api   *API
	stg   *storage.Storage
	vault *tokens.Vault
	reg   *registry.Registry
	admin *ethereum.SignKeys
}

func newTestServer(t *testing.T) *testServer {
	c := qt.New(t)
	database := metadb.NewTest(t)
	stg := storage.New(database)
	vault := tokens.NewVault(database)
	bus := events.NewBus(nil)

	admin := ethereum.NewSignKeys()
	c.Assert(admin.Generate(), qt.IsNil)

	reg, err := registry.New(stg, bus, admin.Address())
	c.Assert(err, qt.IsNil)
	led := ledger.New(stg, vault, reg, bus, database)
	ex, err := exchange.New(stg, vault, reg, bus)
	c.Assert(err, qt.IsNil)

	a := &API{ledger: led, exchange: ex, registry: reg}
	a.initRouter()
	return &testServer{api: a, stg: stg, vault: vault, reg: reg, admin: admin}
}

// signedBody wraps payload in a SignedRequest signed by keys.
func signedBody(t *testing.T, keys *ethereum.SignKeys, payload any) *bytes.Buffer {
	t.Helper()
	c := qt.New(t)
	raw, err := json.Marshal(payload)
	c.Assert(err, qt.IsNil)
	sig, err := keys.SignEthereum(raw)
	c.Assert(err, qt.IsNil)
	body, err := json.Marshal(&SignedRequest{Payload: raw, Signature: sig})
	c.Assert(err, qt.IsNil)
	return bytes.NewBuffer(body)
}

func (s *testServer) request(t *testing.T, method, path string, body *bytes.Buffer) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	s.api.Router().ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	c := qt.New(t)
	s := newTestServer(t)
	rec := s.request(t, http.MethodGet, PingEndpoint, nil)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
}

func TestRegisterCreatorAndProfile(t *testing.T) {
	c := qt.New(t)
	s := newTestServer(t)

	creator := ethereum.NewSignKeys()
	c.Assert(creator.Generate(), qt.IsNil)

	rec := s.request(t, http.MethodPost, CreatorsEndpoint,
		signedBody(t, creator, map[string]string{"action": "register"}))
	c.Assert(rec.Code, qt.Equals, http.StatusOK)

	var profile types.CreatorProfile
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &profile), qt.IsNil)
	c.Assert(profile.Reputation, qt.Equals, uint64(50))

	rec = s.request(t, http.MethodGet, "/creators/"+creator.AddressString(), nil)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)

	// a second registration is rejected
	rec = s.request(t, http.MethodPost, CreatorsEndpoint,
		signedBody(t, creator, map[string]string{"action": "register"}))
	c.Assert(rec.Code, qt.Equals, http.StatusConflict)
}

func TestMalformedSignatureRejected(t *testing.T) {
	c := qt.New(t)
	s := newTestServer(t)

	body, err := json.Marshal(&SignedRequest{
		Payload:   []byte(`{}`),
		Signature: []byte{0x01, 0x02},
	})
	c.Assert(err, qt.IsNil)
	rec := s.request(t, http.MethodPost, CreatorsEndpoint, bytes.NewBuffer(body))
	c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)
}

func TestCampaignOverAPI(t *testing.T) {
	c := qt.New(t)
	s := newTestServer(t)

	creator := ethereum.NewSignKeys()
	c.Assert(creator.Generate(), qt.IsNil)
	backer := ethereum.NewSignKeys()
	c.Assert(backer.Generate(), qt.IsNil)

	// register and verify the creator so the eligibility gate opens
	rec := s.request(t, http.MethodPost, CreatorsEndpoint,
		signedBody(t, creator, map[string]string{"action": "register"}))
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	rec = s.request(t, http.MethodPost, "/creators/"+creator.AddressString()+"/verify",
		signedBody(t, s.admin, map[string]string{"action": "verify"}))
	c.Assert(rec.Code, qt.Equals, http.StatusOK)

	token := ethereum.NewSignKeys()
	c.Assert(token.Generate(), qt.IsNil)
	c.Assert(s.vault.Mint(token.Address(), creator.Address(), big.NewInt(1_000_000)), qt.IsNil)
	c.Assert(s.vault.Mint(tokens.NativeToken, backer.Address(), big.NewInt(10_000)), qt.IsNil)

	launch := &LaunchRequest{
		Token:           token.Address(),
		Supply:          (*types.BigInt)(big.NewInt(1_000_000)),
		Goal:            (*types.BigInt)(big.NewInt(1000)),
		Price:           (*types.BigInt)(big.NewInt(2)),
		DurationSeconds: 48 * 3600,
	}
	rec = s.request(t, http.MethodPost, CampaignsEndpoint, signedBody(t, creator, launch))
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("body: %s", rec.Body.String()))

	var campaign types.Campaign
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &campaign), qt.IsNil)
	c.Assert(campaign.ID, qt.Equals, uint64(1))
	c.Assert(campaign.Phase, qt.Equals, types.PhaseLive)

	// contribute with a valid opening
	pubKey, _, err := s.stg.CampaignKeys(campaign.ID)
	c.Assert(err, qt.IsNil)
	nonce, err := commitment.RandNonce()
	c.Assert(err, qt.IsNil)
	com, err := commitment.Commit(pubKey, big.NewInt(500), nonce)
	c.Assert(err, qt.IsNil)
	contrib := &ContributeRequest{
		Amount:     (*types.BigInt)(big.NewInt(500)),
		Commitment: com,
		Proof:      &commitment.Proof{Nonce: nonce, Min: big.NewInt(0), Max: big.NewInt(1 << 30)},
	}
	path := fmt.Sprintf("/campaigns/%d/contributions", campaign.ID)
	rec = s.request(t, http.MethodPost, path, signedBody(t, backer, contrib))
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("body: %s", rec.Body.String()))

	// an invalid opening is rejected
	wrongNonce, err := commitment.RandNonce()
	c.Assert(err, qt.IsNil)
	contrib.Proof = &commitment.Proof{Nonce: wrongNonce, Min: big.NewInt(0), Max: big.NewInt(1 << 30)}
	rec = s.request(t, http.MethodPost, path, signedBody(t, backer, contrib))
	c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)

	// backings are published without the cleartext amounts
	rec = s.request(t, http.MethodGet, fmt.Sprintf("/campaigns/%d/backings", campaign.ID), nil)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	var backings []*types.Backing
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &backings), qt.IsNil)
	c.Assert(backings, qt.HasLen, 1)
	c.Assert(backings[0].Amount, qt.IsNil)
	c.Assert(backings[0].Commitment, qt.IsNotNil)

	rec = s.request(t, http.MethodGet, "/campaigns/99", nil)
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)
}

func TestPoolOverAPI(t *testing.T) {
	c := qt.New(t)
	s := newTestServer(t)

	tokenA := ethereum.NewSignKeys()
	c.Assert(tokenA.Generate(), qt.IsNil)
	tokenB := ethereum.NewSignKeys()
	c.Assert(tokenB.Generate(), qt.IsNil)

	poolReq := &PoolRequest{TokenA: tokenA.Address(), TokenB: tokenB.Address(), FeeBasisPoints: 30}

	// non-admin cannot create pools
	outsider := ethereum.NewSignKeys()
	c.Assert(outsider.Generate(), qt.IsNil)
	rec := s.request(t, http.MethodPost, PoolsEndpoint, signedBody(t, outsider, poolReq))
	c.Assert(rec.Code, qt.Equals, http.StatusForbidden)

	rec = s.request(t, http.MethodPost, PoolsEndpoint, signedBody(t, s.admin, poolReq))
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	var pool types.LiquidityPool
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &pool), qt.IsNil)
	c.Assert(pool.ID, qt.Equals, uint64(1))

	rec = s.request(t, http.MethodGet, "/pools/1", nil)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	rec = s.request(t, http.MethodGet, "/pools/42", nil)
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)

	// the exchange key endpoint serves the engine public key
	rec = s.request(t, http.MethodGet, ExchangeKeyEndpoint, nil)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	var key KeyResponse
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &key), qt.IsNil)
	c.Assert(key.X, qt.IsNotNil)
	c.Assert(key.Y, qt.IsNotNil)
}
