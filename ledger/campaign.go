package ledger

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/crowdveil/crowdveil/config"
	"github.com/crowdveil/crowdveil/crypto/commitment"
	"github.com/crowdveil/crowdveil/crypto/ecc/curves"
	"github.com/crowdveil/crowdveil/events"
	"github.com/crowdveil/crowdveil/log"
	"github.com/crowdveil/crowdveil/tokens"
	"github.com/crowdveil/crowdveil/types"
)

// LaunchParams are the creator-supplied parameters of a new campaign.
type LaunchParams struct {
	Token           common.Address `json:"token"`
	Supply          *big.Int       `json:"supply"`
	Goal            *big.Int       `json:"goal"`
	Price           *big.Int       `json:"price"`
	Duration        time.Duration  `json:"duration"`
	MinContribution *big.Int       `json:"minContribution"`
	MaxContribution *big.Int       `json:"maxContribution"`
	MetadataURI     string         `json:"metadataURI"`
}

func (p *LaunchParams) validate() error {
	if p.Supply == nil || p.Supply.Sign() <= 0 {
		return fmt.Errorf("%w: supply must be positive", ErrInvalidParams)
	}
	if p.Goal == nil || p.Goal.Sign() <= 0 {
		return fmt.Errorf("%w: goal must be positive", ErrInvalidParams)
	}
	if p.Price == nil || p.Price.Sign() <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalidParams)
	}
	if p.Duration < config.MinCampaignDuration || p.Duration > config.MaxCampaignDuration {
		return fmt.Errorf("%w: duration out of bounds", ErrInvalidParams)
	}
	if p.MinContribution != nil && p.MinContribution.Sign() < 0 {
		return fmt.Errorf("%w: negative minimum contribution", ErrInvalidParams)
	}
	if p.MinContribution != nil && p.MaxContribution != nil &&
		p.MinContribution.Cmp(p.MaxContribution) > 0 {
		return fmt.Errorf("%w: minimum above maximum contribution", ErrInvalidParams)
	}
	return nil
}

// Launch creates a new campaign for owner and opens it for contributions.
// The reward token supply is escrowed up front, a fresh encryption keypair
// is generated for the campaign and the raised commitment starts as an
// encryption of zero.
func (l *Ledger) Launch(owner common.Address, params *LaunchParams) (*types.Campaign, error) {
	if !l.registry.IsEligible(owner) {
		return nil, ErrNotEligible
	}
	if err := params.validate(); err != nil {
		return nil, err
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	if l.vault.BalanceOf(params.Token, owner).Cmp(params.Supply) < 0 {
		return nil, tokens.ErrInsufficientBalance
	}

	curve := curves.New(curves.CurveTypeBN254)
	pubKey, privKey, err := commitment.GenerateKey(curve)
	if err != nil {
		return nil, fmt.Errorf("generate campaign keys: %w", err)
	}
	nonce, err := commitment.RandNonce()
	if err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	raised, err := commitment.Commit(pubKey, big.NewInt(0), nonce)
	if err != nil {
		return nil, fmt.Errorf("initial commitment: %w", err)
	}

	now := l.now().UTC()
	campaign := &types.Campaign{
		Owner:           owner,
		Token:           params.Token,
		Supply:          (*types.BigInt)(params.Supply),
		Goal:            (*types.BigInt)(params.Goal),
		Price:           (*types.BigInt)(params.Price),
		Raised:          raised,
		StartTime:       now,
		EndTime:         now.Add(params.Duration),
		MinContribution: (*types.BigInt)(params.MinContribution),
		MaxContribution: (*types.BigInt)(params.MaxContribution),
		Phase:           types.PhaseLive,
		Live:            true,
		MetadataURI:     params.MetadataURI,
	}
	id, err := l.stg.CreateCampaign(campaign)
	if err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	if err := l.stg.SetCampaignKeys(id, pubKey, privKey); err != nil {
		return nil, fmt.Errorf("store campaign keys: %w", err)
	}
	if err := l.vault.Transfer(params.Token, owner, tokens.EscrowAddress(id), params.Supply); err != nil {
		return nil, fmt.Errorf("escrow reward supply: %w", err)
	}

	log.Infow("campaign launched", "id", id, "owner", owner.Hex(),
		"goal", params.Goal.String(), "end", campaign.EndTime.String())
	l.bus.Publish(events.CampaignLaunched, campaign)
	return campaign, nil
}

// Contribute records a backing of amount native currency from backer. The
// attached commitment must open to amount under the campaign's public key;
// an invalid opening rejects the contribution with no state change. On
// acceptance the payment is escrowed, the raised commitment is updated
// homomorphically and the backing is appended to the campaign's audit
// tree.
func (l *Ledger) Contribute(backer common.Address, campaignID uint64, amount *big.Int,
	com *commitment.Commitment, proof *commitment.Proof,
) (*types.Backing, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrContributionBounds)
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	campaign, err := l.stg.Campaign(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Phase != types.PhaseLive {
		return nil, ErrInvalidPhase
	}
	if campaign.Paused {
		return nil, ErrCampaignPaused
	}
	now := l.now().UTC()
	if now.Before(campaign.StartTime) || !now.Before(campaign.EndTime) {
		return nil, ErrWindowClosed
	}
	if campaign.MinContribution != nil && amount.Cmp(campaign.MinContribution.MathBigInt()) < 0 {
		return nil, ErrContributionBounds
	}
	if campaign.MaxContribution != nil && campaign.MaxContribution.MathBigInt().Sign() > 0 &&
		amount.Cmp(campaign.MaxContribution.MathBigInt()) > 0 {
		return nil, ErrContributionBounds
	}

	pubKey, _, err := l.stg.CampaignKeys(campaignID)
	if err != nil {
		return nil, fmt.Errorf("load campaign keys: %w", err)
	}
	if com == nil || proof == nil || !commitment.VerifyOpening(pubKey, com, proof, amount) {
		return nil, ErrProofInvalid
	}

	// all checks passed, move the payment before touching state
	if err := l.vault.Transfer(tokens.NativeToken, backer, tokens.EscrowAddress(campaignID), amount); err != nil {
		return nil, err
	}

	firstBacking := !l.stg.HasBacked(campaignID, backer)
	backing := &types.Backing{
		CampaignID: campaignID,
		Backer:     backer,
		Amount:     (*types.BigInt)(amount),
		Commitment: com,
		Timestamp:  now,
	}
	index, err := l.stg.AppendBacking(backing)
	if err != nil {
		return nil, fmt.Errorf("append backing: %w", err)
	}

	tree, err := l.backingTree(campaignID)
	if err != nil {
		return nil, err
	}
	if err := tree.Add(uint64ToBytes(index), com.Serialize()); err != nil {
		return nil, fmt.Errorf("update backing tree: %w", err)
	}
	root, err := tree.Root()
	if err != nil {
		return nil, fmt.Errorf("backing tree root: %w", err)
	}

	campaign.Raised = campaign.Raised.Add(com)
	if firstBacking {
		campaign.TotalBackers++
	}
	campaign.BackingRoot = root
	if err := l.stg.UpdateCampaign(campaign); err != nil {
		return nil, fmt.Errorf("update campaign: %w", err)
	}

	log.Debugw("backing accepted", "campaign", campaignID, "backer", backer.Hex(), "index", index)
	l.bus.Publish(events.BackingReceived, backing)
	return backing, nil
}

// Pause suspends contributions on a live campaign. Only the campaign's
// own creator may pause it.
func (l *Ledger) Pause(sender common.Address, campaignID uint64) error {
	return l.setPaused(sender, campaignID, true)
}

// Resume lifts a pause. Creator only, like Pause.
func (l *Ledger) Resume(sender common.Address, campaignID uint64) error {
	return l.setPaused(sender, campaignID, false)
}

func (l *Ledger) setPaused(sender common.Address, campaignID uint64, paused bool) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	campaign, err := l.stg.Campaign(campaignID)
	if err != nil {
		return err
	}
	if campaign.Owner != sender {
		return ErrUnauthorized
	}
	if campaign.Phase != types.PhaseLive {
		return ErrInvalidPhase
	}
	if campaign.Paused == paused {
		return nil
	}
	campaign.Paused = paused
	return l.stg.UpdateCampaign(campaign)
}

// VerifyCampaign marks a campaign as vetted by a verifier. Verifiers and
// admins only; verification is idempotent and sticks for the rest of the
// campaign's life.
func (l *Ledger) VerifyCampaign(sender common.Address, campaignID uint64) error {
	if !l.registry.HasRole(types.RoleVerifier, sender) && !l.registry.HasRole(types.RoleAdmin, sender) {
		return ErrUnauthorized
	}
	l.lock.Lock()
	defer l.lock.Unlock()

	campaign, err := l.stg.Campaign(campaignID)
	if err != nil {
		return err
	}
	if campaign.Verified {
		return nil
	}
	campaign.Verified = true
	if err := l.stg.UpdateCampaign(campaign); err != nil {
		return err
	}
	log.Infow("campaign verified", "id", campaignID, "verifier", sender.Hex())
	l.bus.Publish(events.CampaignVerified, campaign)
	return nil
}

// UpdateMetadata replaces the metadata URI of a live campaign. Only the
// campaign's own creator may update it.
func (l *Ledger) UpdateMetadata(sender common.Address, campaignID uint64, uri string) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	campaign, err := l.stg.Campaign(campaignID)
	if err != nil {
		return err
	}
	if campaign.Owner != sender {
		return ErrUnauthorized
	}
	if campaign.Phase != types.PhaseLive {
		return ErrInvalidPhase
	}
	campaign.MetadataURI = uri
	return l.stg.UpdateCampaign(campaign)
}
