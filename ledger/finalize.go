package ledger

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/crowdveil/crowdveil/config"
	"github.com/crowdveil/crowdveil/crypto/commitment"
	"github.com/crowdveil/crowdveil/events"
	"github.com/crowdveil/crowdveil/log"
	"github.com/crowdveil/crowdveil/tokens"
	"github.com/crowdveil/crowdveil/types"
)

// Finalize closes the funding window of a campaign. Only the owner may
// call it, and only once the window has elapsed. The raised commitment is
// decrypted here, with the campaign's own key, for the first and only
// time; the outcome depends on whether the total clears the goal. A
// successful campaign immediately derives its vesting schedules and
// enters token distribution.
func (l *Ledger) Finalize(sender common.Address, campaignID uint64) (*types.Campaign, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	campaign, err := l.stg.Campaign(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Owner != sender {
		return nil, ErrUnauthorized
	}
	if campaign.Phase != types.PhaseLive {
		return nil, ErrInvalidPhase
	}
	if l.now().UTC().Before(campaign.EndTime) {
		return nil, ErrWindowOpen
	}

	_, privKey, err := l.stg.CampaignKeys(campaignID)
	if err != nil {
		return nil, fmt.Errorf("load campaign keys: %w", err)
	}
	l.bus.Publish(events.DecryptAuthorized, map[string]any{
		"campaignId": campaignID, "actor": sender.Hex(),
	})
	total, err := commitment.Decrypt(privKey, campaign.Raised, config.MaxPlaintext)
	if err != nil {
		return nil, fmt.Errorf("decrypt raised total: %w", err)
	}

	campaign.Live = false
	if total.Cmp(campaign.Goal.MathBigInt()) >= 0 {
		campaign.Phase = types.PhaseSuccessful
		campaign.FundingSuccessful = true
		campaign.RaisedCleartext = (*types.BigInt)(total)
		if err := l.distribute(campaign); err != nil {
			return nil, err
		}
		// raised funds go to the creator
		if total.Sign() > 0 {
			if err := l.vault.Transfer(tokens.NativeToken,
				tokens.EscrowAddress(campaignID), campaign.Owner, total); err != nil {
				return nil, fmt.Errorf("release raised funds: %w", err)
			}
		}
	} else {
		campaign.Phase = types.PhaseFailed
		// reward supply returns to the creator, contributions stay in
		// escrow to back the refund claims
		if err := l.vault.Transfer(campaign.Token,
			tokens.EscrowAddress(campaignID), campaign.Owner,
			campaign.Supply.MathBigInt()); err != nil {
			return nil, fmt.Errorf("return reward supply: %w", err)
		}
	}
	if err := l.stg.UpdateCampaign(campaign); err != nil {
		return nil, fmt.Errorf("update campaign: %w", err)
	}

	log.Infow("campaign finalized", "id", campaignID,
		"successful", campaign.FundingSuccessful, "total", total.String())
	l.bus.Publish(events.FundingFinalized, campaign)
	return campaign, nil
}

// distribute creates the vesting schedules of a successful campaign, one
// per distinct backer, and moves the campaign to the token distribution
// phase. Entitlements are proportional to the cleartext contribution
// amounts at the campaign's fixed price (reward tokens per currency
// unit). Surplus reward supply returns to the creator. Caller must hold
// the ledger lock; no writes happen if the entitlement exceeds the
// escrowed supply.
func (l *Ledger) distribute(campaign *types.Campaign) error {
	campaignID := campaign.ID
	backings, err := l.stg.Backings(campaignID)
	if err != nil {
		return fmt.Errorf("load backings: %w", err)
	}
	entitlements := map[common.Address]*big.Int{}
	var order []common.Address
	totalEntitlement := new(big.Int)
	price := campaign.Price.MathBigInt()
	for _, b := range backings {
		tokensOwed := new(big.Int).Mul(b.Amount.MathBigInt(), price)
		if _, ok := entitlements[b.Backer]; !ok {
			entitlements[b.Backer] = new(big.Int)
			order = append(order, b.Backer)
		}
		entitlements[b.Backer].Add(entitlements[b.Backer], tokensOwed)
		totalEntitlement.Add(totalEntitlement, tokensOwed)
	}
	if totalEntitlement.Cmp(campaign.Supply.MathBigInt()) > 0 {
		return fmt.Errorf("%w: reward supply below total entitlement", ErrInvalidParams)
	}

	now := l.now().UTC()
	for _, backer := range order {
		vs := &types.VestingSchedule{
			CampaignID: campaignID,
			Backer:     backer,
			Total:      (*types.BigInt)(entitlements[backer]),
			Claimed:    (*types.BigInt)(big.NewInt(0)),
			Start:      now,
			Duration:   config.VestingDuration,
			Cliff:      config.VestingCliff,
			Active:     true,
		}
		if err := l.stg.SetVesting(vs); err != nil {
			return fmt.Errorf("store vesting schedule: %w", err)
		}
		l.bus.Publish(events.VestingCreated, vs)
	}

	surplus := new(big.Int).Sub(campaign.Supply.MathBigInt(), totalEntitlement)
	if surplus.Sign() > 0 {
		if err := l.vault.Transfer(campaign.Token,
			tokens.EscrowAddress(campaignID), campaign.Owner, surplus); err != nil {
			return fmt.Errorf("return surplus supply: %w", err)
		}
	}

	campaign.Phase = types.PhaseTokenDistribution
	if err := l.stg.UpdateCampaign(campaign); err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	if err := l.registry.RecordSuccess(campaign.Owner); err != nil {
		log.Warnw("could not record campaign success", "owner", campaign.Owner.Hex(), "err", err.Error())
	}
	log.Infow("token distribution started", "campaign", campaignID, "backers", len(order))
	return nil
}

// vestedAmount computes the released portion of a schedule at time now.
// Zero before the cliff, linear between cliff and full duration, the full
// total afterwards.
func vestedAmount(vs *types.VestingSchedule, now int64) *big.Int {
	start := vs.Start.Unix()
	cliffEnd := start + int64(vs.Cliff.Seconds())
	end := start + int64(vs.Duration.Seconds())
	total := vs.Total.MathBigInt()
	switch {
	case now < cliffEnd:
		return big.NewInt(0)
	case now >= end:
		return new(big.Int).Set(total)
	default:
		elapsed := big.NewInt(now - cliffEnd)
		window := big.NewInt(end - cliffEnd)
		vested := new(big.Int).Mul(total, elapsed)
		return vested.Div(vested, window)
	}
}

// ClaimVested transfers the currently claimable reward tokens of sender's
// vesting schedule. When every schedule of the campaign is exhausted the
// campaign completes.
func (l *Ledger) ClaimVested(sender common.Address, campaignID uint64) (*big.Int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	campaign, err := l.stg.Campaign(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Phase != types.PhaseTokenDistribution {
		return nil, ErrInvalidPhase
	}
	vs, err := l.stg.Vesting(campaignID, sender)
	if err != nil {
		return nil, err
	}
	if !vs.Active {
		return nil, ErrNothingVested
	}

	vested := vestedAmount(vs, l.now().UTC().Unix())
	claimable := new(big.Int).Sub(vested, vs.Claimed.MathBigInt())
	if claimable.Sign() <= 0 {
		return nil, ErrNothingVested
	}

	if err := l.vault.Transfer(campaign.Token,
		tokens.EscrowAddress(campaignID), sender, claimable); err != nil {
		return nil, fmt.Errorf("release vested tokens: %w", err)
	}
	vs.Claimed = (*types.BigInt)(vested)
	if vested.Cmp(vs.Total.MathBigInt()) >= 0 {
		vs.Active = false
	}
	if err := l.stg.SetVesting(vs); err != nil {
		return nil, fmt.Errorf("update vesting schedule: %w", err)
	}
	l.bus.Publish(events.RewardClaimed, map[string]any{
		"campaignId": campaignID, "backer": sender.Hex(), "amount": claimable.String(),
	})

	if err := l.maybeComplete(campaign); err != nil {
		return nil, err
	}
	return claimable, nil
}

// maybeComplete moves a campaign in token distribution to the completed
// phase once no active vesting schedule remains. Caller must hold the
// ledger lock.
func (l *Ledger) maybeComplete(campaign *types.Campaign) error {
	backings, err := l.stg.Backings(campaign.ID)
	if err != nil {
		return err
	}
	seen := map[common.Address]bool{}
	for _, b := range backings {
		if seen[b.Backer] {
			continue
		}
		seen[b.Backer] = true
		vs, err := l.stg.Vesting(campaign.ID, b.Backer)
		if err != nil {
			return err
		}
		if vs.Active {
			return nil
		}
	}
	campaign.Phase = types.PhaseCompleted
	if err := l.stg.UpdateCampaign(campaign); err != nil {
		return err
	}
	log.Infow("campaign completed", "id", campaign.ID)
	return nil
}

// ClaimRefund returns the escrowed contributions of sender on a failed
// campaign. Each backing can be refunded once.
func (l *Ledger) ClaimRefund(sender common.Address, campaignID uint64) (*big.Int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	campaign, err := l.stg.Campaign(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Phase != types.PhaseFailed {
		return nil, ErrInvalidPhase
	}

	backings, err := l.stg.Backings(campaignID)
	if err != nil {
		return nil, fmt.Errorf("load backings: %w", err)
	}
	refund := new(big.Int)
	var claimed []*types.Backing
	for _, b := range backings {
		if b.Backer != sender || b.Claimed {
			continue
		}
		refund.Add(refund, b.Amount.MathBigInt())
		claimed = append(claimed, b)
	}
	if refund.Sign() == 0 {
		return nil, ErrNoRefund
	}

	if err := l.vault.Transfer(tokens.NativeToken,
		tokens.EscrowAddress(campaignID), sender, refund); err != nil {
		return nil, fmt.Errorf("release refund: %w", err)
	}
	for _, b := range claimed {
		b.Claimed = true
		if err := l.stg.UpdateBacking(b); err != nil {
			return nil, fmt.Errorf("mark backing claimed: %w", err)
		}
	}
	l.bus.Publish(events.RefundClaimed, map[string]any{
		"campaignId": campaignID, "backer": sender.Hex(), "amount": refund.String(),
	})
	return refund, nil
}

// Cancel aborts a live campaign. Only the owner may cancel; the campaign
// fails immediately, the reward supply returns to the owner and backers
// become refundable.
func (l *Ledger) Cancel(sender common.Address, campaignID uint64) error {
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

	campaign.Phase = types.PhaseFailed
	campaign.Live = false
	if err := l.vault.Transfer(campaign.Token,
		tokens.EscrowAddress(campaignID), campaign.Owner,
		campaign.Supply.MathBigInt()); err != nil {
		return fmt.Errorf("return reward supply: %w", err)
	}
	if err := l.stg.UpdateCampaign(campaign); err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	log.Infow("campaign cancelled", "id", campaignID)
	l.bus.Publish(events.CampaignCancelled, campaign)
	return nil
}
