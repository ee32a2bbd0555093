package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/crowdveil/crowdveil/ledger"
	"github.com/crowdveil/crowdveil/storage"
	"github.com/crowdveil/crowdveil/tokens"
	"github.com/crowdveil/crowdveil/types"
)

// campaignError maps ledger errors to API errors.
func campaignError(err error) Error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrCampaignNotFound
	case errors.Is(err, ledger.ErrUnauthorized):
		return ErrUnauthorized
	case errors.Is(err, ledger.ErrNotEligible):
		return ErrNotEligible
	case errors.Is(err, ledger.ErrInvalidParams):
		return ErrInvalidParams.WithErr(err)
	case errors.Is(err, ledger.ErrInvalidPhase),
		errors.Is(err, ledger.ErrCampaignPaused),
		errors.Is(err, ledger.ErrWindowClosed),
		errors.Is(err, ledger.ErrWindowOpen):
		return ErrInvalidPhase.WithErr(err)
	case errors.Is(err, ledger.ErrContributionBounds):
		return ErrInvalidParams.WithErr(err)
	case errors.Is(err, ledger.ErrProofInvalid):
		return ErrInvalidProof
	case errors.Is(err, ledger.ErrNoRefund), errors.Is(err, ledger.ErrNothingVested):
		return ErrNothingClaimable.WithErr(err)
	case errors.Is(err, tokens.ErrInsufficientBalance):
		return ErrInsufficientFunds
	default:
		return ErrGenericInternalServerError.WithErr(err)
	}
}

// launchCampaign creates a new campaign for the signer.
// POST /campaigns
func (a *API) launchCampaign(w http.ResponseWriter, r *http.Request) {
	var req LaunchRequest
	sender, apiErr := decodeSigned(r, &req)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	if req.Supply == nil || req.Goal == nil || req.Price == nil {
		ErrMalformedBody.With("missing supply, goal or price").Write(w)
		return
	}
	params := &ledger.LaunchParams{
		Token:       req.Token,
		Supply:      req.Supply.MathBigInt(),
		Goal:        req.Goal.MathBigInt(),
		Price:       req.Price.MathBigInt(),
		Duration:    time.Duration(req.DurationSeconds) * time.Second,
		MetadataURI: req.MetadataURI,
	}
	if req.MinContribution != nil {
		params.MinContribution = req.MinContribution.MathBigInt()
	}
	if req.MaxContribution != nil {
		params.MaxContribution = req.MaxContribution.MathBigInt()
	}
	campaign, err := a.ledger.Launch(sender, params)
	if err != nil {
		campaignError(err).Write(w)
		return
	}
	httpWriteJSON(w, campaign)
}

// listCampaigns returns all campaign ids.
// GET /campaigns
func (a *API) listCampaigns(w http.ResponseWriter, _ *http.Request) {
	ids, err := a.ledger.ListCampaigns()
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, &CampaignListResponse{Campaigns: ids})
}

// campaign returns one campaign.
// GET /campaigns/{campaignId}
func (a *API) campaign(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUint64(r, CampaignURLParam)
	if err != nil {
		ErrMalformedID.WithErr(err).Write(w)
		return
	}
	campaign, err := a.ledger.Campaign(id)
	if err != nil {
		campaignError(err).Write(w)
		return
	}
	httpWriteJSON(w, campaign)
}

// campaignBackings returns the backing list of a campaign. Amounts are
// omitted; only the commitments and metadata are public.
// GET /campaigns/{campaignId}/backings
func (a *API) campaignBackings(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUint64(r, CampaignURLParam)
	if err != nil {
		ErrMalformedID.WithErr(err).Write(w)
		return
	}
	if _, err := a.ledger.Campaign(id); err != nil {
		campaignError(err).Write(w)
		return
	}
	backings, err := a.ledger.Backings(id)
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	// strip the cleartext amounts before publishing
	public := make([]*types.Backing, len(backings))
	for i, b := range backings {
		redacted := *b
		redacted.Amount = nil
		public[i] = &redacted
	}
	httpWriteJSON(w, public)
}

// contribute submits a backing to a live campaign.
// POST /campaigns/{campaignId}/contributions
func (a *API) contribute(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUint64(r, CampaignURLParam)
	if err != nil {
		ErrMalformedID.WithErr(err).Write(w)
		return
	}
	var req ContributeRequest
	sender, apiErr := decodeSigned(r, &req)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	if req.Amount == nil {
		ErrMalformedBody.With("missing amount").Write(w)
		return
	}
	backing, err := a.ledger.Contribute(sender, id, req.Amount.MathBigInt(), req.Commitment, req.Proof)
	if err != nil {
		campaignError(err).Write(w)
		return
	}
	httpWriteJSON(w, backing)
}

// finalizeCampaign closes the funding window.
// POST /campaigns/{campaignId}/finalize
func (a *API) finalizeCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUint64(r, CampaignURLParam)
	if err != nil {
		ErrMalformedID.WithErr(err).Write(w)
		return
	}
	sender, apiErr := decodeSigned(r, nil)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	campaign, err := a.ledger.Finalize(sender, id)
	if err != nil {
		campaignError(err).Write(w)
		return
	}
	httpWriteJSON(w, campaign)
}

// claimVested releases the signer's vested reward tokens.
// POST /campaigns/{campaignId}/claims/vested
func (a *API) claimVested(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUint64(r, CampaignURLParam)
	if err != nil {
		ErrMalformedID.WithErr(err).Write(w)
		return
	}
	sender, apiErr := decodeSigned(r, nil)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	amount, err := a.ledger.ClaimVested(sender, id)
	if err != nil {
		campaignError(err).Write(w)
		return
	}
	httpWriteJSON(w, &ClaimResponse{Amount: (*types.BigInt)(amount)})
}

// claimRefund refunds the signer's backings on a failed campaign.
// POST /campaigns/{campaignId}/claims/refund
func (a *API) claimRefund(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUint64(r, CampaignURLParam)
	if err != nil {
		ErrMalformedID.WithErr(err).Write(w)
		return
	}
	sender, apiErr := decodeSigned(r, nil)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	amount, err := a.ledger.ClaimRefund(sender, id)
	if err != nil {
		campaignError(err).Write(w)
		return
	}
	httpWriteJSON(w, &ClaimResponse{Amount: (*types.BigInt)(amount)})
}

// cancelCampaign aborts a live campaign.
// POST /campaigns/{campaignId}/cancel
func (a *API) cancelCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUint64(r, CampaignURLParam)
	if err != nil {
		ErrMalformedID.WithErr(err).Write(w)
		return
	}
	sender, apiErr := decodeSigned(r, nil)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	if err := a.ledger.Cancel(sender, id); err != nil {
		campaignError(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// verifyCampaign marks a campaign as vetted.
// POST /campaigns/{campaignId}/verify
func (a *API) verifyCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUint64(r, CampaignURLParam)
	if err != nil {
		ErrMalformedID.WithErr(err).Write(w)
		return
	}
	sender, apiErr := decodeSigned(r, nil)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	if err := a.ledger.VerifyCampaign(sender, id); err != nil {
		campaignError(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// updateCampaignMetadata replaces the metadata URI of a campaign.
// PUT /campaigns/{campaignId}/metadata
func (a *API) updateCampaignMetadata(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUint64(r, CampaignURLParam)
	if err != nil {
		ErrMalformedID.WithErr(err).Write(w)
		return
	}
	var req MetadataRequest
	sender, apiErr := decodeSigned(r, &req)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	if err := a.ledger.UpdateMetadata(sender, id, req.MetadataURI); err != nil {
		campaignError(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// pauseCampaign suspends contributions to a live campaign.
// POST /campaigns/{campaignId}/pause
func (a *API) pauseCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUint64(r, CampaignURLParam)
	if err != nil {
		ErrMalformedID.WithErr(err).Write(w)
		return
	}
	sender, apiErr := decodeSigned(r, nil)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	if err := a.ledger.Pause(sender, id); err != nil {
		campaignError(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// resumeCampaign lifts a campaign suspension.
// POST /campaigns/{campaignId}/resume
func (a *API) resumeCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUint64(r, CampaignURLParam)
	if err != nil {
		ErrMalformedID.WithErr(err).Write(w)
		return
	}
	sender, apiErr := decodeSigned(r, nil)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	if err := a.ledger.Resume(sender, id); err != nil {
		campaignError(err).Write(w)
		return
	}
	httpWriteOK(w)
}
