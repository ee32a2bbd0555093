package api

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"

	// CampaignsEndpoint is the endpoint for launching and listing campaigns
	CampaignsEndpoint = "/campaigns"
	// CampaignEndpoint is the endpoint to get one campaign
	CampaignURLParam = "campaignId"
	CampaignEndpoint = "/campaigns/{" + CampaignURLParam + "}"
	// CampaignBackingsEndpoint lists the backings of a campaign
	CampaignBackingsEndpoint = "/campaigns/{" + CampaignURLParam + "}/backings"
	// ContributeEndpoint is the endpoint for submitting a backing
	ContributeEndpoint = "/campaigns/{" + CampaignURLParam + "}/contributions"
	// FinalizeEndpoint closes the funding window of a campaign
	FinalizeEndpoint = "/campaigns/{" + CampaignURLParam + "}/finalize"
	// ClaimVestedEndpoint claims vested reward tokens
	ClaimVestedEndpoint = "/campaigns/{" + CampaignURLParam + "}/claims/vested"
	// ClaimRefundEndpoint claims a refund on a failed campaign
	ClaimRefundEndpoint = "/campaigns/{" + CampaignURLParam + "}/claims/refund"
	// CancelCampaignEndpoint aborts a live campaign
	CancelCampaignEndpoint = "/campaigns/{" + CampaignURLParam + "}/cancel"
	// VerifyCampaignEndpoint marks a campaign as vetted by a verifier
	VerifyCampaignEndpoint = "/campaigns/{" + CampaignURLParam + "}/verify"
	// CampaignMetadataEndpoint replaces a campaign's metadata URI
	CampaignMetadataEndpoint = "/campaigns/{" + CampaignURLParam + "}/metadata"
	// PauseCampaignEndpoint suspends contributions to a live campaign
	PauseCampaignEndpoint = "/campaigns/{" + CampaignURLParam + "}/pause"
	// ResumeCampaignEndpoint lifts a campaign suspension
	ResumeCampaignEndpoint = "/campaigns/{" + CampaignURLParam + "}/resume"

	// PoolsEndpoint is the endpoint for creating and listing pools
	PoolsEndpoint = "/pools"
	// PoolEndpoint is the endpoint to get one pool
	PoolURLParam = "poolId"
	PoolEndpoint = "/pools/{" + PoolURLParam + "}"
	// LiquidityEndpoint deposits or withdraws pool liquidity
	LiquidityEndpoint = "/pools/{" + PoolURLParam + "}/liquidity"
	// SwapEndpoint executes a swap against a pool
	SwapEndpoint = "/pools/{" + PoolURLParam + "}/swaps"
	// PausePoolEndpoint suspends trading on a pool
	PausePoolEndpoint = "/pools/{" + PoolURLParam + "}/pause"
	// ResumePoolEndpoint lifts a pool suspension
	ResumePoolEndpoint = "/pools/{" + PoolURLParam + "}/resume"

	// OrdersEndpoint is the endpoint for placing orders
	OrdersEndpoint = "/orders"
	// OrderEndpoint is the endpoint to get one order
	OrderURLParam = "orderId"
	OrderEndpoint = "/orders/{" + OrderURLParam + "}"
	// FillOrderEndpoint fills a pending order
	FillOrderEndpoint = "/orders/{" + OrderURLParam + "}/fill"
	// CancelOrderEndpoint cancels a pending order
	CancelOrderEndpoint = "/orders/{" + OrderURLParam + "}/cancel"
	// ExpireOrderEndpoint reaps an order past its deadline
	ExpireOrderEndpoint = "/orders/{" + OrderURLParam + "}/expire"

	// CreatorsEndpoint registers a creator
	CreatorsEndpoint = "/creators"
	// CreatorEndpoint returns a creator profile
	CreatorURLParam = "address"
	CreatorEndpoint = "/creators/{" + CreatorURLParam + "}"
	// VerifyCreatorEndpoint marks a creator as verified
	VerifyCreatorEndpoint = "/creators/{" + CreatorURLParam + "}/verify"
	// RolesEndpoint grants or revokes roles
	RolesEndpoint = "/roles"

	// ExchangeKeyEndpoint returns the exchange commitment public key
	ExchangeKeyEndpoint = "/exchange/key"
)
