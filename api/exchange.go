package api

import (
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/crowdveil/crowdveil/exchange"
	"github.com/crowdveil/crowdveil/storage"
	"github.com/crowdveil/crowdveil/tokens"
	"github.com/crowdveil/crowdveil/types"
)

// exchangeError maps exchange errors to API errors.
func exchangeError(err error) Error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrResourceNotFound
	case errors.Is(err, exchange.ErrUnauthorized):
		return ErrUnauthorized
	case errors.Is(err, exchange.ErrInvalidFee), errors.Is(err, exchange.ErrSamePair),
		errors.Is(err, exchange.ErrZeroAddress), errors.Is(err, exchange.ErrUnknownToken):
		return ErrInvalidParams.WithErr(err)
	case errors.Is(err, exchange.ErrProofInvalid):
		return ErrInvalidProof
	case errors.Is(err, exchange.ErrPoolInactive),
		errors.Is(err, exchange.ErrInsufficientLiquidity),
		errors.Is(err, exchange.ErrPositionInactive),
		errors.Is(err, exchange.ErrOrderNotFillable),
		errors.Is(err, exchange.ErrSelfTrade),
		errors.Is(err, exchange.ErrOrderNotExpired):
		return ErrOperationRejected.WithErr(err)
	case errors.Is(err, exchange.ErrNotPositionOwner):
		return ErrUnauthorized.WithErr(err)
	case errors.Is(err, tokens.ErrInsufficientBalance):
		return ErrInsufficientFunds
	default:
		return ErrGenericInternalServerError.WithErr(err)
	}
}

// createPool registers a new liquidity pool.
// POST /pools
func (a *API) createPool(w http.ResponseWriter, r *http.Request) {
	var req PoolRequest
	sender, apiErr := decodeSigned(r, &req)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	pool, err := a.exchange.CreatePool(sender, req.TokenA, req.TokenB, req.FeeBasisPoints)
	if err != nil {
		exchangeError(err).Write(w)
		return
	}
	httpWriteJSON(w, pool)
}

// pool returns one pool.
// GET /pools/{poolId}
func (a *API) pool(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUint64(r, PoolURLParam)
	if err != nil {
		ErrMalformedID.WithErr(err).Write(w)
		return
	}
	pool, err := a.exchange.Pool(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			ErrPoolNotFound.Write(w)
			return
		}
		exchangeError(err).Write(w)
		return
	}
	httpWriteJSON(w, pool)
}

// listPools returns all pool ids.
// GET /pools
func (a *API) listPools(w http.ResponseWriter, _ *http.Request) {
	ids, err := a.exchange.ListPools()
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, &PoolListResponse{Pools: ids})
}

// pausePool suspends trading on a pool.
// POST /pools/{poolId}/pause
func (a *API) pausePool(w http.ResponseWriter, r *http.Request) {
	a.setPoolActive(w, r, false)
}

// resumePool lifts a pool suspension.
// POST /pools/{poolId}/resume
func (a *API) resumePool(w http.ResponseWriter, r *http.Request) {
	a.setPoolActive(w, r, true)
}

func (a *API) setPoolActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := urlParamUint64(r, PoolURLParam)
	if err != nil {
		ErrMalformedID.WithErr(err).Write(w)
		return
	}
	sender, apiErr := decodeSigned(r, nil)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	if err := a.exchange.SetPoolActive(sender, id, active); err != nil {
		exchangeError(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// addLiquidity deposits liquidity into a pool.
// POST /pools/{poolId}/liquidity
func (a *API) addLiquidity(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUint64(r, PoolURLParam)
	if err != nil {
		ErrMalformedID.WithErr(err).Write(w)
		return
	}
	var req LiquidityRequest
	sender, apiErr := decodeSigned(r, &req)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	if req.AmountA == nil || req.AmountB == nil {
		ErrMalformedBody.With("missing amounts").Write(w)
		return
	}
	position, err := a.exchange.AddLiquidity(sender, id,
		req.AmountA.MathBigInt(), req.AmountB.MathBigInt(),
		req.ComA, req.ComB, req.ProofA, req.ProofB)
	if err != nil {
		exchangeError(err).Write(w)
		return
	}
	httpWriteJSON(w, position)
}

// removeLiquidity withdraws a liquidity position.
// DELETE /pools/{poolId}/liquidity
func (a *API) removeLiquidity(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUint64(r, PoolURLParam)
	if err != nil {
		ErrMalformedID.WithErr(err).Write(w)
		return
	}
	var req WithdrawRequest
	sender, apiErr := decodeSigned(r, &req)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	if err := a.exchange.RemoveLiquidity(sender, id, req.Position); err != nil {
		exchangeError(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// swap executes a swap against a pool.
// POST /pools/{poolId}/swaps
func (a *API) swap(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUint64(r, PoolURLParam)
	if err != nil {
		ErrMalformedID.WithErr(err).Write(w)
		return
	}
	var req SwapRequest
	sender, apiErr := decodeSigned(r, &req)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	if req.AmountIn == nil {
		ErrMalformedBody.With("missing amount").Write(w)
		return
	}
	out, err := a.exchange.Swap(sender, id, req.TokenIn, req.AmountIn.MathBigInt(), req.Commitment, req.Proof)
	if err != nil {
		exchangeError(err).Write(w)
		return
	}
	httpWriteJSON(w, &SwapResponse{AmountOut: (*types.BigInt)(out)})
}

// createOrder places a confidential limit order.
// POST /orders
func (a *API) createOrder(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	sender, apiErr := decodeSigned(r, &req)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	if req.AmountA == nil || req.AmountB == nil {
		ErrMalformedBody.With("missing amounts").Write(w)
		return
	}
	order, err := a.exchange.CreateOrder(sender, &exchange.OrderParams{
		TokenA:  req.TokenA,
		TokenB:  req.TokenB,
		AmountA: req.AmountA.MathBigInt(),
		AmountB: req.AmountB.MathBigInt(),
		ComA:    req.ComA,
		ComB:    req.ComB,
		ProofA:  req.ProofA,
		ProofB:  req.ProofB,
		Type:    req.Type,
	})
	if err != nil {
		exchangeError(err).Write(w)
		return
	}
	httpWriteJSON(w, order)
}

// listOrders returns the order ids of a trader.
// GET /orders?trader=0x...
func (a *API) listOrders(w http.ResponseWriter, r *http.Request) {
	trader := r.URL.Query().Get("trader")
	if !common.IsHexAddress(trader) {
		ErrMalformedBody.With("missing or malformed trader address").Write(w)
		return
	}
	ids, err := a.exchange.OrdersByTrader(common.HexToAddress(trader))
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, &OrderListResponse{Orders: ids})
}

// order returns one order.
// GET /orders/{orderId}
func (a *API) order(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUint64(r, OrderURLParam)
	if err != nil {
		ErrMalformedID.WithErr(err).Write(w)
		return
	}
	order, err := a.exchange.Order(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			ErrOrderNotFound.Write(w)
			return
		}
		exchangeError(err).Write(w)
		return
	}
	httpWriteJSON(w, order)
}

// fillOrder fills a pending order in full.
// POST /orders/{orderId}/fill
func (a *API) fillOrder(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUint64(r, OrderURLParam)
	if err != nil {
		ErrMalformedID.WithErr(err).Write(w)
		return
	}
	sender, apiErr := decodeSigned(r, nil)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	if err := a.exchange.FillOrder(sender, id); err != nil {
		exchangeError(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// cancelOrder cancels a pending order.
// POST /orders/{orderId}/cancel
func (a *API) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUint64(r, OrderURLParam)
	if err != nil {
		ErrMalformedID.WithErr(err).Write(w)
		return
	}
	sender, apiErr := decodeSigned(r, nil)
	if apiErr != nil {
		apiErr.Write(w)
		return
	}
	if err := a.exchange.CancelOrder(sender, id); err != nil {
		exchangeError(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// expireOrder reaps an order past its deadline.
// POST /orders/{orderId}/expire
func (a *API) expireOrder(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUint64(r, OrderURLParam)
	if err != nil {
		ErrMalformedID.WithErr(err).Write(w)
		return
	}
	if err := a.exchange.ExpireOrder(id); err != nil {
		exchangeError(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// exchangeKey returns the exchange commitment public key.
// GET /exchange/key
func (a *API) exchangeKey(w http.ResponseWriter, _ *http.Request) {
	x, y := a.exchange.PublicKey().Point()
	httpWriteJSON(w, &KeyResponse{X: (*types.BigInt)(x), Y: (*types.BigInt)(y)})
}
