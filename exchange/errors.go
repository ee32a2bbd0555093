package exchange

import "errors"

var (
	// ErrUnauthorized is returned when the caller may not perform the
	// operation.
	ErrUnauthorized = errors.New("caller not authorized")
	// ErrInvalidFee is returned when the pool fee exceeds the ceiling.
	ErrInvalidFee = errors.New("fee above maximum")
	// ErrSamePair is returned when a pool is created over a single token.
	ErrSamePair = errors.New("pool tokens must differ")
	// ErrZeroAddress is returned when a token address is the zero address,
	// which is reserved for the native currency.
	ErrZeroAddress = errors.New("zero token address")
	// ErrPoolInactive is returned when the pool is paused.
	ErrPoolInactive = errors.New("pool is not active")
	// ErrProofInvalid is returned when a commitment opening does not
	// verify.
	ErrProofInvalid = errors.New("commitment opening proof invalid")
	// ErrInsufficientLiquidity is returned when a swap would drain a
	// reserve.
	ErrInsufficientLiquidity = errors.New("insufficient pool liquidity")
	// ErrNotPositionOwner is returned when the caller does not own the
	// liquidity position.
	ErrNotPositionOwner = errors.New("caller does not own position")
	// ErrPositionInactive is returned when the position was already
	// withdrawn.
	ErrPositionInactive = errors.New("position already withdrawn")
	// ErrOrderNotFillable is returned when the order is not pending or
	// has expired.
	ErrOrderNotFillable = errors.New("order not fillable")
	// ErrSelfTrade is returned when a trader attempts to fill their own
	// order.
	ErrSelfTrade = errors.New("cannot fill own order")
	// ErrOrderNotExpired is returned when expiry is requested before the
	// order's deadline.
	ErrOrderNotExpired = errors.New("order not expired yet")
	// ErrUnknownToken is returned when the token is not part of the pool.
	ErrUnknownToken = errors.New("token not in pool")
)
