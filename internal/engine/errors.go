package engine

import "errors"

var (
	// ErrAlreadyInitialized is returned when assets are bound a second time.
	ErrAlreadyInitialized = errors.New("pool already initialized")

	// ErrInsufficientOutputAmount is returned by swap when both requested
	// outputs are zero.
	ErrInsufficientOutputAmount = errors.New("insufficient output amount")

	// ErrInsufficientLiquidity is returned by swap when a requested output
	// exceeds the corresponding reserve.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")

	// ErrInvalidK is returned by swap when the constant product of the
	// post-swap balances would fall below the pre-swap product.
	ErrInvalidK = errors.New("constant product invariant violated")

	// ErrInsufficientLiquidityMinted is returned by deposit when the
	// contributed amounts yield zero shares.
	ErrInsufficientLiquidityMinted = errors.New("insufficient liquidity minted")

	// ErrInsufficientLiquidityBurned is returned by withdraw when the
	// caller's pro-rata cut rounds to zero on either side.
	ErrInsufficientLiquidityBurned = errors.New("insufficient liquidity burned")

	// ErrBalanceOverflow is returned when a custody balance no longer fits
	// in 112 bits.
	ErrBalanceOverflow = errors.New("balance overflows 112 bits")

	// ErrTransferFailed is returned when an asset transfer out of custody
	// fails; the whole operation is rolled back.
	ErrTransferFailed = errors.New("asset transfer failed")
)
