package quote

import (
	"errors"

	"github.com/holiman/uint256"
)

// bpsDenominator scales basis-point fees: 30 bps = 0.3%.
var bpsDenominator = uint256.NewInt(10_000)

var (
	ErrZeroInput   = errors.New("amount in must be positive")
	ErrNoLiquidity = errors.New("reserves must be positive")
	ErrFeeTooLarge = errors.New("fee must be below 10000 bps")
)

// AmountOut returns the constant-product output for amountIn against the
// given reserves after deducting a basis-point fee from the input:
//
//	out = (in * (10000 - fee) * reserveOut) / (reserveIn * 10000 + in * (10000 - fee))
//
// With fee 0 this is the largest output the pool's invariant check will
// accept for that input.
func AmountOut(amountIn, reserveIn, reserveOut *uint256.Int, feeBps uint64) (*uint256.Int, error) {
	if amountIn == nil || amountIn.IsZero() {
		return nil, ErrZeroInput
	}
	if reserveIn == nil || reserveIn.IsZero() || reserveOut == nil || reserveOut.IsZero() {
		return nil, ErrNoLiquidity
	}
	if feeBps >= 10_000 {
		return nil, ErrFeeTooLarge
	}

	inWithFee := new(uint256.Int).Mul(amountIn, uint256.NewInt(10_000-feeBps))
	numerator := new(uint256.Int).Mul(inWithFee, reserveOut)
	denominator := new(uint256.Int).Mul(reserveIn, bpsDenominator)
	denominator.Add(denominator, inWithFee)

	return numerator.Div(numerator, denominator), nil
}

// AmountIn returns the smallest input that yields amountOut against the
// given reserves after the basis-point fee, rounding up.
func AmountIn(amountOut, reserveIn, reserveOut *uint256.Int, feeBps uint64) (*uint256.Int, error) {
	if amountOut == nil || amountOut.IsZero() {
		return nil, ErrZeroInput
	}
	if reserveIn == nil || reserveIn.IsZero() || reserveOut == nil || reserveOut.IsZero() {
		return nil, ErrNoLiquidity
	}
	if feeBps >= 10_000 {
		return nil, ErrFeeTooLarge
	}
	if !amountOut.Lt(reserveOut) {
		return nil, ErrNoLiquidity
	}

	numerator := new(uint256.Int).Mul(reserveIn, amountOut)
	numerator.Mul(numerator, bpsDenominator)
	denominator := new(uint256.Int).Sub(reserveOut, amountOut)
	denominator.Mul(denominator, uint256.NewInt(10_000-feeBps))

	in := new(uint256.Int).Div(numerator, denominator)
	return in.AddUint64(in, 1), nil
}
