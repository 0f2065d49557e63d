package engine

import "github.com/holiman/uint256"

// Reserves are stored as 112-bit unsigned integers so that a spot price
// expressed as reserve/reserve fits a UQ112x112 fixed-point number: 112
// integer bits and 112 fractional bits, 224 bits total.
const reserveBits = 112

// fitsReserve reports whether x fits in 112 bits.
func fitsReserve(x *uint256.Int) bool {
	return x.BitLen() <= reserveBits
}

// uq112Div returns y/x as UQ112x112: (y << 112) / x. The caller guarantees
// x > 0 and both operands fit in 112 bits, so the shifted numerator cannot
// overflow 256 bits.
func uq112Div(y, x *uint256.Int) *uint256.Int {
	num := new(uint256.Int).Lsh(y, reserveBits)
	return num.Div(num, x)
}
