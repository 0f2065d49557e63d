package engine

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Asset is the engine's view of one pooled fungible asset.
type Asset interface {
	// Address returns the asset's identity.
	Address() common.Address
	// BalanceOf returns the holder's current balance.
	BalanceOf(holder common.Address) *uint256.Int
	// Transfer moves amount out of pool custody to the recipient.
	Transfer(to common.Address, amount *uint256.Int) error
}

// ShareLedger tracks liquidity share ownership. Mint and burn are
// infallible; a ledger that cannot honor them must panic.
type ShareLedger interface {
	Mint(to common.Address, amount *uint256.Int)
	Burn(from common.Address, amount *uint256.Int)
	BalanceOf(holder common.Address) *uint256.Int
	TotalSupply() *uint256.Int
}

// Snapshotter is implemented by collaborators whose state can be
// checkpointed and rolled back, so a failed operation reverts as a unit.
type Snapshotter interface {
	Snapshot() int
	RevertTo(id int)
}

// EventSink receives the engine's typed events.
type EventSink interface {
	Emit(name string, data any)
}

// Clock returns the current time truncated to 32 bits. Wraparound is
// expected and handled by the price accumulator math.
type Clock func() uint32
