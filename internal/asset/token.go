package asset

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ErrInsufficientBalance is returned by Transfer when the sender's
// balance does not cover the amount.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Token is an in-memory fungible asset ledger. Every balance mutation is
// journaled so callers can checkpoint with Snapshot and roll back a
// failed multi-step operation with RevertTo.
type Token struct {
	mu       sync.Mutex
	addr     common.Address
	balances map[common.Address]uint256.Int
	journal  []balanceChange
}

// balanceChange records a holder's balance before one mutation.
type balanceChange struct {
	holder common.Address
	prev   uint256.Int
}

// NewToken builds an empty ledger for the asset identified by addr.
func NewToken(addr common.Address) *Token {
	return &Token{
		addr:     addr,
		balances: make(map[common.Address]uint256.Int),
	}
}

// Address returns the asset's identity.
func (t *Token) Address() common.Address {
	return t.addr
}

// BalanceOf returns a copy of the holder's balance.
func (t *Token) BalanceOf(holder common.Address) *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	bal := t.balances[holder]
	return bal.Clone()
}

// Mint credits amount to the holder, creating supply out of band. Replay
// journals use it to fund accounts before pool operations.
func (t *Token) Mint(to common.Address, amount *uint256.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.credit(to, amount)
}

// Transfer moves amount from one holder to another.
func (t *Token) Transfer(from, to common.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	bal := t.balances[from]
	if bal.Lt(amount) {
		return ErrInsufficientBalance
	}

	t.journal = append(t.journal, balanceChange{holder: from, prev: bal})
	next := new(uint256.Int).Sub(&bal, amount)
	t.balances[from] = *next

	t.credit(to, amount)
	return nil
}

// credit adds amount to the holder's balance, journaling the prior value.
// Callers hold the lock.
func (t *Token) credit(to common.Address, amount *uint256.Int) {
	bal := t.balances[to]
	t.journal = append(t.journal, balanceChange{holder: to, prev: bal})
	next := new(uint256.Int).Add(&bal, amount)
	t.balances[to] = *next
}

// Snapshot returns an identifier for the current journal position.
func (t *Token) Snapshot() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.journal)
}

// RevertTo undoes every mutation recorded after the given snapshot.
func (t *Token) RevertTo(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.journal) - 1; i >= id; i-- {
		change := t.journal[i]
		t.balances[change.holder] = change.prev
	}
	t.journal = t.journal[:id]
}
