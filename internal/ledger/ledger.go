package ledger

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Ledger is an in-memory liquidity-share ledger. Mint and burn are
// infallible from the engine's perspective; a burn exceeding the holder's
// balance indicates corrupt accounting and panics. Mutations are
// journaled for checkpoint/rollback, same scheme as the asset ledger.
type Ledger struct {
	mu       sync.Mutex
	balances map[common.Address]uint256.Int
	supply   uint256.Int
	journal  []shareChange
}

// shareChange records one holder's balance and the total supply before a
// mutation.
type shareChange struct {
	holder     common.Address
	prev       uint256.Int
	prevSupply uint256.Int
}

// New builds an empty share ledger.
func New() *Ledger {
	return &Ledger{balances: make(map[common.Address]uint256.Int)}
}

// Mint credits shares to the holder and grows total supply.
func (l *Ledger) Mint(to common.Address, amount *uint256.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bal := l.balances[to]
	l.journal = append(l.journal, shareChange{holder: to, prev: bal, prevSupply: l.supply})

	next := new(uint256.Int).Add(&bal, amount)
	l.balances[to] = *next
	l.supply.Add(&l.supply, amount)
}

// Burn removes shares from the holder and shrinks total supply.
func (l *Ledger) Burn(from common.Address, amount *uint256.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bal := l.balances[from]
	if bal.Lt(amount) {
		panic("ledger: burn exceeds share balance")
	}

	l.journal = append(l.journal, shareChange{holder: from, prev: bal, prevSupply: l.supply})

	next := new(uint256.Int).Sub(&bal, amount)
	l.balances[from] = *next
	l.supply.Sub(&l.supply, amount)
}

// BalanceOf returns a copy of the holder's share balance.
func (l *Ledger) BalanceOf(holder common.Address) *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal := l.balances[holder]
	return bal.Clone()
}

// TotalSupply returns a copy of the outstanding share count.
func (l *Ledger) TotalSupply() *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.supply.Clone()
}

// Snapshot returns an identifier for the current journal position.
func (l *Ledger) Snapshot() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.journal)
}

// RevertTo undoes every mutation recorded after the given snapshot.
func (l *Ledger) RevertTo(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.journal) - 1; i >= id; i-- {
		change := l.journal[i]
		l.balances[change.holder] = change.prev
		l.supply = change.prevSupply
	}
	l.journal = l.journal[:id]
}
