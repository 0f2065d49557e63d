package asset

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Bound presents a Token as one party's view of it: outgoing transfers
// are drawn from the bound owner's balance. The pool engine holds a
// Bound per pooled asset, owned by the pool's custody account.
type Bound struct {
	token *Token
	owner common.Address
}

// Bind wraps a token with a fixed sending owner.
func Bind(token *Token, owner common.Address) *Bound {
	return &Bound{token: token, owner: owner}
}

func (b *Bound) Address() common.Address {
	return b.token.Address()
}

func (b *Bound) BalanceOf(holder common.Address) *uint256.Int {
	return b.token.BalanceOf(holder)
}

// Transfer moves amount from the bound owner to the recipient.
func (b *Bound) Transfer(to common.Address, amount *uint256.Int) error {
	return b.token.Transfer(b.owner, to, amount)
}

func (b *Bound) Snapshot() int {
	return b.token.Snapshot()
}

func (b *Bound) RevertTo(id int) {
	b.token.RevertTo(id)
}
