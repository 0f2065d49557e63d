package engine

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"ammCore/internal/model"
)

// Deposit mints liquidity shares for whatever the caller has already
// moved into pool custody, measured as the diff between live custody
// balances and the recorded reserves.
//
// On an empty pool the share count is the geometric mean of the two
// contributed amounts, with minimumLiquidity minted to the lock address
// and removed from circulation forever. On an active pool the count is
// the minimum of the two pro-rata ratios, so unbalanced deposits forfeit
// the excess side to existing shareholders.
func (p *Pool) Deposit(caller common.Address) (*uint256.Int, error) {
	p.mustBound()
	revert := p.checkpoint()

	balA, balB := p.balances()
	amountA := custodyDiff(balA, &p.reserveA)
	amountB := custodyDiff(balB, &p.reserveB)

	supply := p.shares.TotalSupply()

	var shares *uint256.Int
	if supply.IsZero() {
		root := new(uint256.Int).Sqrt(new(uint256.Int).Mul(amountA, amountB))
		if root.Cmp(minimumLiquidity) <= 0 {
			revert()
			return nil, ErrInsufficientLiquidityMinted
		}
		shares = new(uint256.Int).Sub(root, minimumLiquidity)
		p.shares.Mint(lockAddress, minimumLiquidity)
	} else {
		byA := new(uint256.Int).Mul(amountA, supply)
		byA.Div(byA, &p.reserveA)
		byB := new(uint256.Int).Mul(amountB, supply)
		byB.Div(byB, &p.reserveB)

		shares = byA
		if byB.Lt(byA) {
			shares = byB
		}
		if shares.IsZero() {
			revert()
			return nil, ErrInsufficientLiquidityMinted
		}
	}

	p.shares.Mint(caller, shares)

	if err := p.update(balA, balB); err != nil {
		revert()
		return nil, err
	}

	p.emit(model.EventDeposit, model.DepositEvent{
		Caller:  caller.Hex(),
		AmountA: amountA.Dec(),
		AmountB: amountB.Dec(),
	})

	p.logger.Debug("liquidity deposited",
		zap.String("caller", caller.Hex()),
		zap.String("amount_a", amountA.Dec()),
		zap.String("amount_b", amountB.Dec()),
		zap.String("shares", shares.Dec()),
	)
	return shares, nil
}
