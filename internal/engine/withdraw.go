package engine

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"ammCore/internal/model"
)

// Withdraw burns the caller's entire share balance and pays out the
// pro-rata cut of both assets. Amounts are computed from live custody
// balances, not recorded reserves, so donations received since the last
// sync flow to withdrawers; that is intended constant-product behavior.
//
// Withdrawing from a pool with zero total shares is an impossible state
// and panics rather than returning an error.
func (p *Pool) Withdraw(caller common.Address) (*uint256.Int, *uint256.Int, error) {
	p.mustBound()
	revert := p.checkpoint()

	balA, balB := p.balances()
	liquidity := p.shares.BalanceOf(caller)

	supply := p.shares.TotalSupply()
	if supply.IsZero() {
		panic("engine: withdraw from pool with zero total shares")
	}

	amountA := new(uint256.Int).Mul(liquidity, balA)
	amountA.Div(amountA, supply)
	amountB := new(uint256.Int).Mul(liquidity, balB)
	amountB.Div(amountB, supply)

	if amountA.IsZero() || amountB.IsZero() {
		revert()
		return nil, nil, ErrInsufficientLiquidityBurned
	}

	p.shares.Burn(caller, liquidity)

	if err := p.assetA.Transfer(caller, amountA); err != nil {
		revert()
		return nil, nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if err := p.assetB.Transfer(caller, amountB); err != nil {
		revert()
		return nil, nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	balA, balB = p.balances()
	if err := p.update(balA, balB); err != nil {
		revert()
		return nil, nil, err
	}

	p.emit(model.EventWithdrawal, model.WithdrawalEvent{
		Caller:  caller.Hex(),
		AmountA: amountA.Dec(),
		AmountB: amountB.Dec(),
	})

	p.logger.Debug("liquidity withdrawn",
		zap.String("caller", caller.Hex()),
		zap.String("amount_a", amountA.Dec()),
		zap.String("amount_b", amountB.Dec()),
		zap.String("burned", liquidity.Dec()),
	)
	return amountA, amountB, nil
}
