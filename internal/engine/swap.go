package engine

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"ammCore/internal/model"
)

// Swap pays out the requested amounts to the recipient, inferring the
// caller's input from custody balance diffs. The swap is accepted only if
// the product of the hypothetical post-swap balances does not fall below
// the product of the current reserves: any payout must be covered by
// input already sitting in custody.
func (p *Pool) Swap(caller common.Address, outA, outB *uint256.Int, recipient common.Address) error {
	p.mustBound()

	if outA == nil {
		outA = new(uint256.Int)
	}
	if outB == nil {
		outB = new(uint256.Int)
	}
	if outA.IsZero() && outB.IsZero() {
		return ErrInsufficientOutputAmount
	}
	if outA.Gt(&p.reserveA) || outB.Gt(&p.reserveB) {
		return ErrInsufficientLiquidity
	}

	revert := p.checkpoint()

	custodyA, custodyB := p.balances()
	newBalA := custodyDiff(custodyA, outA)
	newBalB := custodyDiff(custodyB, outB)

	// Bound the balances before the K multiply so an oversized input
	// surfaces as BalanceOverflow instead of a wrapped product.
	if !fitsReserve(newBalA) || !fitsReserve(newBalB) {
		revert()
		return ErrBalanceOverflow
	}

	kBefore := new(uint256.Int).Mul(&p.reserveA, &p.reserveB)
	kAfter := new(uint256.Int).Mul(newBalA, newBalB)
	if kAfter.Lt(kBefore) {
		revert()
		return ErrInvalidK
	}

	if err := p.update(newBalA, newBalB); err != nil {
		revert()
		return err
	}

	if !outA.IsZero() {
		if err := p.assetA.Transfer(recipient, outA); err != nil {
			revert()
			return fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}
	}
	if !outB.IsZero() {
		if err := p.assetB.Transfer(recipient, outB); err != nil {
			revert()
			return fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}
	}

	p.emit(model.EventSwap, model.SwapEvent{
		Caller:    caller.Hex(),
		OutA:      outA.Dec(),
		OutB:      outB.Dec(),
		Recipient: recipient.Hex(),
	})

	p.logger.Debug("swap executed",
		zap.String("caller", caller.Hex()),
		zap.String("out_a", outA.Dec()),
		zap.String("out_b", outB.Dec()),
		zap.String("recipient", recipient.Hex()),
	)
	return nil
}
