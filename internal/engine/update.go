package engine

import (
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"ammCore/internal/model"
)

// update is the shared reserve/price-accumulator routine. It validates
// the new balances against the 112-bit reserve bound, accrues the
// time-weighted price accumulators over the elapsed interval, then adopts
// the new balances as reserves and emits a sync event.
//
// Elapsed time uses 32-bit wrapping subtraction and the accumulators use
// wrapping add/mul: overflow there is expected behavior, consumers
// difference two readings modulo 2^256.
func (p *Pool) update(newA, newB *uint256.Int) error {
	if !fitsReserve(newA) || !fitsReserve(newB) {
		return ErrBalanceOverflow
	}

	now := p.clock()
	elapsed := now - p.lastUpdate
	if elapsed > 0 && !p.reserveA.IsZero() && !p.reserveB.IsZero() {
		dt := uint256.NewInt(uint64(elapsed))
		p.priceACumulative.Add(&p.priceACumulative,
			new(uint256.Int).Mul(uq112Div(&p.reserveB, &p.reserveA), dt))
		p.priceBCumulative.Add(&p.priceBCumulative,
			new(uint256.Int).Mul(uq112Div(&p.reserveA, &p.reserveB), dt))
	}

	p.reserveA.Set(newA)
	p.reserveB.Set(newB)
	p.lastUpdate = now

	p.emit(model.EventSync, model.SyncEvent{
		ReserveA: p.reserveA.Dec(),
		ReserveB: p.reserveB.Dec(),
	})
	return nil
}

// Sync forces reserves to match current custody balances without share
// issuance. It absorbs direct transfers into custody and advances the
// price accumulator when nothing else is happening.
func (p *Pool) Sync() error {
	p.mustBound()

	balA, balB := p.balances()
	if err := p.update(balA, balB); err != nil {
		return err
	}

	p.logger.Debug("pool synced",
		zap.String("reserve_a", p.reserveA.Dec()),
		zap.String("reserve_b", p.reserveB.Dec()),
	)
	return nil
}
