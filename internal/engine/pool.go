package engine

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"ammCore/internal/model"
)

// minimumLiquidity is the share quantity locked forever at first deposit.
var minimumLiquidity = uint256.NewInt(1000)

// lockAddress receives the permanently locked bootstrap shares.
var lockAddress = common.Address{}

// Config holds a pool's collaborators.
type Config struct {
	// Address is the pool's custody account on the asset ledgers.
	Address common.Address
	Shares  ShareLedger
	Events  EventSink
	Clock   Clock
	Logger  *zap.Logger
}

// Pool is the accounting engine for one two-asset constant-product pool.
// Reserves record the last-synchronized custody balances; every mutating
// operation re-reads custody and works off the diff.
type Pool struct {
	addr   common.Address
	shares ShareLedger
	events EventSink
	clock  Clock
	logger *zap.Logger

	assetA Asset
	assetB Asset

	reserveA   uint256.Int
	reserveB   uint256.Int
	lastUpdate uint32

	priceACumulative uint256.Int
	priceBCumulative uint256.Int
}

// New builds an empty, unbound pool.
func New(cfg Config) *Pool {
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		addr:   cfg.Address,
		shares: cfg.Shares,
		events: cfg.Events,
		clock:  clock,
		logger: logger,
	}
}

// SystemClock is the default Clock: unix time truncated to 32 bits.
func SystemClock() uint32 {
	return uint32(time.Now().Unix())
}

// BindAssets binds the two pooled assets. It succeeds exactly once;
// any later call fails with ErrAlreadyInitialized.
func (p *Pool) BindAssets(assetA, assetB Asset) error {
	if p.assetA != nil || p.assetB != nil {
		return ErrAlreadyInitialized
	}
	p.assetA = assetA
	p.assetB = assetB
	p.logger.Info("assets bound",
		zap.String("asset_a", assetA.Address().Hex()),
		zap.String("asset_b", assetB.Address().Hex()),
	)
	return nil
}

// Address returns the pool's custody account.
func (p *Pool) Address() common.Address {
	return p.addr
}

// Assets returns the bound asset identities; zero addresses if unbound.
func (p *Pool) Assets() (common.Address, common.Address) {
	var a, b common.Address
	if p.assetA != nil {
		a = p.assetA.Address()
	}
	if p.assetB != nil {
		b = p.assetB.Address()
	}
	return a, b
}

// Reserves returns the last-synchronized reserves and their timestamp.
func (p *Pool) Reserves() (*uint256.Int, *uint256.Int, uint32) {
	return p.reserveA.Clone(), p.reserveB.Clone(), p.lastUpdate
}

// PriceCumulatives returns the time-weighted price accumulators.
func (p *Pool) PriceCumulatives() (*uint256.Int, *uint256.Int) {
	return p.priceACumulative.Clone(), p.priceBCumulative.Clone()
}

// State returns a snapshot of the queryable pool state.
func (p *Pool) State() model.PoolState {
	assetA, assetB := p.Assets()
	return model.PoolState{
		Address:          p.addr.Hex(),
		AssetA:           assetA.Hex(),
		AssetB:           assetB.Hex(),
		ReserveA:         p.reserveA.Dec(),
		ReserveB:         p.reserveB.Dec(),
		LastUpdate:       p.lastUpdate,
		PriceACumulative: p.priceACumulative.Dec(),
		PriceBCumulative: p.priceBCumulative.Dec(),
		TotalShares:      p.shares.TotalSupply().Dec(),
	}
}

// mustBound panics if the pool has no bound assets. Mutating operations
// on an unbound pool indicate a wiring fault, not a caller error.
func (p *Pool) mustBound() {
	if p.assetA == nil || p.assetB == nil {
		panic("engine: pool assets not bound")
	}
}

// balances reads both custody balances live.
func (p *Pool) balances() (*uint256.Int, *uint256.Int) {
	return p.assetA.BalanceOf(p.addr), p.assetB.BalanceOf(p.addr)
}

// poolState is the engine-owned state captured by checkpoints.
type poolState struct {
	reserveA         uint256.Int
	reserveB         uint256.Int
	lastUpdate       uint32
	priceACumulative uint256.Int
	priceBCumulative uint256.Int
}

// checkpoint captures engine state plus a snapshot of every collaborator
// that supports rollback, and returns a function restoring all of it.
// Collaborators revert in reverse order of capture.
func (p *Pool) checkpoint() func() {
	saved := poolState{
		reserveA:         p.reserveA,
		reserveB:         p.reserveB,
		lastUpdate:       p.lastUpdate,
		priceACumulative: p.priceACumulative,
		priceBCumulative: p.priceBCumulative,
	}

	var reverts []func()
	for _, c := range []any{p.assetA, p.assetB, p.shares} {
		if s, ok := c.(Snapshotter); ok {
			id := s.Snapshot()
			reverts = append(reverts, func() { s.RevertTo(id) })
		}
	}

	return func() {
		for i := len(reverts) - 1; i >= 0; i-- {
			reverts[i]()
		}
		p.reserveA = saved.reserveA
		p.reserveB = saved.reserveB
		p.lastUpdate = saved.lastUpdate
		p.priceACumulative = saved.priceACumulative
		p.priceBCumulative = saved.priceBCumulative
	}
}

// emit forwards an event to the sink, if any.
func (p *Pool) emit(name string, data any) {
	if p.events != nil {
		p.events.Emit(name, data)
	}
}

// custodyDiff returns balance - reserve. Custody below the recorded
// reserve means accounting elsewhere is corrupt; that is a fatal fault.
func custodyDiff(balance, reserve *uint256.Int) *uint256.Int {
	diff, borrow := new(uint256.Int).SubOverflow(balance, reserve)
	if borrow {
		panic("engine: custody balance below recorded reserve")
	}
	return diff
}
