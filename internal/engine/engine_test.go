package engine_test

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"ammCore/internal/asset"
	"ammCore/internal/engine"
	"ammCore/internal/ledger"
)

var (
	poolAddr = common.HexToAddress("0x0000000000000000000000000000000000000001")
	addrTokA = common.HexToAddress("0x000000000000000000000000000000000000000a")
	addrTokB = common.HexToAddress("0x000000000000000000000000000000000000000b")
	alice    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob      = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	lockAddr = common.Address{}
	oneE18   = "1000000000000000000"
	twoE18   = "2000000000000000000"
	threeE18 = "3000000000000000000"
)

type testClock struct {
	now uint32
}

func (c *testClock) advance(d uint32) { c.now += d }

type fixture struct {
	pool   *engine.Pool
	tokenA *asset.Token
	tokenB *asset.Token
	shares *ledger.Ledger
	clock  *testClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		tokenA: asset.NewToken(addrTokA),
		tokenB: asset.NewToken(addrTokB),
		shares: ledger.New(),
		clock:  &testClock{now: 1_700_000_000},
	}
	f.pool = engine.New(engine.Config{
		Address: poolAddr,
		Shares:  f.shares,
		Clock:   func() uint32 { return f.clock.now },
	})

	boundA := asset.Bind(f.tokenA, poolAddr)
	boundB := asset.Bind(f.tokenB, poolAddr)
	if err := f.pool.BindAssets(boundA, boundB); err != nil {
		t.Fatalf("bind assets: %v", err)
	}
	return f
}

// sendIn moves freshly minted assets into pool custody, simulating the
// caller-side transfer that precedes every mutating operation.
func (f *fixture) sendIn(t *testing.T, amountA, amountB string) {
	t.Helper()
	if a := u(t, amountA); !a.IsZero() {
		f.tokenA.Mint(poolAddr, a)
	}
	if b := u(t, amountB); !b.IsZero() {
		f.tokenB.Mint(poolAddr, b)
	}
}

func u(t *testing.T, dec string) *uint256.Int {
	t.Helper()
	v := new(uint256.Int)
	if err := v.SetFromDecimal(dec); err != nil {
		t.Fatalf("parse %q: %v", dec, err)
	}
	return v
}

func eq(t *testing.T, got *uint256.Int, want string, label string) {
	t.Helper()
	if got.Dec() != want {
		t.Fatalf("%s mismatch: got %s want %s", label, got.Dec(), want)
	}
}

func TestBindAssetsOnce(t *testing.T) {
	f := newFixture(t)

	boundA := asset.Bind(f.tokenA, poolAddr)
	boundB := asset.Bind(f.tokenB, poolAddr)
	if err := f.pool.BindAssets(boundA, boundB); !errors.Is(err, engine.ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}
}

func TestBootstrapDeposit(t *testing.T) {
	f := newFixture(t)
	f.sendIn(t, oneE18, oneE18)

	shares, err := f.pool.Deposit(alice)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}

	eq(t, shares, "999999999999999000", "minted shares")
	eq(t, f.shares.TotalSupply(), oneE18, "total supply")
	eq(t, f.shares.BalanceOf(lockAddr), "1000", "locked shares")
	eq(t, f.shares.BalanceOf(alice), "999999999999999000", "alice shares")

	reserveA, reserveB, _ := f.pool.Reserves()
	eq(t, reserveA, oneE18, "reserve a")
	eq(t, reserveB, oneE18, "reserve b")
}

func TestBootstrapDepositTooSmall(t *testing.T) {
	f := newFixture(t)
	f.sendIn(t, "10", "10")

	if _, err := f.pool.Deposit(alice); !errors.Is(err, engine.ErrInsufficientLiquidityMinted) {
		t.Fatalf("expected ErrInsufficientLiquidityMinted, got %v", err)
	}
	if !f.shares.TotalSupply().IsZero() {
		t.Fatalf("supply mutated on failed bootstrap: %s", f.shares.TotalSupply().Dec())
	}
	reserveA, _, _ := f.pool.Reserves()
	if !reserveA.IsZero() {
		t.Fatalf("reserves mutated on failed bootstrap: %s", reserveA.Dec())
	}
}

func TestProportionalDeposit(t *testing.T) {
	f := newFixture(t)
	f.sendIn(t, oneE18, oneE18)
	if _, err := f.pool.Deposit(alice); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	f.sendIn(t, twoE18, twoE18)
	shares, err := f.pool.Deposit(alice)
	if err != nil {
		t.Fatalf("second deposit: %v", err)
	}

	eq(t, shares, twoE18, "proportional shares")
	eq(t, f.shares.TotalSupply(), threeE18, "total supply")
	eq(t, f.shares.BalanceOf(alice), "2999999999999999000", "alice shares")

	reserveA, reserveB, _ := f.pool.Reserves()
	eq(t, reserveA, threeE18, "reserve a")
	eq(t, reserveB, threeE18, "reserve b")
}

func TestUnbalancedDepositPenalty(t *testing.T) {
	f := newFixture(t)
	f.sendIn(t, "1000000", "1000000")
	if _, err := f.pool.Deposit(alice); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	// Bob deposits 4x on the A side but only 1x on the B side; shares come
	// from the smaller ratio and the surplus A stays with the pool.
	f.sendIn(t, "4000000", "1000000")
	shares, err := f.pool.Deposit(bob)
	if err != nil {
		t.Fatalf("unbalanced deposit: %v", err)
	}

	eq(t, shares, "1000000", "penalized shares")

	reserveA, reserveB, _ := f.pool.Reserves()
	eq(t, reserveA, "5000000", "reserve a keeps surplus")
	eq(t, reserveB, "2000000", "reserve b")
}

func TestDepositZeroSharesRejected(t *testing.T) {
	f := newFixture(t)
	f.sendIn(t, oneE18, oneE18)
	if _, err := f.pool.Deposit(alice); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	// One unit of B against 1e18 reserves floors to zero shares.
	f.sendIn(t, "0", "1")
	if _, err := f.pool.Deposit(bob); !errors.Is(err, engine.ErrInsufficientLiquidityMinted) {
		t.Fatalf("expected ErrInsufficientLiquidityMinted, got %v", err)
	}
	eq(t, f.shares.TotalSupply(), oneE18, "supply unchanged")
}

func TestSwapProductMayNotDecrease(t *testing.T) {
	f := newFixture(t)
	f.sendIn(t, oneE18, twoE18)
	if _, err := f.pool.Deposit(alice); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	// 0.1e18 A in, 0.18e18 B out: product grows, accepted.
	f.sendIn(t, "100000000000000000", "0")
	if err := f.pool.Swap(bob, nil, u(t, "180000000000000000"), bob); err != nil {
		t.Fatalf("swap: %v", err)
	}

	reserveA, reserveB, _ := f.pool.Reserves()
	eq(t, reserveA, "1100000000000000000", "reserve a")
	eq(t, reserveB, "1820000000000000000", "reserve b")
	eq(t, f.tokenB.BalanceOf(bob), "180000000000000000", "bob payout")
}

func TestSwapInvalidK(t *testing.T) {
	f := newFixture(t)
	f.sendIn(t, oneE18, twoE18)
	if _, err := f.pool.Deposit(alice); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	// Same input, double the requested output: product would shrink.
	f.sendIn(t, "100000000000000000", "0")
	err := f.pool.Swap(bob, nil, u(t, "360000000000000000"), bob)
	if !errors.Is(err, engine.ErrInvalidK) {
		t.Fatalf("expected ErrInvalidK, got %v", err)
	}

	// The staged input is still in custody but reserves are untouched.
	reserveA, reserveB, _ := f.pool.Reserves()
	eq(t, reserveA, oneE18, "reserve a unchanged")
	eq(t, reserveB, twoE18, "reserve b unchanged")
	if !f.tokenB.BalanceOf(bob).IsZero() {
		t.Fatalf("payout leaked on rejected swap")
	}
}

func TestSwapWithoutInputRejected(t *testing.T) {
	f := newFixture(t)
	f.sendIn(t, oneE18, oneE18)
	if _, err := f.pool.Deposit(alice); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	if err := f.pool.Swap(bob, nil, u(t, "1"), bob); !errors.Is(err, engine.ErrInvalidK) {
		t.Fatalf("expected ErrInvalidK for free output, got %v", err)
	}
}

func TestSwapPreconditions(t *testing.T) {
	f := newFixture(t)
	f.sendIn(t, oneE18, oneE18)
	if _, err := f.pool.Deposit(alice); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	if err := f.pool.Swap(bob, nil, nil, bob); !errors.Is(err, engine.ErrInsufficientOutputAmount) {
		t.Fatalf("expected ErrInsufficientOutputAmount, got %v", err)
	}

	tooMuch := u(t, twoE18)
	if err := f.pool.Swap(bob, tooMuch, nil, bob); !errors.Is(err, engine.ErrInsufficientLiquidity) {
		t.Fatalf("expected ErrInsufficientLiquidity, got %v", err)
	}
}

func TestWithdrawRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.sendIn(t, oneE18, oneE18)
	if _, err := f.pool.Deposit(alice); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	amountA, amountB, err := f.pool.Withdraw(alice)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	// Alice held 1e18-1000 of 1e18 shares; the locked 1000 shares keep
	// their pro-rata slice in the pool.
	eq(t, amountA, "999999999999999000", "amount a")
	eq(t, amountB, "999999999999999000", "amount b")
	eq(t, f.shares.TotalSupply(), "1000", "locked supply remains")
	eq(t, f.tokenA.BalanceOf(poolAddr), "1000", "pool dust a")
	eq(t, f.tokenB.BalanceOf(poolAddr), "1000", "pool dust b")

	reserveA, reserveB, _ := f.pool.Reserves()
	eq(t, reserveA, "1000", "reserve a")
	eq(t, reserveB, "1000", "reserve b")
}

func TestWithdrawZeroSharesRejected(t *testing.T) {
	f := newFixture(t)
	f.sendIn(t, oneE18, oneE18)
	if _, err := f.pool.Deposit(alice); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	if _, _, err := f.pool.Withdraw(bob); !errors.Is(err, engine.ErrInsufficientLiquidityBurned) {
		t.Fatalf("expected ErrInsufficientLiquidityBurned, got %v", err)
	}
}

func TestWithdrawEmptyPoolPanics(t *testing.T) {
	f := newFixture(t)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for withdraw on empty pool")
		}
	}()
	f.pool.Withdraw(alice) //nolint:errcheck // panics before returning
}

func TestCustodyBelowReservePanics(t *testing.T) {
	f := newFixture(t)
	f.sendIn(t, oneE18, oneE18)
	if _, err := f.pool.Deposit(alice); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	// Drain custody behind the engine's back; the next diff underflows.
	if err := f.tokenA.Transfer(poolAddr, bob, u(t, "1")); err != nil {
		t.Fatalf("drain custody: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for custody below reserve")
		}
	}()
	f.pool.Deposit(bob) //nolint:errcheck // panics before returning
}

func TestWithdrawPaysFromCustodyNotReserves(t *testing.T) {
	f := newFixture(t)
	f.sendIn(t, "1000000", "1000000")
	if _, err := f.pool.Deposit(alice); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	// A donation lands in custody without a sync; withdrawal amounts are
	// computed from live custody, so the donation flows to the withdrawer.
	// Surprising but intended constant-product behavior.
	f.tokenA.Mint(poolAddr, u(t, "1000000"))

	amountA, _, err := f.pool.Withdraw(alice)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	eq(t, amountA, "1998000", "withdrawal includes donation")
}

func TestSyncAbsorbsDonation(t *testing.T) {
	f := newFixture(t)
	f.sendIn(t, "1000000", "1000000")
	if _, err := f.pool.Deposit(alice); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	f.tokenA.Mint(poolAddr, u(t, "5000"))
	if err := f.pool.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}

	reserveA, reserveB, _ := f.pool.Reserves()
	eq(t, reserveA, "1005000", "reserve a")
	eq(t, reserveB, "1000000", "reserve b")
	eq(t, f.shares.TotalSupply(), "1000000", "no shares issued by sync")
}

func TestSyncBalanceOverflow(t *testing.T) {
	f := newFixture(t)
	f.sendIn(t, "1000000", "1000000")
	if _, err := f.pool.Deposit(alice); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	// Push custody past 2^112 - 1.
	over := new(uint256.Int).Lsh(uint256.NewInt(1), 112)
	f.tokenA.Mint(poolAddr, over)

	if err := f.pool.Sync(); !errors.Is(err, engine.ErrBalanceOverflow) {
		t.Fatalf("expected ErrBalanceOverflow, got %v", err)
	}
	reserveA, _, _ := f.pool.Reserves()
	eq(t, reserveA, "1000000", "reserve a unchanged")
}

func TestPriceAccumulator(t *testing.T) {
	f := newFixture(t)
	f.sendIn(t, "1000", "3000")
	if _, err := f.pool.Deposit(alice); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	// With reserves (1000, 3000) held constant, each elapsed second adds
	// 3 << 112 to priceACumulative and (1/3) << 112 to priceBCumulative.
	f.clock.advance(10)
	if err := f.pool.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}

	priceA, priceB := f.pool.PriceCumulatives()

	wantA := new(uint256.Int).Lsh(uint256.NewInt(3), 112)
	wantA.Mul(wantA, uint256.NewInt(10))
	if !priceA.Eq(wantA) {
		t.Fatalf("priceACumulative mismatch: got %s want %s", priceA.Dec(), wantA.Dec())
	}

	wantB := new(uint256.Int).Lsh(uint256.NewInt(1000), 112)
	wantB.Div(wantB, uint256.NewInt(3000))
	wantB.Mul(wantB, uint256.NewInt(10))
	if !priceB.Eq(wantB) {
		t.Fatalf("priceBCumulative mismatch: got %s want %s", priceB.Dec(), wantB.Dec())
	}

	// A second interval accrues linearly.
	f.clock.advance(5)
	if err := f.pool.Sync(); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	priceA2, _ := f.pool.PriceCumulatives()
	wantA2 := new(uint256.Int).Lsh(uint256.NewInt(3), 112)
	wantA2.Mul(wantA2, uint256.NewInt(15))
	if !priceA2.Eq(wantA2) {
		t.Fatalf("priceACumulative after 15s: got %s want %s", priceA2.Dec(), wantA2.Dec())
	}
}

func TestTimestampWraparound(t *testing.T) {
	f := newFixture(t)
	f.clock.now = ^uint32(0) - 1
	f.sendIn(t, "1000", "1000")
	if _, err := f.pool.Deposit(alice); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	// Clock wraps past zero; elapsed must still be 4 seconds.
	f.clock.now = 2
	if err := f.pool.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}

	priceA, _ := f.pool.PriceCumulatives()
	want := new(uint256.Int).Lsh(uint256.NewInt(1), 112)
	want.Mul(want, uint256.NewInt(4))
	if !priceA.Eq(want) {
		t.Fatalf("wrapped elapsed mismatch: got %s want %s", priceA.Dec(), want.Dec())
	}
}
