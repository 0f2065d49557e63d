package replay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"ammCore/internal/asset"
	"ammCore/internal/engine"
	"ammCore/internal/ledger"
	"ammCore/internal/model"
	"ammCore/internal/storage"
)

// RunConfig holds runtime settings for a replay.
type RunConfig struct {
	// PoolAddress is the pool's custody account on the asset ledgers.
	PoolAddress common.Address
	// BatchSize controls how many event records buffer before a flush.
	BatchSize int
}

// Runner replays an operation journal against a fresh engine instance
// backed by in-memory asset and share ledgers, recording the emitted
// event stream. A failed operation is rolled back as a unit, including
// any input staged in the same journal entry, and the replay continues.
type Runner struct {
	cfg     RunConfig
	storage storage.Storage
	logger  *zap.Logger

	pool   *engine.Pool
	shares *ledger.Ledger
	tokens map[common.Address]*asset.Token

	now     uint32
	seq     uint64
	pending []model.EventRecord
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, storageSink storage.Storage, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}

	r := &Runner{
		cfg:     cfg,
		storage: storageSink,
		logger:  logger,
		shares:  ledger.New(),
		tokens:  make(map[common.Address]*asset.Token),
	}
	r.pool = engine.New(engine.Config{
		Address: cfg.PoolAddress,
		Shares:  r.shares,
		Events:  r,
		Clock:   func() uint32 { return r.now },
		Logger:  logger,
	})
	return r
}

// Emit implements engine.EventSink: emitted events are buffered as
// records stamped with the replay clock and an output sequence.
func (r *Runner) Emit(name string, data any) {
	decoded, err := json.Marshal(data)
	if err != nil {
		r.logger.Error("marshal event", zap.String("event_name", name), zap.Error(err))
		return
	}
	r.seq++
	r.pending = append(r.pending, model.EventRecord{
		Seq:       r.seq,
		Timestamp: r.now,
		EventName: name,
		Decoded:   decoded,
	})
}

// Run replays all operations and returns the final pool state.
func (r *Runner) Run(ctx context.Context, ops []model.OpRecord) (model.PoolState, error) {
	if r.storage == nil {
		return model.PoolState{}, fmt.Errorf("storage is nil")
	}

	for _, op := range ops {
		select {
		case <-ctx.Done():
			return model.PoolState{}, ctx.Err()
		default:
		}

		r.now = op.Time
		if err := r.apply(op); err != nil {
			return model.PoolState{}, fmt.Errorf("journal seq %d (%s): %w", op.Seq, op.Op, err)
		}

		if len(r.pending) >= r.cfg.BatchSize {
			if err := r.flush(); err != nil {
				return model.PoolState{}, err
			}
		}
	}

	if err := r.flush(); err != nil {
		return model.PoolState{}, err
	}
	return r.pool.State(), nil
}

// apply executes one journal entry. Engine-domain failures are recorded
// as error events and do not abort the replay; malformed entries do.
func (r *Runner) apply(op model.OpRecord) error {
	switch op.Op {
	case model.OpBind:
		return r.applyBind(op)
	case model.OpFund:
		return r.applyFund(op)
	case model.OpTransfer:
		return r.applyTransfer(op)
	case model.OpDeposit:
		return r.applyDeposit(op)
	case model.OpWithdraw:
		return r.applyWithdraw(op)
	case model.OpSwap:
		return r.applySwap(op)
	case model.OpSync:
		r.recordIfFailed(op, r.pool.Sync())
		return nil
	default:
		return fmt.Errorf("unknown op %q", op.Op)
	}
}

func (r *Runner) applyBind(op model.OpRecord) error {
	addrA, err := parseAddress(op.AssetA)
	if err != nil {
		return err
	}
	addrB, err := parseAddress(op.AssetB)
	if err != nil {
		return err
	}
	boundA := asset.Bind(r.token(addrA), r.cfg.PoolAddress)
	boundB := asset.Bind(r.token(addrB), r.cfg.PoolAddress)
	r.recordIfFailed(op, r.pool.BindAssets(boundA, boundB))
	return nil
}

func (r *Runner) applyFund(op model.OpRecord) error {
	tokenAddr, err := parseAddress(op.Asset)
	if err != nil {
		return err
	}
	to, err := parseAddress(op.To)
	if err != nil {
		return err
	}
	amount, err := parseAmount(op.Amount)
	if err != nil {
		return err
	}
	r.token(tokenAddr).Mint(to, amount)
	return nil
}

func (r *Runner) applyTransfer(op model.OpRecord) error {
	tokenAddr, err := parseAddress(op.Asset)
	if err != nil {
		return err
	}
	from, err := parseAddress(op.From)
	if err != nil {
		return err
	}
	to, err := parseAddress(op.To)
	if err != nil {
		return err
	}
	amount, err := parseAmount(op.Amount)
	if err != nil {
		return err
	}
	r.recordIfFailed(op, r.token(tokenAddr).Transfer(from, to, amount))
	return nil
}

func (r *Runner) applyDeposit(op model.OpRecord) error {
	caller, err := parseAddress(op.Caller)
	if err != nil {
		return err
	}

	undo, mark := r.begin()
	if err := r.stageInputs(caller, op.AmountA, op.AmountB); err != nil {
		undo()
		return err
	}

	if _, err := r.pool.Deposit(caller); err != nil {
		undo()
		r.recordFailure(op, err, mark)
	}
	return nil
}

func (r *Runner) applyWithdraw(op model.OpRecord) error {
	caller, err := parseAddress(op.Caller)
	if err != nil {
		return err
	}

	_, mark := r.begin()
	if _, _, err := r.pool.Withdraw(caller); err != nil {
		// The engine already reverted its own unit; nothing was staged.
		r.recordFailure(op, err, mark)
	}
	return nil
}

func (r *Runner) applySwap(op model.OpRecord) error {
	caller, err := parseAddress(op.Caller)
	if err != nil {
		return err
	}
	recipient, err := parseAddress(op.Recipient)
	if err != nil {
		return err
	}
	outA, err := parseAmount(op.OutA)
	if err != nil {
		return err
	}
	outB, err := parseAmount(op.OutB)
	if err != nil {
		return err
	}

	undo, mark := r.begin()
	if err := r.stageInputs(caller, op.AmountA, op.AmountB); err != nil {
		undo()
		return err
	}

	if err := r.pool.Swap(caller, outA, outB, recipient); err != nil {
		undo()
		r.recordFailure(op, err, mark)
	}
	return nil
}

// begin checkpoints the asset ledgers and the pending event buffer so a
// failed operation can revert input staged in the same journal entry and
// drop any events emitted before the failure surfaced.
func (r *Runner) begin() (undo func(), mark int) {
	assetA, assetB := r.pool.Assets()
	var snaps []func()
	for _, addr := range []common.Address{assetA, assetB} {
		if token, ok := r.tokens[addr]; ok {
			id := token.Snapshot()
			snaps = append(snaps, func() { token.RevertTo(id) })
		}
	}
	return func() {
		for i := len(snaps) - 1; i >= 0; i-- {
			snaps[i]()
		}
	}, len(r.pending)
}

// stageInputs moves the journal entry's declared inputs from the caller
// into pool custody before the engine measures the diff.
func (r *Runner) stageInputs(caller common.Address, amountA, amountB string) error {
	assetA, assetB := r.pool.Assets()
	for _, stage := range []struct {
		asset  common.Address
		amount string
	}{
		{assetA, amountA},
		{assetB, amountB},
	} {
		amount, err := parseAmount(stage.amount)
		if err != nil {
			return err
		}
		if amount.IsZero() {
			continue
		}
		token, ok := r.tokens[stage.asset]
		if !ok {
			return fmt.Errorf("asset %s not funded", stage.asset.Hex())
		}
		if err := token.Transfer(caller, r.cfg.PoolAddress, amount); err != nil {
			return fmt.Errorf("stage input: %w", err)
		}
	}
	return nil
}

// recordFailure truncates events emitted by the failed operation and
// records the failure itself.
func (r *Runner) recordFailure(op model.OpRecord, err error, mark int) {
	r.pending = r.pending[:mark]
	r.seq++
	r.pending = append(r.pending, model.EventRecord{
		Seq:       r.seq,
		Timestamp: r.now,
		EventName: op.Op,
		Error:     err.Error(),
	})
	r.logger.Warn("operation failed",
		zap.Uint64("journal_seq", op.Seq),
		zap.String("op", op.Op),
		zap.Error(err),
	)
}

// recordIfFailed records an error event for ops with no staged input.
func (r *Runner) recordIfFailed(op model.OpRecord, err error) {
	if err != nil {
		r.recordFailure(op, err, len(r.pending))
	}
}

// token returns the ledger for an asset, creating it on first use.
func (r *Runner) token(addr common.Address) *asset.Token {
	if token, ok := r.tokens[addr]; ok {
		return token
	}
	token := asset.NewToken(addr)
	r.tokens[addr] = token
	return token
}

// flush writes buffered event records to storage.
func (r *Runner) flush() error {
	if len(r.pending) == 0 {
		return nil
	}
	if err := r.storage.PutEventBatch(r.pending); err != nil {
		return fmt.Errorf("put event batch: %w", err)
	}
	r.pending = nil
	return nil
}
