package model

// Event names as emitted by the engine and recorded in event streams.
const (
	EventDeposit    = "deposit"
	EventWithdrawal = "withdrawal"
	EventSwap       = "swap"
	EventSync       = "sync"
)

// DepositEvent records a liquidity deposit.
type DepositEvent struct {
	Caller  string `json:"caller"`
	AmountA string `json:"amount_a"`
	AmountB string `json:"amount_b"`
}

// WithdrawalEvent records a liquidity withdrawal.
type WithdrawalEvent struct {
	Caller  string `json:"caller"`
	AmountA string `json:"amount_a"`
	AmountB string `json:"amount_b"`
}

// SwapEvent records a swap payout.
type SwapEvent struct {
	Caller    string `json:"caller"`
	OutA      string `json:"out_a"`
	OutB      string `json:"out_b"`
	Recipient string `json:"recipient"`
}

// SyncEvent records the reserves after a reserve update.
type SyncEvent struct {
	ReserveA string `json:"reserve_a"`
	ReserveB string `json:"reserve_b"`
}
