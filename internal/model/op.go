package model

// Operation names accepted by the replay journal.
const (
	OpBind     = "bind"
	OpFund     = "fund"
	OpTransfer = "transfer"
	OpDeposit  = "deposit"
	OpWithdraw = "withdraw"
	OpSwap     = "swap"
	OpSync     = "sync"
)

// OpRecord is one journal entry driving the replay runner. Fields are
// populated per operation; unused fields stay empty. Amounts are decimal
// strings, addresses are hex. Time drives the engine clock.
type OpRecord struct {
	Seq  uint64 `json:"seq"`
	Time uint32 `json:"time"`
	Op   string `json:"op"`

	AssetA string `json:"asset_a,omitempty"`
	AssetB string `json:"asset_b,omitempty"`

	Asset  string `json:"asset,omitempty"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Amount string `json:"amount,omitempty"`

	Caller    string `json:"caller,omitempty"`
	AmountA   string `json:"amount_a,omitempty"`
	AmountB   string `json:"amount_b,omitempty"`
	OutA      string `json:"out_a,omitempty"`
	OutB      string `json:"out_b,omitempty"`
	Recipient string `json:"recipient,omitempty"`
}
