package model

// PoolState is a snapshot of the engine's queryable state for storage.
// All integer fields are decimal strings; addresses are hex.
type PoolState struct {
	Address          string `json:"address"`
	AssetA           string `json:"asset_a"`
	AssetB           string `json:"asset_b"`
	ReserveA         string `json:"reserve_a"`
	ReserveB         string `json:"reserve_b"`
	LastUpdate       uint32 `json:"last_update"`
	PriceACumulative string `json:"price_a_cumulative"`
	PriceBCumulative string `json:"price_b_cumulative"`
	TotalShares      string `json:"total_shares"`
}
