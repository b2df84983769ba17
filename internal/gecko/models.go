package gecko

import "time"

// Pool is a normalized liquidity pool listing. Owned by the client for the
// duration of one tick; never mutated after creation.
type Pool struct {
	ID           string
	Pair         string // "TOKEN0/TOKEN1"
	Volume24hUSD float64
	ReserveUSD   float64
	FDVUSD       float64 // 0 if the provider omitted it
	CreatedAt    time.Time // zero if unknown
	URL          string
}

// Trade is one normalized trade belonging to a pool. Ephemeral: fetched,
// filtered, aggregated and discarded within one scoring pass.
type Trade struct {
	Timestamp time.Time
	VolumeUSD float64
	PriceUSD  float64 // 0 if the provider omitted it
	Side      string  // "buy", "sell" or ""
}

// Wire types. The provider's numeric fields arrive as strings, numbers or
// null depending on endpoint version, hence Amount everywhere.

type poolDocument struct {
	Data []poolResource `json:"data"`
}

type poolResource struct {
	ID         string         `json:"id"`
	Attributes poolAttributes `json:"attributes"`
}

type poolAttributes struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	VolumeUSD  volumeSet `json:"volume_usd"`
	ReserveUSD Amount    `json:"reserve_in_usd"`
	FDVUSD     Amount    `json:"fdv_usd"`
	CreatedAt  string    `json:"pool_created_at"`
	Token0     tokenRef  `json:"token0"`
	Token1     tokenRef  `json:"token1"`
}

type volumeSet struct {
	H24 Amount `json:"h24"`
}

type tokenRef struct {
	Symbol string `json:"symbol"`
}

type tradeDocument struct {
	Data []tradeResource `json:"data"`
}

type tradeResource struct {
	Attributes tradeAttributes `json:"attributes"`
}

type tradeAttributes struct {
	BlockTimestamp string `json:"block_timestamp"`
	VolumeUSD      Amount `json:"volume_in_usd"`
	PriceToUSD     Amount `json:"price_to_in_usd"`
	Kind           string `json:"kind"`
}
