package domain

// Trade is a single fill reported by the data API.
type Trade struct {
	ConditionID  string
	OutcomeIndex int
	Timestamp    int64 // unix seconds
	Price        float64
	Size         float64
	Side         string
}

// PricePoint is one sample of a chart series.
type PricePoint struct {
	Timestamp int64   `json:"t"` // unix seconds
	Price     float64 `json:"p"`
}
