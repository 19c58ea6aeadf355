package polymarket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/alanyoungcy/polylens/internal/domain"
)

// DataClient reads public trade history from the Polymarket data API.
type DataClient struct {
	rest restClient
}

// NewDataClient creates a data API client.
//
// baseURL is the data API root, e.g. "https://data-api.polymarket.com".
func NewDataClient(baseURL string, opts Options) *DataClient {
	if baseURL == "" {
		baseURL = DefaultDataURL
	}
	return &DataClient{rest: newRestClient(baseURL, opts)}
}

// Trades returns up to limit recent trades for a condition, newest first as
// served upstream. A body that is not a JSON array yields no trades.
func (d *DataClient) Trades(ctx context.Context, conditionID string, limit int) ([]domain.Trade, error) {
	params := url.Values{}
	params.Set("condition_id", conditionID)
	params.Set("limit", strconv.Itoa(limit))

	body, err := d.rest.doGet(ctx, "/trades?"+params.Encode())
	if err != nil {
		return nil, &FetchError{Op: "trades", Err: err}
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '[' {
		return nil, nil
	}

	var apiTrades []APITrade
	if err := json.Unmarshal(body, &apiTrades); err != nil {
		return nil, &FetchError{Op: "trades", Err: fmt.Errorf("decode: %w", err)}
	}

	trades := make([]domain.Trade, 0, len(apiTrades))
	for i := range apiTrades {
		trades = append(trades, apiTrades[i].ToDomainTrade())
	}
	return trades, nil
}
