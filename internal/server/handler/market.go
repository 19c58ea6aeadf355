package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alanyoungcy/polylens/internal/domain"
	"github.com/alanyoungcy/polylens/internal/service"
)

// Resolver turns free text into ranked markets.
type Resolver interface {
	Resolve(ctx context.Context, input string, limit int) service.Resolution
}

// MarketLister serves the curated market lists.
type MarketLister interface {
	Trending(ctx context.Context, limit int) []domain.Market
	Recent(ctx context.Context, limit int) []domain.Market
}

// HistorySource samples a market's YES price series.
type HistorySource interface {
	History(ctx context.Context, conditionID string) []domain.PricePoint
}

// MarketHandler serves market lookup, listing and history endpoints.
type MarketHandler struct {
	resolver Resolver
	lists    MarketLister
	history  HistorySource
	logger   *slog.Logger
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(resolver Resolver, lists MarketLister, history HistorySource, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		resolver: resolver,
		lists:    lists,
		history:  history,
		logger:   logHandler(logger, "markets"),
	}
}

type listResponse struct {
	Markets []domain.Market `json:"markets"`
	Count   int             `json:"count"`
}

type viewResponse struct {
	Query   string              `json:"query"`
	Tier    string              `json:"tier"`
	Market  domain.Market       `json:"market"`
	History []domain.PricePoint `json:"history"`
}

type historyResponse struct {
	ConditionID string              `json:"condition_id"`
	Points      []domain.PricePoint `json:"points"`
}

func noMatch(q string) string {
	return fmt.Sprintf("%s for %q", domain.ErrNoMatch, q)
}

// Search resolves q into ranked markets.
// GET /api/markets/search?q=bitcoin&limit=10
func (h *MarketHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := queryText(r)
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	res := h.resolver.Resolve(r.Context(), q, parseLimit(r))
	if !res.Found() {
		h.logger.DebugContext(r.Context(), "no match", slog.String("query", q))
		writeError(w, http.StatusNotFound, noMatch(q))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// View resolves q to its best market and attaches that market's price
// history.
// GET /api/markets/view?q=will-bitcoin-hit-100k
func (h *MarketHandler) View(w http.ResponseWriter, r *http.Request) {
	q := queryText(r)
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	res := h.resolver.Resolve(r.Context(), q, 1)
	best, ok := res.Best()
	if !ok {
		writeError(w, http.StatusNotFound, noMatch(q))
		return
	}

	points := []domain.PricePoint{}
	if best.ConditionID != "" {
		points = h.history.History(r.Context(), best.ConditionID)
	}
	writeJSON(w, http.StatusOK, viewResponse{
		Query:   q,
		Tier:    res.Tier,
		Market:  best,
		History: points,
	})
}

// Trending lists the most active market of each top event.
// GET /api/markets/trending?limit=10
func (h *MarketHandler) Trending(w http.ResponseWriter, r *http.Request) {
	markets := h.lists.Trending(r.Context(), parseLimit(r))
	writeJSON(w, http.StatusOK, listResponse{Markets: markets, Count: len(markets)})
}

// Recent lists open markets in catalog order.
// GET /api/markets/recent?limit=10
func (h *MarketHandler) Recent(w http.ResponseWriter, r *http.Request) {
	markets := h.lists.Recent(r.Context(), parseLimit(r))
	writeJSON(w, http.StatusOK, listResponse{Markets: markets, Count: len(markets)})
}

// History returns the sampled YES price series of a condition.
// GET /api/markets/history/{conditionID}
func (h *MarketHandler) History(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("conditionID"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing condition id")
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{
		ConditionID: id,
		Points:      h.history.History(r.Context(), id),
	})
}
