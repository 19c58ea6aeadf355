package polymarket

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/polylens/internal/domain"
	"github.com/alanyoungcy/polylens/internal/query"
)

// The Gamma API is loosely typed: numbers arrive as JSON numbers or strings,
// arrays as arrays or JSON-encoded strings, booleans as bools or "true". The
// flex* types below accept every shape and never fail the enclosing record;
// malformed values decode to their zero value with ok=false.

// flexBool unmarshals from JSON bool or string ("true"/"false").
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	}
	return nil
}

// flexFloat unmarshals from a JSON number or a numeric string. NaN and
// infinities are treated as absent.
type flexFloat struct {
	v  float64
	ok bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	*f = flexFloat{}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat{v: n, ok: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
			*f = flexFloat{v: n, ok: true}
		}
	}
	return nil
}

func (f *flexFloat) value() (float64, bool) {
	if f == nil {
		return 0, false
	}
	return f.v, f.ok
}

// flexString unmarshals ids that may be sent as strings or numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
	}
	return nil
}

// flexList unmarshals a list of scalars sent either as a JSON array or as a
// JSON-encoded string holding that array, e.g. "[\"0.42\",\"0.58\"]".
type flexList struct {
	items []string
	ok    bool
}

func (f *flexList) UnmarshalJSON(data []byte) error {
	*f = flexList{}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		data = []byte(s)
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	items := make([]string, 0, len(raw))
	for _, r := range raw {
		var str string
		if err := json.Unmarshal(r, &str); err == nil {
			items = append(items, str)
			continue
		}
		var n json.Number
		if err := json.Unmarshal(r, &n); err == nil {
			items = append(items, n.String())
			continue
		}
		return nil
	}
	*f = flexList{items: items, ok: true}
	return nil
}

// --------------------------------------------------------------------------
// Gamma API DTOs
// --------------------------------------------------------------------------

// APIMarket represents a market as returned by the Gamma API, either at the
// top level or embedded in an event.
type APIMarket struct {
	ID               flexString `json:"id"`
	Question         string     `json:"question"`
	ConditionID      string     `json:"conditionId"`
	ConditionIDSnake string     `json:"condition_id"`
	Slug             string     `json:"slug"`
	OutcomePrices    flexList   `json:"outcomePrices"`
	ClobTokenIDs     flexList   `json:"clobTokenIds"`
	Volume           *flexFloat `json:"volume"`
	VolumeNum        *flexFloat `json:"volumeNum"`
	Volume24hr       *flexFloat `json:"volume24hr"`
	Liquidity        *flexFloat `json:"liquidity"`
	LiquidityNum     *flexFloat `json:"liquidityNum"`
	Active           *flexBool  `json:"active"`
	Closed           flexBool   `json:"closed"`
	AcceptingOrders  *flexBool  `json:"acceptingOrders"`
	EndDate          string     `json:"endDate"`
	EndDateISO       string     `json:"endDateIso"`
	Events           []APIEvent `json:"events"`
}

// APIEvent represents an event as returned by the Gamma API. An event groups
// one or more related markets.
type APIEvent struct {
	ID         flexString  `json:"id"`
	Title      string      `json:"title"`
	Slug       string      `json:"slug"`
	Active     *flexBool   `json:"active"`
	Closed     flexBool    `json:"closed"`
	EndDate    string      `json:"endDate"`
	Volume24hr *flexFloat  `json:"volume24hr"`
	Markets    []APIMarket `json:"markets"`
}

// APITag is a topic tag from /tags.
type APITag struct {
	ID    flexString `json:"id"`
	Label string     `json:"label"`
	Slug  string     `json:"slug"`
}

// searchResponse is the body of /public-search.
type searchResponse struct {
	Events []APIEvent `json:"events"`
}

// APITrade is a fill from the data API /trades endpoint.
type APITrade struct {
	ConditionID  string     `json:"conditionId"`
	OutcomeIndex *flexFloat `json:"outcomeIndex"`
	Timestamp    *flexFloat `json:"timestamp"`
	Price        *flexFloat `json:"price"`
	Size         *flexFloat `json:"size"`
	Side         string     `json:"side"`
}

// --------------------------------------------------------------------------
// Conversion helpers: API types -> domain types
// --------------------------------------------------------------------------

// ToDomainMarket converts an APIMarket to a domain.Market. Absent or
// malformed fields fall back to defaults: prices 0.5/0.5, volume and
// liquidity 0, active and accepting orders true. When the market embeds its
// parent event the event title and slug are copied onto it.
func (m *APIMarket) ToDomainMarket() domain.Market {
	dm := domain.Market{
		Question:        strings.TrimSpace(m.Question),
		Slug:            m.Slug,
		ConditionID:     m.ConditionID,
		Prices:          parsePrices(m.OutcomePrices),
		Active:          m.Active == nil || bool(*m.Active),
		Closed:          bool(m.Closed),
		AcceptingOrders: m.AcceptingOrders == nil || bool(*m.AcceptingOrders),
	}
	if dm.ConditionID == "" {
		dm.ConditionID = m.ConditionIDSnake
	}
	dm.ID = firstNonEmpty(string(m.ID), dm.ConditionID)
	if dm.ID == "" && dm.Question != "" {
		dm.ID = "q:" + query.Normalize(dm.Question)
	}

	if m.ClobTokenIDs.ok {
		for i := 0; i < len(m.ClobTokenIDs.items) && i < 2; i++ {
			dm.TokenIDs[i] = m.ClobTokenIDs.items[i]
		}
	}

	if v, ok := m.VolumeNum.value(); ok {
		dm.Volume = v
	} else if v, ok := m.Volume.value(); ok {
		dm.Volume = v
	}
	if v, ok := m.Volume24hr.value(); ok {
		dm.Volume24h = v
	}
	if v, ok := m.LiquidityNum.value(); ok {
		dm.Liquidity, dm.HasLiquidity = v, true
	} else if v, ok := m.Liquidity.value(); ok {
		dm.Liquidity, dm.HasLiquidity = v, true
	}

	if t, ok := parseTime(firstNonEmpty(m.EndDate, m.EndDateISO)); ok {
		dm.EndDate = &t
	}

	if len(m.Events) > 0 {
		dm.EventTitle = m.Events[0].Title
		dm.EventSlug = m.Events[0].Slug
	}
	return dm
}

// ToDomainEvent converts an APIEvent and its embedded markets. Every market
// is stamped with the event's title and slug for scoring context.
func (e *APIEvent) ToDomainEvent() domain.Event {
	ev := domain.Event{
		ID:     string(e.ID),
		Title:  e.Title,
		Slug:   e.Slug,
		Active: e.Active == nil || bool(*e.Active),
		Closed: bool(e.Closed),
	}
	if v, ok := e.Volume24hr.value(); ok {
		ev.Volume24h = v
	}
	if t, ok := parseTime(e.EndDate); ok {
		ev.EndDate = &t
	}

	ev.Markets = make([]domain.Market, 0, len(e.Markets))
	for i := range e.Markets {
		m := e.Markets[i].ToDomainMarket()
		m.EventTitle = e.Title
		m.EventSlug = e.Slug
		ev.Markets = append(ev.Markets, m)
	}
	return ev
}

// ToDomainTag converts an APITag to a domain.Tag.
func (t *APITag) ToDomainTag() domain.Tag {
	return domain.Tag{ID: string(t.ID), Label: t.Label, Slug: t.Slug}
}

// ToDomainTrade converts an APITrade. Trades without a whole outcome index get
// -1 so they never count as either side.
func (t *APITrade) ToDomainTrade() domain.Trade {
	tr := domain.Trade{ConditionID: t.ConditionID, OutcomeIndex: -1, Side: t.Side}
	if v, ok := t.OutcomeIndex.value(); ok && v == math.Trunc(v) {
		tr.OutcomeIndex = int(v)
	}
	if v, ok := t.Timestamp.value(); ok {
		tr.Timestamp = int64(v)
	}
	if v, ok := t.Price.value(); ok {
		tr.Price = v
	} else {
		tr.Price = -1
	}
	if v, ok := t.Size.value(); ok {
		tr.Size = v
	}
	return tr
}

// parsePrices resolves the YES/NO probability pair. Anything other than two
// finite probabilities yields the 0.5/0.5 default.
func parsePrices(l flexList) [2]float64 {
	def := [2]float64{domain.DefaultPrice, domain.DefaultPrice}
	if !l.ok || len(l.items) < 2 {
		return def
	}
	var out [2]float64
	for i := 0; i < 2; i++ {
		p, err := strconv.ParseFloat(strings.TrimSpace(l.items[i]), 64)
		if err != nil || !domain.ValidPrice(p) {
			return def
		}
		out[i] = p
	}
	return out
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
