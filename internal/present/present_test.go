package present

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polylens/internal/domain"
)

func TestFormatVolume(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{12.4, "$12"},
		{1000, "$1000"},
		{1000.01, "$1.0K"},
		{3_450, "$3.5K"},
		{1_000_000, "$1000.0K"},
		{1_234_567, "$1.2M"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatVolume(tt.in), "%v", tt.in)
	}
}

func TestCents(t *testing.T) {
	assert.Equal(t, "57¢", Cents(0.57))
	assert.Equal(t, "0¢", Cents(0))
	assert.Equal(t, "100¢", Cents(1))
	assert.Equal(t, "3¢", Cents(0.034))
}

func TestNoMatch(t *testing.T) {
	assert.Equal(t, `No market found for "zzz"`, NoMatch("zzz"))
}

func testMarkets() []domain.Market {
	return []domain.Market{
		{ID: "a", Question: "Will BTC hit 100k?", Prices: [2]float64{0.57, 0.43}, Volume: 1_234_567},
		{ID: "b", Question: "Will ETH flip BTC?", Prices: [2]float64{0.03, 0.97}, Volume24h: 3_450},
	}
}

func TestPrinter_Search(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf).Search("btc", testMarkets()))

	out := buf.String()
	assert.Contains(t, out, `SEARCH RESULTS: "btc"`)
	assert.Contains(t, out, "Found 2 markets")
	assert.Contains(t, out, "1. Will BTC hit 100k?\n   YES: 57¢ | Volume: $1.2M\n")
	assert.Contains(t, out, "2. Will ETH flip BTC?\n   YES: 3¢ | Volume: $3.5K\n")
	assert.NotContains(t, out, "\x1b[", "no escape codes when not writing to a terminal")

	buf.Reset()
	require.NoError(t, NewPrinter(&buf).Search("zzz", nil))
	assert.Equal(t, "No market found for \"zzz\"\n", buf.String())
}

func TestPrinter_List(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf).List("TOP TRENDING MARKETS", testMarkets()[:1]))
	assert.Equal(t, "TOP TRENDING MARKETS\n\n1. Will BTC hit 100k?\n   YES: 57¢ | Volume: $1.2M\n\n", buf.String())

	buf.Reset()
	require.NoError(t, NewPrinter(&buf).List("TOP TRENDING MARKETS", nil))
	assert.Equal(t, "Unable to fetch markets from Polymarket.\n", buf.String())
}

func TestPrinter_View(t *testing.T) {
	end := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	m := testMarkets()[0]
	m.EventTitle = "Bitcoin price"
	m.EndDate = &end

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf).View(m, []domain.PricePoint{{Timestamp: 1, Price: 0.4}, {Timestamp: 2, Price: 0.57}}))
	assert.Equal(t, "Will BTC hit 100k?\nBitcoin price\nYES: 57¢ | NO: 43¢\nVolume: $1.2M | 24h: $0\nEnds: 2026-06-30\nHistory: 2 points, 40¢ → 57¢\n", buf.String())

	buf.Reset()
	require.NoError(t, NewPrinter(&buf).View(testMarkets()[1], nil))
	assert.Contains(t, buf.String(), "History: no trades\n")
}

func TestPrinter_History(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf).History("0xabc", []domain.PricePoint{{Timestamp: 1_700_000_000, Price: 0.25}}))
	assert.Equal(t, "PRICE HISTORY: 0xabc\nHistory: 1 point, 25¢ → 25¢\n2023-11-14 22:13:20  25¢\n", buf.String())
}
