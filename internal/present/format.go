// Package present renders markets and price series as terminal text.
package present

import (
	"fmt"
	"math"

	"github.com/alanyoungcy/polylens/internal/domain"
)

// FormatVolume abbreviates a dollar amount: $1.2M, $3.4K, $12.
func FormatVolume(v float64) string {
	switch {
	case v > 1_000_000:
		return fmt.Sprintf("$%.1fM", v/1_000_000)
	case v > 1_000:
		return fmt.Sprintf("$%.1fK", v/1_000)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

// Cents renders a probability as whole cents, rounding half up.
func Cents(p float64) string {
	return fmt.Sprintf("%d¢", int(math.Floor(p*100+0.5)))
}

// NoMatch is the user-facing message for an empty resolution.
func NoMatch(q string) string {
	return fmt.Sprintf("No market found for %q", q)
}

// displayVolume prefers lifetime volume, falling back to the 24h figure.
func displayVolume(m domain.Market) float64 {
	if m.Volume > 0 {
		return m.Volume
	}
	return m.Volume24h
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
