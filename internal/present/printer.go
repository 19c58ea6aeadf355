package present

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/alanyoungcy/polylens/internal/domain"
)

// Printer writes styled text to w. Styling is dropped automatically when w
// is not a terminal.
type Printer struct {
	w     io.Writer
	title lipgloss.Style
	yes   lipgloss.Style
	no    lipgloss.Style
	muted lipgloss.Style
}

// NewPrinter creates a Printer whose color profile is detected from w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:     w,
		title: r.NewStyle().Bold(true),
		yes:   r.NewStyle().Foreground(lipgloss.Color("#8BC34A")),
		no:    r.NewStyle().Foreground(lipgloss.Color("#e53935")),
		muted: r.NewStyle().Faint(true),
	}
}

func (p *Printer) flush(sb *strings.Builder) error {
	_, err := io.WriteString(p.w, sb.String())
	return err
}

func (p *Printer) marketLines(sb *strings.Builder, markets []domain.Market) {
	for i, m := range markets {
		fmt.Fprintf(sb, "%d. %s\n", i+1, m.Question)
		fmt.Fprintf(sb, "   %s | Volume: %s\n\n",
			p.yes.Render("YES: "+Cents(m.YesPrice())),
			FormatVolume(displayVolume(m)),
		)
	}
}

// Search renders a ranked resolution.
func (p *Printer) Search(keyword string, markets []domain.Market) error {
	var sb strings.Builder
	if len(markets) == 0 {
		sb.WriteString(NoMatch(keyword) + "\n")
		return p.flush(&sb)
	}
	sb.WriteString(p.title.Render(fmt.Sprintf("SEARCH RESULTS: %q", keyword)) + "\n")
	sb.WriteString("Found " + plural(len(markets), "market") + "\n\n")
	p.marketLines(&sb, markets)
	sb.WriteString(p.muted.Render("Use view to see price history for the best match.") + "\n")
	return p.flush(&sb)
}

// List renders a titled market list such as trending or recent.
func (p *Printer) List(title string, markets []domain.Market) error {
	var sb strings.Builder
	if len(markets) == 0 {
		sb.WriteString("Unable to fetch markets from Polymarket.\n")
		return p.flush(&sb)
	}
	sb.WriteString(p.title.Render(title) + "\n\n")
	p.marketLines(&sb, markets)
	return p.flush(&sb)
}

// View renders one market with its price series summary.
func (p *Printer) View(m domain.Market, points []domain.PricePoint) error {
	var sb strings.Builder
	sb.WriteString(p.title.Render(m.Question) + "\n")
	if m.EventTitle != "" && m.EventTitle != m.Question {
		sb.WriteString(p.muted.Render(m.EventTitle) + "\n")
	}
	fmt.Fprintf(&sb, "%s | %s\n",
		p.yes.Render("YES: "+Cents(m.YesPrice())),
		p.no.Render("NO: "+Cents(m.NoPrice())),
	)
	fmt.Fprintf(&sb, "Volume: %s | 24h: %s\n", FormatVolume(displayVolume(m)), FormatVolume(m.Volume24h))
	if m.EndDate != nil {
		fmt.Fprintf(&sb, "Ends: %s\n", m.EndDate.UTC().Format(time.DateOnly))
	}
	p.historySummary(&sb, points)
	return p.flush(&sb)
}

// History renders a price series, one point per line.
func (p *Printer) History(conditionID string, points []domain.PricePoint) error {
	var sb strings.Builder
	sb.WriteString(p.title.Render("PRICE HISTORY: "+conditionID) + "\n")
	p.historySummary(&sb, points)
	for _, pt := range points {
		fmt.Fprintf(&sb, "%s  %s\n", time.Unix(pt.Timestamp, 0).UTC().Format(time.DateTime), Cents(pt.Price))
	}
	return p.flush(&sb)
}

func (p *Printer) historySummary(sb *strings.Builder, points []domain.PricePoint) {
	if len(points) == 0 {
		sb.WriteString(p.muted.Render("History: no trades") + "\n")
		return
	}
	first, last := points[0], points[len(points)-1]
	sb.WriteString(p.muted.Render(fmt.Sprintf("History: %s, %s → %s",
		plural(len(points), "point"), Cents(first.Price), Cents(last.Price))) + "\n")
}
