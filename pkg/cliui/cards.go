package cliui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/papercomputeco/novostroy/pkg/catalog"
)

var cardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1)

// FormatPrice renders a price in rubles: millions with one decimal,
// smaller amounts with grouped thousands.
func FormatPrice(price int64) string {
	if price >= 1_000_000 {
		return fmt.Sprintf("%.1f млн ₽", float64(price)/1_000_000)
	}
	return groupThousands(price) + " ₽"
}

// FormatPriceRange renders "от X до Y", either bound may be missing.
func FormatPriceRange(from, to *int64) string {
	switch {
	case from != nil && to != nil:
		return "от " + FormatPrice(*from) + " до " + FormatPrice(*to)
	case from != nil:
		return "от " + FormatPrice(*from)
	case to != nil:
		return "до " + FormatPrice(*to)
	default:
		return "цена по запросу"
	}
}

// ComplexCard renders a recommended complex as a bordered card.
func ComplexCard(c catalog.Complex, width int) string {
	var b strings.Builder

	b.WriteString(NameStyle.Render(c.Name))
	if c.Rating > 0 {
		fmt.Fprintf(&b, "  %s", ValueStyle.Render(fmt.Sprintf("★ %.1f", c.Rating)))
		if c.ReviewsCount > 0 {
			fmt.Fprintf(&b, " %s", DimStyle.Render(fmt.Sprintf("(%d)", c.ReviewsCount)))
		}
	}

	if place := joinNonEmpty(", ", c.District, c.Address); place != "" {
		b.WriteString("\n" + DimStyle.Render(place))
	}

	b.WriteString("\n" + KeyStyle.Render("Цена: ") + ValueStyle.Render(FormatPriceRange(c.PriceFrom, c.PriceTo)))
	if c.CompletionDate != "" {
		b.WriteString("\n" + KeyStyle.Render("Сдача: ") + ValueStyle.Render(c.CompletionDate))
	}
	if c.Developer != nil && c.Developer.Name != "" {
		b.WriteString("\n" + KeyStyle.Render("Застройщик: ") + ValueStyle.Render(c.Developer.Name))
	}
	if len(c.Features) > 0 {
		b.WriteString("\n" + DimStyle.Render(strings.Join(c.Features, " · ")))
	}

	style := cardStyle
	if width > 4 {
		style = style.Width(width - 2)
	}
	return style.Render(b.String())
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
