package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/kvittering/kvittering/internal/listing"
	"github.com/kvittering/kvittering/internal/providers"
	"github.com/kvittering/kvittering/internal/providers/utils"
)

type styles struct {
	title lipgloss.Style
	label lipgloss.Style
	value lipgloss.Style
	muted lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{title: plain, label: plain, value: plain, muted: plain}
	}
	return styles{
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		value: lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		muted: lipgloss.NewStyle().Faint(true),
	}
}

// formatPrice renders whole kroner the Norwegian way ("1 500 kr")
func formatPrice(price int) string {
	if price <= 0 {
		return "ukjent"
	}
	return humanize.FormatInteger("# ###,", price) + " kr"
}

func renderSummary(l listing.Listing, st styles) string {
	var b strings.Builder

	b.WriteString(st.title.Render(utils.DefaultString(l.Title, "(uten tittel)")))
	b.WriteString("\n")

	row := func(label, value string) {
		if value == "" {
			value = st.muted.Render("-")
		} else {
			value = st.value.Render(value)
		}
		fmt.Fprintf(&b, "%s %s\n", st.label.Render(fmt.Sprintf("%-12s", label+":")), value)
	}

	row("Plattform", l.Platform.DisplayName())
	row("Annonse-ID", l.AdID)
	row("Pris", formatPrice(l.Price))
	row("Selger", l.Seller)
	row("Hovedbilde", l.PrimaryImage())
	if len(l.Images) > 1 {
		row("Bilder", fmt.Sprintf("%d", len(l.Images)))
		for _, img := range l.Images[1:] {
			fmt.Fprintf(&b, "  %s\n", st.muted.Render(img))
		}
	}
	row("URL", l.OriginalURL)

	if l.Description != "" {
		b.WriteString("\n")
		b.WriteString(l.Description)
		b.WriteString("\n")
	}
	return b.String()
}

func renderPlatforms(patterns []providers.HostPattern, reg *providers.Registry, st styles) string {
	var b strings.Builder
	seen := make(map[listing.Platform]bool)
	serving := make(map[listing.Platform]string)
	for _, provider := range reg.GetAll() {
		serving[provider.Platform()] = provider.Name()
	}

	for _, p := range patterns {
		if seen[p.Platform] {
			continue
		}
		seen[p.Platform] = true

		var hosts []string
		for _, q := range patterns {
			if q.Platform == p.Platform {
				hosts = append(hosts, q.Fragment)
			}
		}

		status := st.muted.Render("(disabled)")
		if name, ok := serving[p.Platform]; ok {
			status = st.value.Render("provider " + name)
		}
		fmt.Fprintf(&b, "- %s %s %s\n", st.title.Render(p.Platform.DisplayName()), st.label.Render(strings.Join(hosts, ", ")), status)
	}
	return b.String()
}
