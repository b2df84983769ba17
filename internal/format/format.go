// Package format renders ranked snapshots into Telegram HTML. All
// functions are pure: identical inputs produce identical output.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/dexpulse/trendwatch/internal/trend"
)

var rankEmoji = map[int]string{
	1: "1️⃣",
	2: "2️⃣",
	3: "3️⃣",
	4: "4️⃣",
	5: "5️⃣",
}

// Snapshot renders a ranked snapshot into the pinned channel message. An
// empty snapshot renders the quiet-market text, never a bare list header.
func Snapshot(snap trend.RankedSnapshot, asOf time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\U0001f525 <b>%s — Trending (%dm)</b>\n", NetworkTitle(snap.Network), snap.WindowMinutes)
	fmt.Fprintf(&b, "\U0001f552 Snapshot as of %s\n", asOf.UTC().Format("15:04 UTC"))

	if snap.Empty() {
		fmt.Fprintf(&b, "\n\U0001f634 <i>No trading activity in the last %dm.</i>\n", snap.WindowMinutes)
		b.WriteString("\U0001f552 Liquidity is quiet — check back later!")
		return b.String()
	}

	for i, sp := range snap.Pools {
		pcEmoji := "\U0001f4c8"
		if sp.PriceChangePct < 0 {
			pcEmoji = "\U0001f4c9"
		}
		fmt.Fprintf(&b, "\n%s <b>%s</b>\n", numberEmoji(i+1), sp.Pool.Pair)
		fmt.Fprintf(&b, "\U0001f4b5 Vol: %s | %s %+.2f%%\n", FormatUSD(sp.ShortVolumeUSD), pcEmoji, sp.PriceChangePct)
		fmt.Fprintf(&b, "\U0001f9ee Trades: %d | \U0001f680 Spike: %.1f%%\n", sp.TradeCount, sp.SpikeRatio*100)
		fmt.Fprintf(&b, "<a href='%s'>View</a>\n", sp.Pool.URL)
	}

	fmt.Fprintf(&b, "\n<a href='https://www.geckoterminal.com/%s/pools'>View All Pools</a>", snap.Network)
	return b.String()
}

// FormatUSD renders a dollar magnitude with K/M suffixes:
// >= 1M as "$x.xxM", >= 1K as "$x.xxK", else "$x.xx".
func FormatUSD(n float64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("$%.2fM", n/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("$%.2fK", n/1_000)
	default:
		return fmt.Sprintf("$%.2f", n)
	}
}

// NetworkTitle turns a provider slug into a display name,
// e.g. "besc-hyperchain" → "Besc Hyperchain".
func NetworkTitle(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func numberEmoji(n int) string {
	if e, ok := rankEmoji[n]; ok {
		return e
	}
	return fmt.Sprintf("%d.", n)
}
