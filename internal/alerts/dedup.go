package alerts

import "time"

// Ledger records when each pool last fired an alert
type Ledger interface {
	LastAlertAt(network, poolID string) (time.Time, bool)
}

// Deduper suppresses repeat alerts for a pool inside the cooldown. A
// zero cooldown means single-fire: one alert per pool for the lifetime
// of the ledger.
type Deduper struct {
	cooldown time.Duration
	ledger   Ledger
}

// NewDeduper creates a deduper over an alert ledger
func NewDeduper(cooldown time.Duration, ledger Ledger) *Deduper {
	return &Deduper{cooldown: cooldown, ledger: ledger}
}

// ShouldAlert reports whether a pool may fire an alert at the given time
func (d *Deduper) ShouldAlert(network, poolID string, now time.Time) bool {
	last, seen := d.ledger.LastAlertAt(network, poolID)
	if !seen {
		return true
	}
	if d.cooldown == 0 {
		return false
	}
	return now.Sub(last) >= d.cooldown
}
