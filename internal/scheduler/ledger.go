package scheduler

import "time"

// civilDay identifies a calendar day without a time component.
type civilDay struct {
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time) civilDay {
	y, m, d := t.Date()
	return civilDay{year: y, month: m, day: d}
}

// Ledger records which template slot indices are consumed on each day.
// A Ledger belongs to exactly one scheduling run; it is never shared.
type Ledger struct {
	days map[civilDay]map[int]struct{}
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{days: make(map[civilDay]map[int]struct{})}
}

// Taken reports whether slot idx is already consumed on day.
func (l *Ledger) Taken(day time.Time, idx int) bool {
	_, ok := l.days[dayOf(day)][idx]
	return ok
}

// Claim consumes the first free slot of t on day, scanning in template order.
// Slots rejected by fits are skipped without being consumed; a nil fits
// accepts every slot. It returns false when no slot can be claimed.
func (l *Ledger) Claim(day time.Time, t Template, fits func(Slot) bool) (int, bool) {
	key := dayOf(day)
	used, ok := l.days[key]
	if !ok {
		used = make(map[int]struct{}, len(t))
		l.days[key] = used
	}

	for idx, slot := range t {
		if _, taken := used[idx]; taken {
			continue
		}
		if fits != nil && !fits(slot) {
			continue
		}
		used[idx] = struct{}{}
		return idx, true
	}
	return 0, false
}

// Used returns how many slots are consumed on day.
func (l *Ledger) Used(day time.Time) int {
	return len(l.days[dayOf(day)])
}

// Days returns the number of days the ledger has touched.
func (l *Ledger) Days() int {
	return len(l.days)
}
