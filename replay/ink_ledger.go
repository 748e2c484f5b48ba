package replay

import (
	"fmt"
	"strings"

	"github.com/crytic/stylus-replay/trace"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// InkLedger accumulates the ink recorded for every replayed host call.
type InkLedger struct {
	entries map[string]*LedgerEntry
	total   uint64
}

// LedgerEntry is the ink used by all calls to one host call.
type LedgerEntry struct {
	// Name is the host call name.
	Name string
	// Count is the number of replayed calls.
	Count uint64
	// Ink is the total ink used.
	Ink uint64
	// Gas is Ink converted to gas. It is only set by InkLedger.Summary.
	Gas decimal.Decimal
}

// NewInkLedger creates an empty ledger.
func NewInkLedger() *InkLedger {
	return &InkLedger{entries: make(map[string]*LedgerEntry)}
}

// Record adds a replayed host call to the ledger.
func (l *InkLedger) Record(h trace.Hostio) {
	entry, ok := l.entries[h.Name()]
	if !ok {
		entry = &LedgerEntry{Name: h.Name()}
		l.entries[h.Name()] = entry
	}
	entry.Count++
	entry.Ink += h.InkUsed()
	l.total += h.InkUsed()
}

// TotalInk returns the ink used by every recorded call.
func (l *InkLedger) TotalInk() uint64 {
	return l.total
}

// Calls returns the number of recorded calls.
func (l *InkLedger) Calls() uint64 {
	var calls uint64
	for _, entry := range l.entries {
		calls += entry.Count
	}
	return calls
}

// Summary returns one entry per host call, most expensive first, with ink converted to gas at inkPrice ink per gas.
// A zero inkPrice leaves Gas unset.
func (l *InkLedger) Summary(inkPrice uint32) []LedgerEntry {
	names := make([]string, 0, len(l.entries))
	for name := range l.entries {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if l.entries[a].Ink != l.entries[b].Ink {
			if l.entries[a].Ink > l.entries[b].Ink {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})

	summary := make([]LedgerEntry, 0, len(names))
	for _, name := range names {
		entry := *l.entries[name]
		entry.Gas = InkToGas(entry.Ink, inkPrice)
		summary = append(summary, entry)
	}
	return summary
}

// InkToGas converts ink to gas at inkPrice ink per gas, rounded to four decimal places.
func InkToGas(ink uint64, inkPrice uint32) decimal.Decimal {
	if inkPrice == 0 {
		return decimal.Zero
	}
	return decimal.NewFromUint64(ink).Div(decimal.NewFromInt(int64(inkPrice))).Round(4)
}

// String renders the summary as a table, using gas when inkPrice is known.
func (l *InkLedger) String(inkPrice uint32) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %8s %14s", "hostio", "calls", "ink")
	if inkPrice != 0 {
		fmt.Fprintf(&b, " %14s", "gas")
	}
	b.WriteByte('\n')
	for _, entry := range l.Summary(inkPrice) {
		fmt.Fprintf(&b, "%-24s %8d %14d", entry.Name, entry.Count, entry.Ink)
		if inkPrice != 0 {
			fmt.Fprintf(&b, " %14s", entry.Gas.String())
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%-24s %8d %14d", "total", l.Calls(), l.total)
	if inkPrice != 0 {
		fmt.Fprintf(&b, " %14s", InkToGas(l.total, inkPrice).String())
	}
	return b.String()
}

// RecordedInkPrice returns the ink price recorded by the first tx_ink_price call in frame or its nested frames.
func RecordedInkPrice(frame *trace.TraceFrame) (uint32, bool) {
	var price uint32
	found := false
	frame.Walk(func(h trace.Hostio, _ *trace.TraceFrame, _ int) bool {
		if k, ok := h.Kind.(*trace.TxInkPrice); ok {
			price = k.InkPrice
			found = true
			return false
		}
		return true
	})
	return price, found
}
