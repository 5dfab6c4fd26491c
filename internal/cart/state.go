package cart

import "github.com/shopspring/decimal"

// State is the canonical in-memory cart. Lines keep insertion order, which
// matters for display only. IsOpen is the ephemeral drawer-visibility flag
// and is never part of the persisted cart identity.
type State struct {
	Lines  []Line
	IsOpen bool
}

// Subtotal sums unit price times quantity over all lines. Derived, never stored.
func (s State) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.Lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// ItemCount sums the quantities over all lines. Derived, never stored.
func (s State) ItemCount() int {
	count := 0
	for _, line := range s.Lines {
		count += line.Quantity
	}
	return count
}

// clone returns a state whose line slice is independent of the receiver's.
func (s State) clone() State {
	lines := make([]Line, len(s.Lines))
	copy(lines, s.Lines)
	return State{Lines: lines, IsOpen: s.IsOpen}
}
