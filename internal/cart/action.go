package cart

// Action is the closed set of cart transitions. Every action is total: the
// reducer never fails, it only produces the next state.
type Action interface {
	isAction()
}

// AddLine appends a line, or merges quantities into the existing line with
// the same variant key. Always opens the drawer.
type AddLine struct {
	Line Line
}

// RemoveLine deletes the line with the given id; no-op when absent.
type RemoveLine struct {
	LineID string
}

// SetQuantity sets a line's quantity exactly. A quantity of zero or less
// removes the line.
type SetQuantity struct {
	LineID   string
	Quantity int
}

// Clear empties the cart without touching drawer visibility.
type Clear struct{}

// ToggleOpen flips drawer visibility.
type ToggleOpen struct{}

// CloseDrawer forces the drawer shut.
type CloseDrawer struct{}

func (AddLine) isAction()     {}
func (RemoveLine) isAction()  {}
func (SetQuantity) isAction() {}
func (Clear) isAction()       {}
func (ToggleOpen) isAction()  {}
func (CloseDrawer) isAction() {}
