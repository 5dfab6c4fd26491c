package cart

// Reduce applies one action to a state and returns the next state. It is pure:
// the input state is never mutated, and no action can fail.
func Reduce(state State, action Action) State {
	switch act := action.(type) {
	case AddLine:
		return reduceAdd(state, act.Line)
	case RemoveLine:
		return reduceRemove(state, act.LineID)
	case SetQuantity:
		if act.Quantity <= 0 {
			return reduceRemove(state, act.LineID)
		}
		return reduceSetQuantity(state, act.LineID, act.Quantity)
	case Clear:
		next := state.clone()
		next.Lines = nil
		return next
	case ToggleOpen:
		next := state.clone()
		next.IsOpen = !next.IsOpen
		return next
	case CloseDrawer:
		next := state.clone()
		next.IsOpen = false
		return next
	default:
		return state.clone()
	}
}

func reduceAdd(state State, line Line) State {
	next := state.clone()
	next.IsOpen = true

	if line.Quantity <= 0 {
		line.Quantity = 1
	}

	variant := line.Variant()
	for i, existing := range next.Lines {
		if existing.Variant() == variant {
			// Existing id and presentational metadata win; only quantities sum.
			existing.Quantity += line.Quantity
			next.Lines[i] = existing
			return next
		}
	}

	if line.ID == "" {
		line.ID = NewLineID()
	}
	next.Lines = append(next.Lines, line)
	return next
}

func reduceRemove(state State, lineID string) State {
	next := state.clone()
	for i, existing := range next.Lines {
		if existing.ID == lineID {
			next.Lines = append(next.Lines[:i:i], next.Lines[i+1:]...)
			return next
		}
	}
	return next
}

func reduceSetQuantity(state State, lineID string, quantity int) State {
	next := state.clone()
	for i, existing := range next.Lines {
		if existing.ID == lineID {
			existing.Quantity = quantity
			next.Lines[i] = existing
			return next
		}
	}
	return next
}
