package chart

// Hover tracks which element, if any, is under the pointer. At most one index is
// hovered at a time.
type Hover struct {
	index  int
	active bool
}

// Enter moves to Hovering(i). A negative index clears the state.
func (h *Hover) Enter(i int) {
	if i < 0 {
		h.Clear()
		return
	}
	h.index = i
	h.active = true
}

// Leave handles the pointer leaving element i. Leaving an element that is not the hovered
// one is a stale event and is ignored.
func (h *Hover) Leave(i int) {
	if h.active && h.index == i {
		h.Clear()
	}
}

// Clear returns to Idle.
func (h *Hover) Clear() {
	h.index = 0
	h.active = false
}

// Current returns the hovered index and whether one is hovered.
func (h Hover) Current() (int, bool) {
	return h.index, h.active
}
