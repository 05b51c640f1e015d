package interaction

type SwipeOutcome int

const (
	SwipeSnapBack SwipeOutcome = iota
	SwipeDelete
)

// Swipe holds the horizontal drag thresholds, in points. Both are negative:
// dragging left past RevealAt shows the delete affordance, releasing past
// DeleteAt asks for deletion.
type Swipe struct {
	RevealAt float64
	DeleteAt float64
}

var DefaultSwipe = Swipe{RevealAt: -50, DeleteAt: -100}

// Move reports whether the delete affordance is visible at offset dx.
func (s Swipe) Move(dx float64) bool {
	return dx < s.RevealAt
}

func (s Swipe) Release(dx float64) SwipeOutcome {
	if dx < s.DeleteAt {
		return SwipeDelete
	}
	return SwipeSnapBack
}
