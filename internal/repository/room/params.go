package room

// MoveCursorParams is an atomic relative cursor move. ExpectedIndex < 0
// skips the optimistic check.
type MoveCursorParams struct {
	RoomHash      string
	ExpectedIndex int
	Delta         int
}
