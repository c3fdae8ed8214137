package pointer

// Delta is one recorded relative movement.
type Delta struct {
	DX int
	DY int
}

// FakeMover records movement requests for test assertions.
type FakeMover struct {
	// Moves contains every delta requested, in order.
	Moves []Delta

	// MoveError, if set, will be returned by Move.
	MoveError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeMover creates a FakeMover.
func NewFakeMover() *FakeMover {
	return &FakeMover{}
}

// Move records the requested delta.
func (f *FakeMover) Move(dx, dy int) error {
	if f.MoveError != nil {
		return f.MoveError
	}
	f.Moves = append(f.Moves, Delta{DX: dx, DY: dy})
	return nil
}

// Close marks the mover as closed.
func (f *FakeMover) Close() error {
	f.Closed = true
	return nil
}

// Net returns the cumulative displacement of all recorded moves.
func (f *FakeMover) Net() Delta {
	var net Delta
	for _, m := range f.Moves {
		net.DX += m.DX
		net.DY += m.DY
	}
	return net
}

// Reset clears recorded moves.
func (f *FakeMover) Reset() {
	f.Moves = nil
	f.Closed = false
	f.MoveError = nil
}
