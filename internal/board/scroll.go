package board

// ScrollTracker holds the latest horizontal scroll offset of the board viewport.
type ScrollTracker struct {
	offset int
	locked bool
}

// SetOffset records x as the current offset. It returns false, leaving the
// offset unchanged, while the tracker is locked.
func (s *ScrollTracker) SetOffset(x int) bool {
	if s.locked {
		return false
	}
	s.offset = x
	return true
}

// Offset returns the current offset.
func (s *ScrollTracker) Offset() int {
	return s.offset
}

// Lock freezes the offset.
func (s *ScrollTracker) Lock() {
	s.locked = true
}

// Unlock lets SetOffset apply again.
func (s *ScrollTracker) Unlock() {
	s.locked = false
}

// Locked reports whether the offset is frozen.
func (s *ScrollTracker) Locked() bool {
	return s.locked
}
