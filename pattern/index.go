package pattern

// IndexScope holds the iteration counters of the repetitions enclosing the
// current point of a walk. Each walk owns its scope.
type IndexScope struct {
	frames []indexFrame
}

type indexFrame struct {
	name  string
	count int
}

// Push enters a repetition. Unnamed repetitions push a frame too, so Push and
// Pop always pair up.
func (s *IndexScope) Push(name string) {
	s.frames = append(s.frames, indexFrame{name: name})
}

// Increment counts one completed iteration of the innermost repetition.
func (s *IndexScope) Increment() {
	if len(s.frames) == 0 {
		panic("pattern: Increment on empty index scope")
	}
	s.frames[len(s.frames)-1].count++
}

// Pop leaves the innermost repetition and returns its final count.
func (s *IndexScope) Pop() int {
	if len(s.frames) == 0 {
		panic("pattern: Pop on empty index scope")
	}
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return top.count
}

// Lookup returns the current count of the innermost repetition indexed by
// name.
func (s *IndexScope) Lookup(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].name == name {
			return s.frames[i].count, true
		}
	}
	return 0, false
}

func (s *IndexScope) depth() int {
	return len(s.frames)
}
