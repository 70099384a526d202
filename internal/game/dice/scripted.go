package dice

import "sync"

// ScriptedSource replays a fixed sequence of die faces, cycling when
// exhausted. It exists for deterministic tests and replays.
type ScriptedSource struct {
	mu    sync.Mutex
	faces []int
	next  int
}

// NewScriptedSource returns a Source that yields faces in order.
//
// Precondition: len(faces) > 0; every face must be >= 1.
// Postcondition: The k-th roll of an n-sided die yields ((faces[k]-1) mod n) + 1.
func NewScriptedSource(faces ...int) *ScriptedSource {
	if len(faces) == 0 {
		panic("dice: NewScriptedSource requires at least one face")
	}
	return &ScriptedSource{faces: faces}
}

// Intn returns the next scripted face minus one, reduced modulo n.
//
// Precondition: n > 0.
func (s *ScriptedSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.faces[s.next%len(s.faces)]
	s.next++
	return (f - 1) % n
}

// Draws returns how many values have been drawn so far.
func (s *ScriptedSource) Draws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
