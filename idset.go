package rigid

// idSet is a set of body ids used for the per-step tested list and the
// permanent no-collide list.
type idSet map[BodyID]struct{}

func (s *idSet) add(id BodyID) {
	if *s == nil {
		*s = make(idSet)
	}
	(*s)[id] = struct{}{}
}

func (s idSet) has(id BodyID) bool {
	_, ok := s[id]
	return ok
}

func (s idSet) clear() {
	clear(s)
}

// pairFilter reports whether a pair must be skipped before narrow phase.
// A pair is skipped when both bodies are fixed, when either excludes the
// other, or when the pair was already tested this step. Otherwise both
// bodies are marked as tested.
func pairFilter(a, b *Body) bool {
	if a.fixed && b.fixed {
		return true
	}
	if a.IsNoCollide(b) || b.IsNoCollide(a) {
		return true
	}
	if a.IsTestedAgainst(b) {
		return true
	}
	a.AddTestedAgainst(b)
	b.AddTestedAgainst(a)
	return false
}
