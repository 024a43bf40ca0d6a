package transcript

// Policy bounds the history kept for an active session. The first turn is
// always retained along with the most recent MaxTurns turns; everything in
// between is dropped.
type Policy struct {
	MaxTurns int
}

// Apply returns turns unchanged when len(turns) <= MaxTurns+1, otherwise a new
// slice of exactly MaxTurns+1 turns. A non-positive MaxTurns disables pruning.
func (p Policy) Apply(turns []Turn) []Turn {
	if p.MaxTurns <= 0 || len(turns) <= p.MaxTurns+1 {
		return turns
	}
	out := make([]Turn, 0, p.MaxTurns+1)
	out = append(out, turns[0])
	out = append(out, turns[len(turns)-p.MaxTurns:]...)
	return out
}

// Pruned reports whether Apply would drop turns from a history of length n.
func (p Policy) Pruned(n int) bool {
	return p.MaxTurns > 0 && n > p.MaxTurns+1
}
