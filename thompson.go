package regomaton

import "strconv"

// ConstructionError reports a structurally malformed intermediate automaton
// encountered during Thompson construction. Callers must treat regex to NFA
// conversion as fallible; no automaton is produced when construction fails.
type ConstructionError struct {
	err string
}

func (e ConstructionError) Error() string {
	return e.err
}

var _ error = (*ConstructionError)(nil)

func newConstructionError(err string) ConstructionError {
	return ConstructionError{err: err}
}

// Constructor builds NFAs from RegExp trees using the classic Thompson
// encoding. The fresh state counter is owned by one constructor value and
// is never shared, so independent constructions cannot interfere; within a
// single constructor ids are never reused, which keeps the state spaces of
// all sub-automata disjoint and makes their transition tables safe to
// union.
type Constructor struct {
	counter State
}

// NewConstructor returns a constructor with an empty state space.
func NewConstructor() *Constructor {
	return &Constructor{}
}

func (c *Constructor) newState() State {
	c.counter++
	return c.counter
}

// Construct translates re into an NFA with exactly one final state. The
// alphabet expands Any nodes and must cover every symbol re can consume.
// It fails with a ConstructionError when an intermediate automaton does not
// have exactly one final state to wire.
func (c *Constructor) Construct(re RegExp, alphabet Alphabet) (*NFA, error) {
	switch r := re.(type) {
	case Char:
		start, end := c.newState(), c.newState()
		return &NFA{
			Transitions: NFATransitions{start: {r.Symbol: NewStateSet(end)}},
			Epsilon:     EpsilonTransitions{},
			Start:       start,
			Finals:      NewStateSet(end),
		}, nil

	case Any:
		start, end := c.newState(), c.newState()
		row := make(map[rune]StateSet, len(alphabet))
		for sym := range alphabet {
			row[sym] = NewStateSet(end)
		}
		return &NFA{
			Transitions: NFATransitions{start: row},
			Epsilon:     EpsilonTransitions{},
			Start:       start,
			Finals:      NewStateSet(end),
		}, nil

	case Empty:
		start := c.newState()
		return &NFA{
			Transitions: NFATransitions{},
			Epsilon:     EpsilonTransitions{},
			Start:       start,
			Finals:      NewStateSet(start),
		}, nil

	case Seq:
		left, err := c.Construct(r.Left, alphabet)
		if err != nil {
			return nil, err
		}
		right, err := c.Construct(r.Right, alphabet)
		if err != nil {
			return nil, err
		}
		leftEnd, err := singleFinal(left)
		if err != nil {
			return nil, err
		}
		eps := mergeEpsilon(left.Epsilon, right.Epsilon)
		addEpsilon(eps, leftEnd, right.Start)
		return &NFA{
			Transitions: mergeTransitions(left.Transitions, right.Transitions),
			Epsilon:     eps,
			Start:       left.Start,
			Finals:      right.Finals,
		}, nil

	case Or:
		start := c.newState()
		left, err := c.Construct(r.Left, alphabet)
		if err != nil {
			return nil, err
		}
		right, err := c.Construct(r.Right, alphabet)
		if err != nil {
			return nil, err
		}
		end := c.newState()
		leftEnd, err := singleFinal(left)
		if err != nil {
			return nil, err
		}
		rightEnd, err := singleFinal(right)
		if err != nil {
			return nil, err
		}
		eps := mergeEpsilon(left.Epsilon, right.Epsilon)
		addEpsilon(eps, start, left.Start)
		addEpsilon(eps, start, right.Start)
		addEpsilon(eps, leftEnd, end)
		addEpsilon(eps, rightEnd, end)
		return &NFA{
			Transitions: mergeTransitions(left.Transitions, right.Transitions),
			Epsilon:     eps,
			Start:       start,
			Finals:      NewStateSet(end),
		}, nil

	case Repeat:
		start := c.newState()
		inner, err := c.Construct(r.Inner, alphabet)
		if err != nil {
			return nil, err
		}
		end := c.newState()
		innerEnd, err := singleFinal(inner)
		if err != nil {
			return nil, err
		}
		// Loop-back and exit gadget: skip the body entirely, or run it and
		// either loop again or leave.
		eps := mergeEpsilon(inner.Epsilon, nil)
		addEpsilon(eps, start, inner.Start)
		addEpsilon(eps, start, end)
		addEpsilon(eps, innerEnd, inner.Start)
		addEpsilon(eps, innerEnd, end)
		return &NFA{
			Transitions: inner.Transitions,
			Epsilon:     eps,
			Start:       start,
			Finals:      NewStateSet(end),
		}, nil

	default:
		return nil, newConstructionError("unsupported regexp node")
	}
}

// singleFinal returns the automaton's only final state. Sequencing,
// alternation and repetition wire "the" exit of a sub-automaton, so a
// sub-automaton with zero or several finals is a construction failure, not
// something to guess around.
func singleFinal(n *NFA) (State, error) {
	if len(n.Finals) != 1 {
		return 0, newConstructionError(
			"expected exactly one final state, found " + strconv.Itoa(len(n.Finals)))
	}
	for state := range n.Finals {
		return state, nil
	}
	panic("unreachable")
}

// mergeTransitions unions two transition tables into a fresh table,
// unioning destination sets on shared (state, symbol) keys. Sub-automata
// draw disjoint ids from the shared counter, so keys only collide at the
// explicitly wired junction states.
func mergeTransitions(a, b NFATransitions) NFATransitions {
	result := NFATransitions{}
	for _, table := range []NFATransitions{a, b} {
		for state, row := range table {
			dstRow := result[state]
			if dstRow == nil {
				dstRow = map[rune]StateSet{}
				result[state] = dstRow
			}
			for sym, dests := range row {
				set := dstRow[sym]
				if set == nil {
					set = StateSet{}
					dstRow[sym] = set
				}
				for dest := range dests {
					set[dest] = struct{}{}
				}
			}
		}
	}
	return result
}

func mergeEpsilon(a, b EpsilonTransitions) EpsilonTransitions {
	result := EpsilonTransitions{}
	for _, table := range []EpsilonTransitions{a, b} {
		for state, dests := range table {
			set := result[state]
			if set == nil {
				set = StateSet{}
				result[state] = set
			}
			for dest := range dests {
				set[dest] = struct{}{}
			}
		}
	}
	return result
}

func addEpsilon(eps EpsilonTransitions, from, to State) {
	set := eps[from]
	if set == nil {
		set = StateSet{}
		eps[from] = set
	}
	set[to] = struct{}{}
}
