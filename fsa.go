package regomaton

import (
	"cmp"
	"maps"
	"slices"
)

// sortedKeys returns the keys of m in ascending order. It is equivalent to
// slices.Sorted(maps.Keys(m)), which requires Go 1.23.
func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// State identifies an automaton state. A state has no meaning beyond
// identity within the automaton that allocated it.
type State int

// StateSet is a set of states.
type StateSet map[State]struct{}

// NewStateSet returns a set containing the given states.
func NewStateSet(states ...State) StateSet {
	set := make(StateSet, len(states))
	for _, s := range states {
		set[s] = struct{}{}
	}
	return set
}

func (s StateSet) contains(state State) bool {
	_, ok := s[state]
	return ok
}

func (s StateSet) intersects(other StateSet) bool {
	for state := range s {
		if _, ok := other[state]; ok {
			return true
		}
	}
	return false
}

// Alphabet is the set of symbols an automaton may consume. It has to be
// supplied explicitly wherever Any nodes are expanded; it is never inferred
// from subject strings.
type Alphabet map[rune]struct{}

// NewAlphabet returns an alphabet containing every rune of symbols.
func NewAlphabet(symbols string) Alphabet {
	a := Alphabet{}
	for _, r := range symbols {
		a[r] = struct{}{}
	}
	return a
}

// NFATransitions maps (state, symbol) to the set of destination states.
type NFATransitions map[State]map[rune]StateSet

// EpsilonTransitions maps a state to the states reachable from it without
// consuming input.
type EpsilonTransitions map[State]StateSet

// DFATransitions maps (state, symbol) to a single destination state. The
// mapping is partial: a missing entry means there is no move.
type DFATransitions map[State]map[rune]State

// NFA is a nondeterministic finite automaton with epsilon transitions.
// Every state referenced by Transitions, Epsilon and Finals must come from
// the construction session that produced the automaton. An NFA is built
// once and never mutated afterwards.
type NFA struct {
	Transitions NFATransitions
	Epsilon     EpsilonTransitions
	Start       State
	Finals      StateSet
}

// EpsilonClosureStep returns states together with every state directly
// reachable from it over a single epsilon transition.
func (n *NFA) EpsilonClosureStep(states StateSet) StateSet {
	result := StateSet{}
	for state := range states {
		result[state] = struct{}{}
		for next := range n.Epsilon[state] {
			result[next] = struct{}{}
		}
	}
	return result
}

// EpsilonClosure returns every state reachable from states using only
// epsilon transitions, including states itself. Implemented as an iterative
// worklist so that epsilon cycles and large automata cannot exhaust the
// stack.
func (n *NFA) EpsilonClosure(states StateSet) StateSet {
	closure := make(StateSet, len(states))
	work := make([]State, 0, len(states))
	for state := range states {
		closure[state] = struct{}{}
		work = append(work, state)
	}
	for len(work) > 0 {
		state := work[len(work)-1]
		work = work[:len(work)-1]
		for next := range n.Epsilon[state] {
			if _, seen := closure[next]; !seen {
				closure[next] = struct{}{}
				work = append(work, next)
			}
		}
	}
	return closure
}

// Transit returns the epsilon closure of every state reachable from current
// over a single sym transition. It is the one stepping primitive shared by
// Accepts and subset construction.
func (n *NFA) Transit(current StateSet, sym rune) StateSet {
	moved := StateSet{}
	for state := range current {
		for next := range n.Transitions[state][sym] {
			moved[next] = struct{}{}
		}
	}
	return n.EpsilonClosure(moved)
}

// Accepts reports whether the automaton accepts input in full, starting
// from the epsilon closure of the start state.
func (n *NFA) Accepts(input string) bool {
	current := n.EpsilonClosure(NewStateSet(n.Start))
	for _, sym := range input {
		current = n.Transit(current, sym)
	}
	return current.intersects(n.Finals)
}

// alphabet returns every symbol appearing in a transition, sorted so subset
// construction numbers DFA states deterministically.
func (n *NFA) alphabet() []rune {
	seen := map[rune]struct{}{}
	for _, row := range n.Transitions {
		for sym := range row {
			seen[sym] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// ToDFA converts the automaton to an equivalent DFA by subset construction:
// each reachable set of NFA states becomes one DFA state, starting from the
// epsilon closure of Start as DFA state 0. Subsets are deduplicated by set
// equality, never by discovery order, so two traversal paths reaching the
// same subset collapse to the same DFA state and at most 2^n DFA states
// exist for an n-state NFA. The resulting table is complete over the
// symbols appearing in the NFA; the empty subset acts as an ordinary dead
// state.
func (n *NFA) ToDFA() *DFA {
	subsets := []StateSet{n.EpsilonClosure(NewStateSet(n.Start))}
	alphabet := n.alphabet()
	transitions := DFATransitions{}

	for src := 0; src < len(subsets); src++ {
		row := make(map[rune]State, len(alphabet))
		for _, sym := range alphabet {
			next := n.Transit(subsets[src], sym)
			dest := slices.IndexFunc(subsets, func(s StateSet) bool {
				return maps.Equal(s, next)
			})
			if dest < 0 {
				subsets = append(subsets, next)
				dest = len(subsets) - 1
			}
			row[sym] = State(dest)
		}
		transitions[State(src)] = row
	}

	finals := StateSet{}
	for i, subset := range subsets {
		if subset.intersects(n.Finals) {
			finals[State(i)] = struct{}{}
		}
	}

	return &DFA{Transitions: transitions, Start: 0, Finals: finals}
}

// DFA is a deterministic finite automaton: at most one destination per
// (state, symbol) pair. A DFA is built once (by hand or by NFA.ToDFA) and
// never mutated afterwards.
type DFA struct {
	Transitions DFATransitions
	Start       State
	Finals      StateSet
}

// Accepts walks input one symbol at a time from Start. A missing transition
// is a normal reject, not a fault.
func (d *DFA) Accepts(input string) bool {
	current := d.Start
	for _, sym := range input {
		next, ok := d.Transitions[current][sym]
		if !ok {
			return false
		}
		current = next
	}
	return d.Finals.contains(current)
}
