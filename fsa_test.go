package regomaton

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gotest.tools/v3/assert"
)

type nfaEdge struct {
	from State
	sym  rune
	to   State
}

func buildNFATransitions(edges []nfaEdge) NFATransitions {
	transitions := NFATransitions{}
	for _, e := range edges {
		row := transitions[e.from]
		if row == nil {
			row = map[rune]StateSet{}
			transitions[e.from] = row
		}
		set := row[e.sym]
		if set == nil {
			set = StateSet{}
			row[e.sym] = set
		}
		set[e.to] = struct{}{}
	}
	return transitions
}

func buildEpsilon(pairs [][2]State) EpsilonTransitions {
	eps := EpsilonTransitions{}
	for _, p := range pairs {
		addEpsilon(eps, p[0], p[1])
	}
	return eps
}

func TestNFAAccepts(t *testing.T) {
	t.Run("epsilon chain", func(t *testing.T) {
		nfa := &NFA{
			Transitions: buildNFATransitions([]nfaEdge{
				{0, 'a', 1}, {1, 'b', 2}, {2, 'c', 3},
			}),
			Epsilon: buildEpsilon([][2]State{{0, 1}, {1, 2}, {2, 3}}),
			Start:   0,
			Finals:  NewStateSet(3),
		}
		assert.Equal(t, nfa.Accepts("abc"), true)
		assert.Equal(t, nfa.Accepts("ab"), true) // epsilon edges bridge the tail
		assert.Equal(t, nfa.Accepts("abcd"), false)
		// the start closure already reaches the final state
		assert.Equal(t, nfa.Accepts(""), true)
	})

	t.Run("sparse epsilon", func(t *testing.T) {
		nfa := &NFA{
			Transitions: buildNFATransitions([]nfaEdge{
				{0, 'a', 1}, {1, 'b', 2}, {2, 'c', 3},
				{3, 'd', 4}, {4, 'e', 5}, {5, 'f', 6},
			}),
			Epsilon: buildEpsilon([][2]State{{0, 1}, {2, 3}, {5, 6}}),
			Start:   0,
			Finals:  NewStateSet(6),
		}
		assert.Equal(t, nfa.Accepts("abcdef"), true)
		assert.Equal(t, nfa.Accepts("abcde"), true)
		assert.Equal(t, nfa.Accepts("abcdeg"), false)
	})

	t.Run("nondeterministic branch", func(t *testing.T) {
		nfa := &NFA{
			Transitions: buildNFATransitions([]nfaEdge{
				{0, 'a', 1}, {0, 'a', 2}, {1, 'b', 3}, {2, 'b', 3}, {3, 'c', 4},
			}),
			Epsilon: buildEpsilon([][2]State{{0, 1}, {0, 2}}),
			Start:   0,
			Finals:  NewStateSet(4),
		}
		assert.Equal(t, nfa.Accepts("abc"), true)
		assert.Equal(t, nfa.Accepts("bbc"), false)
		assert.Equal(t, nfa.Accepts("ab"), false)
		assert.Equal(t, nfa.Accepts("abcd"), false)
	})
}

func TestEpsilonClosure(t *testing.T) {
	nfa := &NFA{
		Transitions: NFATransitions{},
		// 0 -> 1 -> 2, plus a cycle 2 -> 0 and an island 4 -> 5
		Epsilon: buildEpsilon([][2]State{{0, 1}, {1, 2}, {2, 0}, {4, 5}}),
		Start:   0,
		Finals:  NewStateSet(2),
	}

	t.Run("step is one hop", func(t *testing.T) {
		assert.DeepEqual(t, nfa.EpsilonClosureStep(NewStateSet(0)), NewStateSet(0, 1))
		assert.DeepEqual(t, nfa.EpsilonClosureStep(NewStateSet(3)), NewStateSet(3))
	})

	t.Run("closure reaches the fixpoint", func(t *testing.T) {
		assert.DeepEqual(t, nfa.EpsilonClosure(NewStateSet(0)), NewStateSet(0, 1, 2))
		assert.DeepEqual(t, nfa.EpsilonClosure(NewStateSet(1)), NewStateSet(0, 1, 2))
		assert.DeepEqual(t, nfa.EpsilonClosure(NewStateSet(3, 4)), NewStateSet(3, 4, 5))
		assert.DeepEqual(t, nfa.EpsilonClosure(StateSet{}), StateSet{})
	})

	t.Run("closure is idempotent", func(t *testing.T) {
		for _, states := range []StateSet{
			NewStateSet(0),
			NewStateSet(2, 4),
			NewStateSet(0, 1, 2, 3, 4, 5),
			{},
		} {
			once := nfa.EpsilonClosure(states)
			assert.DeepEqual(t, nfa.EpsilonClosure(once), once)
		}
	})
}

func TestNFATransit(t *testing.T) {
	nfa := &NFA{
		Transitions: buildNFATransitions([]nfaEdge{
			{0, 'a', 1}, {0, 'a', 2}, {2, 'b', 3},
		}),
		Epsilon: buildEpsilon([][2]State{{1, 4}}),
		Start:   0,
		Finals:  NewStateSet(3),
	}
	// union of moves, then epsilon closure
	assert.DeepEqual(t, nfa.Transit(NewStateSet(0), 'a'), NewStateSet(1, 2, 4))
	assert.DeepEqual(t, nfa.Transit(NewStateSet(0, 2), 'b'), NewStateSet(3))
	assert.DeepEqual(t, nfa.Transit(NewStateSet(0), 'c'), StateSet{})
}

func TestDFAAccepts(t *testing.T) {
	dfa := &DFA{
		Transitions: DFATransitions{
			0: {'a': 1},
			1: {'b': 2},
			2: {'c': 3},
		},
		Start:  0,
		Finals: NewStateSet(3),
	}
	assert.Equal(t, dfa.Accepts("abc"), true)
	assert.Equal(t, dfa.Accepts("ab"), false)
	assert.Equal(t, dfa.Accepts("abcd"), false)
	// missing transition is a plain reject
	assert.Equal(t, dfa.Accepts("x"), false)
	assert.Equal(t, dfa.Accepts(""), false)
}

func TestToDFA(t *testing.T) {
	t.Run("optional prefix", func(t *testing.T) {
		re := Seq{Or{Char{'a'}, Empty{}}, Char{'b'}}
		nfa, err := NewConstructor().Construct(re, NewAlphabet("ab"))
		assert.NilError(t, err)
		dfa := nfa.ToDFA()

		// closure(start), after-a, after-b, dead
		assert.Equal(t, len(dfa.Transitions), 4)
		assert.Equal(t, dfa.Start, State(0))

		assert.Equal(t, dfa.Accepts("b"), true)
		assert.Equal(t, dfa.Accepts("ab"), true)
		assert.Equal(t, dfa.Accepts(""), false)
		assert.Equal(t, dfa.Accepts("a"), false)
		assert.Equal(t, dfa.Accepts("abb"), false)
	})

	t.Run("subsets deduplicate by set equality", func(t *testing.T) {
		// Both branches consume 'a' into the same subset.
		re := Or{Char{'a'}, Char{'a'}}
		nfa, err := NewConstructor().Construct(re, NewAlphabet("a"))
		assert.NilError(t, err)
		dfa := nfa.ToDFA()

		// start, accepting, dead
		assert.Equal(t, len(dfa.Transitions), 3)
		assert.Equal(t, dfa.Accepts("a"), true)
		assert.Equal(t, dfa.Accepts("aa"), false)
	})

	t.Run("conversion is deterministic", func(t *testing.T) {
		re := Seq{Repeat{Or{Char{'a'}, Char{'b'}}}, Char{'c'}}
		nfa, err := NewConstructor().Construct(re, NewAlphabet("abc"))
		assert.NilError(t, err)
		if diff := cmp.Diff(nfa.ToDFA(), nfa.ToDFA()); diff != "" {
			t.Fatalf("DFA conversion not deterministic (-first +second):\n%s", diff)
		}
	})

	t.Run("alphabet is derived from the NFA", func(t *testing.T) {
		nfa := &NFA{
			Transitions: buildNFATransitions([]nfaEdge{{0, 'a', 1}}),
			Epsilon:     EpsilonTransitions{},
			Start:       0,
			Finals:      NewStateSet(1),
		}
		dfa := nfa.ToDFA()
		for state, row := range dfa.Transitions {
			assert.Equal(t, len(row), 1, "state %d", state)
			_, ok := row['a']
			assert.Equal(t, ok, true, "state %d", state)
		}
	})
}
