// Package regomaton is a regular expression engine built around explicit
// finite automata. A regex is a tree of RegExp nodes constructed
// programmatically by the caller; it can be matched directly with Match,
// compiled to an NFA with a Constructor, and converted to a DFA by subset
// construction. All three strategies accept exactly the same strings.
package regomaton

// PosSet is a set of character offsets into an input string.
type PosSet map[int]struct{}

// RegExp is a node in a regular expression tree. The tree is immutable and
// each child node is owned by its parent. Exactly six node types exist:
// Char, Any, Empty, Seq, Or and Repeat.
type RegExp interface {
	match(input []rune, pos int) (PosSet, bool)
}

// Char matches a single occurrence of Symbol.
type Char struct {
	Symbol rune
}

// Any matches any single symbol.
type Any struct{}

// Empty matches the empty string.
type Empty struct{}

// Seq matches Left followed immediately by Right.
type Seq struct {
	Left  RegExp
	Right RegExp
}

// Or matches either Left or Right.
type Or struct {
	Left  RegExp
	Right RegExp
}

// Repeat matches zero or more occurrences of Inner.
type Repeat struct {
	Inner RegExp
}

var (
	_ RegExp = Char{}
	_ RegExp = Any{}
	_ RegExp = Empty{}
	_ RegExp = Seq{}
	_ RegExp = Or{}
	_ RegExp = Repeat{}
)

// Match evaluates re against input starting at character position pos and
// returns every offset at which some successful match ends. pos and the
// returned offsets are rune indices, not byte offsets; the input is decoded
// once here so multi-byte symbols are counted by position. The second result
// is false when re cannot match anything at pos — a normal negative outcome,
// never an error.
func Match(re RegExp, input string, pos int) (PosSet, bool) {
	return re.match([]rune(input), pos)
}

func (r Char) match(input []rune, pos int) (PosSet, bool) {
	if pos >= 0 && pos < len(input) && input[pos] == r.Symbol {
		return PosSet{pos + 1: {}}, true
	}
	return nil, false
}

func (Any) match(input []rune, pos int) (PosSet, bool) {
	if pos >= 0 && pos < len(input) {
		return PosSet{pos + 1: {}}, true
	}
	return nil, false
}

func (Empty) match(input []rune, pos int) (PosSet, bool) {
	if pos >= 0 && pos <= len(input) {
		return PosSet{pos: {}}, true
	}
	return nil, false
}

// A sequence keeps every viable branch: Right is tried at each offset Left
// can end at, and branches where Right fails are dropped rather than failing
// the whole sequence. The match fails only when no branch survives.
func (r Seq) match(input []rune, pos int) (PosSet, bool) {
	lefts, ok := r.Left.match(input, pos)
	if !ok {
		return nil, false
	}
	result := PosSet{}
	for mid := range lefts {
		rights, ok := r.Right.match(input, mid)
		if !ok {
			continue
		}
		for end := range rights {
			result[end] = struct{}{}
		}
	}
	if len(result) == 0 {
		return nil, false
	}
	return result, true
}

func (r Or) match(input []rune, pos int) (PosSet, bool) {
	lefts, leftOK := r.Left.match(input, pos)
	rights, rightOK := r.Right.match(input, pos)
	if !leftOK && !rightOK {
		return nil, false
	}
	result := PosSet{}
	for end := range lefts {
		result[end] = struct{}{}
	}
	for end := range rights {
		result[end] = struct{}{}
	}
	return result, true
}

// Repetition is a least fixpoint over offsets: starting from pos (the
// zero-repetition case), the inner expression is applied to every
// newly-discovered offset until an iteration adds nothing. Offsets are
// bounded by the input length, so the frontier empties after at most
// len(input)+1 rounds.
func (r Repeat) match(input []rune, pos int) (PosSet, bool) {
	acc := PosSet{pos: {}}
	frontier := []int{pos}
	for len(frontier) > 0 {
		var next []int
		for _, p := range frontier {
			ends, ok := r.Inner.match(input, p)
			if !ok {
				continue
			}
			for end := range ends {
				if _, seen := acc[end]; !seen {
					acc[end] = struct{}{}
					next = append(next, end)
				}
			}
		}
		frontier = next
	}
	return acc, true
}
