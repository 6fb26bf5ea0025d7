// Package patterns implements the pattern compiler and backtracking matcher.
//
// A pattern string is compiled once into an ordered token sequence (Compile)
// and then matched against any number of input lines (Pattern.Match). The
// token set and matcher semantics intentionally mirror a minimal extended
// grep: literals, digit/word classes, character classes, anchors, greedy
// quantifiers, capturing groups, alternation and back-references. There is
// no counted-repetition, no lookaround, and no case-insensitive mode.
package patterns

// Token is a single compiled pattern element. Each concrete type carries
// exactly the payload its kind needs, so the matcher can switch on concrete
// type instead of inspecting a shared tag-and-payload struct.
type Token interface {
	isToken()
}

// Literal matches exactly one rune.
type Literal struct {
	Char rune
}

// Digit matches any of '0'..'9'.
type Digit struct{}

// Word matches any ASCII letter, ASCII digit, or underscore; non-ASCII
// letters and digits do not match.
type Word struct{}

// Any matches any rune except '\n'.
type Any struct{}

// PosClass matches any rune present in Set.
type PosClass struct {
	Set map[rune]struct{}
}

// NegClass matches any rune absent from Set.
type NegClass struct {
	Set map[rune]struct{}
}

// StartAnchor matches only at offset 0 of the input.
type StartAnchor struct{}

// EndAnchor matches only at the end of the input.
type EndAnchor struct{}

// OneOrMore greedily repeats Base one or more times.
type OneOrMore struct {
	Base Token
}

// ZeroOrOne optionally matches Base once, preferring one occurrence.
type ZeroOrOne struct {
	Base Token
}

// ZeroOrMore greedily repeats Base zero or more times.
type ZeroOrMore struct {
	Base Token
}

// CaptureStart opens capturing group ID (1-based).
type CaptureStart struct {
	ID int
}

// CaptureEnd closes capturing group ID, binding the spanned substring.
type CaptureEnd struct {
	ID int
}

// Alternation tries each branch in order; a branch is itself a token sequence.
type Alternation struct {
	Branches [][]Token
}

// Backref matches the literal text previously bound to capture group ID.
type Backref struct {
	ID int
}

func (Literal) isToken()      {}
func (Digit) isToken()        {}
func (Word) isToken()         {}
func (Any) isToken()          {}
func (PosClass) isToken()     {}
func (NegClass) isToken()     {}
func (StartAnchor) isToken()  {}
func (EndAnchor) isToken()    {}
func (OneOrMore) isToken()    {}
func (ZeroOrOne) isToken()    {}
func (ZeroOrMore) isToken()   {}
func (CaptureStart) isToken() {}
func (CaptureEnd) isToken()   {}
func (Alternation) isToken()  {}
func (Backref) isToken()      {}

// isAtom reports whether t is a quantifiable single-character matcher —
// i.e. a token that may legally sit inside OneOrMore/ZeroOrOne/ZeroOrMore.
func isAtom(t Token) bool {
	switch t.(type) {
	case Literal, Digit, Word, Any, PosClass, NegClass:
		return true
	default:
		return false
	}
}

// matchAtom reports whether atom matches the single rune r. It must only be
// called with tokens for which isAtom returns true.
func matchAtom(atom Token, r rune) bool {
	switch a := atom.(type) {
	case Literal:
		return a.Char == r
	case Digit:
		return r >= '0' && r <= '9'
	case Word:
		return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
	case Any:
		return r != '\n'
	case PosClass:
		_, ok := a.Set[r]
		return ok
	case NegClass:
		_, ok := a.Set[r]
		return !ok
	default:
		return false
	}
}
