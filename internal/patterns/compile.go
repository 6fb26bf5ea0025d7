package patterns

import "strconv"

// Pattern is a compiled pattern: an ordered token sequence plus the
// compile-time anchor flags and group count needed to drive a match.
type Pattern struct {
	tokens      []Token
	startAnchor bool
	endAnchor   bool
	groupCount  int
}

// GroupCount returns the number of capturing groups in the compiled pattern.
func (p *Pattern) GroupCount() int {
	return p.groupCount
}

// Compile parses pattern into a Pattern ready for matching. It returns a
// *CompileError when the pattern is malformed (unclosed class or group).
func Compile(pattern string) (*Pattern, error) {
	runes := []rune(pattern)

	startAnchor := len(runes) > 0 && runes[0] == '^'
	if startAnchor {
		runes = runes[1:]
	}
	endAnchor := len(runes) > 0 && runes[len(runes)-1] == '$'
	// The $ check above runs against the already-front-stripped slice, which
	// is safe: stripping the leading '^' never changes what the last rune is.
	if endAnchor {
		runes = runes[:len(runes)-1]
	}

	groupCounter := 0
	body, err := compileBody(runes, &groupCounter)
	if err != nil {
		return nil, err
	}

	tokens := make([]Token, 0, len(body)+2)
	if startAnchor {
		tokens = append(tokens, StartAnchor{})
	}
	tokens = append(tokens, body...)
	if endAnchor {
		tokens = append(tokens, EndAnchor{})
	}

	return &Pattern{
		tokens:      tokens,
		startAnchor: startAnchor,
		endAnchor:   endAnchor,
		groupCount:  groupCounter,
	}, nil
}

// Matches is a convenience wrapper equivalent to Compile(pattern) followed
// by a single Match(line) call.
func Matches(pattern, line string) (bool, error) {
	p, err := Compile(pattern)
	if err != nil {
		return false, err
	}
	return p.Match(line), nil
}

// compileBody compiles one pattern body — either the whole pattern with its
// anchors already stripped, or the interior of a group/alternative branch,
// where '^' and '$' are always literal (they only gain anchor meaning at
// the very start/end of the overall pattern, handled in Compile).
func compileBody(runes []rune, groupCounter *int) ([]Token, error) {
	var tokens []Token

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '\\':
			if i+1 >= len(runes) {
				tokens = append(tokens, Literal{Char: '\\'})
				continue
			}
			i++
			next := runes[i]
			switch {
			case next >= '1' && next <= '9':
				j := i
				for j+1 < len(runes) && runes[j+1] >= '0' && runes[j+1] <= '9' {
					j++
				}
				n, _ := strconv.Atoi(string(runes[i : j+1]))
				i = j
				tokens = append(tokens, Backref{ID: n})
			case next == 'd':
				tokens = append(tokens, Digit{})
			case next == 'w':
				tokens = append(tokens, Word{})
			default:
				tokens = append(tokens, Literal{Char: next})
			}

		case '.':
			tokens = append(tokens, Any{})

		case '[':
			end := indexUnescapedCloseBracket(runes, i+1)
			if end == -1 {
				return nil, errUnclosedClass
			}
			body := runes[i+1 : end]
			negate := len(body) > 0 && body[0] == '^'
			if negate {
				body = body[1:]
			}
			set := make(map[rune]struct{}, len(body))
			for _, c := range body {
				set[c] = struct{}{}
			}
			if negate {
				tokens = append(tokens, NegClass{Set: set})
			} else {
				tokens = append(tokens, PosClass{Set: set})
			}
			i = end

		case '(':
			end, err := indexMatchingParen(runes, i)
			if err != nil {
				return nil, err
			}
			*groupCounter++
			id := *groupCounter

			inner, err := compileGroupBody(runes[i+1:end], groupCounter)
			if err != nil {
				return nil, err
			}

			tokens = append(tokens, CaptureStart{ID: id})
			tokens = append(tokens, inner...)
			tokens = append(tokens, CaptureEnd{ID: id})
			i = end

		case '+', '?', '*':
			if len(tokens) > 0 && isAtom(tokens[len(tokens)-1]) {
				base := tokens[len(tokens)-1]
				tokens = tokens[:len(tokens)-1]
				switch r {
				case '+':
					tokens = append(tokens, OneOrMore{Base: base})
				case '?':
					tokens = append(tokens, ZeroOrOne{Base: base})
				case '*':
					tokens = append(tokens, ZeroOrMore{Base: base})
				}
			} else {
				tokens = append(tokens, Literal{Char: r})
			}

		default:
			// '^' and '$' fall through to here for sub-bodies: always literal.
			tokens = append(tokens, Literal{Char: r})
		}
	}

	return tokens, nil
}

// compileGroupBody splits a group's interior on top-level '|' and compiles
// each alternative, folding a single alternative inline and wrapping two or
// more into an Alternation token.
func compileGroupBody(body []rune, groupCounter *int) ([]Token, error) {
	branches := splitTopLevelAlternatives(body)
	if len(branches) == 1 {
		return compileBody(branches[0], groupCounter)
	}

	seqs := make([][]Token, 0, len(branches))
	for _, b := range branches {
		seq, err := compileBody(b, groupCounter)
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, seq)
	}
	return []Token{Alternation{Branches: seqs}}, nil
}

// indexUnescapedCloseBracket returns the index of the first unescaped ']'
// at or after start, or -1 if none exists.
func indexUnescapedCloseBracket(runes []rune, start int) int {
	for i := start; i < len(runes); i++ {
		if runes[i] == '\\' {
			i++
			continue
		}
		if runes[i] == ']' {
			return i
		}
	}
	return -1
}

// indexMatchingParen returns the index of the ')' matching the '(' at
// openIdx, honoring nesting and skipping over bracketed classes so that
// parentheses inside [...] never affect depth.
func indexMatchingParen(runes []rune, openIdx int) (int, error) {
	depth := 1
	i := openIdx + 1
	for i < len(runes) {
		switch runes[i] {
		case '\\':
			i += 2
			continue
		case '[':
			end := indexUnescapedCloseBracket(runes, i+1)
			if end == -1 {
				return 0, errUnclosedClass
			}
			i = end + 1
			continue
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
		i++
	}
	return 0, errUnclosedGroup
}

// splitTopLevelAlternatives splits body on '|' that is not nested inside
// parentheses or a bracketed class, and not escaped.
func splitTopLevelAlternatives(body []rune) [][]rune {
	var parts [][]rune
	depth := 0
	start := 0

	i := 0
	for i < len(body) {
		switch body[i] {
		case '\\':
			i += 2
			continue
		case '[':
			end := indexUnescapedCloseBracket(body, i+1)
			if end == -1 {
				i++
				continue
			}
			i = end + 1
			continue
		case '(':
			depth++
		case ')':
			depth--
		case '|':
			if depth == 0 {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
		i++
	}
	parts = append(parts, body[start:])
	return parts
}
