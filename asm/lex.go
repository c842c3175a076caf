package asm

import "strings"

// stripComment removes anything from the first '#' or ';' onward.
func stripComment(line string) string {
	if i := strings.IndexAny(line, "#;"); i >= 0 {
		return line[:i]
	}
	return line
}

// tokenize splits a line on whitespace and the punctuation ',', '(', ')' —
// those three characters are pure separators in this grammar (LW's
// "imm(rs)" operand carries all the information it needs in imm and rs
// alone), so they are replaced with spaces rather than kept as tokens.
func tokenize(line string) []string {
	line = strings.Map(func(r rune) rune {
		switch r {
		case ',', '(', ')':
			return ' '
		default:
			return r
		}
	}, line)
	return strings.Fields(line)
}

// splitLabel peels a leading "label:" token off toks, if present, and
// reports the label name (without the colon).
func splitLabel(toks []string) (label string, rest []string) {
	if len(toks) == 0 {
		return "", toks
	}
	first := toks[0]
	if strings.HasSuffix(first, ":") && len(first) > 1 {
		return strings.TrimSuffix(first, ":"), toks[1:]
	}
	return "", toks
}
