package asm

import (
	"strconv"
	"strings"
)

// parseRegister parses a "$r0".."$r7" token (case-insensitive).
func parseRegister(tok string) (uint16, bool) {
	t := strings.ToLower(tok)
	if len(t) != 3 || t[0] != '$' || t[1] != 'r' {
		return 0, false
	}
	n := t[2]
	if n < '0' || n > '7' {
		return 0, false
	}
	return uint16(n - '0'), true
}

// parseImmediate parses a decimal (optionally signed) or hex ("0x...")
// literal.
func parseImmediate(tok string) (int64, bool) {
	t := tok
	neg := false
	if strings.HasPrefix(t, "+") {
		t = t[1:]
	} else if strings.HasPrefix(t, "-") {
		neg = true
		t = t[1:]
	}
	if strings.HasPrefix(strings.ToLower(t), "0x") {
		v, err := strconv.ParseInt(t[2:], 16, 64)
		if err != nil {
			return 0, false
		}
		if neg {
			v = -v
		}
		return v, true
	}
	v, err := strconv.ParseInt(t, 10, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

// resolveTarget parses either a numeric literal or a label reference,
// using syms to resolve the label. Used for branch offsets and jump
// targets, which spec.md §4.1 allows to be either form.
func resolveTarget(tok string, syms SymbolTable) (addr uint16, isLabel bool, ok bool) {
	if v, isNum := parseImmediate(tok); isNum {
		return uint16(v), false, true
	}
	a, found := syms[strings.ToLower(tok)]
	return a, true, found
}
