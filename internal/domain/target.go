package domain

import "strings"

// UnknownName is the placeholder for targets whose name could not be
// resolved.
const UnknownName = "UNKNOWN"

// EvaluationTarget identifies one token to screen, as listed in the
// targets file.
type EvaluationTarget struct {
	Address string // token mint address
	Name    string // display name, UNKNOWN when unresolved
}

// Symbol derives a short display symbol from the token name.
func (t EvaluationTarget) Symbol() string {
	return SymbolFromName(t.Name)
}

// SymbolFromName extracts a display symbol from a token name.
// "Wrapped Foo (FOO)" yields "FOO"; otherwise the first word of the name.
func SymbolFromName(name string) string {
	if name == UnknownName {
		return UnknownName
	}
	if strings.Contains(name, "(") && strings.Contains(name, ")") {
		idx := strings.LastIndex(name, "(")
		sym := strings.TrimRight(name[idx+1:], ")")
		if sym != "" {
			return sym
		}
	}
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return UnknownName
	}
	return fields[0]
}
