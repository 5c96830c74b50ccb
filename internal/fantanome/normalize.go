package fantanome

import "strings"

// Normalize canonicalizes a name for comparison.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SameName reports whether a and b refer to the same name.
func SameName(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
