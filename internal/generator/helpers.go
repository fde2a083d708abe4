package generator

import (
	"go/token"
	"unicode"
	"unicode/utf8"
)

// exportName upper-cases the first rune: "currentDir" -> "CurrentDir".
func exportName(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// unexportName lower-cases the leading upper-case run, keeping the start of the
// next word: "Name" -> "name", "ID" -> "id", "URLPath" -> "urlPath". Keywords
// get a trailing underscore.
func unexportName(s string) string {
	rs := []rune(s)
	n := 0
	for n < len(rs) && unicode.IsUpper(rs[n]) {
		n++
	}
	switch {
	case n == 0:
	case n == 1 || n == len(rs):
		for i := 0; i < n; i++ {
			rs[i] = unicode.ToLower(rs[i])
		}
	default:
		for i := 0; i < n-1; i++ {
			rs[i] = unicode.ToLower(rs[i])
		}
	}
	out := string(rs)
	if token.IsKeyword(out) {
		out += "_"
	}
	return out
}

// builderName derives the builder type and constructor names, keeping the
// exported-ness of the target type.
func builderName(target string) (typeName, ctor string) {
	typeName = target + "Builder"
	if token.IsExported(target) {
		return typeName, "New" + typeName
	}
	return typeName, "new" + exportName(typeName)
}

// localNames picks identifiers for generated receivers and parameters, renaming
// any that a type parameter already uses.
func localNames(params []typeParam, want ...string) []string {
	taken := make(map[string]bool, len(params)+len(want))
	for _, p := range params {
		taken[p.Name] = true
	}
	out := make([]string, len(want))
	for i, w := range want {
		out[i] = uniqueName(w, taken)
	}
	return out
}
