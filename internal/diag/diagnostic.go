// Package diag holds generation-time diagnostics: value-level errors anchored to
// a source position, reported alongside generated code rather than aborting it.
package diag

import (
	"fmt"
	"go/token"
	"sort"
)

// Code identifies the kind of a diagnostic.
type Code uint16

const (
	UnknownCode Code = 0

	// annotation resolution
	MalformedAnnotation  Code = 1001
	UnsupportedAttribute Code = 1002

	// synthesis
	MethodConflict Code = 2001
	NameConflict   Code = 2002
)

func (c Code) String() string {
	switch c {
	case MalformedAnnotation:
		return "malformed-annotation"
	case UnsupportedAttribute:
		return "unsupported-attribute"
	case MethodConflict:
		return "method-conflict"
	case NameConflict:
		return "name-conflict"
	}
	return fmt.Sprintf("D%04d", uint16(c))
}

// Diagnostic is a single generation-time error.
type Diagnostic struct {
	Code    Code
	Message string
	Pos     token.Position
}

func (d Diagnostic) Error() string {
	if d.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", d.Pos, d.Message)
	}
	return d.Message
}

// Sort orders diagnostics by file, line, column, then code, for stable output.
func Sort(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		pi, pj := ds[i].Pos, ds[j].Pos
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		if pi.Line != pj.Line {
			return pi.Line < pj.Line
		}
		if pi.Column != pj.Column {
			return pi.Column < pj.Column
		}
		return ds[i].Code < ds[j].Code
	})
}
