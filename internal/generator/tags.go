package generator

import (
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"github.com/calumari/derive/internal/diag"
)

const (
	tagBuilder = "builder"
	tagDebug   = "debug"
	keyEach    = "each"

	msgBuilderEach = `only builder:"each=..." is supported`
	msgDebugFormat = `unsupported attribute: only debug:"<format>" is supported`
)

// tagEntry is one key:"value" annotation of a struct tag.
type tagEntry struct {
	Key       string
	Value     string
	Offset    int  // byte offset of Key within the unquoted tag
	Malformed bool // the entry did not parse; Value is empty
}

// parseTag splits a struct tag into its entries following the conventional
// key:"value" grammar of reflect.StructTag, keeping order and duplicates.
// A malformed entry is returned flagged and parsing resumes at the next space,
// so one bad entry does not hide the directives after it.
func parseTag(tag string) []tagEntry {
	var out []tagEntry
	i := 0
	for i < len(tag) {
		for i < len(tag) && tag[i] == ' ' {
			i++
		}
		if i >= len(tag) {
			break
		}
		start := i
		for i < len(tag) && tag[i] > ' ' && tag[i] != ':' && tag[i] != '"' && tag[i] != 0x7f {
			i++
		}
		key := tag[start:i]
		if key == "" || i+1 >= len(tag) || tag[i] != ':' || tag[i+1] != '"' {
			out = append(out, tagEntry{Key: key, Offset: start, Malformed: true})
			i = nextEntry(tag, start)
			continue
		}
		i++
		vstart := i
		i++
		for i < len(tag) && tag[i] != '"' {
			if tag[i] == '\\' {
				i++
			}
			i++
		}
		if i >= len(tag) {
			out = append(out, tagEntry{Key: key, Offset: start, Malformed: true})
			i = nextEntry(tag, start)
			continue
		}
		i++
		value, err := strconv.Unquote(tag[vstart:i])
		if err != nil {
			out = append(out, tagEntry{Key: key, Offset: start, Malformed: true})
			i = nextEntry(tag, start)
			continue
		}
		out = append(out, tagEntry{Key: key, Value: value, Offset: start})
	}
	return out
}

// nextEntry returns where parsing resumes after a malformed entry at start.
func nextEntry(tag string, start int) int {
	if j := strings.IndexByte(tag[start:], ' '); j >= 0 {
		return start + j
	}
	return len(tag)
}

// matchesKey reports whether an entry is addressed to key. Malformed entries
// match on prefix so that builder(each="x") is still attributed to builder.
func (e tagEntry) matchesKey(key string) bool {
	if !e.Malformed {
		return e.Key == key
	}
	if !strings.HasPrefix(e.Key, key) {
		return false
	}
	if len(e.Key) == len(key) {
		return true
	}
	c := e.Key[len(key)]
	return c != '_' && !('a' <= c && c <= 'z') && !('A' <= c && c <= 'Z') && !('0' <= c && c <= '9')
}

// annotations returns the entries of a field's tag addressed to key.
func annotations(f fieldSpec, key string) []tagEntry {
	if f.Tag == nil {
		return nil
	}
	tag, err := strconv.Unquote(f.Tag.Value)
	if err != nil {
		return nil
	}
	var out []tagEntry
	for _, e := range parseTag(tag) {
		if e.matchesKey(key) {
			out = append(out, e)
		}
	}
	return out
}

// entryPos anchors an entry in the source. Offsets are exact for raw string
// tags; interpreted string tags anchor at the literal.
func entryPos(fset *token.FileSet, lit *ast.BasicLit, e tagEntry) token.Position {
	if lit == nil {
		return token.Position{}
	}
	pos := lit.ValuePos
	if strings.HasPrefix(lit.Value, "`") {
		pos += token.Pos(1 + e.Offset)
	}
	return fset.Position(pos)
}

// parseEach extracts the appender name from an each=<name> directive. The name
// may be quoted, as in each = "arg".
func parseEach(e tagEntry) (string, bool) {
	if e.Malformed {
		return "", false
	}
	key, val, ok := strings.Cut(e.Value, "=")
	if !ok || strings.TrimSpace(key) != keyEach {
		return "", false
	}
	val = strings.TrimSpace(val)
	if strings.HasPrefix(val, `"`) {
		u, err := strconv.Unquote(val)
		if err != nil {
			return "", false
		}
		val = u
	}
	if !token.IsIdentifier(val) {
		return "", false
	}
	return val, true
}

// resolveEach returns the appender name for a field, or "" when it has none.
// The last valid directive wins; every invalid one is reported.
func (p *pass) resolveEach(f fieldSpec, shape fieldShape) string {
	var each string
	for _, e := range annotations(f, tagBuilder) {
		name, ok := parseEach(e)
		if !ok || shape.Kind != shapeCollection {
			p.report(diag.MalformedAnnotation, entryPos(p.fset, f.Tag, e), msgBuilderEach)
			continue
		}
		each = name
	}
	return each
}

// resolveFormat returns the custom format string for a field, or "" when the
// default representation applies. The first valid directive wins.
func (p *pass) resolveFormat(f fieldSpec) string {
	var format string
	for _, e := range annotations(f, tagDebug) {
		if e.Malformed || e.Value == "" {
			p.report(diag.UnsupportedAttribute, entryPos(p.fset, f.Tag, e), msgDebugFormat)
			continue
		}
		if format == "" {
			format = e.Value
		}
	}
	return format
}
