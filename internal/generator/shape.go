package generator

import "go/ast"

// shapeKind is the syntactic wrapper classification of a field type. Only the
// outermost expression is inspected, so a named type that happens to be a
// pointer or slice is unrecognized.
type shapeKind int

const (
	shapeUnrecognized shapeKind = iota // plain: used as declared
	shapeOptional                      // *T
	shapeCollection                    // []T
)

func (k shapeKind) String() string {
	switch k {
	case shapeOptional:
		return "optional"
	case shapeCollection:
		return "collection"
	}
	return "plain"
}

// fieldShape is the classification of one field.
type fieldShape struct {
	Kind  shapeKind
	Type  ast.Expr // declared type
	Inner ast.Expr // pointee or element type; nil when unrecognized
	Each  string   // resolved appender name for collections
}

// Recognized reports whether the shape was matched as optional or collection.
func (s fieldShape) Recognized() bool { return s.Kind != shapeUnrecognized }

func classify(expr ast.Expr) fieldShape {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return fieldShape{Kind: shapeOptional, Type: expr, Inner: t.X}
	case *ast.ArrayType:
		if t.Len == nil {
			return fieldShape{Kind: shapeCollection, Type: expr, Inner: t.Elt}
		}
	}
	return fieldShape{Kind: shapeUnrecognized, Type: expr}
}
