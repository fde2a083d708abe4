package generator

import (
	"fmt"
	"go/ast"
	"go/types"
	"strconv"

	"github.com/calumari/derive/internal/diag"
)

// markerType is the zero-size holder type whose fields carry a type parameter
// without storing a value of it.
const markerType = "PhantomData"

const formatMethod = "Format"

// synthesizeDebug plans the Format fragment for a struct.
func (p *pass) synthesizeDebug(decl *typeDecl) []fragment {
	if p.shadowsImport(decl, stdImports[KindDebug]) {
		return nil
	}
	for _, f := range decl.Fields {
		if f.Name == formatMethod {
			p.report(diag.MethodConflict, f.Pos, fmt.Sprintf("method %s of %s conflicts with field %s", formatMethod, decl.Name, f.Name))
			return nil
		}
	}
	locals := localNames(decl.Params, "x", "f", "verb")
	m := &debugModel{
		Target: typeModel{Name: decl.Name, Params: decl.Params},
		Bounds: inferBounds(decl),
		Recv:   locals[0],
		State:  locals[1],
		Verb:   locals[2],
	}
	for _, f := range decl.Fields {
		if f.Name == "_" {
			continue
		}
		df := debugField{Name: f.Name}
		if format := p.resolveFormat(f); format != "" {
			df.Format = strconv.Quote(format)
		}
		m.Fields = append(m.Fields, df)
	}
	return []fragment{{Kind: fragmentKindFormat, Name: formatMethod, Debug: m}}
}

// inferBounds decides, per type parameter, what must be printable. The first
// field whose declared type is PhantomData[P] or mentions P.Name decides the
// outcome for P; evidence from later fields is not weighed against it.
func inferBounds(decl *typeDecl) []bound {
	bounds := make([]bound, 0, len(decl.Params))
	for _, tp := range decl.Params {
		b := bound{Param: tp.Name, Kind: boundDirect, Target: tp.Name}
		marker := markerType + "[" + tp.Name + "]"
		for _, f := range decl.Fields {
			if types.ExprString(f.Type) == marker {
				b.Kind = boundMarker
				break
			}
			if sel := qualifiedBy(f.Type, tp.Name); sel != nil {
				b.Kind = boundAssociated
				b.Target = types.ExprString(sel)
				break
			}
		}
		bounds = append(bounds, b)
	}
	return bounds
}

// qualifiedBy finds the first selector P.Name inside expr.
func qualifiedBy(expr ast.Expr, param string) *ast.SelectorExpr {
	var found *ast.SelectorExpr
	ast.Inspect(expr, func(n ast.Node) bool {
		if found != nil {
			return false
		}
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if id, ok := sel.X.(*ast.Ident); ok && id.Name == param {
				found = sel
				return false
			}
		}
		return true
	})
	return found
}
