package generator

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
)

var (
	errNotStruct     = errors.New("not a struct type")
	errAlias         = errors.New("type aliases are not supported")
	errEmbeddedField = errors.New("embedded fields are not supported")
)

// decodeType restructures a struct declaration for traversal. Anything other
// than a struct with named fields fails the whole pass.
func decodeType(fset *token.FileSet, site declSite) (*typeDecl, error) {
	ts := site.Spec
	name := ts.Name.Name
	if ts.Assign.IsValid() {
		return nil, fmt.Errorf("%s: %w", name, errAlias)
	}
	st, ok := ts.Type.(*ast.StructType)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, errNotStruct)
	}
	td := &typeDecl{
		Name:    name,
		Imports: site.File.Imports,
		Pos:     fset.Position(ts.Pos()),
	}
	if ts.TypeParams != nil {
		for _, f := range ts.TypeParams.List {
			constraint := types.ExprString(f.Type)
			for _, n := range f.Names {
				td.Params = append(td.Params, typeParam{Name: n.Name, Constraint: constraint})
			}
		}
	}
	for _, f := range st.Fields.List {
		if len(f.Names) == 0 {
			return nil, fmt.Errorf("%s: field %s: %w", name, types.ExprString(f.Type), errEmbeddedField)
		}
		for _, n := range f.Names {
			td.Fields = append(td.Fields, fieldSpec{
				Name: n.Name,
				Type: f.Type,
				Tag:  f.Tag,
				Pos:  fset.Position(n.Pos()),
			})
		}
	}
	return td, nil
}
