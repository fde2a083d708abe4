package generator

import (
	"fmt"
	"go/types"
	"strconv"

	"github.com/calumari/derive/internal/diag"
)

const buildMethod = "Build"

// synthesizeBuilder plans the builder fragments for a struct: the builder type,
// its constructor, one setter per field, one appender per each directive and
// the Build finalizer.
func (p *pass) synthesizeBuilder(decl *typeDecl) []fragment {
	if p.shadowsImport(decl, stdImports[KindBuilder]) {
		return nil
	}
	bname, ctor := builderName(decl.Name)
	locals := localNames(decl.Params, "b", "v")
	m := &builderModel{
		Target:      typeModel{Name: decl.Name, Params: decl.Params},
		Builder:     typeModel{Name: bname, Params: decl.Params},
		Constructor: ctor,
		Recv:        locals[0],
		Arg:         locals[1],
	}
	methods := map[string]string{buildMethod: "the finalizer"}
	for _, f := range decl.Fields {
		if f.Name == "_" {
			continue
		}
		shape := classify(f.Type)
		shape.Each = p.resolveEach(f, shape)
		bf := builderField{
			Name: f.Name,
			Type: types.ExprString(f.Type),
			Each: shape.Each,
		}
		switch shape.Kind {
		case shapeOptional:
			bf.Optional = true
			bf.Elem = types.ExprString(shape.Inner)
			bf.StorageType = bf.Type
		case shapeCollection:
			bf.Collection = true
			bf.Elem = types.ExprString(shape.Inner)
			bf.StorageType = "*" + bf.Type
		default:
			bf.StorageType = "*" + bf.Type
		}
		setter := exportName(f.Name)
		if bf.Each == "" || exportName(bf.Each) != setter {
			bf.Setter = p.claimMethod(methods, setter, f)
		}
		m.Fields = append(m.Fields, bf)
	}
	// appenders are claimed after every setter so setters keep their names
	for i := range m.Fields {
		bf := &m.Fields[i]
		if bf.Each != "" {
			bf.Appender = p.claimMethod(methods, exportName(bf.Each), decl.field(bf.Name))
		}
	}
	// storage fields share a namespace with the builder's methods
	storage := make(map[string]bool, len(methods))
	for name := range methods {
		storage[name] = true
	}
	for i := range m.Fields {
		m.Fields[i].Storage = uniqueName(unexportName(m.Fields[i].Name), storage)
	}

	frags := []fragment{
		{Kind: fragmentKindBuilderType, Name: m.Builder.Name, Builder: m},
		{Kind: fragmentKindConstructor, Name: m.Constructor, Builder: m},
	}
	for i := range m.Fields {
		if bf := &m.Fields[i]; bf.Setter != "" {
			frags = append(frags, fragment{Kind: fragmentKindSetter, Name: bf.Setter, Builder: m, Field: bf})
		}
	}
	for i := range m.Fields {
		if bf := &m.Fields[i]; bf.Appender != "" {
			frags = append(frags, fragment{Kind: fragmentKindAppender, Name: bf.Appender, Builder: m, Field: bf})
		}
	}
	frags = append(frags, fragment{Kind: fragmentKindBuild, Name: buildMethod, Builder: m})
	return frags
}

// claimMethod reserves a method name for field f, reporting a conflict and
// returning "" when another method already holds it.
func (p *pass) claimMethod(methods map[string]string, name string, f fieldSpec) string {
	if owner, ok := methods[name]; ok {
		p.report(diag.MethodConflict, f.Pos, fmt.Sprintf("method %s for field %s conflicts with %s", name, f.Name, owner))
		return ""
	}
	methods[name] = "field " + f.Name
	return name
}

// uniqueName returns name, or name with a numeric suffix when already taken.
func uniqueName(name string, taken map[string]bool) string {
	out := name
	for i := 2; taken[out]; i++ {
		out = name + strconv.Itoa(i)
	}
	taken[out] = true
	return out
}
