package generator

import (
	"go/ast"
	"go/token"
	"strings"

	"github.com/rs/zerolog"

	"github.com/calumari/derive/internal/diag"
)

// This file houses the intermediate representation (IR) used across generator
// phases (decode -> classify -> resolve -> synthesize -> render).

// fragment kinds for template-driven code emission
const (
	fragmentKindBuilderType = "builderType"
	fragmentKindConstructor = "constructor"
	fragmentKindSetter      = "setter"
	fragmentKindAppender    = "appender"
	fragmentKindBuild       = "build"
	fragmentKindFormat      = "format"
)

// Kind selects which synthesizer a generation pass runs.
type Kind int

const (
	KindBuilder Kind = iota + 1
	KindDebug
)

func (k Kind) String() string {
	switch k {
	case KindBuilder:
		return "builder"
	case KindDebug:
		return "debug"
	}
	return "unknown"
}

// Config holds generation settings shared by both generators.
type Config struct {
	Kind    Kind
	Dir     string          // directory to load ("." relative to where command invoked)
	Types   []string        // struct type names to generate for
	Output  string          // output filename
	Jobs    int             // concurrent generation passes; <= 0 means one per CPU
	Command string          // canonical invocation command line
	Version string          // generator build version
	Logger  *zerolog.Logger // nil disables logging
}

// typeDecl is the decoded view of one struct declaration. It is read-only once
// decoded.
type typeDecl struct {
	Name    string
	Params  []typeParam
	Fields  []fieldSpec
	Imports []*ast.ImportSpec
	Pos     token.Position
}

// field returns the named field; the zero fieldSpec when absent.
func (d *typeDecl) field(name string) fieldSpec {
	for _, f := range d.Fields {
		if f.Name == name {
			return f
		}
	}
	return fieldSpec{}
}

// typeParam is a generic parameter and its declared constraint.
type typeParam struct {
	Name       string
	Constraint string
}

// fieldSpec is one named field. Tag holds the raw struct tag annotations.
type fieldSpec struct {
	Name string
	Type ast.Expr
	Tag  *ast.BasicLit
	Pos  token.Position
}

// typeModel is what templates need to spell a (possibly generic) type.
type typeModel struct {
	Name   string
	Params []typeParam
}

// ParamsDecl renders the type parameter list with constraints, e.g. "[K comparable, V any]".
func (t typeModel) ParamsDecl() string {
	if len(t.Params) == 0 {
		return ""
	}
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.Name + " " + p.Constraint
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Args renders the type argument list, e.g. "[K, V]".
func (t typeModel) Args() string {
	if len(t.Params) == 0 {
		return ""
	}
	names := make([]string, len(t.Params))
	for i, p := range t.Params {
		names[i] = p.Name
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// Ref is the type name with its arguments.
func (t typeModel) Ref() string { return t.Name + t.Args() }

// builderField is the per-field plan for the builder synthesizer.
type builderField struct {
	Name        string // original field name
	Storage     string // builder storage field
	Type        string // declared type
	StorageType string // type of the storage field
	Optional    bool
	Collection  bool
	Elem        string // inner type for optional and collection fields
	Each        string // resolved each directive; empty when none
	Setter      string // setter method name; empty when suppressed
	Appender    string // appender method name; empty when none or suppressed
}

// SetterType is the parameter type of the field's setter.
func (f builderField) SetterType() string {
	if f.Optional {
		return f.Elem
	}
	return f.Type
}

// DefaultEmpty reports whether the constructor starts the field as an empty,
// present slice.
func (f builderField) DefaultEmpty() bool { return f.Collection && f.Each != "" }

// builderModel is the template model for a builder's fragments.
type builderModel struct {
	Target      typeModel
	Builder     typeModel
	Constructor string
	Fields      []builderField
	Recv        string // method receiver
	Arg         string // setter and appender parameter
}

// HasDefaults reports whether the constructor presets any field.
func (m builderModel) HasDefaults() bool {
	for _, f := range m.Fields {
		if f.DefaultEmpty() {
			return true
		}
	}
	return false
}

// debugField is the per-field plan for the Format method.
type debugField struct {
	Name   string
	Format string // quoted custom format string; empty for the default representation
}

// boundKind classifies the printable bound inferred for a type parameter.
type boundKind int

const (
	boundDirect     boundKind = iota // the parameter itself must be printable
	boundMarker                      // only held by a PhantomData marker field
	boundAssociated                  // only used as the qualifier of Param.Name
)

// bound is the outcome of bound inference for one type parameter.
type bound struct {
	Param  string
	Kind   boundKind
	Target string // the constrained type: the parameter, or e.g. "T.Output"
}

// debugModel is the template model for a Format fragment.
type debugModel struct {
	Target typeModel
	Fields []debugField
	Bounds []bound
	Recv   string
	State  string
	Verb   string
}

// Receiver renders the receiver type arguments, blanking marker-only parameters.
func (m debugModel) Receiver() string {
	if len(m.Target.Params) == 0 {
		return m.Target.Name
	}
	names := make([]string, len(m.Target.Params))
	for i, p := range m.Target.Params {
		names[i] = p.Name
		for _, b := range m.Bounds {
			if b.Param == p.Name && b.Kind == boundMarker {
				names[i] = "_"
			}
		}
	}
	return m.Target.Name + "[" + strings.Join(names, ", ") + "]"
}

// Printable lists the types the generated method prints through their own
// representation.
func (m debugModel) Printable() []string {
	var out []string
	for _, b := range m.Bounds {
		if b.Kind != boundMarker {
			out = append(out, b.Target)
		}
	}
	return out
}

// fragment is a single emitted declaration. Exactly one of the model pointers is
// set, matching Kind.
type fragment struct {
	Kind    string
	Name    string // identifier the fragment declares
	Builder *builderModel
	Field   *builderField
	Debug   *debugModel
	Code    string // rendered source, filled by render
}

// artifact is the output of one generation pass.
type artifact struct {
	Type        string
	Imports     []*ast.ImportSpec
	Fragments   []fragment
	Diagnostics []diag.Diagnostic
}

// fileModel is the root template model for a generated file.
type fileModel struct {
	Package   string
	Tool      string
	Command   string
	Version   string
	Imports   []importModel
	Fragments []fragment
}

// importModel is one import line of the generated file.
type importModel struct {
	Name string
	Path string
}
