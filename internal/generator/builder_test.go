package generator

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calumari/derive/internal/diag"
)

const commandSrc = `package p

type Command struct {
	executable  string
	args        []string ` + "`builder:\"each=arg\"`" + `
	env         []string ` + "`builder:\"each=env\"`" + `
	current_dir *string
}
`

// renderOne renders a single artifact into a formatted file and type-checks it
// together with the source the artifact was generated from.
func renderOne(t *testing.T, kind Kind, src string, a *artifact) string {
	t.Helper()
	cfg := Config{Kind: kind, Command: toolName(kind) + " -type=" + a.Type, Version: "test"}
	out := filepath.Join(t.TempDir(), kind.String()+"_gen.go")
	gen, err := renderFile(cfg, "p", out, []*artifact{a})
	require.NoError(t, err)

	fset := token.NewFileSet()
	srcFile, err := parser.ParseFile(fset, "types.go", src, parser.ParseComments)
	require.NoError(t, err)
	genFile, err := parser.ParseFile(fset, out, gen, parser.ParseComments)
	require.NoError(t, err, string(gen))
	conf := types.Config{Importer: importer.Default()}
	_, err = conf.Check("p", fset, []*ast.File{srcFile, genFile}, nil)
	require.NoError(t, err, string(gen))
	return string(gen)
}

func fragmentNames(a *artifact) []string {
	var names []string
	for _, f := range a.Fragments {
		names = append(names, f.Kind+":"+f.Name)
	}
	return names
}

func TestBuilderFragments(t *testing.T) {
	a := runPass(t, KindBuilder, commandSrc, "Command")
	require.Empty(t, a.Diagnostics)
	require.Equal(t, []string{
		"builderType:CommandBuilder",
		"constructor:NewCommandBuilder",
		"setter:Executable",
		"setter:Args",
		"setter:Current_dir",
		"appender:Arg",
		"appender:Env",
		"build:Build",
	}, fragmentNames(a))
}

func TestBuilderFieldPlans(t *testing.T) {
	fset, sites := parseSites(t, commandSrc, "Command")
	decl, err := decodeType(fset, sites["Command"])
	require.NoError(t, err)

	p := &pass{fset: fset}
	frags := p.synthesizeBuilder(decl)
	m := frags[0].Builder
	require.Equal(t, "CommandBuilder", m.Builder.Name)
	require.True(t, m.HasDefaults())

	byName := map[string]builderField{}
	for _, f := range m.Fields {
		byName[f.Name] = f
	}

	exe := byName["executable"]
	require.Equal(t, "*string", exe.StorageType)
	require.Equal(t, "string", exe.SetterType())
	require.False(t, exe.DefaultEmpty())

	args := byName["args"]
	require.True(t, args.Collection)
	require.Equal(t, "*[]string", args.StorageType)
	require.Equal(t, "[]string", args.SetterType())
	require.Equal(t, "string", args.Elem)
	require.True(t, args.DefaultEmpty())
	require.Equal(t, "Args", args.Setter)
	require.Equal(t, "Arg", args.Appender)

	env := byName["env"]
	require.Empty(t, env.Setter, "each named after the field replaces the setter")
	require.Equal(t, "Env", env.Appender)

	dir := byName["current_dir"]
	require.True(t, dir.Optional)
	require.Equal(t, "*string", dir.StorageType, "optional fields are not wrapped twice")
	require.Equal(t, "string", dir.SetterType())
	require.Equal(t, "current_dir", dir.Storage)
}

func TestBuilderRendersCode(t *testing.T) {
	src := renderOne(t, KindBuilder, commandSrc, runPass(t, KindBuilder, commandSrc, "Command"))

	require.Contains(t, src, "// Code generated by buildergen test. DO NOT EDIT.")
	require.Contains(t, src, "// Command: buildergen -type=Command")
	require.Contains(t, src, "type CommandBuilder struct {")
	require.Contains(t, src, "func NewCommandBuilder() *CommandBuilder {")
	require.Regexp(t, `args:\s+&\[\]string\{\},`, src)
	require.Regexp(t, `env:\s+&\[\]string\{\},`, src)
	require.Contains(t, src, "func (b *CommandBuilder) Executable(v string) *CommandBuilder {")
	require.Contains(t, src, "func (b *CommandBuilder) Current_dir(v string) *CommandBuilder {")
	require.Contains(t, src, "func (b *CommandBuilder) Arg(v string) *CommandBuilder {")
	require.Contains(t, src, "*b.args = append(*b.args, v)")
	require.Contains(t, src, "b.args = &[]string{v}")
	require.Contains(t, src, "v = slices.Clone(v)\n\tb.args = &v")
	require.NotContains(t, src, ") Env(v []string)")
	require.Contains(t, src, "func (b *CommandBuilder) Build() (Command, error) {")
	require.Contains(t, src, `errors.New("CommandBuilder: no value for field executable")`)
	require.NotContains(t, src, "no value for field current_dir")
	require.Regexp(t, `current_dir:\s+b\.current_dir,`, src)
	require.Regexp(t, `args:\s+slices\.Clone\(\*b\.args\),`, src)
	require.Regexp(t, `executable:\s+\*b\.executable,`, src)
	require.Contains(t, src, `"errors"`)
	require.Contains(t, src, `"slices"`)
}

func TestBuilderGeneric(t *testing.T) {
	src := `package p

type Foo[T any] struct {
	bar []uint8
	baz *string
	val T
}
`
	a := runPass(t, KindBuilder, src, "Foo")
	require.Empty(t, a.Diagnostics)
	out := renderOne(t, KindBuilder, src, a)

	require.Contains(t, out, "type FooBuilder[T any] struct {")
	require.Contains(t, out, "func NewFooBuilder[T any]() *FooBuilder[T] {")
	require.Contains(t, out, "return &FooBuilder[T]{}")
	require.Contains(t, out, "func (b *FooBuilder[T]) Val(v T) *FooBuilder[T] {")
	require.Contains(t, out, "func (b *FooBuilder[T]) Build() (Foo[T], error) {")
	require.Contains(t, out, "return Foo[T]{}, errors.New(\"FooBuilder: no value for field bar\")")
	require.Contains(t, out, "bar: slices.Clone(*b.bar),")
}

func TestBuilderUnexportedType(t *testing.T) {
	src := "package p\n\ntype config struct{}\n"
	a := runPass(t, KindBuilder, src, "config")
	require.Equal(t, []string{
		"builderType:configBuilder",
		"constructor:newConfigBuilder",
		"build:Build",
	}, fragmentNames(a))
	out := renderOne(t, KindBuilder, src, a)
	require.Contains(t, out, "return config{}, nil")
}

func TestBuilderMalformedAnnotationKeepsOtherFragments(t *testing.T) {
	src := "package p\n\ntype T struct {\n" +
		"\tName string `builder:\"each=name\"`\n" +
		"\tTags []string `builder(each=\"tag\")`\n" +
		"\tItems []int `builder:\"each=item\"`\n" +
		"}\n"
	a := runPass(t, KindBuilder, src, "T")

	require.Len(t, a.Diagnostics, 2)
	for _, d := range a.Diagnostics {
		require.Equal(t, diag.MalformedAnnotation, d.Code)
		require.Equal(t, `only builder:"each=..." is supported`, d.Message)
	}
	require.Equal(t, 4, a.Diagnostics[0].Pos.Line)
	require.Equal(t, 5, a.Diagnostics[1].Pos.Line)

	require.Equal(t, []string{
		"builderType:TBuilder",
		"constructor:NewTBuilder",
		"setter:Name",
		"setter:Tags",
		"setter:Items",
		"appender:Item",
		"build:Build",
	}, fragmentNames(a))
	renderOne(t, KindBuilder, src, a)
}

func TestBuilderMethodConflicts(t *testing.T) {
	src := "package p\n\ntype T struct {\n" +
		"\tName string\n" +
		"\tname string\n" +
		"\tBuild bool\n" +
		"\tNames []string `builder:\"each=name\"`\n" +
		"}\n"
	a := runPass(t, KindBuilder, src, "T")

	require.Len(t, a.Diagnostics, 3)
	for _, d := range a.Diagnostics {
		require.Equal(t, diag.MethodConflict, d.Code)
	}
	require.Equal(t, "method Name for field name conflicts with field Name", a.Diagnostics[0].Message)
	require.Equal(t, "method Build for field Build conflicts with the finalizer", a.Diagnostics[1].Message)
	require.Equal(t, "method Name for field Names conflicts with field Name", a.Diagnostics[2].Message)

	require.Equal(t, []string{
		"builderType:TBuilder",
		"constructor:NewTBuilder",
		"setter:Name",
		"setter:Names",
		"build:Build",
	}, fragmentNames(a))

	m := a.Fragments[0].Builder
	require.Equal(t, "name", m.Fields[0].Storage)
	require.Equal(t, "name2", m.Fields[1].Storage)
	require.True(t, m.Fields[3].DefaultEmpty(), "the directive still presets the slice")
}

func TestBuilderAvoidsNameCollisions(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		codes  []diag.Code
		checks []string
	}{
		{
			name: "type parameters named like locals",
			src:  "package p\n\ntype T[b any, v any] struct {\n\tX b\n\tYs []v `builder:\"each=y\"`\n}\n",
			checks: []string{
				"func (b2 *TBuilder[b, v]) X(v2 b) *TBuilder[b, v] {",
				"func (b2 *TBuilder[b, v]) Y(v2 v) *TBuilder[b, v] {",
				"func (b2 *TBuilder[b, v]) Build() (T[b, v], error) {",
			},
		},
		{
			name: "field names without case",
			src:  "package p\n\ntype T struct {\n\t_id int\n\t名前 string\n}\n",
			checks: []string{
				"func (b *TBuilder) _id(v int) *TBuilder {",
				"b._id2 = &v",
				"func (b *TBuilder) 名前(v string) *TBuilder {",
			},
		},
		{
			name:  "appender named like another setter",
			src:   "package p\n\ntype T struct {\n\t_x int\n\tItems []int `builder:\"each=_x\"`\n}\n",
			codes: []diag.Code{diag.MethodConflict},
		},
		{
			name:  "type parameter hides a package",
			src:   "package p\n\ntype T[errors any] struct {\n\tX errors\n}\n",
			codes: []diag.Code{diag.NameConflict},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := runPass(t, KindBuilder, tt.src, "T")
			var codes []diag.Code
			for _, d := range a.Diagnostics {
				codes = append(codes, d.Code)
			}
			require.Equal(t, tt.codes, codes)
			out := renderOne(t, KindBuilder, tt.src, a)
			for _, c := range tt.checks {
				require.Contains(t, out, c)
			}
		})
	}
}

func TestBuilderNames(t *testing.T) {
	tests := []struct{ in, storage, setter string }{
		{"Name", "name", "Name"},
		{"ID", "id", "ID"},
		{"URLPath", "urlPath", "URLPath"},
		{"currentDir", "currentDir", "CurrentDir"},
		{"Type", "type_", "Type"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.storage, unexportName(tt.in), tt.in)
		require.Equal(t, tt.setter, exportName(tt.in), tt.in)
	}

	typ, ctor := builderName("Command")
	require.Equal(t, "CommandBuilder", typ)
	require.Equal(t, "NewCommandBuilder", ctor)
}
