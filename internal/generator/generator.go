package generator

import (
	"fmt"
	"go/token"
	"slices"

	"github.com/rs/zerolog"

	"github.com/calumari/derive/internal/diag"
)

// generator holds state shared by the passes of one invocation. Passes only
// read from it.
type generator struct {
	cfg  Config
	fset *token.FileSet
	log  zerolog.Logger
}

// Run generates code for every configured type and writes the output file.
// Field-level problems come back as diagnostics next to a written file; an
// error means nothing was written.
func Run(cfg Config) ([]diag.Diagnostic, error) { return newGenerator(cfg).run() }

func newGenerator(cfg Config) *generator {
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &generator{
		cfg:  cfg,
		fset: token.NewFileSet(),
		log:  log.With().Str("generator", cfg.Kind.String()).Logger(),
	}
}

// pass holds transient state while generating for a single type.
type pass struct {
	fset  *token.FileSet
	diags []diag.Diagnostic
}

func (p *pass) report(code diag.Code, pos token.Position, msg string) {
	p.diags = append(p.diags, diag.Diagnostic{Code: code, Message: msg, Pos: pos})
}

// shadowsImport reports every type parameter named after a package the
// generated code refers to. Such a type gets no fragments.
func (p *pass) shadowsImport(decl *typeDecl, pkgs []string) bool {
	shadowed := false
	for _, tp := range decl.Params {
		if slices.Contains(pkgs, tp.Name) {
			p.report(diag.NameConflict, decl.Pos, fmt.Sprintf("type parameter %s of %s hides package %s used by generated code", tp.Name, decl.Name, tp.Name))
			shadowed = true
		}
	}
	return shadowed
}

// generate runs one complete pass: decode, synthesize, render fragments.
func generate(fset *token.FileSet, kind Kind, site declSite) (*artifact, error) {
	decl, err := decodeType(fset, site)
	if err != nil {
		return nil, err
	}
	p := &pass{fset: fset}
	var frags []fragment
	switch kind {
	case KindBuilder:
		frags = p.synthesizeBuilder(decl)
	case KindDebug:
		frags = p.synthesizeDebug(decl)
	default:
		return nil, fmt.Errorf("unknown generator kind %d", kind)
	}
	for i := range frags {
		code, err := renderFragment(&frags[i])
		if err != nil {
			return nil, fmt.Errorf("%s: render %s %s: %w", decl.Name, frags[i].Kind, frags[i].Name, err)
		}
		frags[i].Code = code
	}
	return &artifact{
		Type:        decl.Name,
		Imports:     decl.Imports,
		Fragments:   frags,
		Diagnostics: p.diags,
	}, nil
}
