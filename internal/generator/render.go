package generator

import (
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"

	"github.com/calumari/derive/internal/diag"
)

// stdImports are the packages each generator's templates refer to.
var stdImports = map[Kind][]string{
	KindBuilder: {"errors", "slices"},
	KindDebug:   {"fmt", "io"},
}

// run orchestrates loading, the per-type passes, and file emission.
func (g *generator) run() ([]diag.Diagnostic, error) {
	cfg := g.cfg
	if len(cfg.Types) == 0 {
		return nil, errors.New("no types provided")
	}
	if _, ok := stdImports[cfg.Kind]; !ok {
		return nil, fmt.Errorf("unknown generator kind %d", cfg.Kind)
	}
	if err := ensureTemplates(); err != nil {
		return nil, err
	}
	absDir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, err
	}
	pkg, err := loadDir(absDir, g.fset)
	if err != nil {
		return nil, err
	}
	g.log.Debug().Str("package", pkg.Name).Int("files", len(pkg.Syntax)).Msg("loaded package")

	names := dedupe(cfg.Types)
	sites, err := lookupTypes(pkg.Syntax, names)
	if err != nil {
		return nil, err
	}
	ordered := make([]declSite, len(names))
	for i, n := range names {
		ordered[i] = sites[n]
	}
	arts, err := g.generateAll(ordered)
	if err != nil {
		return nil, err
	}

	outPath := filepath.Join(absDir, cfg.Output)
	src, err := renderFile(cfg, pkg.Name, outPath, arts)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(outPath, src, 0o644); err != nil {
		return nil, err
	}
	var diags []diag.Diagnostic
	for _, a := range arts {
		diags = append(diags, a.Diagnostics...)
	}
	diag.Sort(diags)
	g.log.Debug().Str("output", outPath).Int("diagnostics", len(diags)).Msg("wrote file")
	return diags, nil
}

// generateAll runs one independent pass per declaration. Passes share only the
// read-only syntax and the file set; results keep declaration order.
func (g *generator) generateAll(sites []declSite) ([]*artifact, error) {
	arts := make([]*artifact, len(sites))
	jobs := g.cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	var eg errgroup.Group
	eg.SetLimit(jobs)
	for i, site := range sites {
		eg.Go(func() error {
			a, err := generate(g.fset, g.cfg.Kind, site)
			if err != nil {
				return err
			}
			g.log.Debug().
				Str("type", a.Type).
				Int("fragments", len(a.Fragments)).
				Int("diagnostics", len(a.Diagnostics)).
				Msg("generated")
			arts[i] = a
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return arts, nil
}

// renderFile joins every fragment into a single source file, then prunes
// unused imports and formats it. Unformattable output is returned raw so the
// compiler can point at the problem.
func renderFile(cfg Config, pkgName, outPath string, arts []*artifact) ([]byte, error) {
	if err := ensureTemplates(); err != nil {
		return nil, err
	}
	data := fileModel{
		Package: pkgName,
		Tool:    toolName(cfg.Kind),
		Command: cfg.Command,
		Version: cfg.Version,
		Imports: mergeImports(stdImports[cfg.Kind], arts),
	}
	for _, a := range arts {
		data.Fragments = append(data.Fragments, a.Fragments...)
	}
	var out bytes.Buffer
	if err := fileTmpl.ExecuteTemplate(&out, tmplFile, data); err != nil {
		return nil, err
	}
	formatted, err := imports.Process(outPath, out.Bytes(), &imports.Options{Comments: true, TabIndent: true, TabWidth: 8})
	if err != nil {
		return out.Bytes(), nil
	}
	return formatted, nil
}

// mergeImports collects the standard packages the templates need and the
// imports of every source file a type was declared in. Unused ones are pruned
// after rendering.
func mergeImports(std []string, arts []*artifact) []importModel {
	seen := map[importModel]bool{}
	var out []importModel
	add := func(im importModel) {
		if !seen[im] {
			seen[im] = true
			out = append(out, im)
		}
	}
	for _, p := range std {
		add(importModel{Path: p})
	}
	for _, a := range arts {
		for _, spec := range a.Imports {
			if im, ok := importOf(spec); ok {
				add(im)
			}
		}
	}
	return out
}

func importOf(spec *ast.ImportSpec) (importModel, bool) {
	path, err := strconv.Unquote(spec.Path.Value)
	if err != nil {
		return importModel{}, false
	}
	im := importModel{Path: path}
	if spec.Name != nil {
		if spec.Name.Name == "_" {
			return importModel{}, false
		}
		im.Name = spec.Name.Name
	}
	return im, true
}

func toolName(k Kind) string { return k.String() + "gen" }

func dedupe(names []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, n := range names {
		if n != "" && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
