package generator

import (
	"fmt"
	"go/ast"
	"go/token"

	"golang.org/x/tools/go/packages"
)

// loadDir loads the Go package for a directory. Only syntax is loaded: the
// generators work on declared shapes and never type-check their input.
func loadDir(dir string, fset *token.FileSet) (*packages.Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles | packages.NeedSyntax,
		Dir:  dir,
		Fset: fset,
	}
	pkgs, err := packages.Load(cfg, "./")
	if err != nil {
		return nil, err
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found in %s", dir)
	}
	p := pkgs[0]
	if len(p.Errors) > 0 {
		return nil, p.Errors[0]
	}
	return p, nil
}

// declSite is a type spec together with the file declaring it.
type declSite struct {
	Spec *ast.TypeSpec
	File *ast.File
}

// lookupTypes finds the declaration of every requested type name across files.
func lookupTypes(files []*ast.File, names []string) (map[string]declSite, error) {
	sites := make(map[string]declSite, len(names))
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	for _, f := range files {
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, s := range gd.Specs {
				ts := s.(*ast.TypeSpec)
				if want[ts.Name.Name] {
					sites[ts.Name.Name] = declSite{Spec: ts, File: f}
				}
			}
		}
	}
	var missing []string
	for _, n := range names {
		if _, ok := sites[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("types not found: %v", missing)
	}
	return sites, nil
}
