package generator

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

const (
	tmplFile     = "file"
	tmplFragment = "fragment_"
)

const templatePattern = "templates/*.gtpl"

//go:embed templates/*.gtpl
var templatesFS embed.FS

var (
	fileTmpl     *template.Template
	tmplInitOnce sync.Once
	tmplInitErr  error
)

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"sep": func(i int) string {
		if i == 0 {
			return ""
		}
		return ", "
	},
}

// validateTemplates ensures all required templates are defined
func validateTemplates() error {
	if fileTmpl.Lookup(tmplFile) == nil {
		return fmt.Errorf("required template %q not found", tmplFile)
	}
	// Every fragment kind needs its fragment_* template.
	requiredKinds := []string{
		fragmentKindBuilderType,
		fragmentKindConstructor,
		fragmentKindSetter,
		fragmentKindAppender,
		fragmentKindBuild,
		fragmentKindFormat,
	}
	for _, kind := range requiredKinds {
		name := tmplFragment + kind
		if fileTmpl.Lookup(name) == nil {
			return fmt.Errorf("required fragment template %q for kind %q not found", name, kind)
		}
	}
	return nil
}

// ensureTemplates parses and validates templates exactly once.
func ensureTemplates() error {
	tmplInitOnce.Do(func() {
		var t *template.Template
		t, tmplInitErr = template.New(tmplFile).Funcs(templateFuncs).ParseFS(templatesFS, templatePattern)
		if tmplInitErr != nil {
			return
		}
		fileTmpl = t
		tmplInitErr = validateTemplates()
	})
	return tmplInitErr
}

// renderFragment executes the template matching the fragment's kind.
func renderFragment(f *fragment) (string, error) {
	if err := ensureTemplates(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := fileTmpl.ExecuteTemplate(&buf, tmplFragment+f.Kind, f); err != nil {
		return "", err
	}
	return buf.String(), nil
}
