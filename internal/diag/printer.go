package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	posColor   = color.New(color.Bold)
	errorColor = color.New(color.FgRed, color.Bold)
	codeColor  = color.New(color.FgYellow)
)

// Printer writes diagnostics in the file:line:col form editors understand.
type Printer struct {
	w       io.Writer
	colored bool
}

// NewPrinter returns a Printer writing to w. Color is applied only when colored
// is true and color output is not globally disabled.
func NewPrinter(w io.Writer, colored bool) *Printer {
	return &Printer{w: w, colored: colored && !color.NoColor}
}

// Print writes every diagnostic, one per line, and returns the count written.
func (p *Printer) Print(ds []Diagnostic) (int, error) {
	for i, d := range ds {
		if err := p.print(d); err != nil {
			return i, err
		}
	}
	return len(ds), nil
}

func (p *Printer) print(d Diagnostic) error {
	pos := d.Pos.String()
	if !d.Pos.IsValid() {
		pos = "-"
	}
	if !p.colored {
		_, err := fmt.Fprintf(p.w, "%s: error[%s]: %s\n", pos, d.Code, d.Message)
		return err
	}
	_, err := fmt.Fprintf(p.w, "%s: %s%s: %s\n",
		posColor.Sprint(pos),
		errorColor.Sprint("error"),
		codeColor.Sprintf("[%s]", d.Code),
		d.Message,
	)
	return err
}
