// Package cli is the command-line host shared by buildergen and debuggen.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/calumari/derive/internal/diag"
	"github.com/calumari/derive/internal/generator"
)

// deriveVersion inspects build info for module version or vcs revision.
// preference order: module semantic version -> short commit hash -> "devel".
func deriveVersion() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			return bi.Main.Version
		}
		var revision string
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				revision = s.Value
				break
			}
		}
		if len(revision) >= 12 { // short hash for readability
			return revision[:12]
		}
		if revision != "" {
			return revision
		}
	}
	return "devel"
}

var descriptions = map[generator.Kind]string{
	generator.KindBuilder: "generates fluent builders for struct types",
	generator.KindDebug:   "generates fmt.Formatter implementations for struct types",
}

// options are the parsed command-line flags.
type options struct {
	types   []string
	output  string
	dir     string
	jobs    int
	verbose bool
	noColor bool
}

// Main runs a generator command and returns its exit status.
func Main(kind generator.Kind, args []string, stderr io.Writer) int {
	tool := kind.String() + "gen"
	opts, err := parseFlags(kind, tool, args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}

	level := zerolog.WarnLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: opts.noColor}).
		Level(level).
		With().Timestamp().Str("tool", tool).Logger()

	cfg := generator.Config{
		Kind:    kind,
		Dir:     opts.dir,
		Types:   opts.types,
		Output:  opts.output,
		Jobs:    opts.jobs,
		Command: displayCommand(tool, kind, opts),
		Version: deriveVersion(),
		Logger:  &logger,
	}
	diags, err := generator.Run(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", tool, err)
		return 1
	}
	if len(diags) > 0 {
		p := diag.NewPrinter(stderr, !opts.noColor && isTerminal(stderr))
		if _, err := p.Print(diags); err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", tool, err)
		}
		return 1
	}
	return 0
}

func parseFlags(kind generator.Kind, tool string, args []string, stderr io.Writer) (options, error) {
	var opts options
	var typesCSV string
	fs := flag.NewFlagSet(tool, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&typesCSV, "type", "", "Comma-separated list of struct type names (required)")
	fs.StringVar(&opts.output, "output", kind.String()+"_gen.go", "Output filename for generated code")
	fs.StringVar(&opts.dir, "dir", ".", "Directory of the package declaring the types")
	fs.IntVar(&opts.jobs, "jobs", 0, "Maximum concurrent generation passes (0 = one per CPU)")
	fs.BoolVar(&opts.verbose, "v", false, "Log generation progress")
	fs.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [flags]\n", tool)
		fmt.Fprintf(stderr, "\n%s %s.\n\n", exportTool(tool), descriptions[kind])
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExample:\n")
		fmt.Fprintf(stderr, "  //go:generate go run <module>/cmd/%s -type=Command,Config -output=%s_gen.go\n", tool, kind)
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if typesCSV == "" {
		fmt.Fprintf(stderr, "Error: -type is required\n\n")
		fs.Usage()
		return opts, errors.New("missing -type")
	}
	for p := range strings.SplitSeq(typesCSV, ",") {
		if p = strings.TrimSpace(p); p != "" {
			opts.types = append(opts.types, p)
		}
	}
	return opts, nil
}

// displayCommand builds a canonical command representation instead of raw argv
// (which may include build cache paths).
func displayCommand(tool string, kind generator.Kind, opts options) string {
	parts := []string{tool, "-type=" + strings.Join(opts.types, ",")}
	if opts.output != kind.String()+"_gen.go" {
		parts = append(parts, "-output="+opts.output)
	}
	if opts.dir != "." {
		parts = append(parts, "-dir="+opts.dir)
	}
	if opts.jobs > 0 {
		parts = append(parts, "-jobs="+strconv.Itoa(opts.jobs))
	}
	return strings.Join(parts, " ")
}

func exportTool(tool string) string {
	if tool == "" {
		return tool
	}
	return strings.ToUpper(tool[:1]) + tool[1:]
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
