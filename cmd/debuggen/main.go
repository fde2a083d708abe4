// Command debuggen generates fmt.Formatter implementations for struct types.
//
// A field tagged debug:"<format>" is printed through that format string.
package main

import (
	"os"

	"github.com/calumari/derive/internal/cli"
	"github.com/calumari/derive/internal/generator"
)

func main() {
	os.Exit(cli.Main(generator.KindDebug, os.Args[1:], os.Stderr))
}
