// Command buildergen generates fluent builders for struct types.
//
// A slice field tagged builder:"each=name" also gets an appender that adds one
// element at a time.
package main

import (
	"os"

	"github.com/calumari/derive/internal/cli"
	"github.com/calumari/derive/internal/generator"
)

func main() {
	os.Exit(cli.Main(generator.KindBuilder, os.Args[1:], os.Stderr))
}
