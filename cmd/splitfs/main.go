// Command splitfs hard-wires scfs's split mode: every regular file under
// the mirror is presented as a directory of fixed-size byte-range chunks.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/scfs/scfs/internal/cli"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	fset := flag.NewFlagSet("splitfs", flag.ContinueOnError)
	args, err := cli.Parse(fset, argv, cli.ModeSplit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	return cli.Main("", args, os.Stdout, os.Stderr)
}
