// Command catfs hard-wires scfs's cat mode: every chunk-directory in a
// SplitFS-produced mirror is presented as a single concatenated regular
// file.
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
	fset := flag.NewFlagSet("catfs", flag.ContinueOnError)
	args, err := cli.Parse(fset, argv, cli.ModeCat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	return cli.Main("", args, os.Stdout, os.Stderr)
}
