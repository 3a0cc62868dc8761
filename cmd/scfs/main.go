// Command scfs mounts a read-only view of a mirror directory, either
// splitting every regular file into fixed-size chunks (split) or
// concatenating a previously split mirror back into whole files (cat).
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
	if len(argv) < 1 {
		fmt.Fprintln(os.Stderr, "usage: scfs <split|cat> [options] <mirror> <mountpoint>")
		return 1
	}

	sub := argv[0]
	var mode cli.Mode
	switch sub {
	case "split":
		mode = cli.ModeSplit
	case "cat":
		mode = cli.ModeCat
	default:
		fmt.Fprintf(os.Stderr, "scfs: unknown mode %q; expected \"split\" or \"cat\"\n", sub)
		return 1
	}

	fset := flag.NewFlagSet("scfs "+sub, flag.ContinueOnError)
	args, err := cli.Parse(fset, argv[1:], mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	return cli.Main(sub, args, os.Stdout, os.Stderr)
}
