// Command gorep is a minimal extended-grep: it reports which lines of its
// input match a single pattern, using a hand-rolled backtracking pattern
// engine (see internal/patterns) rather than the standard library's RE2
// based regexp package.
package main

import (
	"os"

	"github.com/briantigerchow/gorep/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
