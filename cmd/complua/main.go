// Command complua translates extended-dialect source into plain-dialect
// output, delegating every compile-time directive to an external luajit
// subprocess (spec.md §6).
package main

import (
	"fmt"
	"os"

	"github.com/complua/complua/cmd/complua/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cmd.FormatFatal(err))
		os.Exit(1)
	}
}
