// kwmatch matches many boolean keyword patterns against text in one pass.
// Exit status follows grep: 0 when a pattern matched, 1 when none did, 2 on error.
package main

import (
	"fmt"
	"os"

	"github.com/corey/kwmatch/cmd/kwmatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		code := cmd.ExitCode(err)
		if code < 0 {
			fmt.Fprintf(os.Stderr, "kwmatch: %v\n", err)
			code = 2
		}
		os.Exit(code)
	}
}
