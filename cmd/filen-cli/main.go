// Command filen-cli is a command-line client for an end-to-end encrypted
// cloud storage service: a thin cobra frontend over the engine packages
// under internal/.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "filen-cli:", err)
		os.Exit(1)
	}
}
