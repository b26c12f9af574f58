// Command cosy runs a cosy application from a configuration directory and
// reports on the environment it runs in.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
