// Command facet evaluates facet scripts, exports their parts as STL and
// inspects the labels carried through modelling operations.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
