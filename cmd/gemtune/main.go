// gemtune optimizes GEM T2 controller settings from the command line.
//
// Usage:
//
//	gemtune optimize --input cart.yaml [--baseline current.json] [--format table|markdown|json] [--out settings.json]
//	gemtune trip --input trip.yaml [--format table|markdown|json]
//	gemtune defaults [--format table|markdown|json]
//	gemtune batch --dir carts/ [--workers n]
//	gemtune verify --envelope settings.json
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
