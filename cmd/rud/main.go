// Package main is the entry point for rud, the reader usage dashboard. With
// no subcommand it runs the terminal dashboard; subcommands print reports,
// export workbooks and maintain the event store.
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
