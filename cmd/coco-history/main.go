package main

import (
	"fmt"
	"os"

	"coco/internal/exitcodes"
)

func main() {
	cmd := newRootCmd(os.Stdout)
	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitcodes.Success)
}
