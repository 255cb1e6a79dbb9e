package main

import (
	"fmt"
	"os"
)

const version = "v2.0.0"

func main() {
	// Handle any panics during execution
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
