// Package main provides the entry point for the devbox CLI.
package main

import "os"

func main() {
	os.Exit(Execute())
}
