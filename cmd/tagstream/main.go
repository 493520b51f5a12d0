// Package main is the entry point for the tagstream CLI.
//
// Usage:
//
//	tagstream [flags] <command> [args]
//
// Commands:
//
//	parse      - Parse a complete assistant message into content blocks
//	stream     - Replay a message chunk by chunk and render blocks live
//	serve      - WebSocket dev server that parses streamed chunks
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/tagstream/cmd/tagstream/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
