// Package cli provides common utilities for the tagstream command-line
// tools.
//
// This package includes:
//   - Output formatting (JSON, YAML, raw)
//   - Terminal styling for streamed block rendering
//   - Human-readable size and duration formatting
//
// Example usage:
//
//	// Output result
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
package cli
