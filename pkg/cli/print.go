package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
)

// printResult outputs a single operation result.
//
// Contract: when --json is active, ONLY the JSON encoding of data is written
// to stdout. Human-readable prose goes to stderr or is omitted. textFn is
// called only in text mode.
func printResult(data any, textFn func()) error {
	if jsonOutput {
		return printJSON(data)
	}
	textFn()
	return nil
}

// printJSON writes indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table creates an aligned table writer for stdout. Call Flush when done.
func table() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

// warn prints a warning message to stderr.
func warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}
