// Command interlinear annotates word alignments between a timed audio
// transcript and its source text.
//
// Usage:
//
//	interlinear <command> [flags]
//
// Commands:
//
//	annotate  Open the alignment annotator
//	sessions  List journaled annotation sessions
//	export    Export the alignments of a session as JSON
//	report    Summarize the coverage of a session
//	config    Configuration utilities
//	version   Print version information
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
