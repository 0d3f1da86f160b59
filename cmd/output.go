package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jaxxstorm/buildtag"
)

type kv struct {
	key   string
	value string
}

// stepOutputs are written to GITHUB_OUTPUT. Absent tags are empty values.
func stepOutputs(outcome *buildtag.Outcome) []kv {
	return []kv{
		{"version_number", outcome.Version},
		{"build_number", outcome.BuildNumber},
		{"tag_label", outcome.NewTag},
		{"current_tag_label", outcome.CurrentTag},
		{"old_tag_label", outcome.OldTag},
		{"previous_tag_label", outcome.OldTag},
	}
}

func envExports(outcome *buildtag.Outcome) []kv {
	return []kv{
		{"BUILD_NUMBER", outcome.BuildNumber},
		{"VERSION_NUMBER", outcome.Version},
		{"TAG_LABEL", outcome.NewTag},
		{"OLD_TAG_LABEL", outcome.OldTag},
	}
}

// appendLines appends name=value lines to path, doing nothing for an empty path
func appendLines(path string, lines []kv) error {
	if path == "" {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if err := writeLines(f, lines); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeLines(w io.Writer, lines []kv) error {
	for _, line := range lines {
		if _, err := fmt.Fprintf(w, "%s=%s\n", line.key, line.value); err != nil {
			return err
		}
	}
	return nil
}
