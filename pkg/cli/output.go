package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Format identifies a command output encoding.
type Format string

const (
	// FormatText renders results for human eyes. The default.
	FormatText Format = "text"

	// FormatJSON renders results as indented JSON for pipelines.
	FormatJSON Format = "json"
)

// ParseFormat maps a --format flag value onto a known Format. Unknown
// values fall back to text, so a typo degrades the rendering instead of
// failing the whole command.
func ParseFormat(s string) Format {
	if Format(strings.ToLower(strings.TrimSpace(s))) == FormatJSON {
		return FormatJSON
	}
	return FormatText
}

// Write renders v to w in the given format. JSON output is two-space
// indented and newline-terminated, which is what jq and shell pipelines
// expect; text output falls back to the value's %v rendering.
func Write(w io.Writer, format Format, v interface{}) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		return nil
	default:
		_, err := fmt.Fprintf(w, "%v\n", v)
		return err
	}
}
