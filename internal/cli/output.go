package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// MaxOutputSize is the maximum allowed size for output to prevent memory exhaustion
const MaxOutputSize = 10 * 1024 * 1024 // 10MB

var (
	warningLabel = color.New(color.FgBlack, color.BgYellow).SprintFunc()
	successMark  = color.New(color.FgGreen, color.Bold).SprintFunc()
)

// writeString writes a string to the writer with error checking and size limits
func writeString(w io.Writer, s string) error {
	if len(s) > MaxOutputSize {
		return fmt.Errorf("output size %d exceeds maximum allowed size %d",
			len(s), MaxOutputSize)
	}

	n, err := fmt.Fprint(w, s)
	if err != nil {
		return fmt.Errorf("failed to write output (wrote %d bytes): %w", n, err)
	}

	return nil
}

// writeOutput is a helper function to write formatted output with error checking and size limits
func writeOutput(w io.Writer, format string, args ...interface{}) error {
	return writeString(w, fmt.Sprintf(format, args...))
}

// warning formats msg behind the black-on-yellow WARNING label
func warning(msg string) string {
	return warningLabel(" WARNING ") + " " + msg
}

func printSuccess(w io.Writer, format string, args ...interface{}) error {
	return writeOutput(w, "%s %s\n", successMark("✓"), fmt.Sprintf(format, args...))
}
