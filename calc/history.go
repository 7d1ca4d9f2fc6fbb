package calc

import (
	"fmt"
	"os"
	"strings"
)

// ExportText joins the history log with newlines. An empty log yields ErrNothingToExport.
func ExportText(history []string) (string, error) {
	if len(history) == 0 {
		return "", ErrNothingToExport
	}
	return strings.Join(history, "\n"), nil
}

// WriteHistory writes the history log to path as UTF-8 text. An empty log yields
// ErrNothingToExport and the filesystem is not touched.
func WriteHistory(path string, history []string) error {
	text, err := ExportText(history)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
