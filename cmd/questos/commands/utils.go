// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Input reading, output format resolution, JSON printing and text helpers
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/harper/questos/internal/csvplan"
)

// now is swapped in tests
var now = time.Now

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats a time for display relative to now
func formatTime(t time.Time) string {
	diff := now().Sub(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	} else if diff < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
	return t.Local().Format("2006-01-02")
}

// formatNumber prints whole numbers without a decimal point
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isISODate(s string) bool {
	return csvplan.IsISODate(s)
}

// readInput reads a file, or stdin when path is empty or "-"
func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// resolveFormat turns --format auto into json for pipes and table for terminals
func resolveFormat(w io.Writer) string {
	if outputFormat != "auto" {
		return outputFormat
	}
	if f, ok := w.(*os.File); ok && !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return "json"
	}
	return "table"
}

func printJSON(w io.Writer, v interface{}) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", jsonData)
	return err
}

// printValidationErrors lists up to limit errors and how many were left out
func printValidationErrors(w io.Writer, result csvplan.Result, limit int) {
	fmt.Fprintf(w, "%d error(s):\n", len(result.Errors))
	for _, line := range result.Display(limit) {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if extra := len(result.Errors) - limit; limit > 0 && extra > 0 {
		fmt.Fprintf(w, "  ...and %d more\n", extra)
	}
}

// containsString checks if a slice contains a string
func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
