package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// NewOutputFormatter creates a formatter for the given format.
func NewOutputFormatter(format string, w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: format, Writer: w}
}

// Value prints a single store value. Text mode prints scalars bare and
// containers as indented JSON; json mode wraps the value with its key.
func (f *OutputFormatter) Value(key string, value any) error {
	if f.Format == "json" {
		return f.printJSON(map[string]any{"key": key, "value": value})
	}

	switch v := value.(type) {
	case nil:
		_, err := fmt.Fprintln(f.Writer, "<absent>")
		return err
	case string:
		_, err := fmt.Fprintln(f.Writer, v)
		return err
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("render value: %w", err)
		}
		_, err = fmt.Fprintln(f.Writer, string(data))
		return err
	}
}

// Change prints one watch notification.
func (f *OutputFormatter) Change(key string, newValue, oldValue any) error {
	if f.Format == "json" {
		return f.printJSON(map[string]any{"key": key, "new": newValue, "old": oldValue})
	}
	_, err := fmt.Fprintf(f.Writer, "%s: %v (was %v)\n", key, newValue, oldValue)
	return err
}

// List prints a plain list of strings.
func (f *OutputFormatter) List(label string, items []string) error {
	if f.Format == "json" {
		return f.printJSON(map[string]any{label: items})
	}
	for _, item := range items {
		if _, err := fmt.Fprintln(f.Writer, item); err != nil {
			return err
		}
	}
	return nil
}

func (f *OutputFormatter) printJSON(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
