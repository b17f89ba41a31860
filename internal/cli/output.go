package cli

import (
	"fmt"
	"io"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/bytedance/sonic"
)

// OutputFormatter handles three output modes: JSON, quiet, and human-readable
type OutputFormatter struct {
	JSON  bool
	Quiet bool
	Out   io.Writer // defaults to os.Stdout
	Err   io.Writer // defaults to os.Stderr
}

func (f *OutputFormatter) out() io.Writer {
	if f.Out == nil {
		return os.Stdout
	}
	return f.Out
}

func (f *OutputFormatter) errOut() io.Writer {
	if f.Err == nil {
		return os.Stderr
	}
	return f.Err
}

// Success outputs a successful operation. message is the human-readable
// line, data is what JSON mode reports. In quiet mode only values with an
// id are printed, as the bare id.
func (f *OutputFormatter) Success(message string, data any) error {
	if f.JSON {
		return sonic.ConfigStd.NewEncoder(f.out()).Encode(map[string]any{
			"success": true,
			"data":    data,
		})
	}

	if f.Quiet {
		if idGetter, ok := data.(interface{ GetID() string }); ok {
			_, err := fmt.Fprintln(f.out(), idGetter.GetID())
			return err
		}
		return nil
	}

	_, err := lipgloss.Fprintln(f.out(), message)
	return err
}

// Error outputs error information
func (f *OutputFormatter) Error(code string, message string) error {
	return f.ErrorWithSuggestion(code, message, "")
}

// ErrorWithSuggestion outputs error information with an optional suggestion.
// Human-readable errors go to stderr even in quiet mode.
func (f *OutputFormatter) ErrorWithSuggestion(code string, message string, suggestion string) error {
	if f.JSON {
		errData := map[string]any{
			"code":    code,
			"message": message,
		}
		if suggestion != "" {
			errData["suggestion"] = suggestion
		}
		return sonic.ConfigStd.NewEncoder(f.out()).Encode(map[string]any{
			"success": false,
			"error":   errData,
		})
	}

	if _, err := fmt.Fprintf(f.errOut(), "error: %s\n", message); err != nil {
		return err
	}
	if suggestion != "" {
		_, err := fmt.Fprintf(f.errOut(), "hint: %s\n", suggestion)
		return err
	}
	return nil
}

// Println writes a human-readable line unless quiet or JSON output is on
func (f *OutputFormatter) Println(text string) {
	if f.Quiet || f.JSON {
		return
	}
	_, _ = lipgloss.Fprintln(f.out(), text)
}
