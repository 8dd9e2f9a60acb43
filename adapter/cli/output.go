package cli

import (
	"encoding/json"
	"io"
)

// RequireApp returns the current application or ErrAppNotInitialized.
func RequireApp() (*App, error) {
	if currentApp == nil {
		return nil, ErrAppNotInitialized
	}
	return currentApp, nil
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
