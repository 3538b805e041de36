package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnolang/tokpat/internal/bindfile"
	"github.com/gnolang/tokpat/pattern/fragment"
)

// readInput returns the contents of the file named by args, or of stdin
// when args is empty or "-".
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// loadPatternAndBindings compiles src and decodes the bindings file at
// path against it.
func loadPatternAndBindings(src, path string) (*fragment.Pattern, *fragment.Bindings, error) {
	p, err := fragment.Compile(src)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid pattern: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	b, err := bindfile.Decode(p, data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, b, nil
}
