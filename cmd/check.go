package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/tokpat/pattern"
	"github.com/gnolang/tokpat/pattern/fragment"
)

var errInvalidPatterns = errors.New("some patterns are invalid")

var checkCmd = &cobra.Command{
	Use:   "check PATTERN...",
	Short: "Validate patterns and describe what they bind",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := 0
		for i, src := range args {
			if i > 0 {
				fmt.Fprintln(out)
			}
			if err := checkPattern(out, src); err != nil {
				logger.Debug("invalid pattern", zap.String("pattern", src), zap.Error(err))
				color.New(color.FgRed, color.Bold).Fprintf(out, "error: %s: %v\n", src, err)
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%w (%d of %d)", errInvalidPatterns, failed, len(args))
		}
		return nil
	},
}

func checkPattern(w io.Writer, src string) error {
	p, err := fragment.Compile(src)
	if err != nil {
		return err
	}
	dummy, err := fragment.DummySubstitute(p)
	if err != nil {
		return err
	}

	color.New(color.FgGreen, color.Bold).Fprintf(w, "ok: %s\n", p)
	fmt.Fprintf(w, "schema: %s\n", p.Schema())

	params := p.Parameters()
	if names := p.Names(); len(names) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Name", "Kind", "Repetition"})
		for _, name := range names {
			path, index, _ := p.Schema().Lookup(name)
			kind := "index"
			if !index {
				kind = params[name].String()
			}
			t.AppendRow(table.Row{name, kind, repetitionPath(path)})
		}
		t.Render()
	}

	fmt.Fprintf(w, "example: %s\n", dummy)
	return nil
}

func repetitionPath(path []pattern.RepetitionKind) string {
	if len(path) == 0 {
		return "-"
	}
	parts := make([]string, len(path))
	for i, k := range path {
		parts[i] = k.String()
	}
	return strings.Join(parts, " > ")
}
