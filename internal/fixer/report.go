package fixer

import (
	"strings"

	"github.com/fatih/color"

	"github.com/gnolang/tokpat/rewrite"
)

var (
	fileStyle    = color.New(color.FgCyan, color.Bold)
	ruleStyle    = color.New(color.FgYellow, color.Bold)
	removedStyle = color.New(color.FgRed)
	addedStyle   = color.New(color.FgGreen)
)

// printEdits writes a before/after listing of edits to f.Out. Old text is
// taken from src so its original layout shows.
func (f *Fixer) printEdits(path, src string, edits []rewrite.Edit) {
	f.outMu.Lock()
	defer f.outMu.Unlock()

	for _, edit := range edits {
		fileStyle.Fprintf(f.Out, "%s:%s", path, edit.Start)
		ruleStyle.Fprintf(f.Out, " [%s]\n", edit.Rule)
		for _, line := range strings.Split(src[edit.Start.Offset:edit.End.Offset], "\n") {
			removedStyle.Fprintf(f.Out, "- %s\n", line)
		}
		for _, line := range strings.Split(edit.Text, "\n") {
			addedStyle.Fprintf(f.Out, "+ %s\n", line)
		}
	}
}
