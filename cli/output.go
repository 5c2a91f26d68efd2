package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/ByLCY/fitbox/fit"
	"github.com/ByLCY/fitbox/layout"
)

var styles = struct {
	title lipgloss.Style
	label lipgloss.Style
	size  lipgloss.Style
	warn  lipgloss.Style
	faint lipgloss.Style
	card  lipgloss.Style
}{
	title: lipgloss.NewStyle().Bold(true),
	label: lipgloss.NewStyle().Foreground(lipgloss.Color("63")),
	size:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
	warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	faint: lipgloss.NewStyle().Faint(true),
	card: lipgloss.NewStyle().
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")),
}

// printSizes 列出每个节点最终应用的字号。
func printSizes(w io.Writer, doc *layout.Document) {
	for _, n := range doc.Nodes() {
		size, ok := n.Attr(fit.AttrSize)
		if !ok {
			size = fmt.Sprint(n.FontSize())
		}
		fmt.Fprintf(w, "%s %s %s\n",
			styles.label.Render(n.ID()),
			styles.size.Render(size+"px"),
			styles.faint.Render(n.Content()))
	}
}
