package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

//nolint:gochecknoglobals
var (
	foundStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	missingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func renderFound(w io.Writer, name string, resolved string, origin fmt.Stringer, size int64) {
	fmt.Fprintf(w, "%s %s %s\n",
		foundStyle.Render("found  "),
		name,
		dimStyle.Render(fmt.Sprintf("-> %s (%s, %s)", resolved, origin, humanize.IBytes(uint64(size)))), //nolint:gosec
	)
}

func renderMissing(w io.Writer, name string) {
	fmt.Fprintf(w, "%s %s\n", missingStyle.Render("missing"), name)
}

func renderEntry(w io.Writer, name string) {
	fmt.Fprintln(w, name)
}
