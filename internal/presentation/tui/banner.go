package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the colloquy banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	rows := []struct {
		text, color string
	}{
		{`            _ _                         `, "#34d399"},
		{`   ___ ___ | | | ___   __ _ _   _ _   _ `, "#2dd4bf"},
		{`  / __/ _ \| | |/ _ \ / _' | | | | | | |`, "#22d3ee"},
		{` | (_| (_) | | | (_) | (_| | |_| | |_| |`, "#38bdf8"},
		{`  \___\___/|_|_|\___/ \__, |\__,_|\__, |`, "#60a5fa"},
		{`                         |_|      |___/ `, "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, row := range rows {
		fmt.Fprintln(w, p.String(row.text).Foreground(p.Color(row.color)))
	}
	if version != "" {
		fmt.Fprintln(w, p.String("  "+version).Faint())
	}
	fmt.Fprintln(w)
}
