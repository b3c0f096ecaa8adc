package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the feedstream banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"   __              _     _                            ", "#34d399"},
		{"  / _| ___  ___  __| |___| |_ _ __ ___  __ _ _ __ ___  ", "#2dd4bf"},
		{" | |_ / _ \\/ _ \\/ _` / __| __| '__/ _ \\/ _` | '_ ` _ \\ ", "#22d3ee"},
		{" |  _|  __/  __/ (_| \\__ \\ |_| | |  __/ (_| | | | | | |", "#38bdf8"},
		{" |_|  \\___|\\___|\\__,_|___/\\__|_|  \\___|\\__,_|_| |_| |_|", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
