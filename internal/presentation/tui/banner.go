package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"      _                                _      _ ", "#818cf8"},
	{"   __| | ___   ___ _ __ ___   ___   __| | ___| |", "#a78bfa"},
	{"  / _` |/ _ \\ / __| '_ ` _ \\ / _ \\ / _` |/ _ \\ |", "#c084fc"},
	{" | (_| | (_) | (__| | | | | | (_) | (_| |  __/ |", "#e879f9"},
	{"  \\__,_|\\___/ \\___|_| |_| |_|\\___/ \\__,_|\\___|_|", "#f472b6"},
}

// PrintBanner writes the docmodel ASCII art banner to w.
// Colors follow the terminal profile detected for w.
func PrintBanner(w io.Writer) {
	printBanner(termenv.NewOutput(w))
}

func printBanner(out *termenv.Output) {
	fmt.Fprintln(out)
	for _, l := range bannerLines {
		// Subtle gradient (Indigo/Violet)
		fmt.Fprintln(out, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(out)
}
