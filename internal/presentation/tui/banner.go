package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"                _ _                   ",
	"  _ __ _____   _(_) |_ __ _  ___ _ __  ",
	" | '__/ _ \\ \\ / / | __/ _` |/ _ \\ '_ \\ ",
	" | | |  __/\\ V /| | || (_| |  __/ | | |",
	" |_|  \\___| \\_/ |_|\\__\\__, |\\___|_| |_|",
	"                      |___/            ",
}

// Blue to teal, one color per banner line.
var bannerColors = []string{"#60a5fa", "#38bdf8", "#22d3ee", "#2dd4bf", "#34d399", "#4ade80"}

// PrintBanner writes the revitgen banner and version to w, colored when w's
// terminal supports it.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, out.String(line).Foreground(p.Color(bannerColors[i])))
	}
	fmt.Fprintln(w, out.String(fmt.Sprintf("  pyRevit script generator %s", version)).Faint())
	fmt.Fprintln(w)
}
