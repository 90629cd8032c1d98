package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	`  _____     _     _      `,
	` |  ___|_ _| |__ | | ___ `,
	` | |_ / _' | '_ \| |/ _ \`,
	` |  _| (_| | |_) | |  __/`,
	` |_|  \__,_|_.__/|_|\___|`,
}

// Warm gradient, top to bottom.
var bannerColors = []string{"#fde68a", "#fcd34d", "#fbbf24", "#f59e0b", "#d97706"}

// PrintBanner writes the Fable banner and version to w.
// Colors degrade with the terminal's color profile.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()

	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line).Foreground(p.Color(bannerColors[i])))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, termenv.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
