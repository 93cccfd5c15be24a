package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Automator banner to w. Colours are chosen for the
// terminal behind w and dropped when it is not a TTY.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{`     _         _                        _`, "#818cf8"},
		{`    / \  _   _| |_ ___  _ __ ___   __ _| |_ ___  _ __`, "#a78bfa"},
		{`   / _ \| | | | __/ _ \| '_ ` + "`" + ` _ \ / _` + "`" + ` | __/ _ \| '__|`, "#c084fc"},
		{`  / ___ \ |_| | || (_) | | | | | | (_| | || (_) | |`, "#e879f9"},
		{` /_/   \_\__,_|\__\___/|_| |_| |_|\__,_|\__\___/|_|`, "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, out.String("  v"+version).Faint())
	}
	fmt.Fprintln(w)
}
