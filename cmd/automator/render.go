package main

import (
	"os"

	"github.com/aretw0/automator/internal/presentation/tui"
	"github.com/aretw0/automator/pkg/view"
	"golang.org/x/term"
)

// isTTY reports whether stdout is an interactive terminal.
func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func newRenderer() (*view.Renderer, view.Format, error) {
	format, err := view.ParseFormat(cfg.View.Format)
	if err != nil {
		return nil, "", err
	}
	return view.NewRenderer(view.WithWidth(cfg.View.Width), view.WithColor(isTTY())), format, nil
}

// markdownRenderer returns glamour output on a terminal and nil otherwise,
// so piped markdown stays plain.
func markdownRenderer() func(string) (string, error) {
	if !isTTY() {
		return nil
	}
	render, err := tui.NewRenderer(cfg.View.Width + 8)
	if err != nil {
		logger.Sugar().Warnf("markdown renderer unavailable: %v", err)
		return nil
	}
	return render
}
