package view

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

// Format selects a rendering of the View.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// DefaultWidth is the card width used when none is configured.
const DefaultWidth = 48

// ParseFormat validates a format name. An empty name selects FormatText.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatMarkdown, FormatJSON, FormatYAML:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown view format %q", name)
	}
}

// ContentType returns the MIME type for a format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Renderer writes views to an output.
type Renderer struct {
	width int
	color bool
}

// RenderOption configures a Renderer.
type RenderOption func(*Renderer)

// WithWidth sets the card width for text output.
func WithWidth(width int) RenderOption {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
	}
}

// WithColor enables ANSI styling in text output when the writer supports it.
func WithColor(enabled bool) RenderOption {
	return func(r *Renderer) {
		r.color = enabled
	}
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...RenderOption) *Renderer {
	r := &Renderer{width: DefaultWidth}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes v to w in the requested format.
func (r *Renderer) Render(w io.Writer, v View, format Format) error {
	switch format {
	case FormatText, "":
		_, err := io.WriteString(w, r.Text(w, v))
		return err
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(v))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown view format %q", format)
	}
}

// Text renders the boxed terminal layout. The color profile is detected
// from out unless color is disabled.
func (r *Renderer) Text(out io.Writer, v View) string {
	var lr *lipgloss.Renderer
	if r.color {
		lr = lipgloss.NewRenderer(out)
	} else {
		lr = lipgloss.NewRenderer(out, termenv.WithProfile(termenv.Ascii))
	}

	accent := lipgloss.AdaptiveColor{Light: "#5b21b6", Dark: "#a78bfa"}
	muted := lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}

	title := lr.NewStyle().Bold(true).Foreground(accent)
	hint := lr.NewStyle().Italic(true).Foreground(muted)
	card := lr.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(r.width)
	pressed := lr.NewStyle().Reverse(true)

	var sections []string

	buttons := []string{
		buttonLabel(v.Toolbar.Run),
		buttonLabel(v.Toolbar.Stop),
	}
	lib := buttonLabel(v.Toolbar.Library)
	if v.Toolbar.Library.Pressed {
		lib = pressed.Render(lib)
	}
	buttons = append(buttons, lib)
	sections = append(sections, strings.Join(buttons, "  "))

	if v.Library.Visible {
		lines := []string{title.Render(v.Library.Heading)}
		for _, e := range v.Library.Entries {
			lines = append(lines, fmt.Sprintf("  %s %s  %s", e.Icon, e.Name, hint.Render("("+e.Type+")")))
		}
		sections = append(sections, lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	sections = append(sections, title.Render(v.Title))

	switch {
	case v.Empty != nil:
		body := lipgloss.JoinVertical(lipgloss.Center,
			v.Empty.Icon,
			v.Empty.Message,
			hint.Render(v.Empty.Hint),
		)
		sections = append(sections, card.Align(lipgloss.Center).Render(body))
	default:
		for _, c := range v.Cards {
			head := strconv.Itoa(c.Index) + ". "
			if c.Icon != "" {
				head += c.Icon + " "
			}
			head += c.Name + "  " + buttonLabel(c.Remove)
			body := lipgloss.JoinVertical(lipgloss.Left, head, hint.Render(c.Hint))
			sections = append(sections, card.Render(body))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

// Markdown renders v as a Markdown document.
func Markdown(v View) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", v.Title)

	lib := buttonLabel(v.Toolbar.Library)
	if v.Toolbar.Library.Pressed {
		lib = "**" + lib + "**"
	}
	fmt.Fprintf(&b, "%s · %s · %s\n\n", buttonLabel(v.Toolbar.Run), buttonLabel(v.Toolbar.Stop), lib)

	if v.Library.Visible {
		fmt.Fprintf(&b, "## %s\n\n", v.Library.Heading)
		for _, e := range v.Library.Entries {
			fmt.Fprintf(&b, "- %s %s (`%s`)\n", e.Icon, e.Name, e.Type)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Workflow\n\n")
	if v.Empty != nil {
		fmt.Fprintf(&b, "> %s %s\n>\n> _%s_\n", v.Empty.Icon, v.Empty.Message, v.Empty.Hint)
		return b.String()
	}
	for _, c := range v.Cards {
		icon := ""
		if c.Icon != "" {
			icon = c.Icon + " "
		}
		fmt.Fprintf(&b, "%d. %s**%s** `%s` %s\n   _%s_\n", c.Index, icon, c.Name, c.Type, buttonLabel(c.Remove), c.Hint)
	}
	return b.String()
}

func buttonLabel(b Button) string {
	return "[" + b.Icon + " " + b.Label + "]"
}
