package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/automator/internal/presentation/graph"
	"github.com/aretw0/automator/pkg/builder"
	"github.com/aretw0/automator/pkg/domain"
	"github.com/aretw0/automator/pkg/session"
	"github.com/aretw0/automator/pkg/view"
	"go.uber.org/zap"
)

// DefaultSessionID is the session edited by the interactive editor.
const DefaultSessionID = "local"

const helpText = `Commands:
  add <type> [name...]   append an action (name defaults to the catalog name)
  rm <n|id>              remove the action at position n, or by id
  rename <name...>       rename the workflow (stored verbatim)
  select <id>            select a workflow
  library                show or hide the action library
  show                   render the workflow
  catalog                list the action catalog
  graph                  print the workflow as a Mermaid diagram (last added action highlighted)
  run, stop              toolbar controls (nothing is executed)
  help                   this text
  quit                   leave the editor`

// errQuit ends the editor loop.
var errQuit = errors.New("quit")

// Editor is a line-oriented front end for a builder session. Each command is
// applied as one session turn and followed by a re-render.
type Editor struct {
	sessions  *session.Manager
	sessionID string
	in        io.Reader
	out       io.Writer
	renderer  *view.Renderer
	format    view.Format
	markdown  func(string) (string, error)
	prompt    string
	quiet     bool
	logger    *zap.Logger

	// lastAdded is highlighted by the graph command.
	lastAdded string
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithSessionID selects the session to edit.
func WithSessionID(id string) EditorOption {
	return func(e *Editor) {
		e.sessionID = id
	}
}

// WithRenderer sets the renderer and output format.
func WithRenderer(r *view.Renderer, format view.Format) EditorOption {
	return func(e *Editor) {
		e.renderer = r
		e.format = format
	}
}

// WithMarkdownRenderer post-processes markdown output, e.g. through glamour.
func WithMarkdownRenderer(render func(string) (string, error)) EditorOption {
	return func(e *Editor) {
		e.markdown = render
	}
}

// WithPrompt sets the input prompt. An empty prompt prints nothing.
func WithPrompt(prompt string) EditorOption {
	return func(e *Editor) {
		e.prompt = prompt
	}
}

// WithQuiet suppresses the system messages around the session.
func WithQuiet(quiet bool) EditorOption {
	return func(e *Editor) {
		e.quiet = quiet
	}
}

// WithLogger sets the editor logger.
func WithLogger(logger *zap.Logger) EditorOption {
	return func(e *Editor) {
		e.logger = logger
	}
}

// NewEditor creates an Editor reading commands from in and writing views to out.
func NewEditor(sessions *session.Manager, in io.Reader, out io.Writer, opts ...EditorOption) *Editor {
	e := &Editor{
		sessions:  sessions,
		sessionID: DefaultSessionID,
		in:        in,
		out:       out,
		renderer:  view.NewRenderer(),
		format:    view.FormatText,
		prompt:    "> ",
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run renders the session and processes commands until quit, end of input or
// cancellation of ctx. Command errors are printed and do not stop the loop.
func (e *Editor) Run(ctx context.Context) error {
	if !e.quiet {
		printSystemMessage(e.out, "Session '%s' active. Type 'help' for commands.", e.sessionID)
	}
	if err := e.show(ctx); err != nil {
		return err
	}

	scanner := bufio.NewScanner(NewInterruptibleReader(e.in, ctx.Done()))
	for {
		if e.prompt != "" {
			fmt.Fprint(e.out, e.prompt)
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return nil
		}

		err := e.Execute(ctx, scanner.Text())
		switch {
		case errors.Is(err, errQuit):
			if !e.quiet {
				printSystemMessage(e.out, "Bye!")
			}
			return nil
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.logger.Debug("command failed", zap.String("line", scanner.Text()), zap.Error(err))
			fmt.Fprintf(e.out, "error: %v\n", err)
		}
	}
}

// Execute applies a single command line.
func (e *Editor) Execute(ctx context.Context, line string) error {
	cmd, rest := splitCommand(line)

	switch cmd {
	case "":
		return nil
	case "quit", "exit", "q":
		return errQuit
	case "help", "?":
		fmt.Fprintln(e.out, helpText)
		return nil
	case "show", "ls":
		return e.show(ctx)
	case "catalog":
		e.printCatalog()
		return nil
	case "graph":
		return e.graph(ctx)
	case "run", "stop":
		printSystemMessage(e.out, "'%s' has no effect: workflows are not executed.", cmd)
		return nil
	case "add":
		return e.turn(ctx, func(ctx context.Context, store *builder.Store) error {
			a, err := addCommand(ctx, store, rest)
			if err == nil && a.ID != "" {
				e.lastAdded = a.ID
			}
			return err
		})
	case "rm", "remove":
		return e.turn(ctx, func(ctx context.Context, store *builder.Store) error {
			return removeCommand(ctx, store, rest)
		})
	case "rename":
		if rest == "" {
			return errors.New("usage: rename <name...>")
		}
		return e.turn(ctx, func(ctx context.Context, store *builder.Store) error {
			return store.RenameWorkflow(ctx, rest)
		})
	case "select":
		if rest == "" {
			return errors.New("usage: select <id>")
		}
		return e.turn(ctx, func(ctx context.Context, store *builder.Store) error {
			return store.SelectWorkflow(ctx, strings.TrimSpace(rest))
		})
	case "library", "lib":
		return e.turn(ctx, func(ctx context.Context, store *builder.Store) error {
			store.ToggleLibrary(ctx)
			return nil
		})
	default:
		return fmt.Errorf("unknown command %q (try 'help')", cmd)
	}
}

// turn runs fn as one session turn and re-renders the result.
func (e *Editor) turn(ctx context.Context, fn func(context.Context, *builder.Store) error) error {
	var snap domain.Snapshot
	err := e.sessions.WithSession(ctx, e.sessionID, func(ctx context.Context, store *builder.Store) error {
		if err := fn(ctx, store); err != nil {
			return err
		}
		snap = store.Snapshot()
		return nil
	})
	if err != nil {
		return err
	}
	return e.render(view.Project(snap))
}

func (e *Editor) show(ctx context.Context) error {
	return e.turn(ctx, func(context.Context, *builder.Store) error { return nil })
}

func (e *Editor) graph(ctx context.Context) error {
	return e.sessions.WithSession(ctx, e.sessionID, func(_ context.Context, store *builder.Store) error {
		w, ok := store.Current()
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrWorkflowNotFound, store.SelectedID())
		}
		var overlay *graph.Overlay
		if e.lastAdded != "" {
			overlay = &graph.Overlay{Highlight: []string{e.lastAdded}}
		}
		_, err := io.WriteString(e.out, graph.GenerateMermaid(w, overlay))
		return err
	})
}

func (e *Editor) render(v view.View) error {
	if e.format == view.FormatMarkdown && e.markdown != nil {
		out, err := e.markdown(view.Markdown(v))
		if err != nil {
			return err
		}
		_, err = io.WriteString(e.out, out)
		return err
	}

	var buf bytes.Buffer
	if err := e.renderer.Render(&buf, v, e.format); err != nil {
		return err
	}
	_, err := e.out.Write(buf.Bytes())
	return err
}

func (e *Editor) printCatalog() {
	for _, entry := range domain.Catalog() {
		fmt.Fprintf(e.out, "%s %-22s %s\n", entry.Icon, entry.Name, entry.Type)
	}
}

func addCommand(ctx context.Context, store *builder.Store, args string) (domain.Action, error) {
	actionType, name := splitCommand(args)
	if actionType == "" {
		return domain.Action{}, errors.New("usage: add <type> [name...]")
	}
	if name == "" {
		return store.AddFromCatalog(ctx, actionType)
	}
	return store.AddAction(ctx, store.SelectedID(), actionType, name)
}

// removeCommand accepts a 1-based card position or an action ID. A number
// that is not a valid position is tried as an ID.
func removeCommand(ctx context.Context, store *builder.Store, arg string) error {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return errors.New("usage: rm <n|id>")
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if card, ok := view.Project(store.Snapshot()).CardByIndex(n); ok {
			arg = card.ID
		}
	}
	return store.RemoveAction(ctx, arg)
}

// splitCommand separates the first word from the rest of the line. The rest
// keeps its inner spacing and loses only the single separating space.
func splitCommand(line string) (string, string) {
	line = strings.TrimLeft(line, " \t")
	line = strings.TrimRight(line, "\r\n")
	cmd, rest, _ := strings.Cut(line, " ")
	return strings.ToLower(strings.TrimSpace(cmd)), rest
}
