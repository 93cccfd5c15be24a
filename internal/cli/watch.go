package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/automator/pkg/domain"
)

// EventSource delivers the change events of one session until ctx ends.
type EventSource interface {
	Subscribe(ctx context.Context, sessionID string) (<-chan domain.Event, error)
}

// Watch prints every change event of sessionID to out, one line each, until
// ctx is canceled or the source closes the stream.
func Watch(ctx context.Context, src EventSource, sessionID string, out io.Writer) error {
	events, err := src.Subscribe(ctx, sessionID)
	if err != nil {
		return NewExitError(ExitUnavailable, err)
	}
	printSystemMessage(out, "Watching session '%s'.", sessionID)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				return ctx.Err()
			}
			fmt.Fprintln(out, FormatEvent(e))
		}
	}
}

// FormatEvent renders an event as a single log-style line.
func FormatEvent(e domain.Event) string {
	var b strings.Builder
	if !e.Timestamp.IsZero() {
		b.WriteString(e.Timestamp.Format("15:04:05") + " ")
	}
	b.WriteString(string(e.Type))

	if e.WorkflowID != "" {
		b.WriteString(" workflow=" + e.WorkflowID)
	}
	switch e.Type {
	case domain.EventActionAdded, domain.EventActionRemoved:
		if e.Action != nil {
			fmt.Fprintf(&b, " action=%s type=%s name=%s", e.Action.ID, e.Action.Type, strconv.Quote(e.Action.Name))
		}
	case domain.EventWorkflowRenamed:
		b.WriteString(" name=" + strconv.Quote(e.Name))
	case domain.EventLibraryToggled:
		if e.LibraryVisible != nil {
			b.WriteString(" library_visible=" + strconv.FormatBool(*e.LibraryVisible))
		}
	}
	return b.String()
}
