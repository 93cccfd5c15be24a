package builder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/automator/internal/logging"
	"github.com/aretw0/automator/pkg/domain"
	"github.com/aretw0/automator/pkg/observability"
	"github.com/aretw0/automator/pkg/ports"
	"go.uber.org/zap"
)

// Operation names used for metrics and logs.
const (
	OpAddAction      = "add_action"
	OpRemoveAction   = "remove_action"
	OpRenameWorkflow = "rename_workflow"
	OpSelectWorkflow = "select_workflow"
	OpToggleLibrary  = "toggle_library"
)

// Store holds the ordered collection of workflows, the selected workflow ID
// and the library-visibility flag.
//
// Every operation runs to completion under the store mutex before the next
// one starts. Change events are published after the mutex is released.
// Safe for concurrent use.
type Store struct {
	mu             sync.Mutex
	workflows      []domain.Workflow
	selectedID     string
	libraryVisible bool

	strict      bool
	ids         ports.IDGenerator
	publisher   ports.EventPublisher
	sessionID   string
	logger      *zap.Logger
	metrics     *observability.Metrics
	now         func() time.Time
	defaultName string
	seed        []domain.Workflow
	selectedSet bool
	released    bool
}

// New creates a Store.
// Without WithWorkflows it holds a single empty workflow with ID "1" named
// "Untitled Workflow", selected, with the library panel visible.
func New(opts ...Option) (*Store, error) {
	s := &Store{
		libraryVisible: true,
		ids:            UUIDGenerator{},
		logger:         logging.NewNop(),
		now:            time.Now,
		defaultName:    domain.DefaultWorkflowName,
	}
	for _, opt := range opts {
		opt(s)
	}

	if len(s.seed) == 0 {
		s.seed = []domain.Workflow{domain.NewWorkflow(domain.DefaultWorkflowID, s.defaultName)}
	}

	seen := make(map[string]bool, len(s.seed))
	s.workflows = make([]domain.Workflow, 0, len(s.seed))
	actions := 0
	for _, w := range s.seed {
		if seen[w.ID] {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateWorkflow, w.ID)
		}
		seen[w.ID] = true
		c := w.Clone()
		s.workflows = append(s.workflows, c)
		actions += len(c.Actions)
	}
	s.seed = nil

	if !s.selectedSet {
		s.selectedID = s.workflows[0].ID
	}
	s.metrics.AddActions(actions)

	return s, nil
}

// Strict reports whether missing references are surfaced as errors.
func (s *Store) Strict() bool {
	return s.strict
}

// SessionID returns the session the store belongs to, if any.
func (s *Store) SessionID() string {
	return s.sessionID
}

// AddAction appends a new action with a fresh ID and an empty configuration to
// the workflow identified by workflowID. All other workflows and actions keep
// their positions.
//
// If no workflow matches, the call is a no-op; in strict mode it returns
// domain.ErrWorkflowNotFound.
func (s *Store) AddAction(ctx context.Context, workflowID, actionType, actionName string) (domain.Action, error) {
	s.mu.Lock()
	action, ok, err := s.appendLocked(workflowID, actionType, actionName)
	if err == nil && ok {
		s.trackLocked(1)
	}
	s.mu.Unlock()

	if err != nil {
		s.metrics.ObserveMutation(OpAddAction, observability.OutcomeInvalid)
		s.logger.Error("action id generation failed",
			zap.String("workflow_id", workflowID), zap.Error(err))
		return domain.Action{}, err
	}
	if !ok {
		return domain.Action{}, s.missing(OpAddAction, fmt.Errorf("%w: %s", domain.ErrWorkflowNotFound, workflowID),
			zap.String("workflow_id", workflowID))
	}

	s.applied(OpAddAction, zap.String("workflow_id", workflowID), zap.String("action_id", action.ID))
	s.emit(ctx, domain.Event{
		Type:       domain.EventActionAdded,
		WorkflowID: workflowID,
		Action:     ptr(action.Clone()),
	})
	return action, nil
}

// AddFromCatalog adds the catalog entry for actionType to the selected
// workflow, copying the catalog's display name at creation time.
//
// An unknown type returns domain.ErrUnknownActionType in both modes.
func (s *Store) AddFromCatalog(ctx context.Context, actionType string) (domain.Action, error) {
	entry, ok := domain.LookupCatalog(actionType)
	if !ok {
		s.metrics.ObserveMutation(OpAddAction, observability.OutcomeInvalid)
		return domain.Action{}, fmt.Errorf("%w: %s", domain.ErrUnknownActionType, actionType)
	}
	return s.AddAction(ctx, s.SelectedID(), entry.Type, entry.Name)
}

// maxIDAttempts bounds how many identifiers are drawn before AddAction gives up
// on a generator that keeps returning IDs already in the workflow.
const maxIDAttempts = 16

func (s *Store) appendLocked(workflowID, actionType, actionName string) (domain.Action, bool, error) {
	idx := s.indexLocked(workflowID)
	if idx < 0 {
		return domain.Action{}, false, nil
	}
	w := &s.workflows[idx]

	id := s.ids.NewID()
	for attempt := 1; w.HasAction(id); attempt++ {
		if attempt >= maxIDAttempts {
			return domain.Action{}, false, fmt.Errorf("%w: %d attempts, last %q", domain.ErrIDExhausted, attempt, id)
		}
		id = s.ids.NewID()
	}

	action := domain.NewAction(id, actionType, actionName)
	w.Actions = append(w.Actions, action)
	return action.Clone(), true, nil
}

// RemoveAction removes the action with actionID from the selected workflow
// only. The remaining actions keep their relative order; other workflows are
// never searched.
//
// If there is no match, the call is a no-op; in strict mode it returns
// domain.ErrWorkflowNotFound or domain.ErrActionNotFound.
func (s *Store) RemoveAction(ctx context.Context, actionID string) error {
	s.mu.Lock()
	selected := s.selectedID
	idx := s.indexLocked(selected)
	if idx < 0 {
		s.mu.Unlock()
		return s.missing(OpRemoveAction, fmt.Errorf("%w: %s", domain.ErrWorkflowNotFound, selected),
			zap.String("workflow_id", selected))
	}

	w := &s.workflows[idx]
	pos := w.IndexOf(actionID)
	if pos < 0 {
		s.mu.Unlock()
		return s.missing(OpRemoveAction, fmt.Errorf("%w: %s", domain.ErrActionNotFound, actionID),
			zap.String("workflow_id", selected), zap.String("action_id", actionID))
	}

	removed := w.Actions[pos]
	w.Actions = append(w.Actions[:pos:pos], w.Actions[pos+1:]...)
	s.trackLocked(-1)
	s.mu.Unlock()

	s.applied(OpRemoveAction, zap.String("workflow_id", selected), zap.String("action_id", actionID))
	s.emit(ctx, domain.Event{
		Type:       domain.EventActionRemoved,
		WorkflowID: selected,
		Action:     &removed,
	})
	return nil
}

// RenameWorkflow replaces the selected workflow's name verbatim. No trimming,
// length limit or uniqueness check is applied.
//
// If the selected workflow does not exist, the call is a no-op; in strict mode
// it returns domain.ErrWorkflowNotFound.
func (s *Store) RenameWorkflow(ctx context.Context, newName string) error {
	s.mu.Lock()
	selected := s.selectedID
	idx := s.indexLocked(selected)
	if idx < 0 {
		s.mu.Unlock()
		return s.missing(OpRenameWorkflow, fmt.Errorf("%w: %s", domain.ErrWorkflowNotFound, selected),
			zap.String("workflow_id", selected))
	}
	s.workflows[idx].Name = newName
	s.mu.Unlock()

	s.applied(OpRenameWorkflow, zap.String("workflow_id", selected))
	s.emit(ctx, domain.Event{
		Type:       domain.EventWorkflowRenamed,
		WorkflowID: selected,
		Name:       newName,
	})
	return nil
}

// SelectWorkflow changes which workflow subsequent operations target.
// The ID is not validated; in strict mode an unknown ID returns
// domain.ErrWorkflowNotFound and leaves the selection unchanged.
func (s *Store) SelectWorkflow(ctx context.Context, workflowID string) error {
	s.mu.Lock()
	if s.strict && s.indexLocked(workflowID) < 0 {
		s.mu.Unlock()
		return s.missing(OpSelectWorkflow, fmt.Errorf("%w: %s", domain.ErrWorkflowNotFound, workflowID),
			zap.String("workflow_id", workflowID))
	}
	s.selectedID = workflowID
	s.mu.Unlock()

	s.applied(OpSelectWorkflow, zap.String("workflow_id", workflowID))
	s.emit(ctx, domain.Event{
		Type:       domain.EventWorkflowSelected,
		WorkflowID: workflowID,
	})
	return nil
}

// ToggleLibrary flips the catalog-panel visibility flag and returns its new
// value. Workflow data is never touched.
func (s *Store) ToggleLibrary(ctx context.Context) bool {
	s.mu.Lock()
	s.libraryVisible = !s.libraryVisible
	visible := s.libraryVisible
	s.mu.Unlock()

	s.applied(OpToggleLibrary, zap.Bool("visible", visible))
	s.emit(ctx, domain.Event{
		Type:           domain.EventLibraryToggled,
		LibraryVisible: ptr(visible),
	})
	return visible
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domain.Snapshot{
		Workflows:      make([]domain.Workflow, len(s.workflows)),
		SelectedID:     s.selectedID,
		LibraryVisible: s.libraryVisible,
	}
	for i, w := range s.workflows {
		snap.Workflows[i] = w.Clone()
	}
	return snap
}

// Current returns a copy of the selected workflow, if it exists.
func (s *Store) Current() (domain.Workflow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(s.selectedID)
	if idx < 0 {
		return domain.Workflow{}, false
	}
	return s.workflows[idx].Clone(), true
}

// SelectedID returns the selected workflow ID.
func (s *Store) SelectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID
}

// LibraryVisible reports whether the catalog panel is shown.
func (s *Store) LibraryVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.libraryVisible
}

// Release gives back the store's contribution to the live action gauge.
// Call it when a session is discarded. Later mutations on a released store
// still apply to its state but are no longer counted. Calling Release twice
// has no further effect.
func (s *Store) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	n := 0
	for _, w := range s.workflows {
		n += len(w.Actions)
	}
	s.released = true
	s.metrics.AddActions(-n)
}

// trackLocked adjusts the live action gauge unless the store was released.
func (s *Store) trackLocked(delta int) {
	if s.released {
		return
	}
	s.metrics.AddActions(delta)
}

func (s *Store) indexLocked(workflowID string) int {
	for i := range s.workflows {
		if s.workflows[i].ID == workflowID {
			return i
		}
	}
	return -1
}

func (s *Store) missing(op string, err error, fields ...zap.Field) error {
	if s.strict {
		s.metrics.ObserveMutation(op, observability.OutcomeNotFound)
		s.logger.Debug("reference not found", append(fields, zap.String("op", op), zap.Error(err))...)
		return err
	}
	s.metrics.ObserveMutation(op, observability.OutcomeIgnored)
	s.logger.Debug("reference not found, ignoring", append(fields, zap.String("op", op))...)
	return nil
}

func (s *Store) applied(op string, fields ...zap.Field) {
	s.metrics.ObserveMutation(op, observability.OutcomeApplied)
	s.logger.Debug("applied", append(fields, zap.String("op", op), zap.String("session_id", s.sessionID))...)
}

func (s *Store) emit(ctx context.Context, event domain.Event) {
	if s.publisher == nil {
		return
	}
	event.SessionID = s.sessionID
	event.Timestamp = s.now()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("type", string(event.Type)),
			zap.String("session_id", s.sessionID),
			zap.Error(err))
	}
}

func ptr[T any](v T) *T {
	return &v
}
