/*
Package automator is the state layer of a visual workflow builder in the
style of macOS Automator.

A workflow is an ordered list of actions picked from a fixed catalog (Get
Specified Files, Rename Files, Run Shell Script, ...). The builder holds the
workflows, the selected workflow and the visibility of the library panel,
and exposes the editing operations a UI needs: add and remove actions,
rename the workflow, select a workflow and toggle the library.

# Layout

  - pkg/domain holds the data model, the action catalog and snapshot diffs.
  - pkg/builder is the in-memory store that applies editing operations.
  - pkg/view projects a snapshot into toolbar, library and numbered cards,
    and renders it as terminal text, Markdown, JSON or YAML.
  - pkg/session keeps one store per editor session.
  - pkg/adapters exposes the builder over HTTP (with SSE change events),
    MCP and Redis Pub/Sub.
  - cmd/automator is the command line front end.

# Usage

	store, err := builder.New(builder.WithStrict(true))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if _, err := store.AddFromCatalog(ctx, domain.ActionFiles); err != nil {
		log.Fatal(err)
	}

	v := view.Project(store.Snapshot())
	_ = view.NewRenderer().Render(os.Stdout, v, view.FormatText)

Operations on unknown workflow or action IDs are silent no-ops unless the
store is created in strict mode.

Nothing executes actions. Run and Stop are inert toolbar controls.
*/
package automator
