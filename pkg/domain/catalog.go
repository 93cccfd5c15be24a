package domain

// CatalogEntry describes an action kind a user may add to a workflow.
type CatalogEntry struct {
	Type string `json:"type" yaml:"type"`
	Name string `json:"name" yaml:"name"`
	Icon string `json:"icon" yaml:"icon"`
}

// Catalog type tags.
const (
	ActionFiles    = "files"
	ActionRename   = "rename"
	ActionCopy     = "copy"
	ActionMove     = "move"
	ActionCompress = "compress"
	ActionText     = "text"
	ActionReplace  = "replace"
	ActionShell    = "shell"
	ActionNotify   = "notify"
	ActionEmail    = "email"
	ActionHTTP     = "http"
	ActionDelay    = "delay"
)

// catalog is the fixed, ordered menu of addable action kinds.
var catalog = [...]CatalogEntry{
	{Type: ActionFiles, Name: "Get Specified Files", Icon: "📁"},
	{Type: ActionRename, Name: "Rename Files", Icon: "✏️"},
	{Type: ActionCopy, Name: "Copy Files", Icon: "📋"},
	{Type: ActionMove, Name: "Move Files", Icon: "📦"},
	{Type: ActionCompress, Name: "Create Archive", Icon: "🗜️"},
	{Type: ActionText, Name: "Get Text", Icon: "📝"},
	{Type: ActionReplace, Name: "Find & Replace", Icon: "🔍"},
	{Type: ActionShell, Name: "Run Shell Script", Icon: "💻"},
	{Type: ActionNotify, Name: "Display Notification", Icon: "🔔"},
	{Type: ActionEmail, Name: "Send Email", Icon: "📧"},
	{Type: ActionHTTP, Name: "HTTP Request", Icon: "🌐"},
	{Type: ActionDelay, Name: "Pause", Icon: "⏸️"},
}

// Catalog returns the action catalog in display order.
// The returned slice is a copy; mutating it does not affect the catalog.
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog))
	copy(out, catalog[:])
	return out
}

// LookupCatalog finds the catalog entry for a type tag.
func LookupCatalog(actionType string) (CatalogEntry, bool) {
	for _, e := range catalog {
		if e.Type == actionType {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// IconFor returns the catalog icon for a type tag, or an empty string for
// free-form types.
func IconFor(actionType string) string {
	e, _ := LookupCatalog(actionType)
	return e.Icon
}
