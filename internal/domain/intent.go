package domain

import "context"

// IntentType classifies what the user wants to do.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentList
	IntentNext
	IntentPrev
	IntentPage
	IntentFilter
	IntentClear
	IntentSort
	IntentShow
	IntentAdd
	IntentEdit
	IntentDelete
	IntentConfirm // "yes" to a pending question
	IntentCancel  // "no" to a pending question
	IntentReload
	IntentStats
	IntentFacets
	IntentHelp
	IntentQuit
)

var intentNames = map[IntentType]string{
	IntentUnknown: "unknown",
	IntentList:    "list",
	IntentNext:    "next",
	IntentPrev:    "prev",
	IntentPage:    "page",
	IntentFilter:  "filter",
	IntentClear:   "clear",
	IntentSort:    "sort",
	IntentShow:    "show",
	IntentAdd:     "add",
	IntentEdit:    "edit",
	IntentDelete:  "delete",
	IntentConfirm: "confirm",
	IntentCancel:  "cancel",
	IntentReload:  "reload",
	IntentStats:   "stats",
	IntentFacets:  "facets",
	IntentHelp:    "help",
	IntentQuit:    "quit",
}

// String returns a human-readable intent type.
func (i IntentType) String() string {
	if s, ok := intentNames[i]; ok {
		return s
	}
	return "unknown"
}

// Intent represents a parsed user action.
type Intent struct {
	Type    IntentType
	ID      int               // record id or page number
	Fields  map[string]string // key=value pairs for filter, add and edit
	Payload string            // sort key, or the raw input when unknown
}

// IntentParser turns a line of user input into an Intent.
type IntentParser interface {
	Parse(ctx context.Context, input string) (*Intent, error)
}
