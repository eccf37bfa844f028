package state

import "fmt"

// Event is the closed set of notifications the Store broadcasts.
type Event int

const (
	// EventNone means "no named event"; only EventStateChanged is broadcast.
	EventNone Event = iota
	// EventStateChanged is broadcast after every Set.
	EventStateChanged
	// EventTokensLoading signals that the token list fetch started.
	EventTokensLoading
	// EventTokensUpdated signals a new token list.
	EventTokensUpdated
	// EventTokenSelected signals a (re-)selection, even of the same token.
	EventTokenSelected
	// EventViewChanged signals a navigator switch.
	EventViewChanged
	// EventErrorRaised signals a new error message in the Store.
	EventErrorRaised
)

// Events lists every broadcastable event in declaration order.
func Events() []Event {
	return []Event{
		EventStateChanged,
		EventTokensLoading,
		EventTokensUpdated,
		EventTokenSelected,
		EventViewChanged,
		EventErrorRaised,
	}
}

func (e Event) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventStateChanged:
		return "state:changed"
	case EventTokensLoading:
		return "jwtList:loading"
	case EventTokensUpdated:
		return "jwtList:updated"
	case EventTokenSelected:
		return "jwt:selected"
	case EventViewChanged:
		return "tab:changed"
	case EventErrorRaised:
		return "error:raised"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Field names a Store field.
type Field string

const (
	FieldSelected   Field = "selectedItem"
	FieldActiveView Field = "activeView"
	FieldTokens     Field = "itemList"
	FieldLoading    Field = "loading"
	FieldError      Field = "error"
)

// Fields lists every known field.
func Fields() []Field {
	return []Field{FieldSelected, FieldActiveView, FieldTokens, FieldLoading, FieldError}
}
