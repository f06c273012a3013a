package bot

// EventKind classifies an inbound chat event.
type EventKind int

const (
	// EventText is plain (non-command) message text.
	EventText EventKind = iota
	// EventCommand is a slash-command, with the leading slash stripped.
	EventCommand
	// EventDocument is an uploaded file.
	EventDocument
)

func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventCommand:
		return "command"
	case EventDocument:
		return "document"
	default:
		return "unknown"
	}
}

// Document is an uploaded file entry carried by an EventDocument.
type Document struct {
	Name string
	Data []byte
}

// Event is the transport-agnostic representation of one inbound chat event.
// Transport adapters translate provider updates into this shape before
// handing them to the dispatcher.
type Event struct {
	ChatID  int64
	ActorID int64
	Kind    EventKind
	Text    string    // message text, or command name for EventCommand
	Args    []string  // command arguments
	Doc     *Document // set for EventDocument
}
