package checkout

// EventKind discriminates dialogue inputs.
type EventKind string

const (
	// EventCheckout is the checkout button press.
	EventCheckout EventKind = "checkout"

	// EventContact is a shared Telegram contact carrying a phone number.
	EventContact EventKind = "contact"

	// EventManualEntry is the "type the number" choice.
	EventManualEntry EventKind = "manual_entry"

	// EventText is a free-form text message received while the dialogue
	// is in a state that consumes text.
	EventText EventKind = "text"

	// EventMainMenu is a return-to-menu navigation from inside the
	// dialogue.
	EventMainMenu EventKind = "main_menu"
)

// Event is one dialogue input. Text carries message text for EventText,
// Phone carries the shared number for EventContact.
type Event struct {
	Kind  EventKind
	Text  string
	Phone string
}
