// Package checkout implements the checkout dialogue as a pure state
// machine. The package holds no session or transport references; the
// caller feeds it the relevant session view and applies the returned
// effects.
package checkout

// State is a position in the checkout dialogue.
type State string

const (
	// StateIdle means no checkout is in progress.
	StateIdle State = "idle"

	// StateAwaitingPhoneChoice means the order summary was shown and
	// the user is picking between sharing a contact and typing a number.
	StateAwaitingPhoneChoice State = "awaiting_phone_choice"

	// StateAwaitingPhoneManualEntry means the user chose to type the
	// number and the next text message is treated as a phone number.
	StateAwaitingPhoneManualEntry State = "awaiting_phone_manual_entry"

	// StateAwaitingAddress means a valid phone was captured and the
	// next text message is treated as the delivery address.
	StateAwaitingAddress State = "awaiting_address"
)

// AllStates lists every dialogue state, useful for metrics initialization.
func AllStates() []State {
	return []State{
		StateIdle,
		StateAwaitingPhoneChoice,
		StateAwaitingPhoneManualEntry,
		StateAwaitingAddress,
	}
}

// TransitionRecorder is called on every state change that Advance
// produces. Metrics hook in through this.
type TransitionRecorder func(from, to State)

var transitionRecorder TransitionRecorder

// RegisterTransitionRecorder installs the process-wide transition hook.
// Call during startup, before updates are processed.
func RegisterTransitionRecorder(recorder TransitionRecorder) {
	transitionRecorder = recorder
}

func recordTransition(from, to State) {
	if transitionRecorder != nil && from != to {
		transitionRecorder(from, to)
	}
}
