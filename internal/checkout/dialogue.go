package checkout

// Input is the session view Advance needs to decide a step.
type Input struct {
	State     State
	Phone     string
	CartEmpty bool
}

// EffectKind names a side effect the caller must perform after a step.
type EffectKind string

const (
	// EffectShowSummary renders the order summary with the phone-choice
	// keyboard.
	EffectShowSummary EffectKind = "show_summary"

	// EffectRejectEmptyCart tells the user an empty cart cannot be
	// checked out. The dialogue does not start.
	EffectRejectEmptyCart EffectKind = "reject_empty_cart"

	// EffectPromptManualPhone asks the user to type a phone number.
	EffectPromptManualPhone EffectKind = "prompt_manual_phone"

	// EffectRepromptChoice repeats the share-or-type prompt after
	// unrecognized input.
	EffectRepromptChoice EffectKind = "reprompt_choice"

	// EffectRepromptPhone reports an invalid number and asks again.
	EffectRepromptPhone EffectKind = "reprompt_phone"

	// EffectPromptAddress asks for the delivery address.
	EffectPromptAddress EffectKind = "prompt_address"

	// EffectFinalize completes the order: the caller builds the order
	// from the cart, clears it, and sends the confirmation. Phone and
	// Address on the effect carry the captured values.
	EffectFinalize EffectKind = "finalize"

	// EffectReturnToMenu navigates back to the main menu, partial
	// dialogue data already discarded.
	EffectReturnToMenu EffectKind = "return_to_menu"
)

// Effect is one side effect of a dialogue step.
type Effect struct {
	Kind    EffectKind
	Phone   string
	Address string
}

// Outcome is the result of one Advance call. Next is the state to store
// back, Phone the (possibly updated) captured phone.
type Outcome struct {
	Next    State
	Phone   string
	Effects []Effect
}

func outcome(in Input, next State, phone string, effects ...Effect) Outcome {
	recordTransition(in.State, next)
	return Outcome{Next: next, Phone: phone, Effects: effects}
}

// Advance computes one dialogue step. It is total: every state/event
// pair yields a well-defined outcome, unrecognized input re-prompts or
// is ignored.
func Advance(in Input, ev Event) Outcome {
	switch in.State {
	case StateIdle:
		return advanceIdle(in, ev)
	case StateAwaitingPhoneChoice:
		return advancePhoneChoice(in, ev)
	case StateAwaitingPhoneManualEntry:
		return advanceManualEntry(in, ev)
	case StateAwaitingAddress:
		return advanceAddress(in, ev)
	default:
		// Unknown stored state, recover by resetting the dialogue.
		return outcome(in, StateIdle, "")
	}
}

func advanceIdle(in Input, ev Event) Outcome {
	if ev.Kind != EventCheckout {
		return outcome(in, StateIdle, in.Phone)
	}
	if in.CartEmpty {
		return outcome(in, StateIdle, in.Phone, Effect{Kind: EffectRejectEmptyCart})
	}
	return outcome(in, StateAwaitingPhoneChoice, "", Effect{Kind: EffectShowSummary})
}

func advancePhoneChoice(in Input, ev Event) Outcome {
	switch ev.Kind {
	case EventContact:
		return outcome(in, StateAwaitingAddress, ev.Phone, Effect{Kind: EffectPromptAddress})
	case EventManualEntry:
		return outcome(in, StateAwaitingPhoneManualEntry, "", Effect{Kind: EffectPromptManualPhone})
	case EventMainMenu:
		return outcome(in, StateIdle, "", Effect{Kind: EffectReturnToMenu})
	default:
		return outcome(in, StateAwaitingPhoneChoice, in.Phone, Effect{Kind: EffectRepromptChoice})
	}
}

func advanceManualEntry(in Input, ev Event) Outcome {
	switch ev.Kind {
	case EventText:
		if !ValidPhone(ev.Text) {
			return outcome(in, StateAwaitingPhoneManualEntry, "", Effect{Kind: EffectRepromptPhone})
		}
		return outcome(in, StateAwaitingAddress, ev.Text, Effect{Kind: EffectPromptAddress})
	case EventContact:
		// Sharing the contact while asked to type is accepted anyway.
		return outcome(in, StateAwaitingAddress, ev.Phone, Effect{Kind: EffectPromptAddress})
	case EventMainMenu:
		return outcome(in, StateIdle, "", Effect{Kind: EffectReturnToMenu})
	default:
		return outcome(in, StateAwaitingPhoneManualEntry, "", Effect{Kind: EffectRepromptPhone})
	}
}

func advanceAddress(in Input, ev Event) Outcome {
	switch ev.Kind {
	case EventText:
		return outcome(in, StateIdle, "", Effect{
			Kind:    EffectFinalize,
			Phone:   in.Phone,
			Address: ev.Text,
		})
	case EventMainMenu:
		return outcome(in, StateIdle, "", Effect{Kind: EffectReturnToMenu})
	default:
		return outcome(in, StateAwaitingAddress, in.Phone)
	}
}
