package checkout

// validTransitions captures the dialogue's legal moves. Any state may
// return to idle (cancellation or finalization).
var validTransitions = map[State][]State{
	StateIdle:                     {StateAwaitingPhoneChoice},
	StateAwaitingPhoneChoice:      {StateAwaitingPhoneManualEntry, StateAwaitingAddress, StateIdle},
	StateAwaitingPhoneManualEntry: {StateAwaitingAddress, StateIdle},
	StateAwaitingAddress:          {StateIdle},
}

// IsTransitionAllowed reports whether the dialogue may move from one
// state to another. Staying in place is always allowed.
func IsTransitionAllowed(from, to State) bool {
	if from == to {
		return true
	}
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
