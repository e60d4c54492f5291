package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(effects []Effect) []EffectKind {
	if len(effects) == 0 {
		return nil
	}
	out := make([]EffectKind, 0, len(effects))
	for _, e := range effects {
		out = append(out, e.Kind)
	}
	return out
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		name        string
		in          Input
		ev          Event
		wantNext    State
		wantPhone   string
		wantEffects []EffectKind
	}{
		{
			name:        "checkout with items starts dialogue",
			in:          Input{State: StateIdle},
			ev:          Event{Kind: EventCheckout},
			wantNext:    StateAwaitingPhoneChoice,
			wantEffects: []EffectKind{EffectShowSummary},
		},
		{
			name:        "checkout with empty cart rejected in place",
			in:          Input{State: StateIdle, CartEmpty: true},
			ev:          Event{Kind: EventCheckout},
			wantNext:    StateIdle,
			wantEffects: []EffectKind{EffectRejectEmptyCart},
		},
		{
			name:     "stray text in idle ignored",
			in:       Input{State: StateIdle},
			ev:       Event{Kind: EventText, Text: "hello"},
			wantNext: StateIdle,
		},
		{
			name:        "shared contact advances to address",
			in:          Input{State: StateAwaitingPhoneChoice},
			ev:          Event{Kind: EventContact, Phone: "+79991234567"},
			wantNext:    StateAwaitingAddress,
			wantPhone:   "+79991234567",
			wantEffects: []EffectKind{EffectPromptAddress},
		},
		{
			name:        "manual entry choice moves to manual state",
			in:          Input{State: StateAwaitingPhoneChoice},
			ev:          Event{Kind: EventManualEntry},
			wantNext:    StateAwaitingPhoneManualEntry,
			wantEffects: []EffectKind{EffectPromptManualPhone},
		},
		{
			name:        "unrecognized input at choice re-prompts",
			in:          Input{State: StateAwaitingPhoneChoice},
			ev:          Event{Kind: EventText, Text: "what"},
			wantNext:    StateAwaitingPhoneChoice,
			wantEffects: []EffectKind{EffectRepromptChoice},
		},
		{
			name:        "menu from choice discards and returns",
			in:          Input{State: StateAwaitingPhoneChoice},
			ev:          Event{Kind: EventMainMenu},
			wantNext:    StateIdle,
			wantEffects: []EffectKind{EffectReturnToMenu},
		},
		{
			name:        "valid typed phone advances to address",
			in:          Input{State: StateAwaitingPhoneManualEntry},
			ev:          Event{Kind: EventText, Text: "79991234567"},
			wantNext:    StateAwaitingAddress,
			wantPhone:   "79991234567",
			wantEffects: []EffectKind{EffectPromptAddress},
		},
		{
			name:        "nine digit phone re-prompts",
			in:          Input{State: StateAwaitingPhoneManualEntry},
			ev:          Event{Kind: EventText, Text: "123456789"},
			wantNext:    StateAwaitingPhoneManualEntry,
			wantEffects: []EffectKind{EffectRepromptPhone},
		},
		{
			name:        "phone with letters re-prompts",
			in:          Input{State: StateAwaitingPhoneManualEntry},
			ev:          Event{Kind: EventText, Text: "+7999abc4567"},
			wantNext:    StateAwaitingPhoneManualEntry,
			wantEffects: []EffectKind{EffectRepromptPhone},
		},
		{
			name:        "contact during manual entry accepted",
			in:          Input{State: StateAwaitingPhoneManualEntry},
			ev:          Event{Kind: EventContact, Phone: "+12025550100"},
			wantNext:    StateAwaitingAddress,
			wantPhone:   "+12025550100",
			wantEffects: []EffectKind{EffectPromptAddress},
		},
		{
			name:        "address text finalizes and resets",
			in:          Input{State: StateAwaitingAddress, Phone: "+79991234567"},
			ev:          Event{Kind: EventText, Text: "Lenina 1, kv 5"},
			wantNext:    StateIdle,
			wantEffects: []EffectKind{EffectFinalize},
		},
		{
			name:        "menu from address discards partial data",
			in:          Input{State: StateAwaitingAddress, Phone: "+79991234567"},
			ev:          Event{Kind: EventMainMenu},
			wantNext:    StateIdle,
			wantEffects: []EffectKind{EffectReturnToMenu},
		},
		{
			name:      "non-text event at address ignored",
			in:        Input{State: StateAwaitingAddress, Phone: "+79991234567"},
			ev:        Event{Kind: EventCheckout},
			wantNext:  StateAwaitingAddress,
			wantPhone: "+79991234567",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Advance(tt.in, tt.ev)

			assert.Equal(t, tt.wantNext, got.Next)
			assert.Equal(t, tt.wantPhone, got.Phone)
			assert.Equal(t, tt.wantEffects, kinds(got.Effects), "effects")
		})
	}
}

func TestAdvanceFinalizeCarriesCapturedData(t *testing.T) {
	got := Advance(
		Input{State: StateAwaitingAddress, Phone: "+79991234567"},
		Event{Kind: EventText, Text: "Tverskaya 10"},
	)

	require.Len(t, got.Effects, 1)
	effect := got.Effects[0]
	assert.Equal(t, EffectFinalize, effect.Kind)
	assert.Equal(t, "+79991234567", effect.Phone)
	assert.Equal(t, "Tverskaya 10", effect.Address)
}

func TestAdvanceUnknownStateResets(t *testing.T) {
	got := Advance(Input{State: State("bogus")}, Event{Kind: EventText, Text: "x"})

	assert.Equal(t, StateIdle, got.Next)
	assert.Empty(t, got.Effects)
}

func TestAdvanceRecordsTransitions(t *testing.T) {
	var from, to State
	RegisterTransitionRecorder(func(f, t State) { from, to = f, t })
	t.Cleanup(func() { RegisterTransitionRecorder(nil) })

	Advance(Input{State: StateIdle}, Event{Kind: EventCheckout})

	assert.Equal(t, StateIdle, from)
	assert.Equal(t, StateAwaitingPhoneChoice, to)
}
