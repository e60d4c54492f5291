package bot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"
)

// sendingContext additionally records what the middleware sends back to
// the chat.
type sendingContext struct {
	*fakeContext
	sent []string
}

func (s *sendingContext) Send(what interface{}, opts ...interface{}) error {
	if text, ok := what.(string); ok {
		s.sent = append(s.sent, text)
	}
	return nil
}

func TestRecoveryMiddlewareSendsTranslatedError(t *testing.T) {
	mw := RecoveryMiddleware(nil, nil, echoTranslator{})
	h := mw(func(c telebot.Context) error {
		panic("boom")
	})

	c := &sendingContext{fakeContext: textUpdate("anything")}
	require.NoError(t, h(c))

	require.Len(t, c.sent, 1)
	assert.Equal(t, "errors.generic", c.sent[0])
}

func TestErrorHandlingMiddlewareSendsTranslatedError(t *testing.T) {
	mw := ErrorHandlingMiddleware(nil, echoTranslator{})
	h := mw(func(c telebot.Context) error {
		return errors.New("database is down")
	})

	c := &sendingContext{fakeContext: textUpdate("anything")}
	require.NoError(t, h(c))

	require.Len(t, c.sent, 1)
	assert.Equal(t, "errors.generic", c.sent[0])
}
