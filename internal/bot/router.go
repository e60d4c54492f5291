package bot

import (
	"log/slog"
	"strings"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/avrorra/storebot/internal/bot/handlers"
	"github.com/avrorra/storebot/internal/bot/keyboard"
)

// Router dispatches commands, callbacks, reply-keyboard labels, and
// dialogue-bound updates.
type Router struct {
	mu             sync.RWMutex
	commands       map[string]handlers.Handler
	callbacks      map[string]handlers.CallbackHandler
	texts          map[string]handlers.Handler
	contactHandler handlers.Handler
	photoHandler   handlers.Handler
	dispatcher     *Dispatcher
	defaultHandler handlers.Handler
	middlewares    []handlers.Middleware
	log            *slog.Logger
}

// NewRouter builds a Router with empty registries.
func NewRouter(dispatcher *Dispatcher, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		commands:    make(map[string]handlers.Handler),
		callbacks:   make(map[string]handlers.CallbackHandler),
		texts:       make(map[string]handlers.Handler),
		dispatcher:  dispatcher,
		middlewares: make([]handlers.Middleware, 0),
		log:         log,
	}
}

// RegisterCommand registers a handler for a bot command.
func (r *Router) RegisterCommand(cmd string, h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd] = h
}

// RegisterCallback registers a handler for a callback action name.
func (r *Router) RegisterCallback(action string, h handlers.CallbackHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[action] = h
}

// RegisterText registers a handler for an exact reply-keyboard label.
func (r *Router) RegisterText(label string, h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts[label] = h
}

// SetContact sets the handler for shared contacts.
func (r *Router) SetContact(h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contactHandler = h
}

// SetPhoto sets the handler for photo messages.
func (r *Router) SetPhoto(h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.photoHandler = h
}

// Use appends a middleware to the chain.
func (r *Router) Use(mw handlers.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mw)
}

// SetDefault sets the fallback handler for unmatched updates.
func (r *Router) SetDefault(h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultHandler = h
}

// Route directs the incoming update to the appropriate handler.
func (r *Router) Route(c telebot.Context) error {
	if c == nil {
		return nil
	}

	if callback := c.Callback(); callback != nil {
		return r.handleCallback(c, callback.Data)
	}

	return r.handleMessage(c)
}

func (r *Router) handleCallback(c telebot.Context, data string) error {
	action, _, err := keyboard.DecodeCallback(strings.TrimPrefix(data, "\f"))
	if err != nil {
		r.log.Info("undecodable callback data", "data", data)
		return nil
	}

	handler := r.getCallbackHandler(action)
	if handler == nil {
		r.log.Info("no callback handler found", "action", action)
		return nil
	}

	return r.executeHandler(handlers.Handler(handler), c)
}

func (r *Router) handleMessage(c telebot.Context) error {
	msg := c.Message()

	if msg != nil && msg.Contact != nil {
		if handler := r.getContactHandler(); handler != nil {
			return r.executeHandler(handler, c)
		}
	}

	if msg != nil && msg.Photo != nil {
		if handler := r.getPhotoHandler(); handler != nil {
			return r.executeHandler(handler, c)
		}
	}

	text := c.Text()

	if strings.HasPrefix(text, "/") {
		if handler := r.getCommandHandler(commandKey(text)); handler != nil {
			return r.executeHandler(handler, c)
		}
	}

	handled, err := r.dispatchState(c)
	if err != nil || handled {
		return err
	}

	if handler := r.getTextHandler(text); handler != nil {
		return r.executeHandler(handler, c)
	}

	if handler := r.getDefaultHandler(); handler != nil {
		return r.executeHandler(handler, c)
	}

	return nil
}

// dispatchState offers the update to the active dialogue. The dialogue
// handlers run through the middleware chain like any other handler.
func (r *Router) dispatchState(c telebot.Context) (bool, error) {
	if r.dispatcher == nil {
		return false, nil
	}

	var handled bool
	err := r.executeHandler(func(c telebot.Context) error {
		var err error
		handled, err = r.dispatcher.Dispatch(c)
		return err
	}, c)

	return handled, err
}

func (r *Router) executeHandler(h handlers.Handler, c telebot.Context) error {
	wrapped := r.applyMiddlewares(h)
	if wrapped == nil {
		return nil
	}
	return wrapped(c)
}

// commandKey normalizes "/cmd@botname args" to "/cmd".
func commandKey(text string) string {
	cmd := text
	if idx := strings.IndexByte(cmd, ' '); idx != -1 {
		cmd = cmd[:idx]
	}
	if idx := strings.IndexByte(cmd, '@'); idx != -1 {
		cmd = cmd[:idx]
	}
	return cmd
}

func (r *Router) getCallbackHandler(action string) handlers.CallbackHandler {
	r.mu.RLock()
	handler := r.callbacks[action]
	r.mu.RUnlock()
	return handler
}

func (r *Router) getCommandHandler(cmd string) handlers.Handler {
	r.mu.RLock()
	handler := r.commands[cmd]
	r.mu.RUnlock()
	return handler
}

func (r *Router) getTextHandler(label string) handlers.Handler {
	r.mu.RLock()
	handler := r.texts[label]
	r.mu.RUnlock()
	return handler
}

func (r *Router) getContactHandler() handlers.Handler {
	r.mu.RLock()
	handler := r.contactHandler
	r.mu.RUnlock()
	return handler
}

func (r *Router) getPhotoHandler() handlers.Handler {
	r.mu.RLock()
	handler := r.photoHandler
	r.mu.RUnlock()
	return handler
}

func (r *Router) getDefaultHandler() handlers.Handler {
	r.mu.RLock()
	handler := r.defaultHandler
	r.mu.RUnlock()
	return handler
}

// applyMiddlewares wraps the handler with all registered middlewares.
func (r *Router) applyMiddlewares(h handlers.Handler) handlers.Handler {
	if h == nil {
		return nil
	}

	middlewares := r.middlewaresSnapshot()
	wrapped := h
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}

	return wrapped
}

func (r *Router) middlewaresSnapshot() []handlers.Middleware {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.middlewares) == 0 {
		return nil
	}

	snapshot := make([]handlers.Middleware, len(r.middlewares))
	copy(snapshot, r.middlewares)
	return snapshot
}
