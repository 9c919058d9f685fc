// Package dispatch owns the tool table and the call pipeline every tool
// request passes through: argument checks, the guarded operation, and
// outbound secret masking. One call runs at a time; the stores behind
// the tools are not written for concurrent mutation.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alibahadircoskun/ansible-network-mcp/internal/sanitize"
)

// ArgSpec describes one string argument of a tool.
type ArgSpec struct {
	Name        string
	Description string
	Required    bool
}

// Request carries the raw string arguments of one call.
type Request map[string]string

// Get returns the argument value, or "" when absent.
func (r Request) Get(name string) string {
	return r[name]
}

// Bool interprets an argument as a flag. The accepted spellings match
// what conversational callers actually send.
func (r Request) Bool(name string) bool {
	switch r[name] {
	case "yes", "true", "1", "on":
		return true
	}
	return false
}

// HandlerFunc implements one tool. The returned string is the payload
// shown to the caller; it is masked by the dispatcher, never by the
// handler. A returned error becomes an ERROR: string.
type HandlerFunc func(ctx context.Context, req Request) (string, error)

// Tool is one entry of the tool table.
type Tool struct {
	Name        string
	Description string
	Args        []ArgSpec
	Handler     HandlerFunc
}

// Dispatcher routes calls to tools and serializes them.
type Dispatcher struct {
	log   zerolog.Logger
	mu    sync.Mutex
	tools map[string]Tool
	order []string
}

func New(log zerolog.Logger, tools []Tool) *Dispatcher {
	d := &Dispatcher{
		log:   log,
		tools: make(map[string]Tool, len(tools)),
	}
	for _, t := range tools {
		d.tools[t.Name] = t
		d.order = append(d.order, t.Name)
	}
	return d
}

// Tools returns the table in registration order.
func (d *Dispatcher) Tools() []Tool {
	out := make([]Tool, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.tools[name])
	}
	return out
}

// Dispatch runs one tool call end to end and returns the string the
// caller sees. It never returns an error: every failure is converted to
// an ERROR: string here, after masking. A panicking handler is logged
// and reported generically; the dispatcher is idle again afterwards.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, req Request) (out string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	callID := uuid.NewString()
	log := d.log.With().Str("call_id", callID).Str("tool", name).Logger()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Msg("tool handler panicked")
			out = "ERROR: internal error"
		}
		log.Info().Dur("elapsed", time.Since(start)).Msg("call finished")
	}()

	tool, ok := d.tools[name]
	if !ok {
		log.Warn().Msg("unknown tool")
		return fmt.Sprintf("ERROR: unknown tool %q", name)
	}
	for _, a := range tool.Args {
		if a.Required && req.Get(a.Name) == "" {
			return fmt.Sprintf("ERROR: missing required argument %q", a.Name)
		}
	}

	payload, err := tool.Handler(ctx, req)
	if err != nil {
		// Violation and ErrRejected messages name the argument and the
		// reason, never the offending value; everything else gets
		// masked like a success payload.
		log.Warn().Err(err).Msg("call failed")
		return "ERROR: " + sanitize.Mask(err.Error())
	}
	return sanitize.Mask(payload)
}
