// Package logctx carries a per-call zerolog logger tagged with a request id
// through context.Context.
package logctx

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New returns a child context whose logger carries a fresh request id, and
// the id itself. An id already on ctx is reused.
func New(ctx context.Context) (context.Context, string) {
	if id, ok := ctx.Value(idKey{}).(string); ok && id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return WithID(ctx, id), id
}

// WithID tags ctx and its logger with a caller-chosen request id.
func WithID(ctx context.Context, id string) context.Context {
	l := From(ctx).With().Str("request_id", id).Logger()
	ctx = context.WithValue(ctx, idKey{}, id)
	return l.WithContext(ctx)
}

// ID returns the request id stored by New, or "".
func ID(ctx context.Context) string {
	id, _ := ctx.Value(idKey{}).(string)
	return id
}

// From returns the logger attached to ctx, falling back to the global one.
func From(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
			return l
		}
	}
	return &log.Logger
}

type idKey struct{}
