package tracing

import (
	"context"

	"github.com/bwise1/earthlens/util/values"
)

// Context identifies a single inbound request across log lines.
type Context struct {
	RequestID     string `json:"request_id"`
	RequestSource string `json:"request_source"`
}

func (c Context) String() string {
	return c.RequestSource + ":" + c.RequestID
}

// WithContext stores tc on ctx.
func WithContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, values.ContextTracingKey, tc)
}

// FromContext returns the tracing context set by the request middleware,
// or an empty one when none is present.
func FromContext(ctx context.Context) Context {
	tc, _ := ctx.Value(values.ContextTracingKey).(Context)
	return tc
}
