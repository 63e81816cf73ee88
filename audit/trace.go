package audit

import "context"

type traceCtxKey struct{}

// WithTraceID returns a copy of ctx carrying traceID for entries built further down.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceCtxKey{}, traceID)
}

// TraceIDFrom returns the trace id stored by WithTraceID, or "".
func TraceIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(traceCtxKey{}).(string)
	return s
}
