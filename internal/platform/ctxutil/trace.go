package ctxutil

import "context"

type traceDataKey struct{}

// TraceData identifies the request a context belongs to.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) (TraceData, bool) {
	td, ok := ctx.Value(traceDataKey{}).(TraceData)
	return td, ok
}

// LogFields returns request_id/trace_id pairs for structured logging, or
// nil when ctx carries no trace data.
func LogFields(ctx context.Context) []interface{} {
	td, ok := GetTraceData(ctx)
	if !ok {
		return nil
	}
	return []interface{}{"request_id", td.RequestID, "trace_id", td.TraceID}
}
