package core

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// EndSpan records err on span, if any, and ends it. Rejections carry their
// kind as the status description.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		if kind := KindOf(err); kind != "" {
			span.SetStatus(codes.Error, string(kind))
		} else {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}
