package tracing

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

// Keys that never reach span attributes. Webhook payloads carry tokens and
// customer contact details.
var blockedAttributeKeys = map[attribute.Key]struct{}{
	"x-callback-token":  {},
	"authorization":     {},
	"payer_email":       {},
	"http.request.body": {},
}

// SafeAttributes drops sensitive and empty attributes.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, blocked := blockedAttributeKeys[attribute.Key(strings.ToLower(string(attr.Key)))]; blocked {
			continue
		}
		if attr.Value.Type() == attribute.STRING && strings.TrimSpace(attr.Value.AsString()) == "" {
			continue
		}
		out = append(out, attr)
	}
	return out
}

// SafeError returns an error safe to record on a span: the message is cut at
// the first colon so wrapped driver detail and SQL stay out of traces.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if idx := strings.Index(msg, ":"); idx > 0 {
		msg = msg[:idx]
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		msg = "error"
	}
	return errors.New(msg)
}

// ExtractContext reads W3C trace context from the carrier.
func ExtractContext(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
