// Package context carries request-scoped identifiers used by logs and spans.
package context

import (
	"context"
	"strings"
)

type requestIDKey struct{}
type companyIDKey struct{}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if value, ok := ctx.Value(requestIDKey{}).(string); ok {
		return value
	}
	return ""
}

// WithCompanyID records the tenant the request is scoped to.
func WithCompanyID(ctx context.Context, companyID string) context.Context {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return ctx
	}
	return context.WithValue(ctx, companyIDKey{}, companyID)
}

func CompanyIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if value, ok := ctx.Value(companyIDKey{}).(string); ok {
		return value
	}
	return ""
}
