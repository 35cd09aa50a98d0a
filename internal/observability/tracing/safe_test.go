package tracing

import (
	"errors"
	"fmt"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsSensitiveKeys(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/webhooks/xendit"),
		attribute.String("X-Callback-Token", "secret"),
		attribute.String("request_id", ""),
		attribute.Int("http.status_code", 200),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	for _, attr := range attrs {
		if attr.Key == "X-Callback-Token" {
			t.Fatalf("callback token leaked into attributes")
		}
	}
}

func TestSafeErrorTrimsDetail(t *testing.T) {
	err := fmt.Errorf("reconcile_failed: %w", errors.New(`ERROR: relation "payments" password=hunter2`))
	got := SafeError(err)
	if got == nil || got.Error() != "reconcile_failed" {
		t.Fatalf("expected trimmed error, got %v", got)
	}
	if SafeError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestWebhookProvider(t *testing.T) {
	cases := map[string]string{
		"/api/webhooks/xendit":                       "xendit",
		"/api/webhooks/xendit/companies/:company_id": "xendit",
	}
	for route, want := range cases {
		if got := webhookProvider(route); got != want {
			t.Fatalf("webhookProvider(%q) = %q, want %q", route, got, want)
		}
	}
	if !isProbe("/health") || isProbe("/api/webhooks/xendit") {
		t.Fatalf("unexpected probe classification")
	}
}
