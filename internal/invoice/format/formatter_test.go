package format

import (
	"testing"
	"time"
)

func TestFormatInvoiceNumber(t *testing.T) {
	got, err := FormatInvoiceNumber(DefaultInvoiceNumberTemplate, time.Date(2025, 5, 6, 0, 0, 0, 0, time.UTC), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "INV-20250506-007" {
		t.Fatalf("expected INV-20250506-007, got %s", got)
	}

	if _, err := FormatInvoiceNumber("", time.Now(), 1); err == nil {
		t.Fatalf("expected error for empty template")
	}
	if _, err := FormatInvoiceNumber(DefaultInvoiceNumberTemplate, time.Now(), 0); err == nil {
		t.Fatalf("expected error for zero sequence")
	}
	if _, err := FormatInvoiceNumber("INV-{UNKNOWN}", time.Now(), 1); err == nil {
		t.Fatalf("expected error for unresolved token")
	}
}

func TestRecoverInvoiceNumber(t *testing.T) {
	cases := map[string]string{
		"INV20250506523":   "INV-20250506-523",
		" inv20250506007 ": "INV-20250506-007",
		"INV-20250506-523": "INV-20250506-523",
		"INV20251399001":   "INV20251399001",
		"INV20250506000":   "INV20250506000",
		"20250506523":      "20250506523",
		"":                 "",
	}
	for input, want := range cases {
		if got := RecoverInvoiceNumber(input); got != want {
			t.Fatalf("RecoverInvoiceNumber(%q) = %q, want %q", input, got, want)
		}
	}
}
