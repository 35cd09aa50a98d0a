package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPaymentMethodsResolve(t *testing.T) {
	holder := NewStaticPaymentMethodsHolder(DefaultPaymentMethodsConfig())

	cases := []struct {
		name  string
		codes []string
		want  string
	}{
		{name: "bank transfer", codes: []string{"BANK_TRANSFER"}, want: PaymentMethodBankTransfer},
		{name: "ewallet channel", codes: []string{"", "EWALLET"}, want: PaymentMethodEWallet},
		{name: "hyphenated", codes: []string{"qr-code"}, want: PaymentMethodQRIS},
		{name: "first mapped wins", codes: []string{"UNKNOWN", "CREDIT_CARD", "EWALLET"}, want: PaymentMethodCreditCard},
		{name: "fallback", codes: []string{"PAYLATER"}, want: PaymentMethodOnline},
		{name: "no codes", codes: nil, want: PaymentMethodOnline},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := holder.Resolve(tc.codes...); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestPaymentMethodsNilHolderUsesDefaults(t *testing.T) {
	var holder *PaymentMethodsHolder
	if got := holder.Resolve("EWALLET"); got != PaymentMethodEWallet {
		t.Fatalf("expected %q, got %q", PaymentMethodEWallet, got)
	}
}

func writePaymentMethods(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "payment_methods.yml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write payment_methods.yml: %v", err)
	}
	return dir
}

func TestLoadPaymentMethodsKeepsMappingWhenFileSetsOnlyDefault(t *testing.T) {
	dir := writePaymentMethods(t, "paymentMethods:\n  default: manual\n")

	holder, err := loadPaymentMethodsHolder(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := holder.Resolve("EWALLET"); got != PaymentMethodEWallet {
		t.Fatalf("expected %q, got %q", PaymentMethodEWallet, got)
	}
	if got := holder.Resolve("PAYLATER"); got != "manual" {
		t.Fatalf("expected %q, got %q", "manual", got)
	}
}

func TestLoadPaymentMethodsFileMappingWins(t *testing.T) {
	dir := writePaymentMethods(t, "paymentMethods:\n  mapping:\n    EWALLET: wallet\n")

	holder, err := loadPaymentMethodsHolder(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := holder.Resolve("ewallet"); got != "wallet" {
		t.Fatalf("expected %q, got %q", "wallet", got)
	}
	if got := holder.Resolve("PAYLATER"); got != PaymentMethodOnline {
		t.Fatalf("expected %q, got %q", PaymentMethodOnline, got)
	}
}

func TestLoadPaymentMethodsWithoutFileUsesDefaults(t *testing.T) {
	holder, err := loadPaymentMethodsHolder(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := holder.Resolve("VIRTUAL_ACCOUNT"); got != PaymentMethodBankTransfer {
		t.Fatalf("expected %q, got %q", PaymentMethodBankTransfer, got)
	}
}
