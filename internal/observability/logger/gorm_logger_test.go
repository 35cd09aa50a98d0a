package logger

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestOperationFromSQL(t *testing.T) {
	cases := map[string]string{
		"SELECT id FROM invoices":                        "SELECT",
		"  insert into payments (id) values (1)":         "INSERT",
		"WITH x AS (SELECT 1) UPDATE accounts SET a = 1": "SELECT",
		"": "UNKNOWN",
	}
	for sql, want := range cases {
		if got := operationFromSQL(sql); got != want {
			t.Fatalf("operationFromSQL(%q) = %q, want %q", sql, got, want)
		}
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(gorm.ErrDuplicatedKey) {
		t.Fatalf("expected gorm duplicate to be a unique violation")
	}
	if !isUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("expected pg 23505 to be a unique violation")
	}
	if !isUniqueViolation(errors.New("UNIQUE constraint failed: payments.invoice_id")) {
		t.Fatalf("expected sqlite message to be a unique violation")
	}
	if isUniqueViolation(errors.New("connection reset")) {
		t.Fatalf("expected unrelated error to be rejected")
	}
}

func TestParseGormLevel(t *testing.T) {
	cases := map[string]gormlogger.LogLevel{
		"silent":  gormlogger.Silent,
		" ERROR ": gormlogger.Error,
		"info":    gormlogger.Info,
		"":        gormlogger.Warn,
		"verbose": gormlogger.Warn,
	}
	for in, want := range cases {
		if got := ParseGormLevel(in); got != want {
			t.Fatalf("ParseGormLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
