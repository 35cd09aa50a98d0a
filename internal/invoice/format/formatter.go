package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	seqPadRe      = regexp.MustCompile(`\{SEQ(\d+)\}`)
	compactNumber = regexp.MustCompile(`^([A-Za-z]+)(\d{4})(\d{2})(\d{2})(\d+)$`)
)

const DefaultInvoiceNumberTemplate = "INV-{YYYY}{MM}{DD}-{SEQ3}"

// FormatInvoiceNumber formats a human-readable invoice number
// from a template, the issue date and a sequence.
func FormatInvoiceNumber(
	template string,
	issuedAt time.Time,
	seq int64,
) (string, error) {

	if template == "" {
		return "", fmt.Errorf("invoice number template is empty")
	}

	if seq <= 0 {
		return "", fmt.Errorf("invalid invoice sequence: %d", seq)
	}

	out := template

	out = strings.ReplaceAll(out, "{YYYY}", issuedAt.Format("2006"))
	out = strings.ReplaceAll(out, "{YY}", issuedAt.Format("06"))
	out = strings.ReplaceAll(out, "{MM}", issuedAt.Format("01"))
	out = strings.ReplaceAll(out, "{DD}", issuedAt.Format("02"))

	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))

	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		if len(match) != 2 {
			return m
		}

		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}

		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.Contains(out, "{") || strings.Contains(out, "}") {
		return "", fmt.Errorf("unresolved token in invoice format: %s", out)
	}

	return out, nil
}

// RecoverInvoiceNumber reinserts the hyphens a processor strips from an
// invoice number, turning INV20250506523 into INV-20250506-523. Values that
// do not carry a valid date and sequence come back trimmed but unchanged.
func RecoverInvoiceNumber(compact string) string {
	compact = strings.TrimSpace(compact)
	match := compactNumber.FindStringSubmatch(compact)
	if len(match) != 6 {
		return compact
	}

	issuedAt, err := time.Parse("20060102", match[2]+match[3]+match[4])
	if err != nil {
		return compact
	}
	seq, err := strconv.ParseInt(match[5], 10, 64)
	if err != nil {
		return compact
	}

	template := strings.ToUpper(match[1]) + "-{YYYY}{MM}{DD}-{SEQ" + strconv.Itoa(len(match[5])) + "}"
	out, err := FormatInvoiceNumber(template, issuedAt, seq)
	if err != nil {
		return compact
	}
	return out
}
