package webhook

import (
	"crypto/subtle"
	"strings"

	"github.com/smallbiznis/bukukas/internal/payment/domain"
)

// Authenticator checks the shared callback token Xendit sends in
// X-Callback-Token.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(strings.TrimSpace(secret))}
}

// Authenticate rejects every request when no secret is configured.
func (a *Authenticator) Authenticate(token string) error {
	if a == nil || len(a.secret) == 0 {
		return domain.ErrUnauthorized
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(token), a.secret) != 1 {
		return domain.ErrUnauthorized
	}
	return nil
}
