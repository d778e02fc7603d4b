package dialer

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Acquirer is the provider-agnostic boundary to the dialing integration
// (Aircall in production). Implementations return a normalized number or an
// error; business logic never talks to the provider SDK directly.
type Acquirer interface {
	AcquirePhone(ctx context.Context) (string, error)
}

// Func adapts a plain function to Acquirer.
type Func func(ctx context.Context) (string, error)

func (f Func) AcquirePhone(ctx context.Context) (string, error) { return f(ctx) }

var ErrInvalidNumber = errors.New("dialer: invalid phone number")

// Normalize canonicalizes a French phone number for storage and dialing:
// non-digits are stripped, a leading 0 becomes the 33 country code, and
// only 11-digit 33-prefixed numbers are accepted.
func Normalize(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n := b.String()
	if strings.HasPrefix(n, "0") {
		n = "33" + n[1:]
	}
	if !strings.HasPrefix(n, "33") || len(n) != 11 {
		return "", fmt.Errorf("%w: expected 337XXXXXXXX, got %q", ErrInvalidNumber, raw)
	}
	return n, nil
}
