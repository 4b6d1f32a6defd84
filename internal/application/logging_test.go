package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/example/condo-portal/internal/logging"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestServiceLoggerPrefersContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	scoped := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := logging.ContextWithLogger(context.Background(), scoped)

	serviceLogger(ctx, discardLogger(), "ReservationService", "Calendar", "area", "1").Info("hello")

	out := buf.String()
	for _, want := range []string{"service=ReservationService", "operation=Calendar", "area=1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := map[string]error{
		"":                    nil,
		"unauthorized":        ErrUnauthorized,
		"not_found":           fmt.Errorf("wrap: %w", ErrNotFound),
		"already_exists":      ErrAlreadyExists,
		"invalid_credentials": ErrInvalidCredentials,
		"account_disabled":    ErrAccountDisabled,
		"session_expired":     ErrSessionExpired,
		"session_revoked":     ErrSessionRevoked,
		"invalid_transition":  ErrInvalidTransition,
		"validation":          &ValidationError{},
		"unexpected":          errors.New("boom"),
	}
	for want, err := range cases {
		if got := ErrorKind(err); got != want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", err, got, want)
		}
	}
}
