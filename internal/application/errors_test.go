package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/example/condo-portal/internal/booking"
	"github.com/example/condo-portal/internal/persistence"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var nilErr *ValidationError
	if got := nilErr.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for nil error, got %q", got)
	}

	withFields := &ValidationError{}
	withFields.add("date", "date_past", "")
	withFields.add("purpose", "purpose_required", "")
	if got := withFields.Error(); got != "validation failed: date: date_past, purpose: purpose_required" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestValidationError_AddAndMerge(t *testing.T) {
	t.Parallel()

	base := &ValidationError{}
	if base.HasErrors() {
		t.Fatalf("expected HasErrors to report false for empty error")
	}
	base.add("first", "code", "value")
	base.add("first", "other", "ignored")
	if got, _ := base.Get("first"); got.Message != "value" {
		t.Fatalf("expected first message to win, got %q", got.Message)
	}

	other := &ValidationError{}
	other.add("second", "code", "another")
	other.add("first", "code", "shadowed")
	base.merge(other)
	base.merge(nil)
	if len(base.Fields) != 2 || base.Fields[1].Field != "second" {
		t.Fatalf("expected merge to append new fields in order, got %#v", base.Fields)
	}
	if msgs := base.FieldMessages(); msgs["second"] != "another" || msgs["first"] != "value" {
		t.Fatalf("unexpected field messages %v", msgs)
	}
}

func TestFromBookingErrors(t *testing.T) {
	t.Parallel()

	var errs booking.FieldErrors
	errs.Add(booking.FieldGuestCount, booking.CodeGuestsMax, "50")
	errs.Add(booking.FieldAreaID, booking.CodeAreaUnknown, "")

	vErr := fromBookingErrors(errs)
	if len(vErr.Fields) != 2 || vErr.Fields[0].Field != booking.FieldGuestCount || vErr.Fields[1].Field != booking.FieldAreaID {
		t.Fatalf("expected order to be preserved, got %#v", vErr.Fields)
	}
	if vErr.Fields[0].Arg != "50" || vErr.Fields[0].Message == "" {
		t.Fatalf("expected argument and message to be carried, got %#v", vErr.Fields[0])
	}
}

func TestMapRepoError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"not found", fmt.Errorf("wrapped: %w", persistence.ErrNotFound), ErrNotFound},
		{"duplicate", persistence.ErrDuplicate, ErrAlreadyExists},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := mapRepoError(tc.in, "field", "msg"); !errors.Is(got, tc.want) && got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}

	var vErr *ValidationError
	if !errors.As(mapRepoError(persistence.ErrConstraintViolation, "name", "bad"), &vErr) {
		t.Fatalf("expected constraint violation to become a validation error")
	}
	if field, ok := vErr.Get("name"); !ok || field.Message != "bad" {
		t.Fatalf("unexpected field %#v", field)
	}
}
