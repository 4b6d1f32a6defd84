package application

import (
	"errors"
	"strings"

	"github.com/example/condo-portal/internal/booking"
	"github.com/example/condo-portal/internal/persistence"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a unique attribute such as an email is taken.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidCredentials is returned when an email/password pair or token is rejected.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrAccountDisabled is returned when an inactive profile attempts to sign in.
	ErrAccountDisabled = errors.New("application: account disabled")
	// ErrSessionExpired is returned for sessions past their expiry.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned for sessions that were signed out or invalidated.
	ErrSessionRevoked = errors.New("application: session revoked")
	// ErrInvalidTransition is returned when a reservation status change is not allowed.
	ErrInvalidTransition = errors.New("application: invalid status transition")
)

// FieldError is one field level validation issue. Code is stable across
// languages; Message is the default pt-BR wording.
type FieldError struct {
	Field   string
	Code    string
	Arg     string
	Message string
}

// ValidationError captures field level validation issues that callers can
// surface to users, in the order they were detected.
type ValidationError struct {
	Fields []FieldError
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil || len(v.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		parts[i] = f.Field + ": " + f.Code
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.Fields) > 0
}

// Get returns the issue recorded for field.
func (v *ValidationError) Get(field string) (FieldError, bool) {
	if v == nil {
		return FieldError{}, false
	}
	for _, f := range v.Fields {
		if f.Field == field {
			return f, true
		}
	}
	return FieldError{}, false
}

// FieldMessages returns field → message.
func (v *ValidationError) FieldMessages() map[string]string {
	out := make(map[string]string)
	if v == nil {
		return out
	}
	for _, f := range v.Fields {
		out[f.Field] = f.Message
	}
	return out
}

// add records a field level validation error. The first issue for a field wins.
func (v *ValidationError) add(field, code, message string) {
	if _, exists := v.Get(field); exists {
		return
	}
	v.Fields = append(v.Fields, FieldError{Field: field, Code: code, Message: message})
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil {
		return
	}
	for _, f := range other.Fields {
		if _, exists := v.Get(f.Field); !exists {
			v.Fields = append(v.Fields, f)
		}
	}
}

// fromBookingErrors converts validator output keeping its order.
func fromBookingErrors(errs booking.FieldErrors) *ValidationError {
	vErr := &ValidationError{}
	for _, item := range errs.Items() {
		vErr.Fields = append(vErr.Fields, FieldError{
			Field:   item.Field,
			Code:    string(item.Code),
			Arg:     item.Arg,
			Message: item.Message,
		})
	}
	return vErr
}

// mapRepoError converts persistence sentinels into application errors.
// Constraint failures are reported against field.
func mapRepoError(err error, field, message string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrConstraintViolation), errors.Is(err, persistence.ErrForeignKeyViolation):
		vErr := &ValidationError{}
		vErr.add(field, "invalid", message)
		return vErr
	}
	return err
}
