package access

import "errors"

var (
	// ErrInvalidCredentials is returned by identity providers for a bad email/password pair.
	ErrInvalidCredentials = errors.New("access: invalid credentials")
	// ErrAlreadyRegistered is returned by identity providers when the email is taken.
	ErrAlreadyRegistered = errors.New("access: already registered")
)

// AuthErrorKind classifies authentication failures for presentation.
type AuthErrorKind int

const (
	AuthErrorUnknown AuthErrorKind = iota
	AuthErrorInvalidCredentials
	AuthErrorAlreadyRegistered
)

func (k AuthErrorKind) String() string {
	switch k {
	case AuthErrorInvalidCredentials:
		return "invalid_credentials"
	case AuthErrorAlreadyRegistered:
		return "already_registered"
	case AuthErrorUnknown:
		return "unknown"
	}
	return "unknown"
}

// AuthError is the typed error returned by AuthContext operations.
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return "access: " + e.Kind.String()
	}
	return "access: " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindOf extracts the AuthErrorKind carried by err. Errors that are not
// AuthErrors are reported as AuthErrorUnknown.
func KindOf(err error) AuthErrorKind {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return AuthErrorUnknown
}

func classify(err error) *AuthError {
	if err == nil {
		return nil
	}
	var existing *AuthError
	if errors.As(err, &existing) {
		return existing
	}
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return &AuthError{Kind: AuthErrorInvalidCredentials, Err: err}
	case errors.Is(err, ErrAlreadyRegistered):
		return &AuthError{Kind: AuthErrorAlreadyRegistered, Err: err}
	}
	return &AuthError{Kind: AuthErrorUnknown, Err: err}
}
