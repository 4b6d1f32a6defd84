package access

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// IdentityProvider is the backend an AuthContext delegates to.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (Identity, error)
	SignUp(ctx context.Context, email, password string, fields ProfileFields) error
	SignOut(ctx context.Context, token string) error
	Resolve(ctx context.Context, token string) (Identity, error)
}

// AuthContext holds the authentication state of a single client session.
// It is safe for concurrent use; readers always observe a complete
// user/profile pair through Current.
type AuthContext struct {
	provider IdentityProvider

	mu        sync.RWMutex
	user      *User
	profile   *Profile
	token     string
	expiresAt time.Time
	loading   bool
}

// NewAuthContext returns a context in the loading state. Call Restore to
// resolve the initial session.
func NewAuthContext(provider IdentityProvider) *AuthContext {
	return &AuthContext{provider: provider, loading: true}
}

// Current returns a snapshot of the session state.
func (a *AuthContext) Current() State {
	if a == nil {
		return State{}
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return State{
		User:    cloneUser(a.user),
		Profile: cloneProfile(a.profile),
		Loading: a.loading,
	}
}

// Token returns the active session token, or "" when signed out.
func (a *AuthContext) Token() string {
	if a == nil {
		return ""
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

// ExpiresAt returns the expiry of the active session.
func (a *AuthContext) ExpiresAt() time.Time {
	if a == nil {
		return time.Time{}
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.expiresAt
}

// Restore resolves an existing session token. An empty token or one the
// provider rejects leaves the context signed out without error.
func (a *AuthContext) Restore(ctx context.Context, token string) error {
	if a == nil {
		return &AuthError{Kind: AuthErrorUnknown, Err: errors.New("auth context is nil")}
	}
	token = strings.TrimSpace(token)
	if token == "" {
		a.clear()
		return nil
	}
	if a.provider == nil {
		a.clear()
		return &AuthError{Kind: AuthErrorUnknown, Err: errors.New("identity provider is nil")}
	}

	identity, err := a.provider.Resolve(ctx, token)
	if err != nil {
		a.clear()
		if errors.Is(err, ErrInvalidCredentials) {
			return nil
		}
		return classify(err)
	}
	a.establish(identity)
	return nil
}

// SignIn authenticates with the provider and stores the resulting session.
// Failures leave the previous state untouched apart from ending loading.
func (a *AuthContext) SignIn(ctx context.Context, email, password string) error {
	if a == nil {
		return &AuthError{Kind: AuthErrorUnknown, Err: errors.New("auth context is nil")}
	}
	if a.provider == nil {
		a.finishLoading()
		return &AuthError{Kind: AuthErrorUnknown, Err: errors.New("identity provider is nil")}
	}
	identity, err := a.provider.SignIn(ctx, email, password)
	if err != nil {
		a.finishLoading()
		return classify(err)
	}
	a.establish(identity)
	return nil
}

// SignUp registers a new account. The caller is not signed in afterwards.
func (a *AuthContext) SignUp(ctx context.Context, email, password string, fields ProfileFields) error {
	if a == nil {
		return &AuthError{Kind: AuthErrorUnknown, Err: errors.New("auth context is nil")}
	}
	if a.provider == nil {
		return &AuthError{Kind: AuthErrorUnknown, Err: errors.New("identity provider is nil")}
	}
	if err := a.provider.SignUp(ctx, email, password, fields); err != nil {
		return classify(err)
	}
	return nil
}

// SignOut ends the session. Signing out while already signed out is a no-op.
// Local state is cleared even when the provider fails.
func (a *AuthContext) SignOut(ctx context.Context) error {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	token := a.token
	a.user, a.profile, a.token, a.expiresAt, a.loading = nil, nil, "", time.Time{}, false
	a.mu.Unlock()

	if token == "" || a.provider == nil {
		return nil
	}
	if err := a.provider.SignOut(ctx, token); err != nil {
		return classify(err)
	}
	return nil
}

func (a *AuthContext) establish(identity Identity) {
	user := identity.User
	a.mu.Lock()
	defer a.mu.Unlock()
	a.user = &user
	a.profile = cloneProfile(identity.Profile)
	a.token = identity.Token
	a.expiresAt = identity.ExpiresAt
	a.loading = false
}

func (a *AuthContext) clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.user, a.profile, a.token, a.expiresAt, a.loading = nil, nil, "", time.Time{}, false
}

func (a *AuthContext) finishLoading() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loading = false
}

// contextKey scopes AuthContext values stored in a context.Context.
type contextKey struct{}

// WithContext stores auth on ctx.
func WithContext(ctx context.Context, auth *AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, auth)
}

// FromContext returns the AuthContext stored on ctx, if any.
func FromContext(ctx context.Context) (*AuthContext, bool) {
	if ctx == nil {
		return nil, false
	}
	auth, ok := ctx.Value(contextKey{}).(*AuthContext)
	return auth, ok && auth != nil
}
