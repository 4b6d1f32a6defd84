package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/example/condo-portal/internal/access"
	"github.com/example/condo-portal/internal/persistence"
)

// AccountStore exposes the account operations required by the auth service.
type AccountStore interface {
	GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error)
	GetAccount(ctx context.Context, userID string) (access.User, access.Profile, error)
	CreateAccount(ctx context.Context, account NewAccount) error
}

// SessionRepository captures the persistence interactions for issued sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	UpdateSession(ctx context.Context, session Session) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	RevokeUserSessions(ctx context.Context, userID string, revokedAt time.Time) (int, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) (int, error)
}

// AuthSettings tunes session lifetime and self-service registration.
type AuthSettings struct {
	SessionTTL  time.Duration
	SignupRoles access.RoleSet
	// TokenGenerator issues session tokens. Defaults to the ID generator.
	TokenGenerator func() string
}

// AuthService coordinates sign-in, sign-up and the session lifecycle.
type AuthService struct {
	accounts       AccountStore
	sessions       SessionRepository
	hashPassword   PasswordHasher
	verifyPassword PasswordVerifier
	idGenerator    func() string
	newToken       func() string
	now            func() time.Time
	sessionTTL     time.Duration
	signupRoles    access.RoleSet
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(accounts AccountStore, sessions SessionRepository, hasher PasswordHasher, verify PasswordVerifier, idGenerator func() string, now func() time.Time, settings AuthSettings) *AuthService {
	return NewAuthServiceWithLogger(accounts, sessions, hasher, verify, idGenerator, now, settings, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(accounts AccountStore, sessions SessionRepository, hasher PasswordHasher, verify PasswordVerifier, idGenerator func() string, now func() time.Time, settings AuthSettings, logger *slog.Logger) *AuthService {
	if hasher == nil {
		hasher = HashPassword
	}
	if verify == nil {
		verify = VerifyPassword
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if settings.SessionTTL <= 0 {
		settings.SessionTTL = 24 * time.Hour
	}
	if settings.SignupRoles.Empty() {
		settings.SignupRoles = access.Roles(access.RoleTenant, access.RoleOwner)
	}
	if settings.TokenGenerator == nil {
		settings.TokenGenerator = idGenerator
	}
	return &AuthService{
		accounts:       accounts,
		sessions:       sessions,
		hashPassword:   hasher,
		verifyPassword: verify,
		idGenerator:    idGenerator,
		newToken:       settings.TokenGenerator,
		now:            now,
		sessionTTL:     settings.SessionTTL,
		signupRoles:    settings.SignupRoles,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Authenticate validates credentials and issues a new session token.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.accounts == nil {
		err = fmt.Errorf("account store not configured")
		return
	}

	email := normalizeEmail(params.Email)
	password := params.Password

	logger := s.loggerWith(ctx, "Authenticate",
		"email", email,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"user_id", result.User.ID,
			"session_id", result.Session.ID,
			"role", result.Profile.Role,
		).InfoContext(ctx, "authentication succeeded")
	}()

	if email == "" || password == "" {
		err = ErrInvalidCredentials
		return
	}

	var creds UserCredentials
	creds, err = s.accounts.GetUserCredentialsByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			err = ErrInvalidCredentials
		}
		return
	}

	if err = s.verifyPassword(creds.PasswordHash, password); err != nil {
		err = ErrInvalidCredentials
		return
	}

	if creds.Disabled() {
		err = ErrAccountDisabled
		return
	}

	now := s.now()
	id := s.idGenerator()
	token := s.newToken()
	if token == "" {
		token = id
	}

	session := Session{
		ID:          id,
		UserID:      creds.User.ID,
		Token:       token,
		Fingerprint: strings.TrimSpace(params.Fingerprint),
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(s.sessionTTL),
	}

	if s.sessions != nil {
		if _, err = s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
			return
		}

		var persisted Session
		persisted, err = s.sessions.CreateSession(ctx, session)
		if err != nil {
			return
		}
		session = persisted
	}

	result = AuthenticateResult{User: creds.User, Profile: creds.Profile, Session: session}
	return
}

// Register creates a user with its profile. Only roles in the configured
// self-service set may be chosen.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (profile access.Profile, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.accounts == nil {
		err = fmt.Errorf("account store not configured")
		return
	}

	email := normalizeEmail(params.Email)
	fields := params.Fields
	fields.FullName = strings.TrimSpace(fields.FullName)
	fields.Phone = strings.TrimSpace(fields.Phone)
	fields.ApartmentNumber = strings.TrimSpace(fields.ApartmentNumber)
	fields.BuildingID = strings.TrimSpace(fields.BuildingID)

	logger := s.loggerWith(ctx, "Register",
		"email", email,
		"role", fields.Role,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", profile.UserID, "profile_id", profile.ID).InfoContext(ctx, "account registered")
	}()

	if vErr := s.validateRegistration(email, params.Password, fields); vErr.HasErrors() {
		err = vErr
		return
	}

	var hash string
	hash, err = s.hashPassword(params.Password)
	if err != nil {
		err = fmt.Errorf("hash password: %w", err)
		return
	}

	now := s.now()
	user := access.User{ID: s.idGenerator(), Email: email}
	profile = access.Profile{
		ID:              s.idGenerator(),
		UserID:          user.ID,
		FullName:        fields.FullName,
		Email:           email,
		Phone:           fields.Phone,
		Role:            fields.Role,
		ApartmentNumber: fields.ApartmentNumber,
		BuildingID:      fields.BuildingID,
		IsActive:        true,
	}

	err = s.accounts.CreateAccount(ctx, NewAccount{
		User:         user,
		Profile:      profile,
		PasswordHash: hash,
		CreatedAt:    now,
	})
	if err != nil {
		profile = access.Profile{}
		err = mapRepoError(err, "email", "Dados de cadastro inválidos")
		return
	}
	return
}

func (s *AuthService) validateRegistration(email, password string, fields access.ProfileFields) *ValidationError {
	vErr := &ValidationError{}
	if email == "" {
		vErr.add("email", "required", "E-mail é obrigatório")
	} else if _, parseErr := mail.ParseAddress(email); parseErr != nil {
		vErr.add("email", "invalid", "E-mail inválido")
	}
	if len(password) < MinPasswordLength {
		vErr.add("password", "too_short", fmt.Sprintf("A senha deve ter pelo menos %d caracteres", MinPasswordLength))
	}
	if fields.FullName == "" {
		vErr.add("full_name", "required", "Nome completo é obrigatório")
	}
	switch {
	case !fields.Role.Valid():
		vErr.add("role", "invalid", "Perfil inválido")
	case !s.signupRoles.Contains(fields.Role):
		vErr.add("role", "not_allowed", "Este perfil não pode ser escolhido no cadastro")
	}
	return vErr
}

// RefreshSession rotates an existing session token, extending its validity window.
func (s *AuthService) RefreshSession(ctx context.Context, params RefreshSessionParams) (result RefreshSessionResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}

	token := strings.TrimSpace(params.Token)
	logger := s.loggerWith(ctx, "RefreshSession",
		"token_provided", token != "",
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "session refresh failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"session_id", result.Session.ID,
			"user_id", result.Session.UserID,
		).InfoContext(ctx, "session refreshed")
	}()

	if token == "" {
		err = ErrInvalidCredentials
		return
	}

	var session Session
	session, err = s.activeSession(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			err = ErrInvalidCredentials
		}
		return
	}

	now := s.now()
	newToken := s.newToken()
	if newToken == "" {
		newToken = session.Token
	}

	session.Token = newToken
	session.UpdatedAt = now
	session.ExpiresAt = now.Add(s.sessionTTL)
	if fp := strings.TrimSpace(params.Fingerprint); fp != "" {
		session.Fingerprint = fp
	}

	session, err = s.sessions.UpdateSession(ctx, session)
	if err != nil {
		return
	}

	result = RefreshSessionResult{Session: session}
	return
}

// RevokeSession signs a session out. Tokens that no longer exist are treated
// as already signed out.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return ErrInvalidCredentials
	}

	logger := s.loggerWith(ctx, "RevokeSession", "token_provided", true)

	session, err := s.sessions.RevokeSession(ctx, trimmed, s.now())
	if err != nil {
		if isNotFound(err) {
			logger.InfoContext(ctx, "session already gone")
			return nil
		}
		logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.With("session_id", session.ID, "user_id", session.UserID).InfoContext(ctx, "session revoked")
	return nil
}

// RevokeUserSessions signs out every active session of userID and reports
// how many were revoked.
func (s *AuthService) RevokeUserSessions(ctx context.Context, userID string) (count int, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "RevokeUserSessions", "user_id", userID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to revoke user sessions", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user sessions revoked", "count", count)
	}()

	if strings.TrimSpace(userID) == "" {
		err = ErrNotFound
		return
	}
	count, err = s.sessions.RevokeUserSessions(ctx, userID, s.now())
	return
}

// ValidateSession verifies that the provided token corresponds to an active session and returns its principal.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (Principal, error) {
	identity, err := s.ResolveSession(ctx, token)
	if err != nil {
		return Principal{}, err
	}
	return identity.Principal(), nil
}

// ResolveSession returns the session for token together with its user and
// profile.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (identity SessionIdentity, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}
	if s.accounts == nil {
		err = fmt.Errorf("account store not configured")
		return
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ResolveSession", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "session rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("principal_id", identity.User.ID, "role", identity.Profile.Role).DebugContext(ctx, "session resolved")
	}()

	if trimmed == "" {
		err = ErrInvalidCredentials
		return
	}

	var session Session
	session, err = s.activeSession(ctx, trimmed)
	if err != nil {
		return
	}

	var (
		user    access.User
		profile access.Profile
	)
	user, profile, err = s.accounts.GetAccount(ctx, session.UserID)
	if err != nil {
		if isNotFound(err) {
			err = ErrUnauthorized
		}
		return
	}
	if !profile.IsActive {
		err = ErrAccountDisabled
		return
	}

	identity = SessionIdentity{Session: session, User: user, Profile: profile}
	return
}

// PruneExpiredSessions deletes sessions that expired before now.
func (s *AuthService) PruneExpiredSessions(ctx context.Context) (removed int, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "PruneExpiredSessions")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to prune expired sessions", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "expired sessions pruned", "removed", removed)
	}()

	removed, err = s.sessions.DeleteExpiredSessions(ctx, s.now())
	return
}

func (s *AuthService) activeSession(ctx context.Context, token string) (Session, error) {
	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if isNotFound(err) {
			return Session{}, ErrUnauthorized
		}
		return Session{}, err
	}

	now := s.now()
	if session.RevokedAt != nil && !session.RevokedAt.IsZero() {
		return Session{}, ErrSessionRevoked
	}
	if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(now) {
		return Session{}, ErrSessionExpired
	}
	return session, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}
