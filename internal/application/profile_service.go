package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/condo-portal/internal/access"
)

// ProfileRepository exposes persistence operations for resident profiles.
type ProfileRepository interface {
	ListProfiles(ctx context.Context) ([]access.Profile, error)
	GetProfile(ctx context.Context, id string) (access.Profile, error)
	UpdateProfile(ctx context.Context, profile access.Profile, updatedAt time.Time) error
}

// ProfileService lets managers inspect residents and administrators change
// their role or access.
type ProfileService struct {
	profiles ProfileRepository
	sessions SessionRepository
	now      func() time.Time
	logger   *slog.Logger
}

// NewProfileService creates a new ProfileService instance.
func NewProfileService(profiles ProfileRepository, sessions SessionRepository, now func() time.Time) *ProfileService {
	return NewProfileServiceWithLogger(profiles, sessions, now, nil)
}

// NewProfileServiceWithLogger creates a new ProfileService with a specified logger.
func NewProfileServiceWithLogger(profiles ProfileRepository, sessions SessionRepository, now func() time.Time, logger *slog.Logger) *ProfileService {
	if now == nil {
		now = time.Now
	}
	return &ProfileService{
		profiles: profiles,
		sessions: sessions,
		now:      now,
		logger:   defaultLogger(logger),
	}
}

func (s *ProfileService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ProfileService", operation, attrs...)
}

// ListProfiles returns every profile. Syndics and administrators only.
func (s *ProfileService) ListProfiles(ctx context.Context, principal Principal) (profiles []access.Profile, err error) {
	if s == nil {
		err = fmt.Errorf("ProfileService is nil")
		return
	}
	if s.profiles == nil {
		err = fmt.Errorf("profile repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListProfiles", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list profiles", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "profiles listed", "count", len(profiles))
	}()

	if !principal.IsManager() {
		err = ErrUnauthorized
		return
	}

	profiles, err = s.profiles.ListProfiles(ctx)
	if err != nil {
		err = mapRepoError(err, "profile", "Perfil inválido")
		return
	}
	return
}

// GetProfile returns a profile to its owner or to a manager.
func (s *ProfileService) GetProfile(ctx context.Context, principal Principal, id string) (profile access.Profile, err error) {
	if s == nil {
		err = fmt.Errorf("ProfileService is nil")
		return
	}
	if s.profiles == nil {
		err = fmt.Errorf("profile repository not configured")
		return
	}

	trimmed := strings.TrimSpace(id)
	logger := s.loggerWith(ctx, "GetProfile", "principal_id", principal.UserID, "profile_id", trimmed)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to get profile", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if trimmed == "" {
		err = ErrNotFound
		return
	}
	if trimmed != principal.ProfileID && !principal.IsManager() {
		err = ErrUnauthorized
		return
	}

	profile, err = s.profiles.GetProfile(ctx, trimmed)
	if err != nil {
		err = mapRepoError(err, "profile", "Perfil inválido")
		return
	}
	return
}

// ChangeRole assigns a new role. The target's sessions are revoked so the
// new role takes effect only after signing in again.
func (s *ProfileService) ChangeRole(ctx context.Context, params ChangeRoleParams) (profile access.Profile, err error) {
	if s == nil {
		err = fmt.Errorf("ProfileService is nil")
		return
	}
	if s.profiles == nil {
		err = fmt.Errorf("profile repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ChangeRole",
		"principal_id", params.Principal.UserID,
		"profile_id", params.ProfileID,
		"role", params.Role,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to change role", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "role changed")
	}()

	if !params.Principal.HasRole(access.RoleAdmin) {
		err = ErrUnauthorized
		return
	}
	if !params.Role.Valid() {
		vErr := &ValidationError{}
		vErr.add("role", "invalid", "Perfil inválido")
		err = vErr
		return
	}

	profile, err = s.profiles.GetProfile(ctx, strings.TrimSpace(params.ProfileID))
	if err != nil {
		err = mapRepoError(err, "profile", "Perfil inválido")
		return
	}
	if profile.Role == params.Role {
		return
	}

	profile.Role = params.Role
	if err = s.save(ctx, profile); err != nil {
		return
	}
	err = s.revokeSessions(ctx, profile.UserID)
	return
}

// SetActive enables or disables a profile. Disabling revokes its sessions.
func (s *ProfileService) SetActive(ctx context.Context, params SetActiveParams) (profile access.Profile, err error) {
	if s == nil {
		err = fmt.Errorf("ProfileService is nil")
		return
	}
	if s.profiles == nil {
		err = fmt.Errorf("profile repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "SetActive",
		"principal_id", params.Principal.UserID,
		"profile_id", params.ProfileID,
		"active", params.Active,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update profile status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "profile status updated")
	}()

	if !params.Principal.HasRole(access.RoleAdmin) {
		err = ErrUnauthorized
		return
	}

	profile, err = s.profiles.GetProfile(ctx, strings.TrimSpace(params.ProfileID))
	if err != nil {
		err = mapRepoError(err, "profile", "Perfil inválido")
		return
	}
	if profile.IsActive == params.Active {
		return
	}

	profile.IsActive = params.Active
	if err = s.save(ctx, profile); err != nil {
		return
	}
	if !params.Active {
		err = s.revokeSessions(ctx, profile.UserID)
	}
	return
}

func (s *ProfileService) save(ctx context.Context, profile access.Profile) error {
	if err := s.profiles.UpdateProfile(ctx, profile, s.now()); err != nil {
		return mapRepoError(err, "profile", "Perfil inválido")
	}
	return nil
}

func (s *ProfileService) revokeSessions(ctx context.Context, userID string) error {
	if s.sessions == nil {
		return nil
	}
	if _, err := s.sessions.RevokeUserSessions(ctx, userID, s.now()); err != nil {
		return fmt.Errorf("revoke sessions of %s: %w", userID, err)
	}
	return nil
}
