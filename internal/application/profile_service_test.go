package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/condo-portal/internal/access"
)

func profileFixtures() *accountStoreStub {
	tenant := residentCredentials()
	admin := UserCredentials{
		User:    access.User{ID: "user-admin", Email: "admin@example.com"},
		Profile: access.Profile{ID: "profile-admin", UserID: "user-admin", FullName: "Carla Admin", Role: access.RoleAdmin, IsActive: true},
	}
	syndic := UserCredentials{
		User:    access.User{ID: "user-syndic", Email: "sindico@example.com"},
		Profile: access.Profile{ID: "profile-syndic", UserID: "user-syndic", FullName: "Davi Síndico", Role: access.RoleSyndic, IsActive: true},
	}
	return newAccountStoreStub(tenant, admin, syndic)
}

var (
	tenantPrincipal = Principal{UserID: "user-1", ProfileID: "profile-1", Role: access.RoleTenant}
	syndicPrincipal = Principal{UserID: "user-syndic", ProfileID: "profile-syndic", Role: access.RoleSyndic}
	adminPrincipal  = Principal{UserID: "user-admin", ProfileID: "profile-admin", Role: access.RoleAdmin}
)

func TestProfileService_ListAndGet(t *testing.T) {
	t.Parallel()

	svc := NewProfileServiceWithLogger(profileFixtures(), nil, nil, discardLogger())
	ctx := context.Background()

	if _, err := svc.ListProfiles(ctx, tenantPrincipal); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected tenants to be refused, got %v", err)
	}

	profiles, err := svc.ListProfiles(ctx, syndicPrincipal)
	if err != nil {
		t.Fatalf("ListProfiles failed: %v", err)
	}
	if len(profiles) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(profiles))
	}

	if _, err := svc.GetProfile(ctx, tenantPrincipal, "profile-1"); err != nil {
		t.Fatalf("expected own profile to be readable, got %v", err)
	}
	if _, err := svc.GetProfile(ctx, tenantPrincipal, "profile-admin"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected other profiles to be hidden from tenants, got %v", err)
	}
	if _, err := svc.GetProfile(ctx, adminPrincipal, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProfileService_ChangeRole(t *testing.T) {
	t.Parallel()

	t.Run("admin promotes and sessions are revoked", func(t *testing.T) {
		t.Parallel()

		accounts := profileFixtures()
		sessions := newSessionRepositoryStub()
		sessions.seed(Session{ID: "s1", UserID: "user-1", Token: "t1", ExpiresAt: authNow.Add(time.Hour)})
		svc := NewProfileServiceWithLogger(accounts, sessions, fixedClock(authNow), discardLogger())

		profile, err := svc.ChangeRole(context.Background(), ChangeRoleParams{Principal: adminPrincipal, ProfileID: "profile-1", Role: access.RoleOwner})
		if err != nil {
			t.Fatalf("ChangeRole failed: %v", err)
		}
		if profile.Role != access.RoleOwner {
			t.Fatalf("expected role owner, got %s", profile.Role)
		}
		if len(sessions.userRevocations) != 1 || sessions.userRevocations[0] != "user-1" {
			t.Fatalf("expected sessions of user-1 to be revoked, got %v", sessions.userRevocations)
		}
		session, _ := sessions.GetSession(context.Background(), "t1")
		if session.RevokedAt == nil {
			t.Fatalf("expected session to carry revocation time")
		}
	})

	t.Run("same role is a no-op", func(t *testing.T) {
		t.Parallel()

		accounts := profileFixtures()
		sessions := newSessionRepositoryStub()
		svc := NewProfileServiceWithLogger(accounts, sessions, fixedClock(authNow), discardLogger())

		if _, err := svc.ChangeRole(context.Background(), ChangeRoleParams{Principal: adminPrincipal, ProfileID: "profile-1", Role: access.RoleTenant}); err != nil {
			t.Fatalf("ChangeRole failed: %v", err)
		}
		if len(accounts.updates) != 0 || len(sessions.userRevocations) != 0 {
			t.Fatalf("expected no writes, got %d updates and %d revocations", len(accounts.updates), len(sessions.userRevocations))
		}
	})

	t.Run("only admins change roles", func(t *testing.T) {
		t.Parallel()

		svc := NewProfileServiceWithLogger(profileFixtures(), nil, nil, discardLogger())
		_, err := svc.ChangeRole(context.Background(), ChangeRoleParams{Principal: syndicPrincipal, ProfileID: "profile-1", Role: access.RoleAdmin})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		t.Parallel()

		svc := NewProfileServiceWithLogger(profileFixtures(), nil, nil, discardLogger())
		_, err := svc.ChangeRole(context.Background(), ChangeRoleParams{Principal: adminPrincipal, ProfileID: "profile-1", Role: "janitor"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestProfileService_SetActive(t *testing.T) {
	t.Parallel()

	accounts := profileFixtures()
	sessions := newSessionRepositoryStub()
	svc := NewProfileServiceWithLogger(accounts, sessions, fixedClock(authNow), discardLogger())

	profile, err := svc.SetActive(context.Background(), SetActiveParams{Principal: adminPrincipal, ProfileID: "profile-1", Active: false})
	if err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	if profile.IsActive {
		t.Fatalf("expected profile to be disabled")
	}
	if len(sessions.userRevocations) != 1 {
		t.Fatalf("expected sessions to be revoked when disabling, got %v", sessions.userRevocations)
	}

	if _, err := svc.SetActive(context.Background(), SetActiveParams{Principal: adminPrincipal, ProfileID: "profile-1", Active: true}); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	if len(sessions.userRevocations) != 1 {
		t.Fatalf("expected enabling to leave sessions alone")
	}
}
