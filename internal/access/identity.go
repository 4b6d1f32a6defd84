package access

import "time"

// User is the opaque identity established by a successful sign-in.
type User struct {
	ID    string
	Email string
}

// Profile carries the resident attributes attached to a user. Role is fixed
// for the lifetime of a session.
type Profile struct {
	ID              string
	UserID          string
	FullName        string
	Email           string
	Phone           string
	Role            Role
	ApartmentNumber string
	BuildingID      string
	IsActive        bool
}

// ProfileFields are the profile attributes supplied during sign-up.
type ProfileFields struct {
	FullName        string
	Phone           string
	Role            Role
	ApartmentNumber string
	BuildingID      string
}

// Identity is what an IdentityProvider returns for an established session.
// Profile may be nil while the profile has not been loaded yet.
type Identity struct {
	Token     string
	ExpiresAt time.Time
	User      User
	Profile   *Profile
}

// State is a consistent snapshot of an AuthContext.
type State struct {
	User    *User
	Profile *Profile
	Loading bool
}

// Authenticated reports whether the snapshot carries a signed-in user.
func (s State) Authenticated() bool {
	return !s.Loading && s.User != nil
}

// Role returns the profile role, or the empty role when no profile is loaded.
func (s State) Role() Role {
	if s.Profile == nil {
		return ""
	}
	return s.Profile.Role
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func cloneProfile(p *Profile) *Profile {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
