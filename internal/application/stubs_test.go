package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/condo-portal/internal/access"
	"github.com/example/condo-portal/internal/booking"
	"github.com/example/condo-portal/internal/persistence"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// plainVerifier compares passwords verbatim so tests skip argon2 work.
func plainVerifier(hash, password string) error {
	if hash == password {
		return nil
	}
	return ErrInvalidCredentials
}

func plainHasher(password string) (string, error) {
	return password, nil
}

func sequence(values ...string) func() string {
	var (
		mu   sync.Mutex
		next int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(values) {
			next++
			return fmt.Sprintf("generated-%d", next)
		}
		value := values[next]
		next++
		return value
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// accountStoreStub implements AccountStore and ProfileRepository for tests.
type accountStoreStub struct {
	mu        sync.Mutex
	accounts  map[string]UserCredentials
	err       error
	createErr error
	created   []NewAccount
	updates   []access.Profile
}

func newAccountStoreStub(accounts ...UserCredentials) *accountStoreStub {
	stub := &accountStoreStub{accounts: make(map[string]UserCredentials)}
	for _, account := range accounts {
		stub.accounts[account.User.ID] = account
	}
	return stub
}

func (a *accountStoreStub) GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return UserCredentials{}, a.err
	}
	for _, account := range a.accounts {
		if strings.EqualFold(account.User.Email, email) {
			return account, nil
		}
	}
	return UserCredentials{}, persistence.ErrNotFound
}

func (a *accountStoreStub) GetAccount(ctx context.Context, userID string) (access.User, access.Profile, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return access.User{}, access.Profile{}, a.err
	}
	account, ok := a.accounts[userID]
	if !ok {
		return access.User{}, access.Profile{}, persistence.ErrNotFound
	}
	return account.User, account.Profile, nil
}

func (a *accountStoreStub) CreateAccount(ctx context.Context, account NewAccount) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.createErr != nil {
		return a.createErr
	}
	for _, existing := range a.accounts {
		if strings.EqualFold(existing.User.Email, account.User.Email) {
			return fmt.Errorf("%w: users.email", persistence.ErrDuplicate)
		}
	}
	a.created = append(a.created, account)
	a.accounts[account.User.ID] = UserCredentials{User: account.User, Profile: account.Profile, PasswordHash: account.PasswordHash}
	return nil
}

func (a *accountStoreStub) ListProfiles(ctx context.Context) ([]access.Profile, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	profiles := make([]access.Profile, 0, len(a.accounts))
	for _, account := range a.accounts {
		profiles = append(profiles, account.Profile)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].FullName < profiles[j].FullName })
	return profiles, nil
}

func (a *accountStoreStub) GetProfile(ctx context.Context, id string) (access.Profile, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return access.Profile{}, a.err
	}
	for _, account := range a.accounts {
		if account.Profile.ID == id {
			return account.Profile, nil
		}
	}
	return access.Profile{}, persistence.ErrNotFound
}

func (a *accountStoreStub) UpdateProfile(ctx context.Context, profile access.Profile, updatedAt time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	account, ok := a.accounts[profile.UserID]
	if !ok {
		return persistence.ErrNotFound
	}
	account.Profile = profile
	a.accounts[profile.UserID] = account
	a.updates = append(a.updates, profile)
	return nil
}

// sessionRepositoryStub provides an in-memory implementation of SessionRepository for tests.
type sessionRepositoryStub struct {
	mu           sync.Mutex
	sessionsByID map[string]Session
	tokenToID    map[string]string

	createErr error
	getErr    error
	updateErr error
	revokeErr error
	deleteErr error

	deleteCalls     []time.Time
	userRevocations []string
}

func newSessionRepositoryStub() *sessionRepositoryStub {
	return &sessionRepositoryStub{
		sessionsByID: make(map[string]Session),
		tokenToID:    make(map[string]string),
	}
}

func (s *sessionRepositoryStub) seed(session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seedLocked(session)
}

func (s *sessionRepositoryStub) seedLocked(session Session) {
	s.sessionsByID[session.ID] = cloneSession(session)
	s.tokenToID[session.Token] = session.ID
}

func (s *sessionRepositoryStub) CreateSession(ctx context.Context, session Session) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return Session{}, s.createErr
	}
	s.seedLocked(session)
	return cloneSession(session), nil
}

func (s *sessionRepositoryStub) GetSession(ctx context.Context, token string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return Session{}, s.getErr
	}
	id, ok := s.tokenToID[token]
	if !ok {
		return Session{}, persistence.ErrNotFound
	}
	return cloneSession(s.sessionsByID[id]), nil
}

func (s *sessionRepositoryStub) UpdateSession(ctx context.Context, session Session) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return Session{}, s.updateErr
	}
	current, ok := s.sessionsByID[session.ID]
	if !ok {
		return Session{}, persistence.ErrNotFound
	}
	if current.Token != session.Token {
		delete(s.tokenToID, current.Token)
	}
	s.seedLocked(session)
	return cloneSession(session), nil
}

func (s *sessionRepositoryStub) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revokeErr != nil {
		return Session{}, s.revokeErr
	}
	id, ok := s.tokenToID[token]
	if !ok {
		return Session{}, persistence.ErrNotFound
	}
	session := s.sessionsByID[id]
	revoked := revokedAt.UTC()
	session.RevokedAt = &revoked
	session.UpdatedAt = revoked
	s.sessionsByID[id] = session
	return cloneSession(session), nil
}

func (s *sessionRepositoryStub) RevokeUserSessions(ctx context.Context, userID string, revokedAt time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revokeErr != nil {
		return 0, s.revokeErr
	}
	s.userRevocations = append(s.userRevocations, userID)
	count := 0
	for id, session := range s.sessionsByID {
		if session.UserID != userID || session.RevokedAt != nil {
			continue
		}
		revoked := revokedAt.UTC()
		session.RevokedAt = &revoked
		s.sessionsByID[id] = session
		count++
	}
	return count, nil
}

func (s *sessionRepositoryStub) DeleteExpiredSessions(ctx context.Context, reference time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	cutoff := reference.UTC()
	s.deleteCalls = append(s.deleteCalls, cutoff)
	removed := 0
	for id, session := range s.sessionsByID {
		if session.ExpiresAt.IsZero() {
			continue
		}
		if !session.ExpiresAt.After(cutoff) {
			delete(s.sessionsByID, id)
			delete(s.tokenToID, session.Token)
			removed++
		}
	}
	return removed, nil
}

func cloneSession(session Session) Session {
	clone := session
	if session.RevokedAt != nil {
		revoked := session.RevokedAt.UTC()
		clone.RevokedAt = &revoked
	}
	return clone
}

// areaRepositoryStub serves the default catalog from memory.
type areaRepositoryStub struct {
	mu      sync.Mutex
	areas   []booking.CommonArea
	extras  []booking.ExtraItem
	listErr error
	created []booking.CommonArea
	updated []booking.CommonArea
}

func newAreaRepositoryStub() *areaRepositoryStub {
	return &areaRepositoryStub{areas: booking.DefaultAreas(), extras: booking.DefaultExtras()}
}

func (a *areaRepositoryStub) ListAreas(ctx context.Context) ([]booking.CommonArea, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listErr != nil {
		return nil, a.listErr
	}
	return append([]booking.CommonArea(nil), a.areas...), nil
}

func (a *areaRepositoryStub) GetArea(ctx context.Context, id string) (booking.CommonArea, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, area := range a.areas {
		if area.ID == id {
			return area, nil
		}
	}
	return booking.CommonArea{}, persistence.ErrNotFound
}

func (a *areaRepositoryStub) CreateArea(ctx context.Context, area booking.CommonArea, createdAt time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, existing := range a.areas {
		if existing.ID == area.ID {
			return persistence.ErrDuplicate
		}
	}
	a.areas = append(a.areas, area)
	a.created = append(a.created, area)
	return nil
}

func (a *areaRepositoryStub) UpdateArea(ctx context.Context, area booking.CommonArea, updatedAt time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, existing := range a.areas {
		if existing.ID == area.ID {
			a.areas[i] = area
			a.updated = append(a.updated, area)
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (a *areaRepositoryStub) ListExtraItems(ctx context.Context) ([]booking.ExtraItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listErr != nil {
		return nil, a.listErr
	}
	return append([]booking.ExtraItem(nil), a.extras...), nil
}

// reservationRepositoryStub keeps reservations in insertion order.
type reservationRepositoryStub struct {
	mu        sync.Mutex
	records   []booking.Record
	listCalls int
	createErr error
	updateErr error
}

func (r *reservationRepositoryStub) CreateReservation(ctx context.Context, record booking.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.records = append(r.records, record)
	return nil
}

func (r *reservationRepositoryStub) GetReservation(ctx context.Context, id string) (booking.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.ID == id {
			return record, nil
		}
	}
	return booking.Record{}, persistence.ErrNotFound
}

func (r *reservationRepositoryStub) ListReservations(ctx context.Context, filter ReservationFilter) ([]booking.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	var out []booking.Record
	for _, record := range r.records {
		if filter.ResidentID != "" && record.ResidentID != filter.ResidentID {
			continue
		}
		if filter.AreaID != "" && record.AreaID != filter.AreaID {
			continue
		}
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		if filter.From != nil && record.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && record.Date.After(*filter.To) {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func (r *reservationRepositoryStub) UpdateReservationStatus(ctx context.Context, id string, status booking.ReservationStatus, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	for i := range r.records {
		if r.records[i].ID == id {
			r.records[i].Status = status
			r.records[i].UpdatedAt = updatedAt
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (r *reservationRepositoryStub) status(id string) booking.ReservationStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.ID == id {
			return record.Status
		}
	}
	return ""
}

func makeRecord(id, resident, area string, date booking.Date, start, end int, status booking.ReservationStatus) booking.Record {
	return booking.Record{
		ID:            id,
		ResidentID:    resident,
		AreaID:        area,
		Date:          date,
		StartTime:     booking.NewTimeOfDay(start, 0),
		EndTime:       booking.NewTimeOfDay(end, 0),
		GuestCount:    10,
		Status:        status,
		PaymentMethod: booking.PaymentPix,
		PaymentStatus: booking.PaymentPending,
		TotalAmount:   decimal.Zero,
	}
}
