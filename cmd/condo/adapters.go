package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/condo-portal/internal/access"
	"github.com/example/condo-portal/internal/application"
	"github.com/example/condo-portal/internal/booking"
	"github.com/example/condo-portal/internal/persistence"
)

// identityProvider exposes the AuthService as the access.IdentityProvider
// behind every request's AuthContext.
type identityProvider struct {
	auth   *application.AuthService
	tokens *sessionTokens
}

func newIdentityProvider(auth *application.AuthService, tokens *sessionTokens) *identityProvider {
	return &identityProvider{auth: auth, tokens: tokens}
}

func (p *identityProvider) SignIn(ctx context.Context, email, password string) (access.Identity, error) {
	result, err := p.auth.Authenticate(ctx, application.AuthenticateParams{Email: email, Password: password})
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			return access.Identity{}, access.ErrInvalidCredentials
		}
		return access.Identity{}, err
	}
	profile := result.Profile
	return access.Identity{
		Token:     result.Session.Token,
		ExpiresAt: result.Session.ExpiresAt,
		User:      result.User,
		Profile:   &profile,
	}, nil
}

func (p *identityProvider) SignUp(ctx context.Context, email, password string, fields access.ProfileFields) error {
	_, err := p.auth.Register(ctx, application.RegisterParams{Email: email, Password: password, Fields: fields})
	if errors.Is(err, application.ErrAlreadyExists) {
		return access.ErrAlreadyRegistered
	}
	return err
}

func (p *identityProvider) SignOut(ctx context.Context, token string) error {
	err := p.auth.RevokeSession(ctx, token)
	if errors.Is(err, application.ErrInvalidCredentials) {
		return nil
	}
	return err
}

// Resolve reports any session that can no longer be used as invalid
// credentials so the AuthContext settles as signed out. That includes a
// signed token whose row was already pruned.
func (p *identityProvider) Resolve(ctx context.Context, token string) (access.Identity, error) {
	if p.tokens != nil && !p.tokens.Valid(token) {
		return access.Identity{}, access.ErrInvalidCredentials
	}
	identity, err := p.auth.ResolveSession(ctx, token)
	switch {
	case err == nil:
	case errors.Is(err, application.ErrInvalidCredentials),
		errors.Is(err, application.ErrUnauthorized),
		errors.Is(err, application.ErrSessionExpired),
		errors.Is(err, application.ErrSessionRevoked),
		errors.Is(err, application.ErrAccountDisabled),
		errors.Is(err, application.ErrNotFound):
		return access.Identity{}, access.ErrInvalidCredentials
	default:
		return access.Identity{}, err
	}
	profile := identity.Profile
	return access.Identity{
		Token:     identity.Session.Token,
		ExpiresAt: identity.Session.ExpiresAt,
		User:      identity.User,
		Profile:   &profile,
	}, nil
}

// accountStoreAdapter serves both the AuthService and the ProfileService.
type accountStoreAdapter struct {
	repo persistence.AccountRepository
}

func newAccountStoreAdapter(repo persistence.AccountRepository) *accountStoreAdapter {
	return &accountStoreAdapter{repo: repo}
}

func (a *accountStoreAdapter) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	user, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, err
	}
	profile, err := a.repo.GetProfileByUserID(ctx, user.ID)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return application.UserCredentials{
		User:         toAccessUser(user),
		Profile:      toAccessProfile(profile),
		PasswordHash: user.PasswordHash,
	}, nil
}

func (a *accountStoreAdapter) GetAccount(ctx context.Context, userID string) (access.User, access.Profile, error) {
	user, err := a.repo.GetUser(ctx, userID)
	if err != nil {
		return access.User{}, access.Profile{}, err
	}
	profile, err := a.repo.GetProfileByUserID(ctx, user.ID)
	if err != nil {
		return access.User{}, access.Profile{}, err
	}
	return toAccessUser(user), toAccessProfile(profile), nil
}

func (a *accountStoreAdapter) CreateAccount(ctx context.Context, account application.NewAccount) error {
	profile := toPersistenceProfile(account.Profile)
	profile.CreatedAt = account.CreatedAt
	profile.UpdatedAt = account.CreatedAt
	return a.repo.CreateAccount(ctx, persistence.Account{
		User: persistence.User{
			ID:           account.User.ID,
			Email:        account.User.Email,
			PasswordHash: account.PasswordHash,
			CreatedAt:    account.CreatedAt,
			UpdatedAt:    account.CreatedAt,
		},
		Profile: profile,
	})
}

func (a *accountStoreAdapter) ListProfiles(ctx context.Context) ([]access.Profile, error) {
	stored, err := a.repo.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	profiles := make([]access.Profile, 0, len(stored))
	for _, profile := range stored {
		profiles = append(profiles, toAccessProfile(profile))
	}
	return profiles, nil
}

func (a *accountStoreAdapter) GetProfile(ctx context.Context, id string) (access.Profile, error) {
	stored, err := a.repo.GetProfile(ctx, id)
	if err != nil {
		return access.Profile{}, err
	}
	return toAccessProfile(stored), nil
}

func (a *accountStoreAdapter) UpdateProfile(ctx context.Context, profile access.Profile, updatedAt time.Time) error {
	stored := toPersistenceProfile(profile)
	stored.UpdatedAt = updatedAt
	return a.repo.UpdateProfile(ctx, stored)
}

func toAccessUser(user persistence.User) access.User {
	return access.User{ID: user.ID, Email: user.Email}
}

func toAccessProfile(profile persistence.Profile) access.Profile {
	return access.Profile{
		ID:              profile.ID,
		UserID:          profile.UserID,
		FullName:        profile.FullName,
		Email:           profile.Email,
		Phone:           profile.Phone,
		Role:            access.Role(profile.Role),
		ApartmentNumber: profile.ApartmentNumber,
		BuildingID:      profile.BuildingID,
		IsActive:        profile.IsActive,
	}
}

func toPersistenceProfile(profile access.Profile) persistence.Profile {
	return persistence.Profile{
		ID:              profile.ID,
		UserID:          profile.UserID,
		FullName:        profile.FullName,
		Email:           profile.Email,
		Phone:           profile.Phone,
		Role:            string(profile.Role),
		ApartmentNumber: profile.ApartmentNumber,
		BuildingID:      profile.BuildingID,
		IsActive:        profile.IsActive,
	}
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) UpdateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.UpdateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeUserSessions(ctx context.Context, userID string, revokedAt time.Time) (int, error) {
	return a.repo.RevokeUserSessions(ctx, userID, revokedAt)
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) (int, error) {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:          session.ID,
		UserID:      session.UserID,
		Token:       session.Token,
		Fingerprint: session.Fingerprint,
		ExpiresAt:   session.ExpiresAt,
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
		RevokedAt:   cloneTimePtr(session.RevokedAt),
	}
}

func toApplicationSession(session persistence.Session) application.Session {
	return application.Session{
		ID:          session.ID,
		UserID:      session.UserID,
		Token:       session.Token,
		Fingerprint: session.Fingerprint,
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
		ExpiresAt:   session.ExpiresAt,
		RevokedAt:   cloneTimePtr(session.RevokedAt),
	}
}

type areaRepositoryAdapter struct {
	repo persistence.AreaRepository
}

func newAreaRepositoryAdapter(repo persistence.AreaRepository) *areaRepositoryAdapter {
	return &areaRepositoryAdapter{repo: repo}
}

func (a *areaRepositoryAdapter) ListAreas(ctx context.Context) ([]booking.CommonArea, error) {
	stored, err := a.repo.ListAreas(ctx)
	if err != nil {
		return nil, err
	}
	areas := make([]booking.CommonArea, 0, len(stored))
	for _, area := range stored {
		converted, err := toBookingArea(area)
		if err != nil {
			return nil, err
		}
		areas = append(areas, converted)
	}
	return areas, nil
}

func (a *areaRepositoryAdapter) GetArea(ctx context.Context, id string) (booking.CommonArea, error) {
	stored, err := a.repo.GetArea(ctx, id)
	if err != nil {
		return booking.CommonArea{}, err
	}
	return toBookingArea(stored)
}

func (a *areaRepositoryAdapter) CreateArea(ctx context.Context, area booking.CommonArea, createdAt time.Time) error {
	stored := toPersistenceArea(area)
	stored.CreatedAt = createdAt
	stored.UpdatedAt = createdAt
	return a.repo.CreateArea(ctx, stored)
}

func (a *areaRepositoryAdapter) UpdateArea(ctx context.Context, area booking.CommonArea, updatedAt time.Time) error {
	stored := toPersistenceArea(area)
	stored.UpdatedAt = updatedAt
	return a.repo.UpdateArea(ctx, stored)
}

func (a *areaRepositoryAdapter) ListExtraItems(ctx context.Context) ([]booking.ExtraItem, error) {
	stored, err := a.repo.ListExtraItems(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]booking.ExtraItem, 0, len(stored))
	for _, item := range stored {
		items = append(items, booking.ExtraItem{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Price:       item.Price,
		})
	}
	return items, nil
}

func toBookingArea(area persistence.Area) (booking.CommonArea, error) {
	opens, err := booking.ParseTimeOfDay(area.OpensAt)
	if err != nil {
		return booking.CommonArea{}, fmt.Errorf("area %s opens_at %q: %w", area.ID, area.OpensAt, err)
	}
	closes, err := booking.ParseTimeOfDay(area.ClosesAt)
	if err != nil {
		return booking.CommonArea{}, fmt.Errorf("area %s closes_at %q: %w", area.ID, area.ClosesAt, err)
	}
	return booking.CommonArea{
		ID:             area.ID,
		Name:           area.Name,
		Description:    area.Description,
		Capacity:       area.Capacity,
		HourlyRate:     area.HourlyRate,
		AvailableHours: booking.Hours{Start: opens, End: closes},
		Rules:          area.Rules,
		Amenities:      area.Amenities,
		Status:         booking.AreaStatus(area.Status),
	}, nil
}

func toPersistenceArea(area booking.CommonArea) persistence.Area {
	return persistence.Area{
		ID:          area.ID,
		Name:        area.Name,
		Description: area.Description,
		Capacity:    area.Capacity,
		HourlyRate:  area.HourlyRate,
		OpensAt:     area.AvailableHours.Start.String(),
		ClosesAt:    area.AvailableHours.End.String(),
		Rules:       area.Rules,
		Amenities:   area.Amenities,
		Status:      string(area.Status),
	}
}

type reservationRepositoryAdapter struct {
	repo persistence.ReservationRepository
}

func newReservationRepositoryAdapter(repo persistence.ReservationRepository) *reservationRepositoryAdapter {
	return &reservationRepositoryAdapter{repo: repo}
}

func (a *reservationRepositoryAdapter) CreateReservation(ctx context.Context, record booking.Record) error {
	return a.repo.CreateReservation(ctx, toPersistenceReservation(record))
}

func (a *reservationRepositoryAdapter) GetReservation(ctx context.Context, id string) (booking.Record, error) {
	stored, err := a.repo.GetReservation(ctx, id)
	if err != nil {
		return booking.Record{}, err
	}
	return toBookingRecord(stored)
}

func (a *reservationRepositoryAdapter) ListReservations(ctx context.Context, filter application.ReservationFilter) ([]booking.Record, error) {
	query := persistence.ReservationFilter{
		ProfileID: filter.ResidentID,
		AreaID:    filter.AreaID,
		Status:    string(filter.Status),
	}
	if filter.From != nil {
		query.FromDate = filter.From.String()
	}
	if filter.To != nil {
		query.ToDate = filter.To.String()
	}

	stored, err := a.repo.ListReservations(ctx, query)
	if err != nil {
		return nil, err
	}
	records := make([]booking.Record, 0, len(stored))
	for _, reservation := range stored {
		record, err := toBookingRecord(reservation)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (a *reservationRepositoryAdapter) UpdateReservationStatus(ctx context.Context, id string, status booking.ReservationStatus, updatedAt time.Time) error {
	return a.repo.UpdateReservationStatus(ctx, id, string(status), updatedAt)
}

func toPersistenceReservation(record booking.Record) persistence.Reservation {
	return persistence.Reservation{
		ID:              record.ID,
		ProfileID:       record.ResidentID,
		AreaID:          record.AreaID,
		Date:            record.Date.String(),
		StartTime:       record.StartTime.String(),
		EndTime:         record.EndTime.String(),
		GuestCount:      record.GuestCount,
		Purpose:         record.Purpose,
		SpecialRequests: record.SpecialRequests,
		PaymentMethod:   string(record.PaymentMethod),
		ExtraItemIDs:    record.ExtraItemIDs,
		Status:          string(record.Status),
		TotalAmount:     record.TotalAmount,
		PaymentStatus:   string(record.PaymentStatus),
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}

func toBookingRecord(reservation persistence.Reservation) (booking.Record, error) {
	date, err := booking.ParseDate(reservation.Date)
	if err != nil {
		return booking.Record{}, fmt.Errorf("reservation %s date %q: %w", reservation.ID, reservation.Date, err)
	}
	start, err := booking.ParseTimeOfDay(reservation.StartTime)
	if err != nil {
		return booking.Record{}, fmt.Errorf("reservation %s start_time %q: %w", reservation.ID, reservation.StartTime, err)
	}
	end, err := booking.ParseTimeOfDay(reservation.EndTime)
	if err != nil {
		return booking.Record{}, fmt.Errorf("reservation %s end_time %q: %w", reservation.ID, reservation.EndTime, err)
	}
	return booking.Record{
		ID:              reservation.ID,
		ResidentID:      reservation.ProfileID,
		ResidentName:    reservation.ResidentName,
		AreaID:          reservation.AreaID,
		AreaName:        reservation.AreaName,
		Date:            date,
		StartTime:       start,
		EndTime:         end,
		GuestCount:      reservation.GuestCount,
		Purpose:         reservation.Purpose,
		SpecialRequests: reservation.SpecialRequests,
		PaymentMethod:   booking.PaymentMethod(reservation.PaymentMethod),
		ExtraItemIDs:    reservation.ExtraItemIDs,
		Status:          booking.ReservationStatus(reservation.Status),
		TotalAmount:     reservation.TotalAmount,
		PaymentStatus:   booking.PaymentStatus(reservation.PaymentStatus),
		CreatedAt:       reservation.CreatedAt,
		UpdatedAt:       reservation.UpdatedAt,
	}, nil
}

func cloneTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}
