package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/condo-portal/internal/access"
	"github.com/example/condo-portal/internal/application"
)

type sessionRefresher interface {
	RefreshSession(ctx context.Context, params application.RefreshSessionParams) (application.RefreshSessionResult, error)
}

// AuthHandler drives the per-request access.AuthContext for sign-in, sign-up
// and sign-out.
type AuthHandler struct {
	sessions  sessionRefresher
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(sessions sessionRefresher, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{sessions: sessions, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	auth, ok := access.FromContext(r.Context())
	if h == nil || !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "SignIn", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode sign-in request", "error", err)
		h.responder.writeBadRequest(r.Context(), w, errBadRequestBody)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	logger := h.log(r.Context(), "SignIn", "email", email)

	if err := auth.SignIn(r.Context(), email, req.Password); err != nil {
		logger.ErrorContext(r.Context(), "sign-in rejected", "error", err, "error_kind", access.KindOf(err).String())
		if access.KindOf(err) == access.AuthErrorInvalidCredentials {
			h.responder.writeError(r.Context(), w, http.StatusUnauthorized, "AUTH_INVALID_CREDENTIALS", msgInvalidCredentials, nil)
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	token, expiresAt := auth.Token(), auth.ExpiresAt()
	setSessionCookie(w, token, expiresAt)
	w.Header().Set("X-Session-Token", token)

	state := auth.Current()
	logger.With("user_id", state.User.ID).InfoContext(r.Context(), "user signed in")

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, signInResponse{
		Token:     token,
		ExpiresAt: formatTimestamp(expiresAt),
		User:      toUserResponse(state.User),
		Profile:   toProfileResponse(state.Profile),
	})
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	auth, ok := access.FromContext(r.Context())
	if h == nil || !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "SignUp", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode sign-up request", "error", err)
		h.responder.writeBadRequest(r.Context(), w, errBadRequestBody)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	logger := h.log(r.Context(), "SignUp", "email", email, "role", req.Role)

	err := auth.SignUp(r.Context(), email, req.Password, access.ProfileFields{
		FullName:        strings.TrimSpace(req.FullName),
		Phone:           strings.TrimSpace(req.Phone),
		Role:            access.Role(strings.TrimSpace(req.Role)),
		ApartmentNumber: strings.TrimSpace(req.ApartmentNumber),
		BuildingID:      strings.TrimSpace(req.BuildingID),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "sign-up rejected", "error", err, "error_kind", access.KindOf(err).String())
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "account registered")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, signUpResponse{
		Email:   email,
		Message: translate(localeFromContext(r.Context()), msgRegistered),
	})
}

// SignOut ends the caller's session. It always clears the cookie.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "SignOut")
	clearSessionCookie(w)

	auth, ok := access.FromContext(r.Context())
	if !ok {
		h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
		return
	}
	if err := auth.SignOut(r.Context()); err != nil {
		logger.ErrorContext(r.Context(), "failed to end session", "error", err, "error_kind", access.KindOf(err).String())
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "session ended")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Session reports the resolved session of the caller.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := sessionResponse{Sections: []sectionResponse{}}
	auth, ok := access.FromContext(r.Context())
	if ok {
		state := auth.Current()
		resp.Loading = state.Loading
		resp.User = toUserResponse(state.User)
		resp.Profile = toProfileResponse(state.Profile)
		resp.Sections = toSectionResponses(access.VisibleSections(state.Profile))
		if state.Authenticated() {
			resp.ExpiresAt = formatTimestamp(auth.ExpiresAt())
		}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

// Refresh rotates the session token of a signed-in caller.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	auth, ok := access.FromContext(r.Context())
	if h == nil || h.sessions == nil || !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Refresh")
	result, err := h.sessions.RefreshSession(r.Context(), application.RefreshSessionParams{
		Token:       auth.Token(),
		Fingerprint: r.UserAgent(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to refresh session", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	setSessionCookie(w, result.Session.Token, result.Session.ExpiresAt)
	w.Header().Set("X-Session-Token", result.Session.Token)
	logger.With("user_id", result.Session.UserID).InfoContext(r.Context(), "session refreshed")

	h.responder.writeJSON(r.Context(), w, http.StatusOK, refreshResponse{
		Token:     result.Session.Token,
		ExpiresAt: formatTimestamp(result.Session.ExpiresAt),
	})
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	Token     string           `json:"token"`
	ExpiresAt string           `json:"expires_at"`
	User      *userResponse    `json:"user"`
	Profile   *profileResponse `json:"profile"`
}

type signUpRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	FullName        string `json:"full_name"`
	Phone           string `json:"phone"`
	Role            string `json:"role"`
	ApartmentNumber string `json:"apartment_number"`
	BuildingID      string `json:"building_id"`
}

type signUpResponse struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

type sessionResponse struct {
	User      *userResponse     `json:"user"`
	Profile   *profileResponse  `json:"profile"`
	Loading   bool              `json:"loading"`
	ExpiresAt string            `json:"expires_at,omitempty"`
	Sections  []sectionResponse `json:"sections"`
}

type refreshResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type profileResponse struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id"`
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	Role            string `json:"role"`
	RoleLabel       string `json:"role_label"`
	ApartmentNumber string `json:"apartment_number,omitempty"`
	BuildingID      string `json:"building_id,omitempty"`
	IsActive        bool   `json:"is_active"`
}

func toUserResponse(user *access.User) *userResponse {
	if user == nil {
		return nil
	}
	return &userResponse{ID: user.ID, Email: user.Email}
}

func toProfileResponse(profile *access.Profile) *profileResponse {
	if profile == nil {
		return nil
	}
	return &profileResponse{
		ID:              profile.ID,
		UserID:          profile.UserID,
		FullName:        profile.FullName,
		Email:           profile.Email,
		Phone:           profile.Phone,
		Role:            string(profile.Role),
		RoleLabel:       profile.Role.Label(),
		ApartmentNumber: profile.ApartmentNumber,
		BuildingID:      profile.BuildingID,
		IsActive:        profile.IsActive,
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     "session_token",
		Value:    token,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}
	if !expires.IsZero() {
		cookie.Expires = expires.UTC()
	}
	http.SetCookie(w, cookie)
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
	})
}

func extractTokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		const prefix = "Bearer "
		if strings.HasPrefix(header, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(header, prefix))
		}
	}
	if cookie, err := r.Cookie("session_token"); err == nil {
		return cookie.Value
	}
	return ""
}
