package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/condo-portal/internal/access"
	"github.com/example/condo-portal/internal/application"
)

type profileService interface {
	ListProfiles(ctx context.Context, principal application.Principal) ([]access.Profile, error)
	GetProfile(ctx context.Context, principal application.Principal, id string) (access.Profile, error)
	ChangeRole(ctx context.Context, params application.ChangeRoleParams) (access.Profile, error)
	SetActive(ctx context.Context, params application.SetActiveParams) (access.Profile, error)
}

type ProfileHandler struct {
	service   profileService
	responder responder
	logger    *slog.Logger
}

func NewProfileHandler(service profileService, logger *slog.Logger) *ProfileHandler {
	base := defaultLogger(logger)
	return &ProfileHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ProfileHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ProfileHandler", operation, attrs...)
}

func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := principalFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, "AUTH_REQUIRED", msgAuthRequired, nil)
		return
	}

	profiles, err := h.service.ListProfiles(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "List", "actor_id", principal.UserID).ErrorContext(r.Context(), "failed to list profiles", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := make([]*profileResponse, 0, len(profiles))
	for i := range profiles {
		resp = append(resp, toProfileResponse(&profiles[i]))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := principalFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, "AUTH_REQUIRED", msgAuthRequired, nil)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	profile, err := h.service.GetProfile(r.Context(), principal, id)
	if err != nil {
		h.log(r.Context(), "Get", "actor_id", principal.UserID, "profile_id", id).ErrorContext(r.Context(), "failed to load profile", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toProfileResponse(&profile))
}

func (h *ProfileHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := principalFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, "AUTH_REQUIRED", msgAuthRequired, nil)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "ChangeRole", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode role payload", "error", err)
		h.responder.writeBadRequest(r.Context(), w, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "ChangeRole", "actor_id", principal.UserID, "profile_id", id, "role", req.Role)
	profile, err := h.service.ChangeRole(r.Context(), application.ChangeRoleParams{
		Principal: principal,
		ProfileID: id,
		Role:      access.Role(strings.TrimSpace(req.Role)),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to change role", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "role changed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toProfileResponse(&profile))
}

func (h *ProfileHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := principalFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, "AUTH_REQUIRED", msgAuthRequired, nil)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	var req activeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Active == nil {
		h.log(r.Context(), "SetActive", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode active payload", "error", err)
		h.responder.writeBadRequest(r.Context(), w, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "SetActive", "actor_id", principal.UserID, "profile_id", id, "active", *req.Active)
	profile, err := h.service.SetActive(r.Context(), application.SetActiveParams{
		Principal: principal,
		ProfileID: id,
		Active:    *req.Active,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to change profile status", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "profile status changed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toProfileResponse(&profile))
}

type roleRequest struct {
	Role string `json:"role"`
}

type activeRequest struct {
	Active *bool `json:"active"`
}
