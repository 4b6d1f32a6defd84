package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/condo-portal/internal/access"
	"github.com/example/condo-portal/internal/application"
)

var errBadRequestBody = errors.New("invalid request body")

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes a localized message for key. err is only logged.
func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, code string, key messageKey, err error) {
	if err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error_code", code, "error", err)
	}
	r.writeJSON(ctx, w, status, errorResponse{
		ErrorCode: code,
		Message:   translate(localeFromContext(ctx), key),
	})
}

func (r responder) writeBadRequest(ctx context.Context, w http.ResponseWriter, err error) {
	r.writeError(ctx, w, http.StatusBadRequest, "BAD_REQUEST", msgBadRequest, err)
}

func (r responder) writeValidation(ctx context.Context, w http.ResponseWriter, vErr *application.ValidationError) {
	loc := localeFromContext(ctx)
	resp := errorResponse{
		ErrorCode: "VALIDATION_FAILED",
		Message:   translate(loc, msgValidation),
	}
	if vErr != nil && len(vErr.Fields) > 0 {
		resp.Errors = make([]fieldErrorResponse, 0, len(vErr.Fields))
		resp.Fields = make(map[string]string, len(vErr.Fields))
		for _, field := range vErr.Fields {
			text := localizeFieldMessage(loc, field)
			resp.Errors = append(resp.Errors, fieldErrorResponse{Field: field.Field, Code: field.Code, Message: text})
			if _, exists := resp.Fields[field.Field]; !exists {
				resp.Fields[field.Field] = text
			}
		}
	}
	r.writeJSON(ctx, w, http.StatusUnprocessableEntity, resp)
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, "INTERNAL_ERROR", msgInternal, errors.New("unknown error"))
		return
	}

	var vErr *application.ValidationError
	switch {
	case errors.As(err, &vErr):
		r.writeValidation(ctx, w, vErr)
	case errors.Is(err, application.ErrInvalidCredentials), errors.Is(err, access.ErrInvalidCredentials):
		r.writeError(ctx, w, http.StatusUnauthorized, "AUTH_INVALID_CREDENTIALS", msgInvalidCredentials, nil)
	case errors.Is(err, application.ErrSessionExpired), errors.Is(err, application.ErrSessionRevoked):
		r.writeError(ctx, w, http.StatusUnauthorized, "AUTH_SESSION_EXPIRED", msgSessionExpired, nil)
	case errors.Is(err, application.ErrAccountDisabled):
		r.writeError(ctx, w, http.StatusForbidden, "AUTH_ACCOUNT_DISABLED", msgAccountDisabled, nil)
	case errors.Is(err, application.ErrUnauthorized):
		r.writeError(ctx, w, http.StatusForbidden, "AUTH_FORBIDDEN", msgForbidden, nil)
	case errors.Is(err, application.ErrNotFound):
		r.writeError(ctx, w, http.StatusNotFound, "NOT_FOUND", msgNotFound, nil)
	case errors.Is(err, access.ErrAlreadyRegistered):
		r.writeError(ctx, w, http.StatusConflict, "AUTH_ALREADY_REGISTERED", msgAlreadyRegistered, nil)
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeError(ctx, w, http.StatusConflict, "CONFLICT", msgConflict, nil)
	case errors.Is(err, application.ErrInvalidTransition):
		r.writeError(ctx, w, http.StatusConflict, "RESERVATION_INVALID_TRANSITION", msgInvalidTransition, nil)
	default:
		r.writeError(ctx, w, http.StatusInternalServerError, "INTERNAL_ERROR", msgInternal, err)
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type fieldErrorResponse struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	ErrorCode string               `json:"error_code,omitempty"`
	Message   string               `json:"message"`
	Errors    []fieldErrorResponse `json:"errors,omitempty"`
	Fields    map[string]string    `json:"fields,omitempty"`
}

// fieldInvalid builds a single-field validation error for request values
// that cannot be parsed before reaching a service.
func fieldInvalid(field, messageText string) *application.ValidationError {
	return &application.ValidationError{Fields: []application.FieldError{{
		Field:   field,
		Code:    "invalid",
		Message: messageText,
	}}}
}
