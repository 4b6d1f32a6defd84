package http

import (
	"log/slog"
	"net/http"

	"github.com/example/condo-portal/internal/access"
)

// NavigationHandler lists the sections visible to the caller's role.
type NavigationHandler struct {
	responder responder
	logger    *slog.Logger
}

func NewNavigationHandler(logger *slog.Logger) *NavigationHandler {
	base := defaultLogger(logger)
	return &NavigationHandler{responder: newResponder(base), logger: base}
}

func (h *NavigationHandler) List(w http.ResponseWriter, r *http.Request) {
	state := authState(r)
	sections := access.VisibleSections(state.Profile)
	handlerLogger(r.Context(), h.logger, "NavigationHandler", "List", "role", state.Role(), "sections", len(sections)).
		DebugContext(r.Context(), "navigation resolved")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, navigationResponse{Sections: toSectionResponses(sections)})
}

type sectionResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type navigationResponse struct {
	Sections []sectionResponse `json:"sections"`
}

func toSectionResponses(sections []access.Section) []sectionResponse {
	out := make([]sectionResponse, 0, len(sections))
	for _, section := range sections {
		out = append(out, sectionResponse{ID: string(section), Label: section.Label()})
	}
	return out
}
