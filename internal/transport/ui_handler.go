package transport

import (
	"net/http"

	"eventease/backend/internal/service"
)

// UIConfigHandler serves the client UI configuration.
type UIConfigHandler struct {
	service service.UIConfigService
}

func NewUIConfigHandler(svc service.UIConfigService) *UIConfigHandler {
	return &UIConfigHandler{service: svc}
}

// handleGet returns the merged UI configuration
// @Summary UI Config
// @Description Compiled-in defaults deep-merged with the stored overrides
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /ui/config [get]
func (h *UIConfigHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.GetConfig(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}
