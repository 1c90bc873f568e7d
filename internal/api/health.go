package api

import (
	"net/http"

	"grimm.is/wingwifi/internal/brand"
	"grimm.is/wingwifi/internal/i18n"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.cfgErr != nil {
		WriteJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:  "error",
			Version: brand.Version,
			Error:   s.cfgErr.Error(),
		})
		return
	}
	WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: brand.Version})
}

// handleConfigError answers every page while the configuration is unusable.
func (s *Server) handleConfigError(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusServiceUnavailable,
		i18n.T(r.Context(), "Configuration error: %s", s.cfgErr), "")
}
