package httpapi

import (
	"net/http"

	"github.com/lockboxhq/backend/internal/domain"
)

type pushTokenHandlers struct {
	*Server
}

// register validates and upserts the caller's push token.
func (h pushTokenHandlers) register(w http.ResponseWriter, r *http.Request) {
	callerID := CallerID(r.Context())
	if callerID == "" {
		writeError(h.logger, w, domain.Unauthorized("caller identity required"))
		return
	}

	var req registerPushTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.logger, w, err)
		return
	}

	platform := domain.Platform(req.Platform)
	if err := h.pushValidator(platform, req.Token); err != nil {
		writeError(h.logger, w, err)
		return
	}

	token := &domain.PushToken{
		UserID:    callerID,
		Token:     req.Token,
		Platform:  platform,
		UpdatedAt: h.now(),
	}
	if err := h.pushTokens.Save(r.Context(), token); err != nil {
		writeError(h.logger, w, domain.Internal("failed to store push token", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "push token registered"})
}
