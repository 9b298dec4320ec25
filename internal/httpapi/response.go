package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/lockboxhq/backend/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a core error to its HTTP status and writes a
// uniform {"error": "..."} body. Internal errors log the cause but never
// leak it to the client.
func writeError(logger zerolog.Logger, w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	if kind == domain.KindInternal {
		logger.Error().Err(err).Msg("internal error handling request")
		writeJSON(w, kind.HTTPStatus(), map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, kind.HTTPStatus(), map[string]string{"error": err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return domain.BadRequest("invalid request body: %v", err)
	}
	return nil
}
