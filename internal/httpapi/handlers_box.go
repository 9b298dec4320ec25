package httpapi

import (
	"net/http"

	"github.com/lockboxhq/backend/internal/domain"
)

type boxHandlers struct {
	*Server
}

func (h boxHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req createBoxRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.logger, w, err)
		return
	}
	b, err := h.boxes.CreateBox(r.Context(), CallerID(r.Context()), "", req.Name, req.Description)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"box": b})
}

func (h boxHandlers) listOwned(w http.ResponseWriter, r *http.Request) {
	boxes, err := h.boxes.ListOwned(r.Context(), CallerID(r.Context()))
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"boxes": boxes})
}

func (h boxHandlers) getOwned(w http.ResponseWriter, r *http.Request) {
	b, err := h.boxes.GetOwned(r.Context(), r.PathValue("id"), CallerID(r.Context()))
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"box": b})
}

func (h boxHandlers) update(w http.ResponseWriter, r *http.Request) {
	var req updateBoxRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.logger, w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	b, err := h.boxes.UpdateBox(r.Context(), r.PathValue("id"), CallerID(r.Context()), in)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"box": b})
}

func (h boxHandlers) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.boxes.DeleteBox(r.Context(), r.PathValue("id"), CallerID(r.Context())); err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "box deleted"})
}

func (h boxHandlers) lock(w http.ResponseWriter, r *http.Request) {
	var req lockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.logger, w, err)
		return
	}
	b, err := h.boxes.Lock(r.Context(), r.PathValue("id"), CallerID(r.Context()), req.toInput())
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"box": b})
}

func (h boxHandlers) upsertGuardian(w http.ResponseWriter, r *http.Request) {
	var req guardianRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.logger, w, err)
		return
	}
	b, err := h.boxes.UpsertGuardian(r.Context(), r.PathValue("id"), CallerID(r.Context()), req.toDomain())
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	idx, _ := b.FindGuardian(req.ID, req.InvitationID)
	var g domain.Guardian
	if idx >= 0 {
		g = b.Guardians[idx]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"guardian": map[string]any{
			"id":           g.ID,
			"name":         g.Name,
			"status":       g.Status,
			"leadGuardian": g.LeadGuardian,
			"allGuardians": b.Guardians,
		},
	})
}

func (h boxHandlers) deleteGuardian(w http.ResponseWriter, r *http.Request) {
	guardianID := r.PathValue("guardianId")
	_, removed, err := h.boxes.DeleteGuardian(r.Context(), r.PathValue("id"), CallerID(r.Context()), guardianID, guardianID)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"guardian": removed})
}

func (h boxHandlers) upsertDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.logger, w, err)
		return
	}
	b, err := h.boxes.UpsertDocument(r.Context(), r.PathValue("id"), CallerID(r.Context()), domain.Document{ID: req.ID, Metadata: req.Metadata})
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document": map[string]any{
			"documents": b.Documents,
			"updatedAt": b.UpdatedAt,
		},
	})
}

func (h boxHandlers) deleteDocument(w http.ResponseWriter, r *http.Request) {
	_, removed, err := h.boxes.DeleteDocument(r.Context(), r.PathValue("id"), CallerID(r.Context()), r.PathValue("documentId"))
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document": removed})
}

func (h boxHandlers) listGuardian(w http.ResponseWriter, r *http.Request) {
	boxes, err := h.boxes.ListGuardianBoxes(r.Context(), CallerID(r.Context()))
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"boxes": boxes})
}

func (h boxHandlers) getGuardian(w http.ResponseWriter, r *http.Request) {
	b, err := h.boxes.GetGuardianBox(r.Context(), r.PathValue("id"), CallerID(r.Context()))
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"box": b})
}

func (h boxHandlers) fetchShard(w http.ResponseWriter, r *http.Request) {
	view, err := h.boxes.FetchShard(r.Context(), r.PathValue("id"), CallerID(r.Context()))
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"encryptedShard": view.EncryptedShard,
		"shardHash":      view.ShardHash,
		"shardFetchedAt": view.ShardFetchedAt,
		"shardThreshold": view.ShardThreshold,
		"totalShards":    view.TotalShards,
	})
}

func (h boxHandlers) acknowledgeShard(w http.ResponseWriter, r *http.Request) {
	result, err := h.boxes.AcknowledgeShard(r.Context(), r.PathValue("id"), CallerID(r.Context()))
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"shardFetchedAt": result.ShardFetchedAt,
		"totalShards":    result.TotalShards,
		"shardsFetched":  result.ShardsFetched,
	})
}

func (h boxHandlers) acceptShard(w http.ResponseWriter, r *http.Request) {
	result, err := h.boxes.AcceptShard(r.Context(), r.PathValue("id"), CallerID(r.Context()))
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"shardAcceptedAt": result.ShardAcceptedAt,
		"boxId":           result.BoxID,
		"boxName":         result.BoxName,
	})
}

func (h boxHandlers) respondToInvitation(w http.ResponseWriter, r *http.Request) {
	var req respondToInvitationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.logger, w, err)
		return
	}
	b, err := h.boxes.RespondToInvitation(r.Context(), r.PathValue("id"), CallerID(r.Context()), req.InvitationID, req.Accept)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"box": b})
}

func (h boxHandlers) requestUnlock(w http.ResponseWriter, r *http.Request) {
	var req requestUnlockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.logger, w, err)
		return
	}
	b, err := h.boxes.RequestUnlock(r.Context(), r.PathValue("id"), CallerID(r.Context()), req.Reason)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"box": b})
}

func (h boxHandlers) respondToUnlockRequest(w http.ResponseWriter, r *http.Request) {
	var req respondToUnlockRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.logger, w, err)
		return
	}
	b, err := h.boxes.RespondToUnlockRequest(r.Context(), r.PathValue("id"), CallerID(r.Context()), req.Approve)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"box": b})
}
