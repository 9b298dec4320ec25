package httpapi

import "net/http"

type invitationHandlers struct {
	*Server
}

func (h invitationHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req createInvitationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.logger, w, err)
		return
	}
	inv, err := h.invitations.Create(r.Context(), CallerID(r.Context()), req.InvitedName, req.BoxID, req.IsLeadGuardian)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invitation": inv})
}

func (h invitationHandlers) listMine(w http.ResponseWriter, r *http.Request) {
	invs, err := h.invitations.ListMine(r.Context(), CallerID(r.Context()))
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, invs)
}

func (h invitationHandlers) viewByCode(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invitations.ViewByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invitation": inv})
}

func (h invitationHandlers) handle(w http.ResponseWriter, r *http.Request) {
	var req handleInvitationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.logger, w, err)
		return
	}
	inv, err := h.invitations.Handle(r.Context(), req.Code, CallerID(r.Context()))
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"boxId":          inv.BoxID,
		"invitationId":   inv.ID,
		"isLeadGuardian": inv.IsLeadGuardian,
	})
}

func (h invitationHandlers) refresh(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invitations.Refresh(r.Context(), r.PathValue("id"), CallerID(r.Context()))
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invitation": inv})
}
