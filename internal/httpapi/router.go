// Package httpapi is the thin request/response adaptor over the box and
// invitation cores, plus the push-token registration endpoint. It assumes an external auth middleware has already
// injected a caller identity into the request context via WithCallerID;
// this package never authenticates anyone itself.
package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lockboxhq/backend/internal/box"
	"github.com/lockboxhq/backend/internal/domain"
	"github.com/lockboxhq/backend/internal/invitation"
	"github.com/lockboxhq/backend/internal/push"
	"github.com/lockboxhq/backend/internal/store"
)

// Server holds the dependencies every handler needs.
type Server struct {
	boxes          *box.Service
	invitations    *invitation.Service
	pushTokens     store.PushTokenStore
	pushValidator  func(domain.Platform, string) error
	now            func() time.Time
	logger         zerolog.Logger
	removeBasePath bool
}

// New builds the HTTP handler for the whole box/invitation/push-token
// surface. A leading "/Prod" segment is stripped from every incoming request
// path when removeBasePath is true (the REMOVE_BASE_PATH=true flag).
func New(boxSvc *box.Service, invSvc *invitation.Service, pushTokens store.PushTokenStore, logger zerolog.Logger, removeBasePath bool) http.Handler {
	s := &Server{
		boxes:          boxSvc,
		invitations:    invSvc,
		pushTokens:     pushTokens,
		pushValidator:  push.ValidateRegistration,
		now:            time.Now,
		logger:         logger,
		removeBasePath: removeBasePath,
	}

	mux := http.NewServeMux()
	bh := boxHandlers{s}
	ih := invitationHandlers{s}
	ph := pushTokenHandlers{s}

	mux.HandleFunc("POST /boxes/owned", bh.create)
	mux.HandleFunc("GET /boxes/owned", bh.listOwned)
	mux.HandleFunc("GET /boxes/owned/{id}", bh.getOwned)
	mux.HandleFunc("PATCH /boxes/owned/{id}", bh.update)
	mux.HandleFunc("DELETE /boxes/owned/{id}", bh.delete)
	mux.HandleFunc("POST /boxes/owned/{id}/lock", bh.lock)
	mux.HandleFunc("PATCH /boxes/owned/{id}/guardian", bh.upsertGuardian)
	mux.HandleFunc("DELETE /boxes/owned/{id}/guardian/{guardianId}", bh.deleteGuardian)
	mux.HandleFunc("PATCH /boxes/owned/{id}/document", bh.upsertDocument)
	mux.HandleFunc("DELETE /boxes/owned/{id}/document/{documentId}", bh.deleteDocument)

	mux.HandleFunc("GET /boxes/guardian", bh.listGuardian)
	mux.HandleFunc("GET /boxes/guardian/{id}", bh.getGuardian)
	mux.HandleFunc("GET /boxes/guardian/{id}/shard", bh.fetchShard)
	mux.HandleFunc("PATCH /boxes/guardian/{id}/shard/ack", bh.acknowledgeShard)
	mux.HandleFunc("POST /boxes/guardian/{id}/shard/accept", bh.acceptShard)
	mux.HandleFunc("PATCH /boxes/guardian/{id}/request", bh.requestUnlock)
	mux.HandleFunc("PATCH /boxes/guardian/{id}/respond", bh.respondToUnlockRequest)
	mux.HandleFunc("PATCH /boxes/guardian/{id}/invitation", bh.respondToInvitation)

	mux.HandleFunc("POST /invitations/new", ih.create)
	mux.HandleFunc("GET /invitations/me", ih.listMine)
	mux.HandleFunc("GET /invitations/view/{code}", ih.viewByCode)
	mux.HandleFunc("PUT /invitations/handle", ih.handle)
	mux.HandleFunc("PATCH /invitations/{id}/refresh", ih.refresh)

	mux.HandleFunc("PUT /users/push-token", ph.register)

	return stripBasePath(removeBasePath, mux)
}

// stripBasePath removes the leading "/Prod" segment API Gateway-style
// deployments prepend, when REMOVE_BASE_PATH=true.
func stripBasePath(enabled bool, next http.Handler) http.Handler {
	if !enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rest, ok := strings.CutPrefix(r.URL.Path, "/Prod"); ok {
			if rest == "" {
				rest = "/"
			}
			r.URL.Path = rest
		}
		next.ServeHTTP(w, r)
	})
}
