package box

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/lockboxhq/backend/internal/domain"
	"github.com/lockboxhq/backend/internal/store"
)

// editableFieldsRequested reports whether in touches any of the fields I2
// freezes once a box is locked.
func (in UpdateBoxInput) editableFieldsRequested() bool {
	return in.Name != nil || in.Description != nil || in.UnlockInstructions.Present
}

// CreateBox makes a new, unlocked, guardian-less box owned by callerID.
func (s *Service) CreateBox(ctx context.Context, callerID, callerName, name, description string) (*domain.Box, error) {
	if callerID == "" {
		return nil, domain.Unauthorized("caller identity required")
	}
	if name == "" {
		return nil, domain.BadRequest("name is required")
	}

	now := s.now()
	b := &domain.Box{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		OwnerID:     callerID,
		OwnerName:   callerName,
		IsLocked:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     0,
		Documents:   []domain.Document{},
		Guardians:   []domain.Guardian{},
	}
	if err := s.store.Create(ctx, b); err != nil {
		return nil, domain.Internal("failed to store box", err)
	}
	return b, nil
}

// getOwned fetches id and checks ownership, collapsing store lookup errors
// into the right domain.Kind.
func (s *Service) getOwned(ctx context.Context, id, callerID string) (*domain.Box, error) {
	if callerID == "" {
		return nil, domain.Unauthorized("caller identity required")
	}
	b, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.NotFound("box not found")
		}
		return nil, domain.Internal("failed to look up box", err)
	}
	if b.OwnerID != callerID {
		return nil, domain.Forbidden("caller does not own this box")
	}
	return b, nil
}

// GetOwned returns box id, requiring callerID to be its owner.
func (s *Service) GetOwned(ctx context.Context, id, callerID string) (*domain.Box, error) {
	return s.getOwned(ctx, id, callerID)
}

// ListOwned returns every box owned by callerID.
func (s *Service) ListOwned(ctx context.Context, callerID string) ([]*domain.Box, error) {
	if callerID == "" {
		return nil, domain.Unauthorized("caller identity required")
	}
	boxes, err := s.store.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, domain.Internal("failed to list boxes", err)
	}
	return boxes, nil
}

// UpdateBox applies in to box id. is_locked may only move false→false
// (no-op); flipping to true goes through Lock, and flipping true→false is
// always rejected, matching I2.
func (s *Service) UpdateBox(ctx context.Context, id, callerID string, in UpdateBoxInput) (*domain.Box, error) {
	b, err := s.getOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if in.IsLocked != nil {
		if *in.IsLocked {
			return nil, domain.BadRequest("use the lock endpoint to lock a box")
		}
		if b.IsLocked {
			return nil, domain.BadRequest("a locked box cannot be unlocked")
		}
	}

	if b.IsLocked && in.editableFieldsRequested() {
		return nil, domain.BadRequest("box is locked; name/description/unlockInstructions are immutable")
	}

	updated := b.Clone()
	if in.Name != nil {
		updated.Name = *in.Name
	}
	if in.Description != nil {
		updated.Description = *in.Description
	}
	if in.UnlockInstructions.Present {
		updated.UnlockInstructions = in.UnlockInstructions.Value
	}
	updated.UpdatedAt = s.now()

	if err := s.store.Update(ctx, updated); err != nil {
		return nil, mapUpdateErr(err)
	}
	return updated, nil
}

// DeleteBox removes box id. Owner only.
func (s *Service) DeleteBox(ctx context.Context, id, callerID string) error {
	if _, err := s.getOwned(ctx, id, callerID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.NotFound("box not found")
		}
		return domain.Internal("failed to delete box", err)
	}
	return nil
}

// UpsertGuardian replaces the guardian matching g.ID (or appends if none
// matches) on an unlocked box.
func (s *Service) UpsertGuardian(ctx context.Context, id, callerID string, g domain.Guardian) (*domain.Box, error) {
	b, err := s.getOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	if b.IsLocked {
		return nil, domain.BadRequest("box is locked; guardians are immutable")
	}

	updated := b.Clone()
	if idx, ok := updated.FindGuardian(g.ID, g.InvitationID); ok {
		updated.Guardians[idx] = g
	} else {
		if g.AddedAt.IsZero() {
			g.AddedAt = s.now()
		}
		if g.Status == "" {
			g.Status = domain.GuardianInvited
		}
		updated.Guardians = append(updated.Guardians, g)
	}
	updated.UpdatedAt = s.now()

	if err := s.store.Update(ctx, updated); err != nil {
		return nil, mapUpdateErr(err)
	}
	return updated, nil
}

// DeleteGuardian removes the guardian matched by guardianID, falling back
// to invitationID, returning the removed record.
func (s *Service) DeleteGuardian(ctx context.Context, id, callerID, guardianID, invitationID string) (*domain.Box, *domain.Guardian, error) {
	b, err := s.getOwned(ctx, id, callerID)
	if err != nil {
		return nil, nil, err
	}
	if b.IsLocked {
		return nil, nil, domain.BadRequest("box is locked; guardians are immutable")
	}

	updated := b.Clone()
	idx, ok := updated.FindGuardian(guardianID, invitationID)
	if !ok {
		return nil, nil, domain.NotFound("guardian not found")
	}
	removed := updated.Guardians[idx]
	updated.Guardians = append(updated.Guardians[:idx], updated.Guardians[idx+1:]...)
	updated.UpdatedAt = s.now()

	if err := s.store.Update(ctx, updated); err != nil {
		return nil, nil, mapUpdateErr(err)
	}
	return updated, &removed, nil
}

// UpsertDocument replaces the document matching d.ID (or appends) on an
// unlocked box.
func (s *Service) UpsertDocument(ctx context.Context, id, callerID string, d domain.Document) (*domain.Box, error) {
	b, err := s.getOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	if b.IsLocked {
		return nil, domain.BadRequest("box is locked; documents are immutable")
	}

	updated := b.Clone()
	found := false
	for i := range updated.Documents {
		if updated.Documents[i].ID == d.ID {
			updated.Documents[i] = d
			found = true
			break
		}
	}
	if !found {
		updated.Documents = append(updated.Documents, d)
	}
	updated.UpdatedAt = s.now()

	if err := s.store.Update(ctx, updated); err != nil {
		return nil, mapUpdateErr(err)
	}
	return updated, nil
}

// DeleteDocument removes the document matching documentID.
func (s *Service) DeleteDocument(ctx context.Context, id, callerID, documentID string) (*domain.Box, *domain.Document, error) {
	b, err := s.getOwned(ctx, id, callerID)
	if err != nil {
		return nil, nil, err
	}
	if b.IsLocked {
		return nil, nil, domain.BadRequest("box is locked; documents are immutable")
	}

	updated := b.Clone()
	idx := -1
	for i := range updated.Documents {
		if updated.Documents[i].ID == documentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, domain.NotFound("document not found")
	}
	removed := updated.Documents[idx]
	updated.Documents = append(updated.Documents[:idx], updated.Documents[idx+1:]...)
	updated.UpdatedAt = s.now()

	if err := s.store.Update(ctx, updated); err != nil {
		return nil, nil, mapUpdateErr(err)
	}
	return updated, &removed, nil
}

// mapUpdateErr turns a store.Update failure into the domain.Kind the HTTP
// surface expects: a version race is Conflict, not Internal.
func mapUpdateErr(err error) error {
	if errors.Is(err, store.ErrVersionConflict) {
		return domain.Conflict("box was modified concurrently; reload and retry")
	}
	if errors.Is(err, store.ErrNotFound) {
		return domain.NotFound("box not found")
	}
	return domain.Internal("failed to store box", err)
}
