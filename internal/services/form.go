package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/promptform/promptform/internal/logger"
	"github.com/promptform/promptform/internal/repos"
	"github.com/promptform/promptform/internal/types"
	"github.com/promptform/promptform/pkg/model"
)

// FormService owns form lifecycle and the ownership checks the core trusts
// its callers to have done.
type FormService interface {
	Create(ctx context.Context, ownerID uuid.UUID, schema model.FormSchema) (*types.Form, error)
	// Get fetches a form without an ownership check; it backs the public
	// shareable link.
	Get(ctx context.Context, id uuid.UUID) (*types.Form, error)
	GetOwned(ctx context.Context, ownerID, id uuid.UUID) (*types.Form, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]*types.Form, error)
	SetAccepting(ctx context.Context, ownerID, id uuid.UUID, accepting bool) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	ListSubmissions(ctx context.Context, ownerID, formID uuid.UUID) ([]*types.FormSubmission, error)
	DeleteSubmission(ctx context.Context, ownerID, submissionID uuid.UUID) error
}

type formService struct {
	forms       repos.FormRepo
	submissions repos.SubmissionRepo
	log         *logger.Logger
}

func NewFormService(forms repos.FormRepo, submissions repos.SubmissionRepo, baseLog *logger.Logger) FormService {
	return &formService{
		forms:       forms,
		submissions: submissions,
		log:         baseLog.With("service", "FormService"),
	}
}

func (s *formService) Create(ctx context.Context, ownerID uuid.UUID, schema model.FormSchema) (*types.Form, error) {
	if ownerID == uuid.Nil {
		return nil, ErrForbidden
	}
	form, err := types.NewForm(ownerID, schema)
	if err != nil {
		return nil, fmt.Errorf("services: build form: %w", err)
	}
	created, err := s.forms.Create(ctx, nil, form)
	if err != nil {
		return nil, fmt.Errorf("services: insert form: %w", err)
	}
	s.log.Info("form created", "form_id", created.ID.String(), "owner_id", ownerID.String())
	return created, nil
}

func (s *formService) Get(ctx context.Context, id uuid.UUID) (*types.Form, error) {
	form, err := s.forms.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("services: get form: %w", err)
	}
	return form, nil
}

func (s *formService) GetOwned(ctx context.Context, ownerID, id uuid.UUID) (*types.Form, error) {
	form, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if form.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return form, nil
}

func (s *formService) List(ctx context.Context, ownerID uuid.UUID) ([]*types.Form, error) {
	forms, err := s.forms.ListByOwner(ctx, nil, ownerID)
	if err != nil {
		return nil, fmt.Errorf("services: list forms: %w", err)
	}
	return forms, nil
}

func (s *formService) SetAccepting(ctx context.Context, ownerID, id uuid.UUID, accepting bool) error {
	if _, err := s.GetOwned(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.forms.SetAcceptingResponses(ctx, nil, id, accepting); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("services: set accepting: %w", err)
	}
	return nil
}

func (s *formService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.GetOwned(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.forms.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("services: delete form: %w", err)
	}
	return nil
}

func (s *formService) ListSubmissions(ctx context.Context, ownerID, formID uuid.UUID) ([]*types.FormSubmission, error) {
	if _, err := s.GetOwned(ctx, ownerID, formID); err != nil {
		return nil, err
	}
	subs, err := s.submissions.ListByForm(ctx, nil, formID)
	if err != nil {
		return nil, fmt.Errorf("services: list submissions: %w", err)
	}
	return subs, nil
}

func (s *formService) DeleteSubmission(ctx context.Context, ownerID, submissionID uuid.UUID) error {
	sub, err := s.submissions.GetByID(ctx, nil, submissionID)
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("services: get submission: %w", err)
	}
	// Ownership is transitive through the parent form.
	if _, err := s.GetOwned(ctx, ownerID, sub.FormID); err != nil {
		return err
	}
	if err := s.submissions.Delete(ctx, nil, submissionID); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("services: delete submission: %w", err)
	}
	return nil
}
