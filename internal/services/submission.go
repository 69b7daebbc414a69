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
	"github.com/promptform/promptform/pkg/submit"
)

// SubmissionService accepts a public response to a form: it enforces the
// accepting flag, then drives the validation pipeline with the repo as its
// store. Validation failures come back as *submit.ValidationError so the
// handler can surface per-field messages.
type SubmissionService interface {
	Submit(ctx context.Context, formID uuid.UUID, answers model.AnswerMap) (*types.FormSubmission, error)
}

type submissionService struct {
	forms       repos.FormRepo
	submissions repos.SubmissionRepo
	log         *logger.Logger
}

func NewSubmissionService(forms repos.FormRepo, submissions repos.SubmissionRepo, baseLog *logger.Logger) SubmissionService {
	return &submissionService{
		forms:       forms,
		submissions: submissions,
		log:         baseLog.With("service", "SubmissionService"),
	}
}

func (s *submissionService) Submit(ctx context.Context, formID uuid.UUID, answers model.AnswerMap) (*types.FormSubmission, error) {
	form, err := s.forms.GetByID(ctx, nil, formID)
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("services: get form: %w", err)
	}
	if !form.AcceptingResponses {
		return nil, ErrFormClosed
	}

	schema, err := form.Schema()
	if err != nil {
		return nil, fmt.Errorf("services: %w", err)
	}

	store := &repoStore{ctxRepo: s.submissions, formID: form.ID}
	pipeline := submit.NewPipeline(store)
	if _, err := pipeline.Submit(ctx, form.ID.String(), schema, answers); err != nil {
		return nil, err
	}

	s.log.Info("submission stored",
		"form_id", form.ID.String(),
		"submission_id", store.created.ID.String(),
	)
	return store.created, nil
}

// repoStore adapts SubmissionRepo to the pipeline's Store for a single form,
// capturing the row it inserts.
type repoStore struct {
	ctxRepo repos.SubmissionRepo
	formID  uuid.UUID
	created *types.FormSubmission
}

func (rs *repoStore) InsertSubmission(ctx context.Context, submission model.Submission) error {
	record, err := types.NewFormSubmission(rs.formID, submission)
	if err != nil {
		return err
	}
	created, err := rs.ctxRepo.Create(ctx, nil, record)
	if err != nil {
		return err
	}
	rs.created = created
	return nil
}
