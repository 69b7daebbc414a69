package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promptform/promptform/internal/logger"
	"github.com/promptform/promptform/internal/types"
)

type SubmissionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, submission *types.FormSubmission) (*types.FormSubmission, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.FormSubmission, error)
	ListByForm(ctx context.Context, tx *gorm.DB, formID uuid.UUID) ([]*types.FormSubmission, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type submissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	return &submissionRepo{db: db, log: baseLog.With("repo", "SubmissionRepo")}
}

func (sr *submissionRepo) Create(ctx context.Context, tx *gorm.DB, submission *types.FormSubmission) (*types.FormSubmission, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if err := transaction.WithContext(ctx).Create(submission).Error; err != nil {
		return nil, err
	}
	return submission, nil
}

func (sr *submissionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.FormSubmission, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var submission types.FormSubmission
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &submission, nil
}

func (sr *submissionRepo) ListByForm(ctx context.Context, tx *gorm.DB, formID uuid.UUID) ([]*types.FormSubmission, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.FormSubmission
	if err := transaction.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *submissionRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	result := transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.FormSubmission{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
