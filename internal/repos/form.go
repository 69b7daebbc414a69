package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promptform/promptform/internal/logger"
	"github.com/promptform/promptform/internal/types"
)

// ErrNotFound is the repo-level miss every service maps to its own
// not-found kind.
var ErrNotFound = errors.New("repos: record not found")

type FormRepo interface {
	Create(ctx context.Context, tx *gorm.DB, form *types.Form) (*types.Form, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Form, error)
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.Form, error)
	SetAcceptingResponses(ctx context.Context, tx *gorm.DB, id uuid.UUID, accepting bool) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type formRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFormRepo(db *gorm.DB, baseLog *logger.Logger) FormRepo {
	return &formRepo{db: db, log: baseLog.With("repo", "FormRepo")}
}

func (fr *formRepo) Create(ctx context.Context, tx *gorm.DB, form *types.Form) (*types.Form, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	if err := transaction.WithContext(ctx).Create(form).Error; err != nil {
		return nil, err
	}
	return form, nil
}

func (fr *formRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Form, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var form types.Form
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&form).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &form, nil
}

func (fr *formRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.Form, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var results []*types.Form
	if err := transaction.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *formRepo) SetAcceptingResponses(ctx context.Context, tx *gorm.DB, id uuid.UUID, accepting bool) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.Form{}).
		Where("id = ?", id).
		Update("accepting_responses", accepting)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (fr *formRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	result := transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Form{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
