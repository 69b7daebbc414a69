package types

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/promptform/promptform/pkg/model"
)

// FormSubmission is the durable record of one validated response. Rows are
// never updated; owners can only delete them.
type FormSubmission struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	FormID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"form_id"`
	Form        *Form          `gorm:"constraint:OnDelete:CASCADE;foreignKey:FormID;references:ID" json:"form,omitempty"`
	SchemaTitle string         `gorm:"column:schema_title;not null" json:"schema_title"`
	Answers     datatypes.JSON `gorm:"column:answers;not null" json:"answers"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
}

func (FormSubmission) TableName() string { return "form_submission" }

func (s *FormSubmission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// NewFormSubmission snapshots a pipeline submission into its storage shape.
func NewFormSubmission(formID uuid.UUID, submission model.Submission) (*FormSubmission, error) {
	answers, err := json.Marshal(submission.Answers)
	if err != nil {
		return nil, fmt.Errorf("types: encode answers: %w", err)
	}
	return &FormSubmission{
		FormID:      formID,
		SchemaTitle: submission.SchemaTitle,
		Answers:     datatypes.JSON(answers),
		CreatedAt:   submission.CreatedAt,
	}, nil
}

// AnswerMap decodes the stored answers.
func (s *FormSubmission) AnswerMap() (model.AnswerMap, error) {
	var answers model.AnswerMap
	if err := json.Unmarshal(s.Answers, &answers); err != nil {
		return nil, fmt.Errorf("types: decode answers for submission %s: %w", s.ID, err)
	}
	return answers, nil
}
