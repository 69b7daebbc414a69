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

// Form is one persisted, shareable Form Schema. The field list is stored as a
// JSON document; the schema is immutable after insert, only the accepting
// flag changes.
type Form struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner              *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:OwnerID;references:ID" json:"owner,omitempty"`
	Title              string         `gorm:"column:title;not null" json:"title"`
	Description        string         `gorm:"column:description" json:"description"`
	Fields             datatypes.JSON `gorm:"column:fields;not null" json:"fields"`
	AcceptingResponses bool           `gorm:"column:accepting_responses;not null;default:true" json:"accepting_responses"`
	CreatedAt          time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Form) TableName() string { return "form" }

func (f *Form) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// NewForm snapshots a validated FormSchema into its storage shape.
func NewForm(ownerID uuid.UUID, schema model.FormSchema) (*Form, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	fields, err := json.Marshal(schema.Fields)
	if err != nil {
		return nil, fmt.Errorf("types: encode schema fields: %w", err)
	}
	return &Form{
		OwnerID:            ownerID,
		Title:              schema.Title,
		Description:        schema.Description,
		Fields:             datatypes.JSON(fields),
		AcceptingResponses: true,
	}, nil
}

// Schema rebuilds the FormSchema consumed by renderers and the submission
// pipeline.
func (f *Form) Schema() (model.FormSchema, error) {
	var fields []model.FieldDefinition
	if err := json.Unmarshal(f.Fields, &fields); err != nil {
		return model.FormSchema{}, fmt.Errorf("types: decode schema fields for form %s: %w", f.ID, err)
	}
	return model.FormSchema{
		Title:       f.Title,
		Description: f.Description,
		Fields:      fields,
	}, nil
}
