package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RubricTemplate is a named, versioned set of weighted scoring criteria.
// Multiple active templates may coexist; consumers that need "the" current
// template pick the most recently updated active one.
type RubricTemplate struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null;index" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	Version     int       `gorm:"not null;default:1" json:"version"`
	Active      bool      `gorm:"not null;default:false" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Criteria []RubricCriterion `gorm:"constraint:OnDelete:CASCADE" json:"criteria,omitempty"`
}

// BeforeCreate assigns a UUID when none was provided.
func (t *RubricTemplate) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// RubricCriterion is one weighted, bounded-range scoring dimension owned by a
// single template. Criteria carry no ordering beyond creation time.
type RubricCriterion struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TemplateID  uuid.UUID `gorm:"type:uuid;not null;index" json:"template_id"`
	Criterion   string    `gorm:"size:255;not null" json:"criterion"`
	Description *string   `gorm:"type:text" json:"description"`
	Weight      float64   `gorm:"not null;default:1" json:"weight"`
	MinScore    float64   `gorm:"not null;default:0" json:"min_score"`
	MaxScore    float64   `gorm:"not null;default:100" json:"max_score"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when none was provided.
func (c *RubricCriterion) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
