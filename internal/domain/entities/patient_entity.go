package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Patient represents a patient registered through the intake form.
type Patient struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" db:"name" gorm:"not null"`
	Email     string    `json:"email" db:"email" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"not null"`
}

// BeforeCreate assigns an ID when the caller did not set one.
// Postgres and sqlite both get the same UUIDs this way, no uuid_generate_v4 extension needed.
func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
