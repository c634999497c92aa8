package dtos

import (
	"time"

	"github.com/google/uuid"

	"patient-intake-service/internal/domain/entities"
)

type PatientDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPatientDTO copies the API-visible fields of a patient entity.
func NewPatientDTO(p *entities.Patient) PatientDTO {
	return PatientDTO{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
