package repositories

import (
	"context"
	"errors"

	"patient-intake-service/internal/domain/entities"

	"github.com/google/uuid"
)

// ErrPatientNotFound is returned by lookups that match no row.
var ErrPatientNotFound = errors.New("patient not found")

type PatientRepositoryContract interface {
	Create(ctx context.Context, patient *entities.Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Patient, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByEmail(ctx context.Context, email string) (*entities.Patient, error)
	ListAll(ctx context.Context) ([]*entities.Patient, error)
}
