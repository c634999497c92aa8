package services

import (
	"context"

	"patient-intake-service/internal/domain/dtos"
)

// PatientsStore is what the intake form needs from the data layer.
// PatientServiceImpl is the production implementation; tests inject spies.
type PatientsStore interface {
	// LoadPatients returns the registered patients.
	LoadPatients(ctx context.Context) ([]dtos.PatientDTO, error)
	// AddPatient registers a patient. Business rejections (invalid data, duplicate email)
	// come back as a non-2xx SubmitResult with a nil error; the error is reserved for infrastructure failures.
	AddPatient(ctx context.Context, input dtos.CreatePatientRequest) (dtos.SubmitResult, error)
}

// PatientServiceContract is the full patient service surface.
type PatientServiceContract interface {
	PatientsStore
	// GetPatient returns one patient by ID.
	GetPatient(ctx context.Context, id string) (dtos.PatientDTO, error)
	// DeletePatient removes a patient, freeing its email for a new registration.
	DeletePatient(ctx context.Context, id string) error
}
