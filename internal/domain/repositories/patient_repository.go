package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"patient-intake-service/internal/domain/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PatientRepository is the gorm implementation of PatientRepositoryContract.
type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) PatientRepositoryContract {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) Create(ctx context.Context, patient *entities.Patient) error {
	patient.Email = normalizeEmail(patient.Email)
	if err := r.db.WithContext(ctx).Create(patient).Error; err != nil {
		return fmt.Errorf("create patient %q: %w", patient.Email, err)
	}
	return nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Patient, error) {
	var patient entities.Patient
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&patient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get patient %s: %w", id, err)
	}
	return &patient, nil
}

func (r *PatientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Patient{})
	if res.Error != nil {
		return fmt.Errorf("delete patient %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPatientNotFound
	}
	return nil
}

func (r *PatientRepository) FindByEmail(ctx context.Context, email string) (*entities.Patient, error) {
	var patient entities.Patient
	err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&patient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find patient by email: %w", err)
	}
	return &patient, nil
}

// ListAll returns every patient, oldest first.
func (r *PatientRepository) ListAll(ctx context.Context) ([]*entities.Patient, error) {
	var patients []*entities.Patient
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&patients).Error; err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
