package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"
	"sync"
	"time"

	"patient-intake-service/internal/adapters"
	"patient-intake-service/internal/domain/dtos"
	"patient-intake-service/internal/domain/entities"
	"patient-intake-service/internal/domain/repositories"
	"patient-intake-service/internal/fhir/mappers"
	"patient-intake-service/internal/logging"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

const (
	MsgPatientAdded   = "Usuário adicionado com sucesso"
	MsgInvalidPatient = "Dados do paciente inválidos"
	MsgDuplicateEmail = "E-mail já cadastrado"
)

var (
	sanitizerOnce sync.Once
	sanitizer     *bluemonday.Policy
)

// inputSanitizer strips every tag from free-text input.
func inputSanitizer() *bluemonday.Policy {
	sanitizerOnce.Do(func() {
		sanitizer = bluemonday.StrictPolicy()
	})
	return sanitizer
}

// PatientServiceImpl implements PatientServiceContract.
type PatientServiceImpl struct {
	patientRepo  repositories.PatientRepositoryContract
	queueAdapter adapters.QueueAdapter
	validate     *validator.Validate
	logger       *zap.Logger
}

// NewPatientService creates a new instance of PatientServiceImpl.
// queueAdapter may be nil, in which case no registration events are published.
func NewPatientService(
	repo repositories.PatientRepositoryContract,
	queueAdapter adapters.QueueAdapter,
	logger *zap.Logger,
) PatientServiceContract {
	return &PatientServiceImpl{
		patientRepo:  repo,
		queueAdapter: queueAdapter,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		logger:       logging.OrNop(logger).Named("patient_service"),
	}
}

func (s *PatientServiceImpl) LoadPatients(ctx context.Context) ([]dtos.PatientDTO, error) {
	patients, err := s.patientRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to load patients", zap.Error(err))
		return nil, fmt.Errorf("load patients: %w", err)
	}

	out := make([]dtos.PatientDTO, 0, len(patients))
	for _, p := range patients {
		out = append(out, dtos.NewPatientDTO(p))
	}
	s.logger.Debug("patients loaded", zap.Int("count", len(out)))
	return out, nil
}

func (s *PatientServiceImpl) GetPatient(ctx context.Context, id string) (dtos.PatientDTO, error) {
	patientID, err := uuid.Parse(id)
	if err != nil {
		return dtos.PatientDTO{}, fmt.Errorf("invalid patient id %q: %w", id, repositories.ErrPatientNotFound)
	}
	patient, err := s.patientRepo.GetByID(ctx, patientID)
	if err != nil {
		return dtos.PatientDTO{}, err
	}
	return dtos.NewPatientDTO(patient), nil
}

func (s *PatientServiceImpl) DeletePatient(ctx context.Context, id string) error {
	patientID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid patient id %q: %w", id, repositories.ErrPatientNotFound)
	}
	if err := s.patientRepo.Delete(ctx, patientID); err != nil {
		if !errors.Is(err, repositories.ErrPatientNotFound) {
			s.logger.Error("failed to delete patient", zap.String("patient_id", id), zap.Error(err))
		}
		return err
	}
	s.logger.Info("patient deleted", zap.String("patient_id", id))
	return nil
}

func (s *PatientServiceImpl) AddPatient(ctx context.Context, input dtos.CreatePatientRequest) (dtos.SubmitResult, error) {
	req := dtos.CreatePatientRequest{
		Name:  cleanText(input.Name),
		Email: cleanText(input.Email),
	}

	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+":"+fe.Tag())
			}
			s.logger.Info("patient rejected by validation", zap.Strings("failures", fields))
		}
		return dtos.SubmitResult{Status: http.StatusBadRequest, Message: MsgInvalidPatient}, nil
	}

	existing, err := s.patientRepo.FindByEmail(ctx, req.Email)
	switch {
	case err == nil && existing != nil:
		s.logger.Info("duplicate patient email", zap.String("email", req.Email))
		return dtos.SubmitResult{Status: http.StatusConflict, Message: MsgDuplicateEmail}, nil
	case err != nil && !errors.Is(err, repositories.ErrPatientNotFound):
		s.logger.Error("email lookup failed", zap.String("email", req.Email), zap.Error(err))
		return dtos.SubmitResult{}, fmt.Errorf("check patient email: %w", err)
	}

	patient := &entities.Patient{Name: req.Name, Email: req.Email}
	if err := s.patientRepo.Create(ctx, patient); err != nil {
		s.logger.Error("failed to create patient", zap.String("email", req.Email), zap.Error(err))
		return dtos.SubmitResult{}, fmt.Errorf("create patient: %w", err)
	}
	s.logger.Info("patient added", zap.String("patient_id", patient.ID.String()), zap.String("email", patient.Email))

	s.publishRegistered(ctx, patient)

	return dtos.SubmitResult{Status: http.StatusOK, Message: MsgPatientAdded}, nil
}

// publishRegistered never fails the add: the patient is already stored.
func (s *PatientServiceImpl) publishRegistered(ctx context.Context, patient *entities.Patient) {
	if s.queueAdapter == nil {
		return
	}

	resource, err := mappers.MapPatientToFHIR(*patient)
	if err != nil {
		s.logger.Warn("could not map patient to FHIR", zap.String("patient_id", patient.ID.String()), zap.Error(err))
		return
	}

	event := PatientRegisteredEvent{
		EventID:      uuid.NewString(),
		PatientID:    patient.ID.String(),
		PatientFHIR:  resource,
		RegisteredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("could not encode registration event", zap.Error(err))
		return
	}

	if err := s.queueAdapter.Publish(ctx, PatientRegisteredQueue, payload); err != nil {
		s.logger.Warn("could not publish registration event",
			zap.String("event_id", event.EventID), zap.String("queue", PatientRegisteredQueue), zap.Error(err))
		return
	}
	s.logger.Debug("registration event published", zap.String("event_id", event.EventID))
}

func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(inputSanitizer().Sanitize(s)))
}
