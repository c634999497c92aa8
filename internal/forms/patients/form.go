// Package patients holds the patient intake form: two fields, derived validity,
// and the mount, submit and clear actions, independent of how the form is drawn.
package patients

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"patient-intake-service/internal/domain/dtos"
	"patient-intake-service/internal/logging"
	"patient-intake-service/internal/services"

	"go.uber.org/zap"
)

// Field names a form input.
type Field string

const (
	FieldName  Field = "name"
	FieldEmail Field = "email"
)

const (
	// SubmitHintInvalid is the submit button title while the form cannot be sent.
	SubmitHintInvalid = "Preencha os campos corretamente"
	// SubmitHintReady is the submit button title once every field is valid.
	SubmitHintReady = "Cadastrar paciente"
)

var (
	ErrFormInvalid  = errors.New("form is not valid")
	ErrUnknownField = errors.New("unknown form field")
)

// FormState is the form's field values and derived validity.
type FormState struct {
	Name    string
	Email   string
	IsValid bool
}

// ButtonState describes how the submit button is drawn.
type ButtonState struct {
	Disabled bool
	Title    string
}

// Option configures a PatientForm.
type Option func(*PatientForm)

// WithEmailRule replaces the default StrictEmail rule.
func WithEmailRule(rule Rule) Option {
	return func(f *PatientForm) {
		if rule != nil {
			f.emailRule = rule
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(f *PatientForm) {
		f.logger = logging.OrNop(logger)
	}
}

// PatientForm is safe for concurrent use.
type PatientForm struct {
	store     services.PatientsStore
	nameRule  Rule
	emailRule Rule
	logger    *zap.Logger

	mu         sync.Mutex
	state      FormState
	revision   uint64
	mounted    bool
	patients   []dtos.PatientDTO
	lastResult *dtos.SubmitResult
}

func NewPatientForm(store services.PatientsStore, opts ...Option) *PatientForm {
	f := &PatientForm{
		store:     store,
		nameRule:  NonEmpty,
		emailRule: StrictEmail,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Mount loads the patient list. Only the first call reaches the store.
func (f *PatientForm) Mount(ctx context.Context) error {
	f.mu.Lock()
	if f.mounted {
		f.mu.Unlock()
		return nil
	}
	f.mounted = true
	f.mu.Unlock()

	patients, err := f.store.LoadPatients(ctx)
	if err != nil {
		f.logger.Warn("loading patients failed", zap.Error(err))
		return fmt.Errorf("mount patient form: %w", err)
	}

	f.mu.Lock()
	f.patients = patients
	f.mu.Unlock()
	return nil
}

// Reload fetches the patient list again, replacing the one loaded by Mount.
// On error the previous list is kept.
func (f *PatientForm) Reload(ctx context.Context) error {
	patients, err := f.store.LoadPatients(ctx)
	if err != nil {
		f.logger.Warn("reloading patients failed", zap.Error(err))
		return fmt.Errorf("reload patient list: %w", err)
	}

	f.mu.Lock()
	f.patients = patients
	f.mu.Unlock()
	return nil
}

// SetField updates one field and recomputes validity.
func (f *PatientForm) SetField(field Field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch field {
	case FieldName:
		f.state.Name = value
	case FieldEmail:
		f.state.Email = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	f.revision++
	f.recompute()
	return nil
}

func (f *PatientForm) SetName(value string) {
	_ = f.SetField(FieldName, value)
}

func (f *PatientForm) SetEmail(value string) {
	_ = f.SetField(FieldEmail, value)
}

// recompute must run with mu held.
func (f *PatientForm) recompute() {
	f.state.IsValid = f.nameRule(f.state.Name) && f.emailRule(f.state.Email)
}

func (f *PatientForm) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *PatientForm) SubmitButton() ButtonState {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.state.IsValid {
		return ButtonState{Disabled: true, Title: SubmitHintInvalid}
	}
	return ButtonState{Title: SubmitHintReady}
}

// Submit sends the current values to the store.
// The form is reset only when the store answers with a 2xx status and no field
// was changed or cleared while the store call was running.
func (f *PatientForm) Submit(ctx context.Context) (dtos.SubmitResult, error) {
	f.mu.Lock()
	if !f.state.IsValid {
		f.mu.Unlock()
		return dtos.SubmitResult{}, ErrFormInvalid
	}
	input := dtos.CreatePatientRequest{Name: f.state.Name, Email: f.state.Email}
	revision := f.revision
	f.mu.Unlock()

	result, err := f.store.AddPatient(ctx, input)
	if err != nil {
		f.logger.Error("adding patient failed", zap.String("email", input.Email), zap.Error(err))
		return dtos.SubmitResult{}, fmt.Errorf("submit patient form: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastResult = &result
	if result.OK() && f.revision == revision {
		f.state = FormState{}
		f.revision++
	}
	f.logger.Debug("patient form submitted", zap.Int("status", result.Status))
	return result, nil
}

// Clear empties both fields whatever the current state.
func (f *PatientForm) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = FormState{}
	f.revision++
	f.lastResult = nil
}

// Patients returns the list loaded by Mount.
func (f *PatientForm) Patients() []dtos.PatientDTO {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dtos.PatientDTO(nil), f.patients...)
}

// LastResult returns the answer to the latest submit, if any.
func (f *PatientForm) LastResult() (dtos.SubmitResult, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lastResult == nil {
		return dtos.SubmitResult{}, false
	}
	return *f.lastResult, true
}
