package patients

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"patient-intake-service/internal/domain/dtos"
	"patient-intake-service/internal/services"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ services.PatientsStore = (*PatientsStoreSpy)(nil)

// PatientsStoreSpy records every call made by the form.
type PatientsStoreSpy struct {
	mu              sync.Mutex
	LoadCalls       int
	AddCalls        []dtos.CreatePatientRequest
	LoadPatientsErr error
	Patients        []dtos.PatientDTO
	AddPatientFunc  func(input dtos.CreatePatientRequest) (dtos.SubmitResult, error)
}

func (s *PatientsStoreSpy) LoadPatients(ctx context.Context) ([]dtos.PatientDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LoadCalls++
	return s.Patients, s.LoadPatientsErr
}

func (s *PatientsStoreSpy) AddPatient(ctx context.Context, input dtos.CreatePatientRequest) (dtos.SubmitResult, error) {
	s.mu.Lock()
	s.AddCalls = append(s.AddCalls, input)
	fn := s.AddPatientFunc
	s.mu.Unlock()
	if fn != nil {
		return fn(input)
	}
	return dtos.SubmitResult{Status: http.StatusOK, Message: "Usuário adicionado com sucesso"}, nil
}

func makeSut(t *testing.T, opts ...Option) (*PatientForm, *PatientsStoreSpy) {
	t.Helper()
	spy := &PatientsStoreSpy{}
	form := NewPatientForm(spy, opts...)
	require.NoError(t, form.Mount(context.Background()))
	return form, spy
}

func fillForm(form *PatientForm, name, email string) {
	form.SetName(name)
	form.SetEmail(email)
}

func TestPatientForm_InitialState(t *testing.T) {
	form, _ := makeSut(t)

	assert.Equal(t, FormState{Name: "", Email: "", IsValid: false}, form.State())
	assert.Equal(t, ButtonState{Disabled: true, Title: "Preencha os campos corretamente"}, form.SubmitButton())
}

func TestPatientForm_EnablesSubmitWhenValid(t *testing.T) {
	form, _ := makeSut(t)
	require.True(t, form.SubmitButton().Disabled)

	fillForm(form, "Tiago Dias", "tiago@teste.com")

	button := form.SubmitButton()
	assert.False(t, button.Disabled)
	assert.Equal(t, SubmitHintReady, button.Title)
	assert.True(t, form.State().IsValid)
}

func TestPatientForm_Validity(t *testing.T) {
	tests := []struct {
		name      string
		nameValue string
		email     string
		opts      []Option
		want      bool
	}{
		{"both filled", "Tiago Dias", "tiago@teste.com", nil, true},
		{"name missing", "", "tiago@teste.com", nil, false},
		{"email missing", "Tiago Dias", "", nil, false},
		{"name only spaces", "   ", "tiago@teste.com", nil, false},
		{"malformed email strict", "Tiago Dias", "tiago@", nil, false},
		{"malformed email non empty rule", "Tiago Dias", "tiago@", []Option{WithEmailRule(NonEmptyEmail)}, true},
		{"blank email non empty rule", "Tiago Dias", "  ", []Option{WithEmailRule(NonEmptyEmail)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form, _ := makeSut(t, tt.opts...)
			fillForm(form, tt.nameValue, tt.email)

			assert.Equal(t, tt.want, form.State().IsValid)
			assert.Equal(t, !tt.want, form.SubmitButton().Disabled)
		})
	}
}

func TestPatientForm_ValidityFollowsEveryChange(t *testing.T) {
	form, _ := makeSut(t)

	fillForm(form, "Tiago Dias", "tiago@teste.com")
	require.True(t, form.State().IsValid)

	form.SetName("")
	assert.False(t, form.State().IsValid)

	form.SetName("Tiago")
	assert.True(t, form.State().IsValid)
}

func TestPatientForm_ClearResetsFields(t *testing.T) {
	form, _ := makeSut(t)

	fillForm(form, "Tiago Dias", "tiago@teste.com")
	state := form.State()
	require.Equal(t, "Tiago Dias", state.Name)
	require.Equal(t, "tiago@teste.com", state.Email)

	form.Clear()

	assert.Equal(t, FormState{}, form.State())
	assert.True(t, form.SubmitButton().Disabled)
}

func TestPatientForm_ClearOnInvalidForm(t *testing.T) {
	form, _ := makeSut(t)
	form.SetName("Só nome")

	form.Clear()
	assert.Equal(t, FormState{}, form.State())
}

func TestPatientForm_MountLoadsPatientsOnce(t *testing.T) {
	form, spy := makeSut(t)
	assert.Equal(t, 1, spy.LoadCalls)

	require.NoError(t, form.Mount(context.Background()))
	assert.Equal(t, 1, spy.LoadCalls, "a second Mount must not reload")
}

func TestPatientForm_MountKeepsLoadedPatients(t *testing.T) {
	spy := &PatientsStoreSpy{Patients: []dtos.PatientDTO{{Name: "Ana", Email: "ana@teste.com"}}}
	form := NewPatientForm(spy)
	require.NoError(t, form.Mount(context.Background()))

	if diff := cmp.Diff(spy.Patients, form.Patients()); diff != "" {
		t.Errorf("Patients() mismatch (-want +got):\n%s", diff)
	}
}

func TestPatientForm_MountError(t *testing.T) {
	spy := &PatientsStoreSpy{LoadPatientsErr: errors.New("offline")}
	form := NewPatientForm(spy)

	err := form.Mount(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offline")

	form.SetName("Tiago Dias")
	assert.Equal(t, "Tiago Dias", form.State().Name, "fields stay usable after a failed load")
}

func TestPatientForm_SubmitCallsAddPatientWithValues(t *testing.T) {
	form, spy := makeSut(t)
	fillForm(form, "Tiago Dias", "tiago@teste.com")

	result, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.Status)

	want := []dtos.CreatePatientRequest{{Name: "Tiago Dias", Email: "tiago@teste.com"}}
	if diff := cmp.Diff(want, spy.AddCalls); diff != "" {
		t.Errorf("AddPatient calls mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, FormState{}, form.State(), "successful submit resets the form")
	last, ok := form.LastResult()
	require.True(t, ok)
	assert.Equal(t, "Usuário adicionado com sucesso", last.Message)
}

func TestPatientForm_SubmitKeepsEditsMadeWhileStoreRuns(t *testing.T) {
	form, spy := makeSut(t)
	started := make(chan struct{})
	release := make(chan struct{})
	spy.AddPatientFunc = func(input dtos.CreatePatientRequest) (dtos.SubmitResult, error) {
		close(started)
		<-release
		return dtos.SubmitResult{Status: http.StatusOK, Message: "Usuário adicionado com sucesso"}, nil
	}
	fillForm(form, "Tiago Dias", "tiago@teste.com")

	done := make(chan error, 1)
	go func() {
		_, err := form.Submit(context.Background())
		done <- err
	}()

	<-started
	fillForm(form, "Ana Souza", "ana@teste.com")
	close(release)
	require.NoError(t, <-done)

	state := form.State()
	assert.Equal(t, "Ana Souza", state.Name)
	assert.Equal(t, "ana@teste.com", state.Email)
	assert.True(t, state.IsValid)
	assert.Equal(t, []dtos.CreatePatientRequest{{Name: "Tiago Dias", Email: "tiago@teste.com"}}, spy.AddCalls)
}

func TestPatientForm_SubmitKeepsClearMadeWhileStoreRuns(t *testing.T) {
	form, spy := makeSut(t)
	started := make(chan struct{})
	release := make(chan struct{})
	spy.AddPatientFunc = func(input dtos.CreatePatientRequest) (dtos.SubmitResult, error) {
		close(started)
		<-release
		return dtos.SubmitResult{Status: http.StatusOK}, nil
	}
	fillForm(form, "Tiago Dias", "tiago@teste.com")

	done := make(chan error, 1)
	go func() {
		_, err := form.Submit(context.Background())
		done <- err
	}()

	<-started
	form.Clear()
	form.SetName("Ana")
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, "Ana", form.State().Name)
	assert.Equal(t, "", form.State().Email)
}

func TestPatientForm_ReloadReplacesPatients(t *testing.T) {
	form, spy := makeSut(t)
	require.Empty(t, form.Patients())

	spy.Patients = []dtos.PatientDTO{{Name: "Ana", Email: "ana@teste.com"}}
	require.NoError(t, form.Reload(context.Background()))

	assert.Equal(t, 2, spy.LoadCalls)
	if diff := cmp.Diff(spy.Patients, form.Patients()); diff != "" {
		t.Errorf("Patients() mismatch (-want +got):\n%s", diff)
	}

	spy.LoadPatientsErr = errors.New("offline")
	require.Error(t, form.Reload(context.Background()))
	assert.Len(t, form.Patients(), 1, "a failed reload keeps the previous list")
}

func TestPatientForm_SubmitInvalidNeverReachesStore(t *testing.T) {
	form, spy := makeSut(t)
	form.SetName("Tiago Dias")

	_, err := form.Submit(context.Background())
	assert.ErrorIs(t, err, ErrFormInvalid)
	assert.Empty(t, spy.AddCalls)
}

func TestPatientForm_SubmitRejectedKeepsFields(t *testing.T) {
	form, spy := makeSut(t)
	spy.AddPatientFunc = func(input dtos.CreatePatientRequest) (dtos.SubmitResult, error) {
		return dtos.SubmitResult{Status: http.StatusConflict, Message: "E-mail já cadastrado"}, nil
	}
	fillForm(form, "Tiago Dias", "tiago@teste.com")

	result, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, result.Status)
	assert.Equal(t, "Tiago Dias", form.State().Name)
	assert.True(t, form.State().IsValid)
}

func TestPatientForm_SubmitStoreError(t *testing.T) {
	form, spy := makeSut(t)
	spy.AddPatientFunc = func(input dtos.CreatePatientRequest) (dtos.SubmitResult, error) {
		return dtos.SubmitResult{}, errors.New("network down")
	}
	fillForm(form, "Tiago Dias", "tiago@teste.com")

	_, err := form.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "tiago@teste.com", form.State().Email)
	_, ok := form.LastResult()
	assert.False(t, ok)
}

func TestPatientForm_UnknownField(t *testing.T) {
	form, _ := makeSut(t)
	err := form.SetField(Field("phone"), "123")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestEmailRuleByName(t *testing.T) {
	rule, ok := EmailRuleByName("non_empty")
	require.True(t, ok)
	assert.True(t, rule("x"))

	rule, ok = EmailRuleByName("strict")
	require.True(t, ok)
	assert.False(t, rule("x"))
	assert.True(t, rule("tiago@teste.com"))

	_, ok = EmailRuleByName("regex")
	assert.False(t, ok)
}
