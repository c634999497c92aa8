package mappers

import (
	"encoding/json"
	"fmt"
	"strings"

	"patient-intake-service/internal/domain/entities"
)

// FHIRHumanName represents a FHIR HumanName data type.
type FHIRHumanName struct {
	Use    string   `json:"use,omitempty"` // usual | official | temp | nickname | anonymous | old | maiden
	Text   string   `json:"text,omitempty"`
	Family string   `json:"family,omitempty"`
	Given  []string `json:"given,omitempty"`
}

// FHIRContactPoint represents a FHIR ContactPoint (telecom) entry.
type FHIRContactPoint struct {
	System string `json:"system"` // phone | fax | email | pager | url | sms | other
	Value  string `json:"value"`
	Use    string `json:"use,omitempty"`
}

// FHIRMeta carries resource metadata.
type FHIRMeta struct {
	LastUpdated string `json:"lastUpdated,omitempty"`
}

// FHIRPatientResource is the subset of a FHIR R4 Patient the intake form can fill.
type FHIRPatientResource struct {
	ResourceType string             `json:"resourceType"`
	ID           string             `json:"id,omitempty"`
	Meta         *FHIRMeta          `json:"meta,omitempty"`
	Active       bool               `json:"active"`
	Name         []FHIRHumanName    `json:"name,omitempty"`
	Telecom      []FHIRContactPoint `json:"telecom,omitempty"`
}

// MapPatientToFHIR converts a Patient entity to a FHIR Patient resource.
func MapPatientToFHIR(patient entities.Patient) (json.RawMessage, error) {
	name := strings.Join(strings.Fields(patient.Name), " ")
	if name == "" {
		return nil, fmt.Errorf("patient name is required for FHIR mapping")
	}

	fhirPatient := FHIRPatientResource{
		ResourceType: "Patient",
		ID:           patient.ID.String(),
		Active:       true,
		Name:         []FHIRHumanName{splitName(name)},
	}
	if patient.Email != "" {
		fhirPatient.Telecom = []FHIRContactPoint{{System: "email", Value: patient.Email, Use: "home"}}
	}
	if !patient.UpdatedAt.IsZero() {
		fhirPatient.Meta = &FHIRMeta{LastUpdated: patient.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z")}
	}

	rawJSON, err := json.Marshal(fhirPatient)
	if err != nil {
		return nil, fmt.Errorf("error marshalling FHIR patient resource to JSON: %w", err)
	}
	return rawJSON, nil
}

// splitName treats the last word as the family name, as Brazilian and most western names are written.
// A single word is kept as a given name only.
func splitName(full string) FHIRHumanName {
	parts := strings.Fields(full)
	hn := FHIRHumanName{Use: "official", Text: full}
	if len(parts) == 1 {
		hn.Given = parts
		return hn
	}
	hn.Family = parts[len(parts)-1]
	hn.Given = parts[:len(parts)-1]
	return hn
}
