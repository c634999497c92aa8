package dtos

// CreatePatientRequest is the payload submitted by the intake form.
type CreatePatientRequest struct {
	Name  string `json:"name" form:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" form:"email" validate:"required,email"`
}
