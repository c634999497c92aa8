package dtos

// SubmitResult is what the store answers after an add attempt.
// Status follows HTTP semantics so the API layer can forward it as is.
type SubmitResult struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// OK reports whether Status is in the 2xx range.
func (r SubmitResult) OK() bool {
	return r.Status >= 200 && r.Status < 300
}
