package models

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse is returned with 422 when a form is rejected.
type ValidationErrorResponse struct {
	Error  string      `json:"error"`
	Errors FieldErrors `json:"errors"`
}

// ValidateResponse reports the outcome of a dry-run validation.
type ValidateResponse struct {
	Valid  bool          `json:"valid"`
	Record *Registration `json:"record,omitempty"`
	Errors FieldErrors   `json:"errors,omitempty"`
}

// LiveMessage is pushed to websocket subscribers whenever the count changes.
type LiveMessage struct {
	Type string `json:"t"`
	RegistrationStats
}
