package models

// FieldError reports a validation problem on a named input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
