package models

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields,omitempty"`
}

// HealthStatus is returned by the liveness endpoint.
type HealthStatus struct {
	Status string `json:"status"`
}

// DeleteResponse acknowledges a successful delete.
type DeleteResponse struct {
	OK bool `json:"ok"`
}
