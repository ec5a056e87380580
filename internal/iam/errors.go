package iam

import "fmt"

// Well-known IAM error codes surfaced to clients
var (
	CodeUnavailable  = "IAM_UNAVAILABLE"
	CodeServiceError = "IAM_SERVICE_ERROR"
)

// ServiceError is returned when IAM answered with a non-2xx status.
// The upstream status code and payload are preserved so handlers can relay them.
type ServiceError struct {
	StatusCode int
	Code       string
	Message    string
	Detail     map[string]interface{}
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("iam service error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// UnavailableError is returned when the IAM service could not be reached at all.
type UnavailableError struct {
	Reason error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("iam unavailable: %v", e.Reason)
}

func (e *UnavailableError) Unwrap() error {
	return e.Reason
}
