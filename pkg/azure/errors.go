package azure

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrResponseTooLarge is returned instead of a truncated response body
var ErrResponseTooLarge = errors.New("response body too large")

// ServiceError is returned for every non-2xx response
type ServiceError struct {
	StatusCode int
	Reason     string
	Code       string
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("Status code: %d, Reason: %s, Message: %s", e.StatusCode, e.Reason, e.Message)
}

// IsServiceError reports whether err wraps a ServiceError and returns it
func IsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// errorEnvelope is the body shape shared by the vision and language APIs
type errorEnvelope struct {
	Error *ErrorDetail `json:"error"`
}

// ErrorDetail is the inner error object, also used for per-document errors
type ErrorDetail struct {
	Code       string       `json:"code"`
	Message    string       `json:"message"`
	InnerError *ErrorDetail `json:"innererror,omitempty"`
}

func newServiceError(status int, body []byte) *ServiceError {
	se := &ServiceError{
		StatusCode: status,
		Reason:     http.StatusText(status),
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		se.Code = env.Error.Code
		se.Message = env.Error.Message
		if env.Error.InnerError != nil && env.Error.InnerError.Message != "" {
			se.Message += " (" + env.Error.InnerError.Message + ")"
		}
		return se
	}

	se.Message = strings.TrimSpace(string(body))
	if se.Message == "" {
		se.Message = se.Reason
	}
	return se
}
