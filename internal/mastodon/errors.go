package mastodon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is returned for any non-2xx REST response.
type APIError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d: %s", e.Method, e.Endpoint, e.StatusCode, e.Message)
}

// AuthError means the instance rejected the access token.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("credential verification failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// AppRegistrationError means the OAuth application could not be created.
type AppRegistrationError struct {
	Instance string
	Err      error
}

func (e *AppRegistrationError) Error() string {
	return fmt.Sprintf("register app on %s: %v", e.Instance, e.Err)
}

func (e *AppRegistrationError) Unwrap() error { return e.Err }

func newAPIError(method, endpoint string, statusCode int, body []byte) *APIError {
	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	message := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		message = payload.Error
		if payload.ErrorDescription != "" {
			message = payload.ErrorDescription
		}
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &APIError{Method: method, Endpoint: endpoint, StatusCode: statusCode, Message: message}
}
