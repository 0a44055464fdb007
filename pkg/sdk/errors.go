package sdk

import "fmt"

// APIError is a non-2xx response from the API server.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("cinequery api: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("cinequery api: %d: %s", e.StatusCode, e.Message)
}
