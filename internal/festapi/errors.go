package festapi

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrNotFound = errors.New("festapi: not found")

// APIError is a non-2xx answer from the festival backend. Message is the
// response body as the backend wrote it, so it can be shown to the student.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("festapi: %d: %s", e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match a 404
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// UserMessage extracts the message to display for err. Backend rejections are
// passed through verbatim; transport failures get a generic text.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
