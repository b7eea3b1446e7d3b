package clickup

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// ErrUnknownMode is returned by Run for a mode outside the toolkit's operations.
var ErrUnknownMode = errors.New("clickup: unknown mode")

// APIError is a non-2xx response from the ClickUp API.
type APIError struct {
	StatusCode int
	// Code is ClickUp's ECODE, e.g. "OAUTH_025".
	Code    string
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("clickup API error %d (%s): %s", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("clickup API error %d: %s", e.StatusCode, msg)
}

// newAPIError builds an APIError from a ClickUp error body
// ({"err": "...", "ECODE": "..."}). Non-JSON bodies are used as the message.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	if gjson.ValidBytes(body) {
		r := gjson.ParseBytes(body)
		apiErr.Message = r.Get("err").String()
		apiErr.Code = r.Get("ECODE").String()
	} else if len(body) > 0 && len(body) < 512 {
		apiErr.Message = string(body)
	}
	return apiErr
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

// IsRateLimited reports whether err is a 429 from the API.
func IsRateLimited(err error) bool {
	return statusOf(err) == http.StatusTooManyRequests
}

// QueryError reports instructions that are valid JSON but unusable for the
// requested mode.
type QueryError struct {
	Mode   string
	Field  string
	Reason string
}

func (e *QueryError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s instructions: %s: %s", e.Mode, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s instructions: %s", e.Mode, e.Reason)
}
