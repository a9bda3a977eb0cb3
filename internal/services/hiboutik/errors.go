package hiboutik

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProductNotFound = errors.New("hiboutik product not found")
	ErrNotConfigured   = errors.New("hiboutik client not configured")
)

// APIError is returned for any non-success HTTP status.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Body
	}
	return fmt.Sprintf("hiboutik %s %s failed: %d - %s", e.Method, e.Path, e.StatusCode, msg)
}

// InsufficientRightsError is returned on 403, typically when the API user
// lacks the rights to manage webhooks.
type InsufficientRightsError struct {
	*APIError
}

func (e *InsufficientRightsError) Error() string {
	return "insufficient rights: " + e.APIError.Error()
}

func (e *InsufficientRightsError) Unwrap() error {
	return e.APIError
}

// PartialUpdateError reports a product update interrupted mid-way. Applied
// lists the attributes already written remotely.
type PartialUpdateError struct {
	ProductID int
	Applied   []ProductAttribute
	Failed    ProductAttribute
	Err       error
}

func (e *PartialUpdateError) Error() string {
	applied := make([]string, len(e.Applied))
	for i, a := range e.Applied {
		applied[i] = a.Name
	}
	return fmt.Sprintf("product %d: update of %s failed after applying [%s]: %v",
		e.ProductID, e.Failed.Name, strings.Join(applied, ", "), e.Err)
}

func (e *PartialUpdateError) Unwrap() error {
	return e.Err
}

func newAPIError(method, path string, status int, body []byte) error {
	apiErr := &APIError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Body:       strings.TrimSpace(string(body)),
	}

	var parsed map[string]any
	if json.Unmarshal(body, &parsed) == nil {
		var parts []string
		for _, key := range []string{"error", "error_description", "details"} {
			switch v := parsed[key].(type) {
			case string:
				if v != "" {
					parts = append(parts, v)
				}
			case nil:
			default:
				if b, err := json.Marshal(v); err == nil {
					parts = append(parts, string(b))
				}
			}
		}
		apiErr.Message = strings.Join(parts, ": ")
	}

	if status == 403 {
		return &InsufficientRightsError{APIError: apiErr}
	}
	return apiErr
}
