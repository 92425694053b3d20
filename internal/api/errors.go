package api

import (
	"encoding/json"
	"sort"

	"github.com/parishlib/libris/internal/errors"
)

// ErrorKind discriminates the three server error shapes the mutation layer
// must distinguish: per-field validation messages, a single business-rule
// message, or neither (transport/unknown).
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindBusiness   ErrorKind = "business"
	KindTransport  ErrorKind = "transport"
)

// GenericErrorMessage is surfaced when the server response carries neither a
// top-level message nor field errors.
const GenericErrorMessage = "Error occurred, try again"

// Error is a structured REST API error. It is wrapped in an EnhancedError by
// the repository layer; callers recover it with errors.As.
type Error struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) > 0 {
		msgs := e.UserMessages()
		if len(msgs) > 0 {
			return msgs[0]
		}
	}
	return GenericErrorMessage
}

// Kind classifies the error shape.
func (e *Error) Kind() ErrorKind {
	switch {
	case len(e.Fields) > 0:
		return KindValidation
	case e.Message != "":
		return KindBusiness
	default:
		return KindTransport
	}
}

// ErrorCategory implements errors.CategorizedError so wrapped API errors carry
// an appropriate category by default.
func (e *Error) ErrorCategory() errors.ErrorCategory {
	switch e.Kind() {
	case KindValidation:
		return errors.CategoryValidation
	case KindBusiness:
		return statusCategory(e.StatusCode)
	default:
		return errors.CategoryNetwork
	}
}

// UserMessages returns the human-readable messages to surface, in stable
// order. Validation errors surface the first message of every field; a
// business error surfaces its single message; anything else falls back to the
// generic retry message.
func (e *Error) UserMessages() []string {
	switch e.Kind() {
	case KindValidation:
		fields := make([]string, 0, len(e.Fields))
		for field := range e.Fields {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		msgs := make([]string, 0, len(fields))
		for _, field := range fields {
			if len(e.Fields[field]) > 0 {
				msgs = append(msgs, e.Fields[field][0])
			}
		}
		if len(msgs) > 0 {
			return msgs
		}
		return []string{GenericErrorMessage}
	case KindBusiness:
		return []string{e.Message}
	default:
		return []string{GenericErrorMessage}
	}
}

// UserMessages extracts the messages to surface for any error. API errors are
// unwrapped to their structured shapes; everything else gets the generic
// retry message.
func UserMessages(err error) []string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessages()
	}
	return []string{GenericErrorMessage}
}

// parseError builds an Error from a response body, attempting to decode the
// `{message?, errors?}` shape. An undecodable body yields a transport-kind
// error.
func parseError(statusCode int, body []byte) *Error {
	apiErr := &Error{StatusCode: statusCode}
	if len(body) == 0 {
		return apiErr
	}
	var payload struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}
	apiErr.Message = payload.Message
	apiErr.Fields = payload.Errors
	return apiErr
}

// statusCategory maps an HTTP status code to an error category.
func statusCategory(statusCode int) errors.ErrorCategory {
	switch statusCode {
	case 401, 403:
		return errors.CategoryAuth
	case 404:
		return errors.CategoryNotFound
	case 409:
		return errors.CategoryConflict
	case 422:
		return errors.CategoryValidation
	case 429:
		return errors.CategoryLimit
	default:
		if statusCode < 400 {
			// Envelope-level rejection on a 2xx response
			return errors.CategoryState
		}
		return errors.CategoryNetwork
	}
}
