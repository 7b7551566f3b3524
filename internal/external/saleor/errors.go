package saleor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable is returned on transport failures and 5xx responses.
// Callers may retry; everything else is not retryable.
var ErrUnavailable = errors.New("saleor api unavailable")

// GraphQLError is one error entry from a GraphQL response, either from the
// top-level errors array or from a mutation payload's errors field.
type GraphQLError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}

func (e GraphQLError) String() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Code != "" {
		fmt.Fprintf(&b, " (code=%s)", e.Code)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " (field=%s)", e.Field)
	}
	return b.String()
}

// APIError is returned when the API answered but reported errors.
type APIError struct {
	Operation string
	Errors    []GraphQLError
}

func (e *APIError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, gqlErr := range e.Errors {
		msgs = append(msgs, gqlErr.String())
	}
	return fmt.Sprintf("saleor %s: %s", e.Operation, strings.Join(msgs, "; "))
}
