package domain

import (
	"fmt"
	"strings"
)

// ParseError reports a server payload whose shape could not be mapped onto a
// known record variant. It is fatal to the triggering operation and is never
// retried; a malformed discriminant must not be coerced to a default type.
type ParseError struct {
	Field  string
	Got    string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("parse %s: unexpected value %q", e.Field, e.Got)
	}
	return fmt.Sprintf("parse %s: unexpected value %q: %s", e.Field, e.Got, e.Reason)
}

// NetworkError reports a failed or rejected HTTP request. The operation that
// triggered it is abandoned and all client-side state is left as it was
// before the call.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError reports a client-side precondition failure (duplicate
// basket name, over-long field, re-entrant move). It is produced
// synchronously, before any request is issued, and is returned as a value
// rather than panicked or sent to the server.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// BulkOutcome is the per-record result of a bulk operation, order-preserving
// with the request.
type BulkOutcome struct {
	GlobalID GlobalID
	Record   Record // new instance on success, nil on failure
	Err      error  // nil on success
}

// PartialBulkFailure reports a bulk operation in which some records succeeded
// and some failed. Successful sub-results have already been applied to the
// in-memory graph by the time it is returned; callers inspect Outcomes rather
// than treating the operation as all-or-nothing.
type PartialBulkFailure struct {
	Outcomes     []BulkOutcome
	SuccessCount int
	ErrorCount   int
}

func (e *PartialBulkFailure) Error() string {
	var failed []string
	for _, o := range e.Outcomes {
		if o.Err != nil {
			failed = append(failed, string(o.GlobalID))
		}
	}
	return fmt.Sprintf("bulk operation: %d succeeded, %d failed (%s)",
		e.SuccessCount, e.ErrorCount, strings.Join(failed, ", "))
}
