// Package errors provides structured error types for the project flow service.
package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Code represents a unique error code.
type Code string

// Error codes.
const (
	// Record errors
	CodeTaskNotFound      Code = "TASK_NOT_FOUND"
	CodeBugNotFound       Code = "BUG_NOT_FOUND"
	CodeSubtaskNotFound   Code = "SUBTASK_NOT_FOUND"
	CodeMilestoneNotFound Code = "MILESTONE_NOT_FOUND"

	// Validation errors
	CodeValidation      Code = "VALIDATION_FAILED"
	CodeInvalidStatus   Code = "INVALID_STATUS"
	CodeInvalidSeverity Code = "INVALID_SEVERITY"
	CodeInvalidRole     Code = "INVALID_ROLE"

	// Auth errors
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeEmailTaken         Code = "EMAIL_TAKEN"

	// Infrastructure errors
	CodeStorage Code = "STORAGE_FAILED"
	CodeUpload  Code = "UPLOAD_FAILED"
)

// Category groups error codes for HTTP status mapping.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryNotFound
	CategoryBadRequest
	CategoryUnauthorized
	CategoryForbidden
	CategoryConflict
	CategoryInternal
)

// codeCategories maps error codes to their categories.
var codeCategories = map[Code]Category{
	CodeTaskNotFound:       CategoryNotFound,
	CodeBugNotFound:        CategoryNotFound,
	CodeSubtaskNotFound:    CategoryNotFound,
	CodeMilestoneNotFound:  CategoryNotFound,
	CodeValidation:         CategoryBadRequest,
	CodeInvalidStatus:      CategoryBadRequest,
	CodeInvalidSeverity:    CategoryBadRequest,
	CodeInvalidRole:        CategoryBadRequest,
	CodeUnauthenticated:    CategoryUnauthorized,
	CodeForbidden:          CategoryForbidden,
	CodeInvalidCredentials: CategoryUnauthorized,
	CodeEmailTaken:         CategoryConflict,
	CodeStorage:            CategoryInternal,
	CodeUpload:             CategoryInternal,
}

// HTTPStatus returns the HTTP status code for a category.
func (c Category) HTTPStatus() int {
	switch c {
	case CategoryNotFound:
		return 404
	case CategoryBadRequest:
		return 400
	case CategoryUnauthorized:
		return 401
	case CategoryForbidden:
		return 403
	case CategoryConflict:
		return 409
	default:
		return 500
	}
}

// FlowError is the structured error type for the service.
type FlowError struct {
	Code  Code   `json:"code"`
	What  string `json:"what"`
	Why   string `json:"why,omitempty"`
	Cause error  `json:"-"`
}

// Error implements the error interface.
func (e *FlowError) Error() string {
	var b strings.Builder
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString(": ")
		b.WriteString(e.Why)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *FlowError) Unwrap() error {
	return e.Cause
}

// Category returns the error category for HTTP status mapping.
func (e *FlowError) Category() Category {
	if cat, ok := codeCategories[e.Code]; ok {
		return cat
	}
	return CategoryUnknown
}

// HTTPStatus returns the appropriate HTTP status code for this error.
func (e *FlowError) HTTPStatus() int {
	return e.Category().HTTPStatus()
}

// MarshalJSON implements json.Marshaler.
func (e *FlowError) MarshalJSON() ([]byte, error) {
	type alias FlowError
	aux := struct {
		*alias
		CauseMsg string `json:"cause,omitempty"`
	}{
		alias: (*alias)(e),
	}
	if e.Cause != nil {
		aux.CauseMsg = e.Cause.Error()
	}
	return json.Marshal(aux)
}

// Is reports whether target is a FlowError with the same code.
func (e *FlowError) Is(target error) bool {
	t, ok := target.(*FlowError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause.
func (e *FlowError) WithCause(err error) *FlowError {
	return &FlowError{
		Code:  e.Code,
		What:  e.What,
		Why:   e.Why,
		Cause: err,
	}
}

// --- Error constructors ---

// ErrTaskNotFound returns an error for a missing task.
func ErrTaskNotFound(id string) *FlowError {
	return &FlowError{
		Code: CodeTaskNotFound,
		What: fmt.Sprintf("task %s not found", id),
	}
}

// ErrBugNotFound returns an error for a missing bug.
func ErrBugNotFound(id string) *FlowError {
	return &FlowError{
		Code: CodeBugNotFound,
		What: fmt.Sprintf("bug %s not found", id),
	}
}

// ErrSubtaskNotFound returns an error for a missing subtask.
func ErrSubtaskNotFound(id string) *FlowError {
	return &FlowError{
		Code: CodeSubtaskNotFound,
		What: fmt.Sprintf("subtask %s not found", id),
	}
}

// ErrMilestoneNotFound returns an error for a missing milestone.
func ErrMilestoneNotFound(id string) *FlowError {
	return &FlowError{
		Code: CodeMilestoneNotFound,
		What: fmt.Sprintf("milestone %s not found", id),
	}
}

// ErrValidation returns a generic validation error.
func ErrValidation(why string) *FlowError {
	return &FlowError{
		Code: CodeValidation,
		What: "validation failed",
		Why:  why,
	}
}

// ErrInvalidStatus returns an error for an unknown status value.
func ErrInvalidStatus(value, valid string) *FlowError {
	return &FlowError{
		Code: CodeInvalidStatus,
		What: fmt.Sprintf("invalid status: %s", value),
		Why:  "valid values: " + valid,
	}
}

// ErrInvalidSeverity returns an error for an unknown severity value.
func ErrInvalidSeverity(value string) *FlowError {
	return &FlowError{
		Code: CodeInvalidSeverity,
		What: fmt.Sprintf("invalid severity: %s", value),
		Why:  "valid values: critical, medium, low",
	}
}

// ErrInvalidRole returns an error for an unknown role value.
func ErrInvalidRole(value string) *FlowError {
	return &FlowError{
		Code: CodeInvalidRole,
		What: fmt.Sprintf("invalid role: %s", value),
		Why:  "valid values: pm, developer, tester, analyst",
	}
}

// ErrUnauthenticated returns an error for requests without a valid session.
func ErrUnauthenticated() *FlowError {
	return &FlowError{
		Code: CodeUnauthenticated,
		What: "authentication required",
	}
}

// ErrForbidden returns an error for requests whose role is not permitted.
func ErrForbidden(role string) *FlowError {
	return &FlowError{
		Code: CodeForbidden,
		What: "access denied",
		Why:  fmt.Sprintf("role %s is not permitted here", role),
	}
}

// ErrInvalidCredentials returns an error for failed sign-in attempts.
func ErrInvalidCredentials() *FlowError {
	return &FlowError{
		Code: CodeInvalidCredentials,
		What: "invalid email or password",
	}
}

// ErrEmailTaken returns an error when signing up with an existing email.
func ErrEmailTaken(email string) *FlowError {
	return &FlowError{
		Code: CodeEmailTaken,
		What: fmt.Sprintf("email %s is already registered", email),
	}
}

// ErrStorage wraps a storage layer failure.
func ErrStorage(err error) *FlowError {
	return &FlowError{
		Code:  CodeStorage,
		What:  "storage operation failed",
		Cause: err,
	}
}
