package errors

import (
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Common application errors
var (
	ErrUsernameTaken = NewConflictError("username", "username already registered")
	ErrEmailTaken    = NewConflictError("email", "email already registered")
	ErrInternal      = NewInternalError("internal server error", nil)
)

// Field error types, reported alongside each message.
const (
	TypeMissing = "missing"
	TypeValue   = "value_error"
	TypeType    = "type_error"
)

// FieldError describes a single rejected input field.
type FieldError struct {
	Location []string // e.g. ["body", "rating"] or ["query", "skip"]
	Message  string
	Type     string
}

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError creates a validation error for a single field
func NewValidationError(location []string, message, errType string) *ValidationError {
	return (&ValidationError{}).Add(location, message, errType)
}

// Add appends a field error and returns the receiver for chaining
func (e *ValidationError) Add(location []string, message, errType string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Location: location, Message: message, Type: errType})
	return e
}

// HasErrors reports whether any field error was collected
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		messages = append(messages, fmt.Sprintf("%s: %s", strings.Join(f.Location, "."), f.Message))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, ", "))
}

// GRPCStatus returns the gRPC status for this error
func (e *ValidationError) GRPCStatus() *status.Status {
	return status.New(codes.InvalidArgument, e.Error())
}

// ConflictError represents a uniqueness violation on an existing value
type ConflictError struct {
	Field   string
	Message string
}

// NewConflictError creates a new conflict error
func NewConflictError(field, message string) *ConflictError {
	return &ConflictError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s already registered", e.Field)
}

// GRPCStatus returns the gRPC status for this error
func (e *ConflictError) GRPCStatus() *status.Status {
	return status.New(codes.AlreadyExists, e.Error())
}

// IntegrityError is raised when a storage check constraint rejects a write
// that passed application validation.
type IntegrityError struct {
	Constraint string
	Err        error
}

// NewIntegrityError creates a new integrity error
func NewIntegrityError(constraint string, err error) *IntegrityError {
	return &IntegrityError{
		Constraint: constraint,
		Err:        err,
	}
}

// Error implements the error interface
func (e *IntegrityError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("integrity constraint %s violated: %v", e.Constraint, e.Err)
	}
	return fmt.Sprintf("integrity constraint violated: %v", e.Err)
}

// Unwrap returns the wrapped error
func (e *IntegrityError) Unwrap() error {
	return e.Err
}

// GRPCStatus returns the gRPC status for this error
func (e *IntegrityError) GRPCStatus() *status.Status {
	return status.New(codes.Internal, "internal server error")
}

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// GRPCStatus returns the gRPC status for this error
func (e *InternalError) GRPCStatus() *status.Status {
	return status.New(codes.Internal, e.Message)
}

// UnavailableError reports that an upstream collaborator could not serve the request.
// Configured is false when the collaborator was never set up.
type UnavailableError struct {
	Service    string
	Configured bool
	Err        error
}

// NewUnavailableError creates a new unavailable error
func NewUnavailableError(service string, configured bool, err error) *UnavailableError {
	return &UnavailableError{
		Service:    service,
		Configured: configured,
		Err:        err,
	}
}

// Error implements the error interface
func (e *UnavailableError) Error() string {
	if !e.Configured {
		return fmt.Sprintf("%s not configured", e.Service)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s unavailable", e.Service)
}

// Unwrap returns the wrapped error
func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// GRPCStatus returns the gRPC status for this error
func (e *UnavailableError) GRPCStatus() *status.Status {
	if !e.Configured {
		return status.New(codes.FailedPrecondition, e.Error())
	}
	return status.New(codes.Unavailable, fmt.Sprintf("%s unavailable", e.Service))
}

// GRPCStatuser interface for errors that can provide gRPC status
type GRPCStatuser interface {
	GRPCStatus() *status.Status
}

// Code returns the gRPC code carried by err, or codes.Unknown.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}
	return codes.Unknown
}
