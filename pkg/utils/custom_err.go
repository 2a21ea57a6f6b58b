package utils

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrAuthorization     = errors.New("forbidden")
	ErrAuthentication    = errors.New("authentication required")
	ErrConflict          = errors.New("conflict")
	ErrAdmission         = errors.New("not admissible")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrPaymentGateway    = errors.New("payment gateway error")
	ErrNotification      = errors.New("notification error")
	ErrNotFound          = errors.New("not found")
	ErrDatabaseError     = errors.New("database error")
)

// FieldError names one offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ServiceError carries a caller-facing message and optional field details
// on top of one of the sentinel kinds above.
type ServiceError struct {
	Kind    error
	Message string
	Fields  []FieldError
	Cause   error
}

func (e *ServiceError) Error() string {
	msg := e.Kind.Error()
	if e.Message != "" {
		msg = e.Message
	}
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Field+": "+f.Message)
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ServiceError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func NewError(kind error, format string, args ...any) *ServiceError {
	return &ServiceError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func WrapError(kind error, cause error, message string) *ServiceError {
	return &ServiceError{Kind: kind, Message: message, Cause: cause}
}

func Forbidden(message string) *ServiceError {
	return &ServiceError{Kind: ErrAuthorization, Message: message}
}

func NotFound(what string) *ServiceError {
	return &ServiceError{Kind: ErrNotFound, Message: what + " not found"}
}

func Database(cause error) *ServiceError {
	return &ServiceError{Kind: ErrDatabaseError, Message: "database error", Cause: cause}
}

// Validator accumulates field errors and turns them into one ValidationError.
type Validator struct {
	fields []FieldError
}

func (v *Validator) Add(field, message string) {
	v.fields = append(v.fields, FieldError{Field: field, Message: message})
}

// Check records message for field when ok is false.
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.Add(field, message)
	}
}

func (v *Validator) Required(field, value string) {
	v.Check(strings.TrimSpace(value) != "", field, "is required")
}

func (v *Validator) Valid() bool { return len(v.fields) == 0 }

func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	return &ServiceError{Kind: ErrValidation, Message: "invalid input", Fields: v.fields}
}

// FieldsOf returns the field details of a ValidationError, if any.
func FieldsOf(err error) []FieldError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Fields
	}
	return nil
}

// MessageOf returns the caller-facing message of a ServiceError or fallback.
func MessageOf(err error, fallback string) string {
	var se *ServiceError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}
