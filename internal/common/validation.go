package common

import (
	"fmt"
	"strings"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// Validator provides validation utilities
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

// Field validates a field and collects errors
func (v *Validator) Field(fieldName string, value interface{}, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// ErrorMessage returns a combined error message as string
func (v *Validator) ErrorMessage() string {
	if !v.HasErrors() {
		return ""
	}

	var messages []string
	for _, err := range v.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Error returns a combined error wrapping ErrValidation
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrValidation, v.ErrorMessage())
}

// ValidationRule represents a single validation rule
type ValidationRule func(fieldName string, value interface{}) *ValidationError

// Required rejects nil, nil pointers and blank strings.
func Required(fieldName string, value interface{}) *ValidationError {
	if value == nil {
		return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
	}

	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
		}
	case *string:
		if v == nil || strings.TrimSpace(*v) == "" {
			return &ValidationError{Field: fieldName, Value: "", Message: "is required"}
		}
	case *int:
		if v == nil {
			return &ValidationError{Field: fieldName, Value: "", Message: "is required"}
		}
	}
	return nil
}

// InRange builds a rule for numeric values inside [min, max]. Nil pointers pass;
// pair with Required when absence matters.
func InRange(min, max float64) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		f, ok := asFloat(value)
		if !ok {
			return nil
		}
		if f < min || f > max {
			return &ValidationError{
				Field:   fieldName,
				Value:   f,
				Message: fmt.Sprintf("outside range [%g, %g]", min, max),
			}
		}
		return nil
	}
}

// AtMost builds a rule flagging values above max.
func AtMost(max float64) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		f, ok := asFloat(value)
		if !ok {
			return nil
		}
		if f > max {
			return &ValidationError{Field: fieldName, Value: f, Message: fmt.Sprintf("above %g", max)}
		}
		return nil
	}
}

func asFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case *float64:
		if v == nil {
			return 0, false
		}
		return *v, true
	case int:
		return float64(v), true
	case *int:
		if v == nil {
			return 0, false
		}
		return float64(*v), true
	}
	return 0, false
}
