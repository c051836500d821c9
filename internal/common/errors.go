package common

import (
	"errors"
	"fmt"
)

// AppError pairs a stable code with the underlying cause.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Codes carried by AppError; they show up in logs and in the export workbook.
const (
	CodeConfig           = "CONFIG_ERROR"
	CodeDatabase         = "DB_ERROR"
	CodeDuplicate        = "DUPLICATE"
	CodeMissingWorkOrder = "MISSING_WORK_ORDER"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

// Document errors
var (
	ErrDocumentOpen     = errors.New("document cannot be opened")
	ErrMissingWorkOrder = errors.New("work order code not found")
	ErrDuplicate        = errors.New("work order already stored")
)

// OCR errors. None of them fails a document on its own.
var (
	ErrOCRUnavailable = errors.New("ocr capability not available")
	ErrOCRTimeout     = errors.New("ocr timed out")
	ErrOCRLanguage    = errors.New("tesseract language data missing")
	ErrOCRRender      = errors.New("page rasterization failed")
	ErrOCRRecognize   = errors.New("text recognition failed")
)

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ErrorCode returns the code of the first AppError in err's chain.
func ErrorCode(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
