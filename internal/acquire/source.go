package acquire

import "context"

// Source opens documents. Failure to open is fatal for that document.
type Source interface {
	Open(ctx context.Context, path string) (Doc, error)
}

// Doc is an opened document. Pages are 1-based.
type Doc interface {
	NumPages() int
	NativeText(page int) (string, error)
	TableRows(page int) ([][]string, error)
	Close() error
}

// Recognizer is the OCR capability. Available false is recoverable.
type Recognizer interface {
	Available() bool
	OCRPage(ctx context.Context, path string, page int) (string, error)
}
