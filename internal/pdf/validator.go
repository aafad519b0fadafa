package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf/acroform"
	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

var pdfHeader = []byte("%PDF-")

// ErrFileTooLarge is wrapped by errors for inputs above the size limit
var ErrFileTooLarge = errors.New("file too large")

// Validator handles PDF file validation operations
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile checks that a file is a readable PDF and whether it holds a
// form. Problems with the file are reported in the result, not as errors.
func (v *Validator) ValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	result := &PDFValidateFileResult{
		Path:  req.Path,
		Valid: false,
	}

	pages, err := v.validatePDFFile(req.Path)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}
	result.Pages = pages

	doc, err := acroform.LoadFile(req.Path)
	if err != nil {
		result.Message = fmt.Sprintf("readable, but form layer failed to load: %v", err)
		return result, nil //nolint:nilerr // same as above
	}
	if result.HasForm, err = doc.HasForm(); err != nil {
		result.Message = fmt.Sprintf("readable, but form dictionary is broken: %v", err)
		return result, nil //nolint:nilerr // same as above
	}

	result.Valid = true
	return result, nil
}

// validatePDFFile performs detailed validation on a PDF file and returns its page count
func (v *Validator) validatePDFFile(filePath string) (int, error) {
	if filePath == "" {
		return 0, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return 0, fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return 0, fmt.Errorf("cannot access file: %w", err)
	}

	if err := v.ValidateFileInfo(filePath, fileInfo); err != nil {
		return 0, err
	}

	// Open with an independent reader so a file only pdfcpu tolerates is still flagged
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("invalid PDF file: %w", err)
	}
	defer f.Close()

	return r.NumPage(), nil
}

// IsValidPDF performs a quick check to see if a file is a valid PDF
func (v *Validator) IsValidPDF(filePath string) bool {
	_, err := v.validatePDFFile(filePath)
	return err == nil
}

// ValidateFileInfo performs basic validation on file info without opening the PDF
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}

	if fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("%w: %d bytes (max: %d bytes)", ErrFileTooLarge, fileInfo.Size(), v.maxFileSize)
	}

	return nil
}

// ValidateData checks an in-memory document, e.g. an HTTP upload
func (v *Validator) ValidateData(data []byte) error {
	if len(data) == 0 {
		return pdferrors.NewParseError(fmt.Errorf("document is empty"))
	}
	if int64(len(data)) > v.maxFileSize {
		return fmt.Errorf("%w: %d bytes (max: %d bytes)", ErrFileTooLarge, len(data), v.maxFileSize)
	}
	if !bytes.Contains(data[:min(len(data), 1024)], pdfHeader) {
		return pdferrors.NewParseError(fmt.Errorf("missing %%PDF- header"))
	}
	return nil
}

// ReadFile validates filePath and returns its contents
func (v *Validator) ReadFile(filePath string) ([]byte, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, pdferrors.NewIOError(filePath, err)
	}
	if err := v.ValidateFileInfo(filePath, fileInfo); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, pdferrors.NewIOError(filePath, err)
	}
	return data, nil
}
