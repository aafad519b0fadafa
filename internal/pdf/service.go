package pdf

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/a3tai/mcp-pdf-forms/internal/metrics"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/acroform"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/security"
)

// Service handles PDF form operations by orchestrating the validator, the
// forms component and the path sandbox
type Service struct {
	maxFileSize    int64
	allowOverwrite bool
	logger         *zap.Logger
	validator      *Validator
	forms          *Forms
	serverInfo     *PDFServerInfo
	pathValidator  *security.PathValidator
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOverwrite allows fills to replace existing files
func WithOverwrite(allow bool) ServiceOption {
	return func(s *Service) {
		s.allowOverwrite = allow
	}
}

// NewService creates a new PDF service rooted at configuredDirectory
func NewService(maxFileSize int64, configuredDirectory string, opts ...ServiceOption) (*Service, error) {
	pathValidator, err := security.NewPathValidator(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	s := &Service{
		maxFileSize:   maxFileSize,
		logger:        zap.NewNop(),
		validator:     NewValidator(maxFileSize),
		pathValidator: pathValidator,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.forms = NewForms(s.logger)
	s.serverInfo = NewPDFServerInfo(s)

	return s, nil
}

// PDFFormFields lists the form fields of a PDF file
func (s *Service) PDFFormFields(req PDFFormFieldsRequest) (*PDFFormFieldsResult, error) {
	path, err := s.pathValidator.ResolvePath(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	data, err := s.validator.ReadFile(path)
	if err != nil {
		return nil, err
	}

	result, err := s.forms.ListFields(data)
	if err != nil {
		return nil, err
	}
	result.Path = path

	s.logger.Debug("listed form fields", zap.String("path", path), zap.Int("count", result.Count))
	return result, nil
}

// PDFFormFill fills a PDF file and writes the result to req.OutputPath
func (s *Service) PDFFormFill(req PDFFormFillRequest) (*PDFFormFillResult, error) {
	path, err := s.pathValidator.ResolvePath(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	outputPath, err := s.pathValidator.ResolveOutputPath(req.OutputPath, path, s.allowOverwrite)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	data, err := s.validator.ReadFile(path)
	if err != nil {
		return nil, err
	}

	out, report, err := s.forms.Fill(data, req.Values)
	if err != nil {
		return nil, err
	}

	if err := writeFile(outputPath, out); err != nil {
		return nil, err
	}

	s.logger.Info("wrote filled form",
		zap.String("input", path),
		zap.String("output", outputPath),
		zap.Int("bytes", len(out)),
	)

	return &PDFFormFillResult{
		Path:       path,
		OutputPath: outputPath,
		Size:       int64(len(out)),
		Report:     *report,
	}, nil
}

// FormFieldsFromData lists the fields of an uploaded document
func (s *Service) FormFieldsFromData(data []byte) (*PDFFormFieldsResult, error) {
	if err := s.validator.ValidateData(data); err != nil {
		return nil, err
	}
	return s.forms.ListFields(data)
}

// FillData fills an uploaded document and returns the filled bytes
func (s *Service) FillData(data []byte, values map[string]acroform.FieldValue) ([]byte, *acroform.FillReport, error) {
	if err := s.validator.ValidateData(data); err != nil {
		return nil, nil, err
	}
	return s.forms.Fill(data, values)
}

// PDFValidateFile performs validation on a PDF file
func (s *Service) PDFValidateFile(req PDFValidateFileRequest) (result *PDFValidateFileResult, err error) {
	defer func(start time.Time) { metrics.ObserveOperation(metrics.OperationValidate, start, err) }(time.Now())

	path, err := s.pathValidator.ResolvePath(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.validator.ValidateFile(PDFValidateFileRequest{Path: path})
}

// PDFServerInfo returns server information and usage guidance
func (s *Service) PDFServerInfo(ctx context.Context, _ PDFServerInfoRequest, serverName, version string,
) (*PDFServerInfoResult, error) {
	return s.serverInfo.GetServerInfo(ctx, serverName, version)
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// GetConfiguredDirectory returns the directory all paths are resolved against
func (s *Service) GetConfiguredDirectory() string {
	return s.pathValidator.GetConfiguredDirectory()
}

// IsValidPDF performs a quick validation check on a file
func (s *Service) IsValidPDF(filePath string) bool {
	path, err := s.pathValidator.ResolvePath(filePath)
	if err != nil {
		return false
	}
	return s.validator.IsValidPDF(path)
}
