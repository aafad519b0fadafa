package pdf

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/a3tai/mcp-pdf-forms/internal/metrics"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/acroform"
	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

// Forms lists and fills AcroForm fields of in-memory documents
type Forms struct {
	logger *zap.Logger
}

// NewForms creates a forms component
func NewForms(logger *zap.Logger) *Forms {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Forms{logger: logger}
}

// ListFields returns the terminal fields of data
func (f *Forms) ListFields(data []byte) (result *PDFFormFieldsResult, err error) {
	defer func(start time.Time) { metrics.ObserveOperation(metrics.OperationFields, start, err) }(time.Now())

	doc, err := acroform.Load(data, acroform.WithLogger(f.logger))
	if err != nil {
		return nil, err
	}

	hasForm, err := doc.HasForm()
	if err != nil {
		return nil, err
	}

	fields, err := doc.Fields()
	if err != nil {
		return nil, err
	}

	return &PDFFormFieldsResult{
		Pages:   doc.PageCount(),
		HasForm: hasForm,
		Fields:  fields,
		Count:   len(fields),
	}, nil
}

// Fill applies values to data and returns the filled document
func (f *Forms) Fill(data []byte, values map[string]acroform.FieldValue) (out []byte, report *acroform.FillReport, err error) {
	defer func(start time.Time) { metrics.ObserveOperation(metrics.OperationFill, start, err) }(time.Now())

	doc, err := acroform.Load(data, acroform.WithLogger(f.logger))
	if err != nil {
		return nil, nil, err
	}

	out, report, err = doc.FillWithReport(values)
	if err != nil {
		return nil, nil, err
	}

	metrics.ObserveFill(len(report.FieldsUpdated), report.AnnotationsUpdated, len(report.Unmatched))
	if len(report.Unmatched) > 0 {
		f.logger.Info("fill names matched nothing", zap.Strings("names", report.Unmatched))
	}
	return out, report, nil
}

// writeFile writes a filled form, creating or truncating path
func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return pdferrors.NewIOError(path, fmt.Errorf("failed to write filled PDF: %w", err))
	}
	return nil
}
