// Package acroform reads and fills the interactive form fields of a PDF
// document. Field values are written to the field dictionary and to every
// page widget annotation carrying the same name, then the document is
// serialized again in full.
package acroform

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/store"
)

// Option configures a Document
type Option func(*Document)

// WithLogger sets the logger used for debug tracing of tree walks and fills
func WithLogger(logger *zap.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Document is a loaded PDF. It keeps the original bytes so that every fill
// starts from the same state; filling never changes what Fields reports.
type Document struct {
	data   []byte
	st     *store.Store
	logger *zap.Logger
}

// Load parses data as a PDF document
func Load(data []byte, opts ...Option) (*Document, error) {
	d := &Document{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}

	st, err := store.Open(data, d.logger)
	if err != nil {
		return nil, err
	}

	d.data = append([]byte(nil), data...)
	d.st = st
	return d, nil
}

// LoadFile reads and parses the PDF at path
func LoadFile(path string, opts ...Option) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pdferrors.NewIOError(path, err)
	}

	doc, err := Load(data, opts...)
	if err != nil {
		var pdfErr *pdferrors.PDFError
		if errors.As(err, &pdfErr) {
			return nil, pdfErr.WithFile(path)
		}
		return nil, err
	}
	return doc, nil
}

// PageCount returns the number of pages
func (d *Document) PageCount() int {
	return d.st.PageCount()
}

// Tree returns the field tree, or nil when the document has no form
func (d *Document) Tree() (*Tree, error) {
	return NewTree(d.st)
}

// HasForm reports whether the catalog carries an AcroForm dictionary
func (d *Document) HasForm() (bool, error) {
	tree, err := d.Tree()
	if err != nil {
		return false, err
	}
	return tree != nil, nil
}

// Fields lists every terminal field in depth-first root-array order. A
// document without a form yields an empty list.
func (d *Document) Fields() ([]FormField, error) {
	tree, err := d.Tree()
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return []FormField{}, nil
	}

	handles, err := tree.AllTerminalFields()
	if err != nil {
		return nil, err
	}

	fields := make([]FormField, 0, len(handles))
	for _, h := range handles {
		field, err := tree.Field(h)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}

	d.logger.Debug("listed form fields", zap.Int("count", len(fields)))
	return fields, nil
}

// Fill applies values and returns the serialized document. Names that match
// nothing are ignored. A document without a form is a MissingEntry error.
func (d *Document) Fill(values map[string]FieldValue) ([]byte, error) {
	out, _, err := d.FillWithReport(values)
	return out, err
}

// FillWithReport is Fill that also reports which names were applied
func (d *Document) FillWithReport(values map[string]FieldValue) ([]byte, *FillReport, error) {
	return fill(d.data, values, d.logger)
}

// FillAndSave fills the document and writes the result to path
func (d *Document) FillAndSave(values map[string]FieldValue, path string) error {
	out, err := d.Fill(values)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return pdferrors.NewIOError(path, fmt.Errorf("failed to write filled PDF: %w", err))
	}
	return nil
}
