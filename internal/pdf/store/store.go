// Package store adapts a pdfcpu context into the object store used by the
// form layer: objects are addressed by number, resolved on demand, replaced
// by identity and written back out as a complete document.
package store

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"go.uber.org/zap"

	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

var disableConfigDir sync.Once

// Ref identifies an indirect object
type Ref struct {
	ObjNr int
	GenNr int
}

// RefOf converts a pdfcpu indirect reference into a Ref
func RefOf(ir types.IndirectRef) Ref {
	return Ref{ObjNr: ir.ObjectNumber.Value(), GenNr: ir.GenerationNumber.Value()}
}

// IndirectRef converts r back into a pdfcpu indirect reference
func (r Ref) IndirectRef() types.IndirectRef {
	return *types.NewIndirectRef(r.ObjNr, r.GenNr)
}

func (r Ref) String() string {
	return fmt.Sprintf("%d %d R", r.ObjNr, r.GenNr)
}

// Store wraps a pdfcpu context read from an in-memory document
type Store struct {
	ctx    *model.Context
	logger *zap.Logger
}

// Open parses data into a new Store
func Open(data []byte, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, pdferrors.NewParseError(fmt.Errorf("failed to read PDF context: %w", err))
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, pdferrors.NewParseError(fmt.Errorf("failed to ensure page count: %w", err))
	}

	logger.Debug("opened document",
		zap.Int("bytes", len(data)),
		zap.Int("pages", ctx.PageCount),
	)

	return &Store{ctx: ctx, logger: logger}, nil
}

// PageCount returns the number of pages in the document
func (s *Store) PageCount() int {
	return s.ctx.PageCount
}

// Catalog returns the document catalog
func (s *Store) Catalog() (types.Dict, error) {
	catalog, err := s.ctx.Catalog()
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeResolution, fmt.Errorf("failed to get catalog: %w", err))
	}
	return catalog, nil
}

// Lookup returns the object stored under ref. A reference to an object that
// does not exist is a resolution error.
func (s *Store) Lookup(ref Ref) (types.Object, error) {
	obj, err := s.ctx.Dereference(ref.IndirectRef())
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeResolution, err).WithLocation(ref.ObjNr, ref.GenNr)
	}
	if obj == nil {
		return nil, pdferrors.NewResolutionError(ref.ObjNr, ref.GenNr, "dangling reference")
	}
	return obj, nil
}

// Resolve follows obj if it is an indirect reference and returns it unchanged otherwise
func (s *Store) Resolve(obj types.Object) (types.Object, error) {
	ir, ok := obj.(types.IndirectRef)
	if !ok {
		return obj, nil
	}
	return s.Lookup(RefOf(ir))
}

// LookupDict returns the dictionary stored under ref
func (s *Store) LookupDict(ref Ref) (types.Dict, error) {
	obj, err := s.Lookup(ref)
	if err != nil {
		return nil, err
	}
	d, ok := obj.(types.Dict)
	if !ok {
		return nil, pdferrors.NewResolutionError(ref.ObjNr, ref.GenNr,
			fmt.Sprintf("expected dictionary, got %T", obj))
	}
	return d, nil
}

// ResolveDict resolves obj to a dictionary. A nil obj yields a nil dictionary.
func (s *Store) ResolveDict(obj types.Object) (types.Dict, error) {
	if obj == nil {
		return nil, nil
	}
	if ir, ok := obj.(types.IndirectRef); ok {
		return s.LookupDict(RefOf(ir))
	}
	d, ok := obj.(types.Dict)
	if !ok {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeResolution,
			fmt.Sprintf("expected dictionary, got %T", obj))
	}
	return d, nil
}

// ResolveArray resolves obj to an array. A nil obj yields a nil array.
func (s *Store) ResolveArray(obj types.Object) (types.Array, error) {
	if obj == nil {
		return nil, nil
	}
	resolved, err := s.Resolve(obj)
	if err != nil {
		return nil, err
	}
	arr, ok := resolved.(types.Array)
	if !ok {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeResolution,
			fmt.Sprintf("expected array, got %T", resolved))
	}
	return arr, nil
}

// Pages returns the leaf page dictionaries in document order
func (s *Store) Pages() ([]types.Dict, error) {
	catalog, err := s.Catalog()
	if err != nil {
		return nil, err
	}

	root, found := catalog.Find("Pages")
	if !found {
		return nil, pdferrors.NewMissingEntry("Catalog", "Pages")
	}

	pages := make([]types.Dict, 0, s.ctx.PageCount)
	if err := s.collectPages(root, map[Ref]bool{}, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

func (s *Store) collectPages(node types.Object, seen map[Ref]bool, pages *[]types.Dict) error {
	if ir, ok := node.(types.IndirectRef); ok {
		ref := RefOf(ir)
		if seen[ref] {
			return pdferrors.NewResolutionError(ref.ObjNr, ref.GenNr, "cycle in page tree")
		}
		seen[ref] = true
	}

	d, err := s.ResolveDict(node)
	if err != nil {
		return err
	}
	if d == nil {
		return nil
	}

	kidsObj, hasKids := d.Find("Kids")
	if typ := d.NameEntry("Type"); (typ != nil && *typ == "Page") || !hasKids {
		*pages = append(*pages, d)
		return nil
	}

	kids, err := s.ResolveArray(kidsObj)
	if err != nil {
		return err
	}
	for _, kid := range kids {
		if err := s.collectPages(kid, seen, pages); err != nil {
			return err
		}
	}
	return nil
}

// Annotations returns the entries of the page's Annots array as stored,
// indirect references included.
func (s *Store) Annotations(page types.Dict) (types.Array, error) {
	annots, found := page.Find("Annots")
	if !found {
		return nil, nil
	}
	return s.ResolveArray(annots)
}

// Update replaces the object stored under ref. The entry is detached from any
// object stream it was read from so that Save writes it as a standalone object
// with its own cross-reference entry.
func (s *Store) Update(ref Ref, obj types.Object) error {
	entry, found := s.ctx.FindTableEntry(ref.ObjNr, ref.GenNr)
	if !found || entry.Free {
		return pdferrors.NewResolutionError(ref.ObjNr, ref.GenNr, "cannot update missing object")
	}

	if entry.ObjectStream != nil {
		s.logger.Debug("detaching object from object stream",
			zap.Stringer("ref", ref),
			zap.Intp("object_stream", entry.ObjectStream),
		)
	}

	entry.Object = obj
	entry.Compressed = false
	entry.ObjectStream = nil
	entry.ObjectStreamInd = nil
	return nil
}

// Save serializes the whole document, staged updates included
func (s *Store) Save() ([]byte, error) {
	var buf bytes.Buffer
	if err := api.WriteContext(s.ctx, &buf); err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeIO, fmt.Errorf("failed to write PDF: %w", err))
	}
	return buf.Bytes(), nil
}
