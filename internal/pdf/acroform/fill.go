package acroform

import (
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"go.uber.org/zap"

	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/store"
)

// FillReport summarizes what a fill touched
type FillReport struct {
	// FieldsUpdated lists the qualified names of updated field dictionaries
	FieldsUpdated []string `json:"fields_updated"`
	// AnnotationsUpdated counts widget annotations whose V was rewritten
	AnnotationsUpdated int `json:"annotations_updated"`
	// Unmatched lists input names that matched neither a field nor a widget
	Unmatched []string `json:"unmatched,omitempty"`
}

type stagedUpdate struct {
	ref  store.Ref
	dict types.Dict
}

// synchronizer applies one batch of values to a freshly opened store. Scanning
// only reads the store; all writes happen in commit.
type synchronizer struct {
	st     *store.Store
	tree   *Tree
	logger *zap.Logger

	fields      []stagedUpdate
	annotations []stagedUpdate
	annotSeen   map[store.Ref]bool
}

func newSynchronizer(st *store.Store, tree *Tree, logger *zap.Logger) *synchronizer {
	return &synchronizer{
		st:        st,
		tree:      tree,
		logger:    logger,
		annotSeen: map[store.Ref]bool{},
	}
}

func sortedNames(values map[string]FieldValue) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *synchronizer) run(values map[string]FieldValue) (*FillReport, error) {
	names := sortedNames(values)
	report := &FillReport{FieldsUpdated: []string{}}
	matched := make(map[string]bool, len(names))

	for _, name := range names {
		ok, err := s.stageField(name, values[name])
		if err != nil {
			return nil, err
		}
		if ok {
			matched[name] = true
			report.FieldsUpdated = append(report.FieldsUpdated, name)
		}
	}

	annotMatches, err := s.stageAnnotations(values)
	if err != nil {
		return nil, err
	}
	for name := range annotMatches {
		matched[name] = true
	}
	report.AnnotationsUpdated = len(s.annotations)

	for _, name := range names {
		if !matched[name] {
			s.logger.Debug("no field or widget matches name", zap.String("name", name))
			report.Unmatched = append(report.Unmatched, name)
		}
	}

	if err := s.commit(); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *synchronizer) stageField(name string, value FieldValue) (bool, error) {
	h, found, err := s.tree.FindByName(name)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	d, err := s.st.LookupDict(h.ref)
	if err != nil {
		return false, err
	}

	updated := d.Clone().(types.Dict)
	updated["V"] = EncodeValue(value)
	s.fields = append(s.fields, stagedUpdate{ref: h.ref, dict: updated})

	s.logger.Debug("staged field update",
		zap.String("name", name),
		zap.Stringer("ref", h.ref),
		zap.Stringer("kind", value.Kind()),
	)
	return true, nil
}

// stageAnnotations scans every page for indirect annotations whose T equals
// one of the input names. It returns the set of names that matched.
func (s *synchronizer) stageAnnotations(values map[string]FieldValue) (map[string]bool, error) {
	matched := map[string]bool{}

	pages, err := s.st.Pages()
	if err != nil {
		return nil, err
	}

	for pageIdx, page := range pages {
		annots, err := s.st.Annotations(page)
		if err != nil {
			return nil, err
		}

		for _, annotObj := range annots {
			ir, ok := annotObj.(types.IndirectRef)
			if !ok {
				continue
			}
			ref := store.RefOf(ir)
			if s.annotSeen[ref] {
				continue
			}

			d, err := s.st.LookupDict(ref)
			if err != nil {
				return nil, err
			}

			// Subtype is not checked, so any annotation whose T matches gets a V.
			name, ok, err := s.tree.partialName(d)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			value, ok := values[name]
			if !ok {
				continue
			}

			updated := d.Clone().(types.Dict)
			updated["V"] = EncodeValue(value)
			s.annotations = append(s.annotations, stagedUpdate{ref: ref, dict: updated})
			s.annotSeen[ref] = true
			matched[name] = true

			s.logger.Debug("staged widget update",
				zap.String("name", name),
				zap.Stringer("ref", ref),
				zap.Int("page", pageIdx+1),
			)
		}
	}
	return matched, nil
}

func (s *synchronizer) commit() error {
	for _, u := range s.fields {
		if err := s.st.Update(u.ref, u.dict); err != nil {
			return err
		}
	}
	for _, u := range s.annotations {
		if err := s.st.Update(u.ref, u.dict); err != nil {
			return err
		}
	}
	return nil
}

// fill opens data, applies values and serializes the result
func fill(data []byte, values map[string]FieldValue, logger *zap.Logger) ([]byte, *FillReport, error) {
	st, err := store.Open(data, logger)
	if err != nil {
		return nil, nil, err
	}

	tree, err := NewTree(st)
	if err != nil {
		return nil, nil, err
	}
	if tree == nil {
		return nil, nil, pdferrors.NewMissingEntry("Catalog", "AcroForm")
	}

	report, err := newSynchronizer(st, tree, logger).run(values)
	if err != nil {
		return nil, nil, err
	}

	out, err := st.Save()
	if err != nil {
		return nil, nil, err
	}

	logger.Info("filled form",
		zap.Int("requested", len(values)),
		zap.Int("fields_updated", len(report.FieldsUpdated)),
		zap.Int("annotations_updated", report.AnnotationsUpdated),
		zap.Int("unmatched", len(report.Unmatched)),
	)
	return out, report, nil
}
