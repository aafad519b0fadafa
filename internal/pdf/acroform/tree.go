package acroform

import (
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/store"
)

// Tree exposes the field hierarchy of one interactive form. It keeps no
// index: every query walks the store again.
type Tree struct {
	st    *store.Store
	roots types.Array
}

// NewTree returns the field tree of the document held by st, or nil when the
// catalog has no AcroForm entry.
func NewTree(st *store.Store) (*Tree, error) {
	catalog, err := st.Catalog()
	if err != nil {
		return nil, err
	}

	acroFormObj, found := catalog.Find("AcroForm")
	if !found {
		return nil, nil
	}

	acroForm, err := st.ResolveDict(acroFormObj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve AcroForm: %w", err)
	}
	if acroForm == nil {
		return nil, nil
	}

	roots, err := st.ResolveArray(acroForm["Fields"])
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Fields array: %w", err)
	}

	return &Tree{st: st, roots: roots}, nil
}

func handleOf(obj types.Object) (Handle, error) {
	ir, ok := obj.(types.IndirectRef)
	if !ok {
		return Handle{}, pdferrors.NewPDFError(pdferrors.ErrorTypeResolution,
			fmt.Sprintf("field entry must be an indirect reference, got %T", obj))
	}
	return Handle{ref: store.RefOf(ir)}, nil
}

func (t *Tree) dict(h Handle) (types.Dict, error) {
	return t.st.LookupDict(h.ref)
}

// partialName returns the T entry of d, if any
func (t *Tree) partialName(d types.Dict) (string, bool, error) {
	return t.textEntry(d, "T")
}

func (t *Tree) textEntry(d types.Dict, key string) (string, bool, error) {
	obj, found := d.Find(key)
	if !found || obj == nil {
		return "", false, nil
	}
	obj, err := t.st.Resolve(obj)
	if err != nil {
		return "", false, err
	}
	switch s := obj.(type) {
	case types.StringLiteral:
		return decodeStringLiteral(s), true, nil
	case types.HexLiteral:
		return decodeHexLiteral(s), true, nil
	default:
		return "", false, nil
	}
}

func isTerminal(d types.Dict) bool {
	ft, found := d.Find("FT")
	return found && ft != nil
}

// QualifiedName walks from h up the Parent chain and joins the partial names
// root to leaf with ".". Nodes without a partial name contribute nothing.
func (t *Tree) QualifiedName(h Handle) (string, error) {
	var parts []string
	seen := map[store.Ref]bool{}

	for cur := h.ref; ; {
		if seen[cur] {
			return "", pdferrors.NewResolutionError(cur.ObjNr, cur.GenNr, "cycle in parent chain")
		}
		seen[cur] = true

		d, err := t.st.LookupDict(cur)
		if err != nil {
			return "", err
		}

		name, ok, err := t.partialName(d)
		if err != nil {
			return "", err
		}
		if ok {
			parts = append(parts, name)
		}

		parentObj, found := d.Find("Parent")
		if !found || parentObj == nil {
			break
		}
		ir, ok := parentObj.(types.IndirectRef)
		if !ok {
			return "", pdferrors.NewResolutionError(cur.ObjNr, cur.GenNr, "parent entry is not an indirect reference")
		}
		cur = store.RefOf(ir)
	}

	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "."), nil
}

// TerminalDescendants returns every typed field below h in kid-array order,
// depth first, parent before children. A typed kid is still descended into.
func (t *Tree) TerminalDescendants(h Handle) ([]Handle, error) {
	var out []Handle
	path := map[store.Ref]bool{h.ref: true}
	if err := t.collectTerminals(h, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Tree) collectTerminals(h Handle, path map[store.Ref]bool, out *[]Handle) error {
	d, err := t.dict(h)
	if err != nil {
		return err
	}

	kids, err := t.st.ResolveArray(d["Kids"])
	if err != nil {
		return err
	}

	for _, kidObj := range kids {
		kid, err := handleOf(kidObj)
		if err != nil {
			return err
		}
		if path[kid.ref] {
			return pdferrors.NewResolutionError(kid.ref.ObjNr, kid.ref.GenNr, "cycle in field kids")
		}

		kd, err := t.dict(kid)
		if err != nil {
			return err
		}
		if isTerminal(kd) {
			*out = append(*out, kid)
		}

		path[kid.ref] = true
		err = t.collectTerminals(kid, path, out)
		delete(path, kid.ref)
		if err != nil {
			return err
		}
	}
	return nil
}

// AllTerminalFields flattens the form: each root if typed, followed by its
// terminal descendants, in root-array order.
func (t *Tree) AllTerminalFields() ([]Handle, error) {
	var out []Handle
	for _, rootObj := range t.roots {
		root, err := handleOf(rootObj)
		if err != nil {
			return nil, err
		}

		d, err := t.dict(root)
		if err != nil {
			return nil, err
		}
		if isTerminal(d) {
			out = append(out, root)
		}

		descendants, err := t.TerminalDescendants(root)
		if err != nil {
			return nil, err
		}
		out = append(out, descendants...)
	}
	return out, nil
}

// FindByName returns the first terminal field whose qualified name equals
// name, in AllTerminalFields order.
func (t *Tree) FindByName(name string) (Handle, bool, error) {
	all, err := t.AllTerminalFields()
	if err != nil {
		return Handle{}, false, err
	}

	for _, h := range all {
		qualified, err := t.QualifiedName(h)
		if err != nil {
			return Handle{}, false, err
		}
		if qualified == name {
			return h, true, nil
		}
	}
	return Handle{}, false, nil
}

// Field builds the FormField view of h
func (t *Tree) Field(h Handle) (FormField, error) {
	d, err := t.dict(h)
	if err != nil {
		return FormField{}, err
	}

	name, err := t.QualifiedName(h)
	if err != nil {
		return FormField{}, err
	}

	field := FormField{
		Name:   name,
		Type:   FieldTypeUnknown,
		Handle: h,
	}

	if ft, err := t.st.Resolve(d["FT"]); err != nil {
		return FormField{}, err
	} else if n, ok := ft.(types.Name); ok {
		field.Type = fieldTypeFromName(n.Value())
	}

	if field.CurrentValue, err = t.value(d, "V"); err != nil {
		return FormField{}, err
	}
	if field.DefaultValue, err = t.value(d, "DV"); err != nil {
		return FormField{}, err
	}

	if ff, err := t.st.Resolve(d["Ff"]); err != nil {
		return FormField{}, err
	} else if i, ok := ff.(types.Integer); ok {
		field.Flags = uint32(i.Value())
	}

	tooltip, ok, err := t.textEntry(d, "TU")
	if err != nil {
		return FormField{}, err
	}
	if ok {
		field.Tooltip = &tooltip
	}

	return field, nil
}

func (t *Tree) value(d types.Dict, key string) (*FieldValue, error) {
	obj, found := d.Find(key)
	if !found || obj == nil {
		return nil, nil
	}
	obj, err := t.st.Resolve(obj)
	if err != nil {
		return nil, err
	}
	return DecodeValue(obj), nil
}
