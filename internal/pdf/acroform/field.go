package acroform

import (
	"fmt"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf/store"
)

// FieldType represents the FT entry of a terminal field
type FieldType string

const (
	FieldTypeText      FieldType = "text"
	FieldTypeButton    FieldType = "button"
	FieldTypeChoice    FieldType = "choice"
	FieldTypeSignature FieldType = "signature"
	FieldTypeUnknown   FieldType = "unknown"
)

func fieldTypeFromName(name string) FieldType {
	switch name {
	case "Tx":
		return FieldTypeText
	case "Btn":
		return FieldTypeButton
	case "Ch":
		return FieldTypeChoice
	case "Sig":
		return FieldTypeSignature
	default:
		return FieldTypeUnknown
	}
}

// Field flag bits shared by all field types (Ff entry)
const (
	FlagReadOnly uint32 = 1 << 0
	FlagRequired uint32 = 1 << 1
	FlagNoExport uint32 = 1 << 2
)

// Handle identifies a field dictionary inside the document it was read from
type Handle struct {
	ref store.Ref
}

// ObjectNumber returns the object number of the field dictionary
func (h Handle) ObjectNumber() int { return h.ref.ObjNr }

func (h Handle) String() string { return h.ref.String() }

// FormField is a snapshot of one terminal field. It is built fresh on every
// query and holds no live reference into the document.
type FormField struct {
	// Name is the fully qualified name, e.g. "parent.child.field"
	Name         string      `json:"name"`
	Type         FieldType   `json:"type"`
	CurrentValue *FieldValue `json:"current_value,omitempty"`
	// DefaultValue comes from the DV entry
	DefaultValue *FieldValue `json:"default_value,omitempty"`
	Flags        uint32      `json:"flags"`
	// Tooltip comes from the TU entry
	Tooltip *string `json:"tooltip,omitempty"`
	Handle  Handle  `json:"-"`
}

// ReadOnly reports whether the read-only flag is set
func (f FormField) ReadOnly() bool { return f.Flags&FlagReadOnly != 0 }

// Required reports whether the required flag is set
func (f FormField) Required() bool { return f.Flags&FlagRequired != 0 }

// NoExport reports whether the no-export flag is set
func (f FormField) NoExport() bool { return f.Flags&FlagNoExport != 0 }

func (f FormField) String() string {
	value := "<none>"
	if f.CurrentValue != nil {
		value = fmt.Sprintf("%q", f.CurrentValue.String())
	}
	return fmt.Sprintf("%s (%s) = %s", f.Name, f.Type, value)
}
