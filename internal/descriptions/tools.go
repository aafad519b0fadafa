package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	PDFFormFieldsDescription = `List every fillable field of a PDF form with its current value.

**When to use:** Before filling a form, to learn the exact field names the document expects.

**Why it's useful:** Field names in real forms are hierarchical ("topmostSubform[0].Page1[0].Name[0]") and rarely match the printed labels. The tool returns each field's fully qualified name, type, current and default values, flags and tooltip.

**Examples:**
• Discover a form's fields: "List the fields of tax-form-2024.pdf"
• Check what was already entered: "Show the current values in application.pdf"

**Common workflows:**
1. Form filling: pdf_form_fields → map user data to field names → pdf_form_fill
2. Data extraction: pdf_form_fields → read current values → store them elsewhere

**Best practices:** Use the tooltip to understand what a cryptically named field means. Check read-only and required flags before filling.`

	PDFFormFillDescription = `Fill PDF form fields by qualified name and write the result to a new file.

**When to use:** You know the field names (from pdf_form_fields) and want to set their values.

**Why it's useful:** Each value is written both to the field and to every page widget that displays it, so viewers show the new value consistently.

**Examples:**
• Fill a text field: values {"applicant.name": "Ada Lovelace"}
• Tick a check box: values {"agree": {"type": "choice", "value": "Yes"}}
• Set a number: values {"dependents": 2}

**Value format:** a JSON object mapping names to values. Bare strings are text, true/false are booleans, whole numbers are integers. Use {"type": "choice", "value": "Name"} for check boxes, radio buttons and list selections.

**Best practices:** Names that match nothing are reported back as unmatched and otherwise ignored. Re-run pdf_form_fields on the output to confirm.`

	PDFValidateFileDescription = `Verify PDF file integrity and readability before processing.

**When to use:** Before listing or filling fields, especially for user-supplied files.

**Why it's useful:** Identifies corrupted files early and tells you whether the document has a fillable form at all.

**Examples:**
• Upload verification: "Check user-uploaded contract.pdf is valid before filling"
• Form detection: "Does invoice.pdf contain any form fields?"

**Best practices:** Run this first in automated workflows handling unknown PDFs.`

	PDFServerInfoDescription = `Get server information, available tools and the PDF files in the working directory.

**When to use:** At the start of a session, to learn the configured directory, size limits and which forms are available.

**Examples:**
• "What PDF forms can you fill?"
• "Which directory are you working in?"`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"pdf_form_fields":   PDFFormFieldsDescription,
	"pdf_form_fill":     PDFFormFillDescription,
	"pdf_validate_file": PDFValidateFileDescription,
	"pdf_server_info":   PDFServerInfoDescription,
}

// GetToolDescription returns the description for a tool, or an empty string
func GetToolDescription(toolName string) string {
	return ToolDescriptions[toolName]
}

// GetAllToolNames returns the registered tool names in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
