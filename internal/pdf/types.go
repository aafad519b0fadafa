package pdf

import "github.com/a3tai/mcp-pdf-forms/internal/pdf/acroform"

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Request Types

// PDFFormFieldsRequest represents a request to list the form fields of a PDF file
type PDFFormFieldsRequest struct {
	Path string `json:"path"`
}

// PDFFormFillRequest represents a request to fill form fields and save the result
type PDFFormFillRequest struct {
	Path       string                         `json:"path"`
	OutputPath string                         `json:"output_path"`
	Values     map[string]acroform.FieldValue `json:"values"`
}

// PDFValidateFileRequest represents a request to validate a PDF file
type PDFValidateFileRequest struct {
	Path string `json:"path"`
}

// PDFServerInfoRequest represents a request to get server information and capabilities
type PDFServerInfoRequest struct {
	// No parameters needed for server info
}

// Response Types

// PDFFormFieldsResult lists the terminal fields of a form
type PDFFormFieldsResult struct {
	Path    string               `json:"path,omitempty"`
	Pages   int                  `json:"pages"`
	HasForm bool                 `json:"has_form"`
	Fields  []acroform.FormField `json:"fields"`
	Count   int                  `json:"count"`
}

// PDFFormFillResult describes a completed fill
type PDFFormFillResult struct {
	Path       string              `json:"path,omitempty"`
	OutputPath string              `json:"output_path,omitempty"`
	Size       int64               `json:"size"`
	Report     acroform.FillReport `json:"report"`
}

// PDFValidateFileResult represents the result of a PDF validation operation
type PDFValidateFileResult struct {
	Valid   bool   `json:"valid"`
	Path    string `json:"path"`
	Pages   int    `json:"pages,omitempty"`
	HasForm bool   `json:"has_form"`
	Message string `json:"message,omitempty"`
}

// PDFServerInfoResult represents server information and usage guidance
type PDFServerInfoResult struct {
	ServerName        string     `json:"server_name"`
	Version           string     `json:"version"`
	DefaultDirectory  string     `json:"default_directory"`
	MaxFileSize       int64      `json:"max_file_size"`
	AllowOverwrite    bool       `json:"allow_overwrite"`
	AvailableTools    []ToolInfo `json:"available_tools"`
	DirectoryContents []FileInfo `json:"directory_contents"`
	Truncated         bool       `json:"truncated"`
	UsageGuidance     string     `json:"usage_guidance"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}
