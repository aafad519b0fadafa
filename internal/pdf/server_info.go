package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/a3tai/mcp-pdf-forms/internal/descriptions"
)

const (
	directoryCacheTTL = 5 * time.Minute
	scanMaxDepth      = 5
	scanFileLimit     = 100
	scanTimeLimit     = 3 * time.Second
)

// DirectoryCache keeps directory listings for a fixed TTL
type DirectoryCache struct {
	entries map[string]*cacheEntry
	ttl     time.Duration
	mu      sync.RWMutex
}

type cacheEntry struct {
	result     *ScanResult
	lastUpdate time.Time
	scanning   bool
}

// ScanResult is one directory listing
type ScanResult struct {
	Files        []FileInfo
	FromCache    bool
	ScanTime     time.Duration
	FilesScanned int
	Truncated    bool
}

// NewDirectoryCache creates a directory cache with the given TTL
func NewDirectoryCache(ttl time.Duration) *DirectoryCache {
	return &DirectoryCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
	}
}

// Get returns the cached listing for path, or nil when absent or expired
func (c *DirectoryCache) Get(path string) *ScanResult {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[path]
	if !ok || entry.result == nil || time.Since(entry.lastUpdate) > c.ttl {
		return nil
	}
	cached := *entry.result
	cached.FromCache = true
	return &cached
}

// Set stores a listing
func (c *DirectoryCache) Set(path string, result *ScanResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = &cacheEntry{result: result, lastUpdate: time.Now()}
}

// TryStartScan marks path as being scanned. It returns false if another scan
// of path is already running.
func (c *DirectoryCache) TryStartScan(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[path]
	if !ok {
		entry = &cacheEntry{}
		c.entries[path] = entry
	}
	if entry.scanning {
		return false
	}
	entry.scanning = true
	return true
}

// FinishScan clears the scanning mark set by TryStartScan
func (c *DirectoryCache) FinishScan(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[path]; ok {
		entry.scanning = false
	}
}

// Clear removes expired entries
func (c *DirectoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for path, entry := range c.entries {
		if !entry.scanning && time.Since(entry.lastUpdate) > c.ttl {
			delete(c.entries, path)
		}
	}
}

// Len returns the number of entries, expired ones included
func (c *DirectoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// LazyDirectoryScanner lists PDF files under a directory within depth, count
// and time limits
type LazyDirectoryScanner struct {
	maxDepth  int
	fileLimit int
	timeLimit time.Duration
}

// NewLazyDirectoryScanner creates a scanner. Zero limits are unbounded.
func NewLazyDirectoryScanner(maxDepth, fileLimit int, timeLimit time.Duration) *LazyDirectoryScanner {
	return &LazyDirectoryScanner{
		maxDepth:  maxDepth,
		fileLimit: fileLimit,
		timeLimit: timeLimit,
	}
}

type scanState struct {
	start   time.Time
	visited map[string]bool
	result  *ScanResult
}

// ScanDirectory walks root. Hidden entries and symlinks are skipped.
func (s *LazyDirectoryScanner) ScanDirectory(ctx context.Context, root string) (*ScanResult, error) {
	st := &scanState{
		start:   time.Now(),
		visited: make(map[string]bool),
		result:  &ScanResult{Files: []FileInfo{}},
	}
	err := s.walk(ctx, root, 0, st)
	st.result.ScanTime = time.Since(st.start)
	return st.result, err
}

func (s *LazyDirectoryScanner) limitReached(st *scanState) bool {
	if s.fileLimit > 0 && len(st.result.Files) >= s.fileLimit {
		return true
	}
	return s.timeLimit > 0 && time.Since(st.start) > s.timeLimit
}

func (s *LazyDirectoryScanner) walk(ctx context.Context, dir string, depth int, st *scanState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.maxDepth > 0 && depth >= s.maxDepth {
		return nil
	}

	real, err := filepath.EvalSymlinks(dir)
	if err != nil || st.visited[real] {
		return nil
	}
	st.visited[real] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.limitReached(st) {
			st.result.Truncated = true
			return nil
		}

		st.result.FilesScanned++
		name := entry.Name()
		if strings.HasPrefix(name, ".") || entry.Type()&os.ModeSymlink != 0 {
			continue
		}

		path := filepath.Join(dir, name)
		if entry.IsDir() {
			if err := s.walk(ctx, path, depth+1, st); err != nil {
				return err
			}
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".pdf") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		st.result.Files = append(st.result.Files, FileInfo{
			Name:         name,
			Path:         path,
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
	}
	return nil
}

// PDFServerInfo builds the server info result with a cached directory listing
type PDFServerInfo struct {
	cache   *DirectoryCache
	scanner *LazyDirectoryScanner
	service *Service
}

// NewPDFServerInfo creates a server info handler for service
func NewPDFServerInfo(service *Service) *PDFServerInfo {
	return &PDFServerInfo{
		cache:   NewDirectoryCache(directoryCacheTTL),
		scanner: NewLazyDirectoryScanner(scanMaxDepth, scanFileLimit, scanTimeLimit),
		service: service,
	}
}

// GetServerInfo returns server settings, the tool list and the PDF files in
// the configured directory
func (p *PDFServerInfo) GetServerInfo(ctx context.Context, serverName, version string) (*PDFServerInfoResult, error) {
	dir := p.service.pathValidator.GetConfiguredDirectory()

	listing, err := p.listDirectory(ctx, dir)
	if err != nil {
		return nil, err
	}

	return &PDFServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DefaultDirectory:  dir,
		MaxFileSize:       p.service.maxFileSize,
		AllowOverwrite:    p.service.allowOverwrite,
		AvailableTools:    p.getAvailableTools(),
		DirectoryContents: listing.Files,
		Truncated:         listing.Truncated,
		UsageGuidance:     p.getUsageGuidance(),
	}, nil
}

func (p *PDFServerInfo) listDirectory(ctx context.Context, dir string) (*ScanResult, error) {
	if cached := p.cache.Get(dir); cached != nil {
		return cached, nil
	}

	// Another caller is scanning; answer with an empty listing rather than block.
	if !p.cache.TryStartScan(dir) {
		return &ScanResult{Files: []FileInfo{}}, nil
	}
	defer p.cache.FinishScan(dir)

	result, err := p.scanner.ScanDirectory(ctx, dir)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("directory scan cancelled: %w", err)
		}
		return &ScanResult{Files: []FileInfo{}}, nil
	}

	p.cache.Set(dir, result)
	return result, nil
}

func (p *PDFServerInfo) getAvailableTools() []ToolInfo {
	const pathParam = "path (required): PDF file, absolute or relative to the configured directory"

	return []ToolInfo{
		{
			Name:        "pdf_form_fields",
			Description: descriptions.GetToolDescription("pdf_form_fields"),
			Usage:       "Use this tool to discover the fully qualified names, types and current values of a form's fields.",
			Parameters:  pathParam,
		},
		{
			Name:        "pdf_form_fill",
			Description: descriptions.GetToolDescription("pdf_form_fill"),
			Usage:       "Use this tool to set field values and save the filled form to a new file.",
			Parameters: pathParam + ", output (required): destination .pdf path, " +
				"values (required): JSON object mapping qualified field names to values",
		},
		{
			Name:        "pdf_validate_file",
			Description: descriptions.GetToolDescription("pdf_validate_file"),
			Usage:       "Use this tool to check that a file is a readable PDF and whether it has a form.",
			Parameters:  pathParam,
		},
		{
			Name:        "pdf_server_info",
			Description: descriptions.GetToolDescription("pdf_server_info"),
			Usage:       "Use this tool to get server settings and the PDF files available for filling.",
			Parameters:  "No parameters required",
		},
	}
}

func (p *PDFServerInfo) getUsageGuidance() string {
	maxFileSizeMB := p.service.maxFileSize / (1024 * 1024)
	overwrite := "disabled: the output must be a new file"
	if p.service.allowOverwrite {
		overwrite = "enabled: existing files, including the input, may be replaced"
	}

	return fmt.Sprintf(`PDF Forms MCP Server Usage Guide:

1. DISCOVER FIELDS:
   - Use 'pdf_validate_file' to confirm a file is a PDF with a form
   - Use 'pdf_form_fields' to list fields by fully qualified name (e.g. "member.name")

2. FILL:
   - Call 'pdf_form_fill' with a JSON object of values keyed by qualified name
   - JSON strings are stored as text, booleans as booleans and whole numbers as integers
   - Use {"type": "choice", "value": "Yes"} to store a name, e.g. a checkbox state
   - Null and fractional numbers are rejected
   - The response lists the fields and widget annotations updated, and any names
     that matched nothing

3. NOTES:
   - Paths are resolved inside %s
   - Files up to %dMB are accepted
   - Overwrite is %s
   - No appearance streams are generated; viewers render the stored values`,
		p.service.pathValidator.GetConfiguredDirectory(), maxFileSizeMB, overwrite)
}

// ClearCache drops expired directory listings
func (p *PDFServerInfo) ClearCache() {
	p.cache.Clear()
}
