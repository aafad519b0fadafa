// Package chi exposes the forms service as a JSON/PDF HTTP API.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	logpkg "github.com/a3tai/mcp-pdf-forms/internal/logger"
	"github.com/a3tai/mcp-pdf-forms/internal/metrics"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/acroform"
	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

// Error codes returned in ErrorResponse.Code
const (
	CodeBadRequest   = "bad_request"
	CodeUnauthorized = "unauthorized"
	CodeTooLarge     = "file_too_large"
	CodeParse        = "parse_error"
	CodeMissingEntry = "missing_entry"
	CodeResolution   = "resolution_error"
	CodeInternal     = "internal_error"
)

// Report headers set on fill responses
const (
	HeaderFieldsUpdated      = "X-Fill-Fields-Updated"
	HeaderAnnotationsUpdated = "X-Fill-Annotations-Updated"
	HeaderUnmatched          = "X-Fill-Unmatched"
)

// multipart bodies carry a little framing on top of the document
const multipartOverhead = 1 << 20

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// errorHandler tries to handle a service error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the forms HTTP API
type Server struct {
	service       *pdf.Service
	version       string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(service *pdf.Service, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		service: service,
		version: version,
		logger:  logger,
		errorHandlers: []errorHandler{
			sentinelHandler(pdf.ErrFileTooLarge, http.StatusRequestEntityTooLarge, CodeTooLarge),
			sentinelHandler(pdferrors.ErrParse, http.StatusBadRequest, CodeParse),
			sentinelHandler(pdferrors.ErrMissingEntry, http.StatusUnprocessableEntity, CodeMissingEntry),
			sentinelHandler(pdferrors.ErrResolution, http.StatusUnprocessableEntity, CodeResolution),
		},
	}
}

// RouterOptions configures NewRouter
type RouterOptions struct {
	APIKeys []string
	// MCP, when set, is mounted at /sse and /message
	MCP http.Handler
}

// NewRouter wires the API, health, metrics and optional MCP endpoints
func NewRouter(s *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(opts.APIKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/forms", func(r chi.Router) {
		r.Post("/fields", s.ListFields)
		r.Post("/fill", s.Fill)
	})

	if opts.MCP != nil {
		r.Handle("/sse", opts.MCP)
		r.Handle("/message", opts.MCP)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeBadRequest, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	return r
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: s.version})
}

// ListFields handles POST /v1/forms/fields. The document is either the raw
// request body or the "file" part of a multipart form.
func (s *Server) ListFields(w http.ResponseWriter, r *http.Request) {
	data, _, err := s.readUpload(w, r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	result, err := s.service.FormFieldsFromData(data)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Fill handles POST /v1/forms/fill. It takes a multipart form with a "file"
// part and a "values" part holding a JSON object, and answers with the
// filled document. The fill report travels in X-Fill-* headers.
func (s *Server) Fill(w http.ResponseWriter, r *http.Request) {
	data, rawValues, err := s.readUpload(w, r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if rawValues == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "values part is required")
		return
	}

	var values map[string]acroform.FieldValue
	if err := json.Unmarshal([]byte(rawValues), &values); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid values: "+err.Error())
		return
	}

	out, report, err := s.service.FillData(data, values)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	logpkg.FromContext(r.Context()).Debug("filled uploaded form",
		zap.Strings("fields", report.FieldsUpdated),
		zap.Int("annotations", report.AnnotationsUpdated),
	)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.Header().Set(HeaderFieldsUpdated, strconv.Itoa(len(report.FieldsUpdated)))
	w.Header().Set(HeaderAnnotationsUpdated, strconv.Itoa(report.AnnotationsUpdated))
	if len(report.Unmatched) > 0 {
		w.Header().Set(HeaderUnmatched, strings.Join(report.Unmatched, ","))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// readUpload returns the document and, for multipart requests, the "values"
// part
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	limit := s.service.GetMaxFileSize()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, "", uploadError(err)
		}
		return data, "", nil
	}

	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, "", uploadError(err)
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, "", pdferrors.NewParseError(fmt.Errorf("file part is required: %w", err))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", uploadError(err)
	}
	return data, r.FormValue("values"), nil
}

func uploadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: request body exceeds %d bytes", pdf.ErrFileTooLarge, maxErr.Limit)
	}
	return pdferrors.NewParseError(fmt.Errorf("failed to read upload: %w", err))
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("request rejected", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
