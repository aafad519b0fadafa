package chi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/acroform"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/testpdf"
)

func newTestRouter(t *testing.T, maxFileSize int64, opts RouterOptions) http.Handler {
	t.Helper()
	service, err := pdf.NewService(maxFileSize, t.TempDir())
	require.NoError(t, err)
	return NewRouter(NewServer(service, "1.2.3", nil), opts)
}

func multipartBody(t *testing.T, doc []byte, values string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if doc != nil {
		part, err := mw.CreateFormFile("file", "form.pdf")
		require.NoError(t, err)
		_, err = part.Write(doc)
		require.NoError(t, err)
	}
	if values != "" {
		require.NoError(t, mw.WriteField("values", values))
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t, 1<<20, RouterOptions{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, HealthResponse{Status: "ok", Version: "1.2.3"}, resp)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, 1<<20, RouterOptions{})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pdf_forms_http_requests_total")
}

func TestListFields(t *testing.T) {
	router := newTestRouter(t, 1<<20, RouterOptions{})

	t.Run("raw body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/forms/fields",
			bytes.NewReader(testpdf.SplitWidgetForm(testpdf.Plain)))
		req.Header.Set("Content-Type", "application/pdf")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var result pdf.PDFFormFieldsResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
		assert.True(t, result.HasForm)
		assert.Equal(t, 5, result.Count)
		assert.Equal(t, "A.B.C[1]", result.Fields[0].Name)
		require.NotNil(t, result.Fields[0].CurrentValue)
		assert.Equal(t, acroform.Text("nested"), *result.Fields[0].CurrentValue)
	})

	t.Run("multipart", func(t *testing.T) {
		body, contentType := multipartBody(t, testpdf.MemberForm(testpdf.ObjectStreams), "")
		req := httptest.NewRequest(http.MethodPost, "/v1/forms/fields", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var result pdf.PDFFormFieldsResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
		require.Len(t, result.Fields, 1)
		assert.Equal(t, testpdf.MemberFieldName, result.Fields[0].Name)
	})

	t.Run("no form", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/forms/fields", bytes.NewReader(testpdf.NoForm(testpdf.Plain)))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var result pdf.PDFFormFieldsResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
		assert.False(t, result.HasForm)
		assert.Empty(t, result.Fields)
	})
}

func TestListFieldsErrors(t *testing.T) {
	router := newTestRouter(t, 1024, RouterOptions{})

	tests := []struct {
		name       string
		body       []byte
		wantStatus int
		wantCode   string
	}{
		{name: "empty", body: nil, wantStatus: http.StatusBadRequest, wantCode: CodeParse},
		{name: "not a pdf", body: []byte("hello"), wantStatus: http.StatusBadRequest, wantCode: CodeParse},
		{name: "broken pdf", body: []byte("%PDF-1.7\ngarbage"), wantStatus: http.StatusBadRequest, wantCode: CodeParse},
		{
			name:       "too large",
			body:       append([]byte("%PDF-1.7\n"), make([]byte, 2048)...),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   CodeTooLarge,
		},
		{
			name:       "dangling parent",
			body:       testpdf.DanglingParentForm(testpdf.Plain),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   CodeResolution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/forms/fields", bytes.NewReader(tt.body)))

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestFill(t *testing.T) {
	router := newTestRouter(t, 1<<20, RouterOptions{})

	body, contentType := multipartBody(t, testpdf.SplitWidgetForm(testpdf.Plain),
		`{"name": "Ada", "agree": {"type": "choice", "value": "Yes"}, "ghost": "x"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/forms/fill", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "2", rec.Header().Get(HeaderFieldsUpdated))
	assert.Equal(t, "3", rec.Header().Get(HeaderAnnotationsUpdated))
	assert.Equal(t, "ghost", rec.Header().Get(HeaderUnmatched))

	doc, err := acroform.Load(rec.Body.Bytes())
	require.NoError(t, err)
	fields, err := doc.Fields()
	require.NoError(t, err)

	got := map[string]string{}
	for _, f := range fields {
		if f.CurrentValue != nil {
			got[f.Name] = f.CurrentValue.String()
		}
	}
	assert.Equal(t, "Ada", got["name"])
	assert.Equal(t, "/Yes", got["agree"])
}

func TestFillErrors(t *testing.T) {
	router := newTestRouter(t, 1<<20, RouterOptions{})

	tests := []struct {
		name       string
		doc        []byte
		values     string
		raw        bool
		wantStatus int
		wantCode   string
	}{
		{name: "missing values", doc: testpdf.MemberForm(testpdf.Plain), wantStatus: http.StatusBadRequest, wantCode: CodeBadRequest},
		{name: "invalid values", doc: testpdf.MemberForm(testpdf.Plain), values: `{"a": 1.5}`, wantStatus: http.StatusBadRequest, wantCode: CodeBadRequest},
		{name: "missing file", values: `{}`, wantStatus: http.StatusBadRequest, wantCode: CodeParse},
		{name: "raw body has no values", doc: testpdf.MemberForm(testpdf.Plain), raw: true, wantStatus: http.StatusBadRequest, wantCode: CodeBadRequest},
		{name: "no form", doc: testpdf.NoForm(testpdf.Plain), values: `{"a": "b"}`, wantStatus: http.StatusUnprocessableEntity, wantCode: CodeMissingEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.raw {
				req = httptest.NewRequest(http.MethodPost, "/v1/forms/fill", bytes.NewReader(tt.doc))
			} else {
				body, contentType := multipartBody(t, tt.doc, tt.values)
				req = httptest.NewRequest(http.MethodPost, "/v1/forms/fill", body)
				req.Header.Set("Content-Type", contentType)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestNotFoundAndMethod(t *testing.T) {
	router := newTestRouter(t, 1<<20, RouterOptions{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/forms/fill", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMCPMount(t *testing.T) {
	var hits []string
	mcp := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
	})
	router := newTestRouter(t, 1<<20, RouterOptions{MCP: mcp})

	for _, path := range []string{"/sse", "/message"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader("{}")))
		assert.Equal(t, http.StatusAccepted, rec.Code, path)
	}
	assert.Equal(t, []string{"/sse", "/message"}, hits)
}

func TestRecoverer(t *testing.T) {
	handler := jsonRecoverer(nopLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, CodeInternal, decodeError(t, rec).Code)
}
