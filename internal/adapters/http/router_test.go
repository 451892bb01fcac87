package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/resume-screener/internal/config"
	"github.com/kirillkom/resume-screener/internal/core/domain"
	"github.com/kirillkom/resume-screener/internal/core/ports"
	"github.com/kirillkom/resume-screener/internal/observability/metrics"
)

type screenerFake struct {
	err      error
	filename string
	payload  []byte
}

func (f *screenerFake) Screen(_ context.Context, filename string, payload []byte) (*domain.Screening, error) {
	f.filename = filename
	f.payload = payload
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Screening{
		ID:             "scr-1",
		Filename:       filename,
		Format:         domain.FormatFromFilename(filename),
		CategoryID:     1,
		Category:       "Java Developer",
		RawText:        string(payload),
		NormalizedText: strings.TrimSpace(string(payload)),
		CreatedAt:      time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC),
	}, nil
}

type catalogFake []string

func (c catalogFake) Categories() []string { return c }

type historyFake struct {
	err     error
	records []domain.PredictionRecord
	limit   int
}

func (f *historyFake) GetByID(_ context.Context, id string) (*domain.PredictionRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.records {
		if f.records[i].ID == id {
			return &f.records[i], nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get prediction", errors.New(id))
}

func (f *historyFake) ListRecent(_ context.Context, limit int) ([]domain.PredictionRecord, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func newTestHandler(cfg config.Config, screener *screenerFake, history *historyFake) http.Handler {
	var reader ports.PredictionReader
	if history != nil {
		reader = history
	}
	return NewRouter(cfg, screener, catalogFake{"HR", "Java Developer"}, reader, metrics.NewHTTPServerMetrics("api")).Handler()
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return &body, writer.FormDataContentType()
}

func postScreening(t *testing.T, handler http.Handler, query, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartUpload(t, "file", filename, content)
	req := httptest.NewRequest(http.MethodPost, "/v1/screenings"+query, body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestHealthzEndpoint(t *testing.T) {
	handler := newTestHandler(config.Config{}, &screenerFake{}, nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestCreateScreeningSuccess(t *testing.T) {
	screener := &screenerFake{}
	handler := newTestHandler(config.Config{}, screener, nil)

	res := postScreening(t, handler, "", "cv.txt", []byte("Java Spring Hibernate"))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if screener.filename != "cv.txt" || string(screener.payload) != "Java Spring Hibernate" {
		t.Fatalf("screener got %q / %q", screener.filename, screener.payload)
	}

	var got map[string]any
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got["category"] != "Java Developer" || got["format"] != "txt" {
		t.Fatalf("unexpected response: %+v", got)
	}
	if _, ok := got["raw_text"]; ok {
		t.Fatalf("text must be omitted unless requested: %+v", got)
	}
}

func TestCreateScreeningIncludesTextOnRequest(t *testing.T) {
	handler := newTestHandler(config.Config{}, &screenerFake{}, nil)

	res := postScreening(t, handler, "?include_text=true", "cv.txt", []byte("Java "))
	var got map[string]any
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got["raw_text"] != "Java " || got["normalized_text"] != "Java" {
		t.Fatalf("expected text fields, got %+v", got)
	}
}

func TestCreateScreeningMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unsupported", domain.WrapError(domain.ErrUnsupportedFormat, "extract", errors.New(".csv")), http.StatusUnsupportedMediaType},
		{"extraction", domain.WrapError(domain.ErrExtractionFailure, "extract pdf", errors.New("xref")), http.StatusUnprocessableEntity},
		{"inconsistent", domain.WrapError(domain.ErrArtifactInconsistent, "resolve", errors.New("id 99")), http.StatusInternalServerError},
		{"temporary", domain.WrapError(domain.ErrTemporary, "nats", errors.New("no responders")), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		handler := newTestHandler(config.Config{}, &screenerFake{err: tc.err}, nil)
		res := postScreening(t, handler, "", "cv.pdf", []byte("%PDF"))
		if res.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, res.Code)
		}
		var body errorResponse
		if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
			t.Fatalf("%s: decode error body: %v", tc.name, err)
		}
		if body.Kind != domain.KindName(tc.err) || body.RequestID == "" {
			t.Fatalf("%s: unexpected error body %+v", tc.name, body)
		}
		if tc.want == http.StatusInternalServerError && strings.Contains(body.Error, "id 99") {
			t.Fatalf("%s: internal cause leaked to client: %q", tc.name, body.Error)
		}
	}
}

func TestCreateScreeningMissingMultipartField(t *testing.T) {
	handler := newTestHandler(config.Config{}, &screenerFake{}, nil)

	body, contentType := multipartUpload(t, "document", "cv.txt", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/v1/screenings", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/screenings", bytes.NewBufferString("plain-text"))
	req.Header.Set("Content-Type", "text/plain")
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-multipart body, got %d", res.Code)
	}
}

func TestCreateScreeningRejectsOversizedUpload(t *testing.T) {
	handler := newTestHandler(config.Config{MaxUploadBytes: 512}, &screenerFake{}, nil)

	res := postScreening(t, handler, "", "cv.txt", bytes.Repeat([]byte("a"), 4096))
	if res.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", res.Code)
	}
}

func TestGetScreeningReturns404WhenHistoryDisabled(t *testing.T) {
	handler := newTestHandler(config.Config{}, &screenerFake{}, nil)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/screenings/scr-1", nil))
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestGetScreeningFromHistory(t *testing.T) {
	history := &historyFake{records: []domain.PredictionRecord{{ID: "scr-1", Category: "HR", Format: domain.FormatDOCX}}}
	handler := newTestHandler(config.Config{}, &screenerFake{}, history)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/screenings/scr-1", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/screenings/missing", nil))
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", res.Code)
	}
}

func TestListScreeningsPassesLimit(t *testing.T) {
	history := &historyFake{records: []domain.PredictionRecord{{ID: "a"}, {ID: "b"}}}
	handler := newTestHandler(config.Config{}, &screenerFake{}, history)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/screenings?limit=5", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if history.limit != 5 {
		t.Fatalf("expected limit 5, got %d", history.limit)
	}
	var got struct {
		Screenings []domain.PredictionRecord `json:"screenings"`
	}
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got.Screenings) != 2 {
		t.Fatalf("expected 2 records, got %+v", got)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/screenings?limit=abc", nil))
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed limit, got %d", res.Code)
	}
}

func TestListCategories(t *testing.T) {
	handler := newTestHandler(config.Config{}, &screenerFake{}, nil)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/categories", nil))
	var got struct {
		Categories []string `json:"categories"`
	}
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got.Categories) != 2 || got.Categories[0] != "HR" {
		t.Fatalf("unexpected categories %+v", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestHandler(config.Config{}, &screenerFake{}, nil)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "screener_http_requests_total") {
		t.Fatalf("expected http metrics in exposition")
	}
}

func TestMapErrorToHTTPStatusDefaultsTo500(t *testing.T) {
	if got := mapErrorToHTTPStatus(errors.New("boom")); got != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", got)
	}
	if got := mapErrorToHTTPStatus(domain.WrapError(domain.ErrInvalidInput, "op", errors.New("x"))); got != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", got)
	}
}
