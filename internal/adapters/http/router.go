package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/resume-screener/internal/config"
	"github.com/kirillkom/resume-screener/internal/core/domain"
	"github.com/kirillkom/resume-screener/internal/core/ports"
)

const (
	defaultMaxUploadBytes = 10 << 20
	multipartMemory       = 2 << 20
)

type metricsProvider interface {
	Handler() http.Handler
	Middleware(service string, next http.Handler) http.Handler
}

type Router struct {
	cfg      config.Config
	screener ports.ResumeScreener
	catalog  ports.CategoryCatalog
	history  ports.PredictionReader
	metrics  metricsProvider
}

// NewRouter wires the API. history and metrics may be nil.
func NewRouter(
	cfg config.Config,
	screener ports.ResumeScreener,
	catalog ports.CategoryCatalog,
	history ports.PredictionReader,
	metrics metricsProvider,
) *Router {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	return &Router{
		cfg:      cfg,
		screener: screener,
		catalog:  catalog,
		history:  history,
		metrics:  metrics,
	}
}

func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /v1/screenings", rt.createScreening)
	api.HandleFunc("GET /v1/screenings", rt.listScreenings)
	api.HandleFunc("GET /v1/screenings/{id}", rt.getScreening)
	api.HandleFunc("GET /v1/categories", rt.listCategories)

	var guarded http.Handler = api
	guarded = backpressureMiddleware(
		guarded,
		rt.cfg.APIMaxInFlight,
		time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond,
	)
	guarded = rateLimitMiddleware(guarded, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.Handle("/v1/", guarded)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware("api", handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return recoverMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) createScreening(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rt.writeError(w, r, http.StatusRequestEntityTooLarge, "upload exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes", "too_large")
			return
		}
		rt.writeError(w, r, http.StatusBadRequest, "multipart form expected: "+err.Error(), domain.KindName(domain.ErrInvalidInput))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		rt.writeError(w, r, http.StatusBadRequest, "multipart field 'file' is required", domain.KindName(domain.ErrInvalidInput))
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		rt.writeError(w, r, http.StatusBadRequest, "read uploaded file: "+err.Error(), domain.KindName(domain.ErrInvalidInput))
		return
	}

	screening, err := rt.screener.Screen(r.Context(), fileHeader.Filename, payload)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}

	if !queryBool(r, "include_text") {
		out := screening.WithoutText()
		screening = &out
	}
	writeJSON(w, http.StatusOK, screening)
}

func (rt *Router) getScreening(w http.ResponseWriter, r *http.Request) {
	if rt.history == nil {
		rt.writeError(w, r, http.StatusNotFound, "prediction history is disabled", domain.KindName(domain.ErrNotFound))
		return
	}
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		rt.writeError(w, r, http.StatusBadRequest, "screening id is required", domain.KindName(domain.ErrInvalidInput))
		return
	}

	record, err := rt.history.GetByID(r.Context(), id)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (rt *Router) listScreenings(w http.ResponseWriter, r *http.Request) {
	if rt.history == nil {
		rt.writeError(w, r, http.StatusNotFound, "prediction history is disabled", domain.KindName(domain.ErrNotFound))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			rt.writeError(w, r, http.StatusBadRequest, "limit must be a non-negative integer", domain.KindName(domain.ErrInvalidInput))
			return
		}
		limit = n
	}

	records, err := rt.history.ListRecent(r.Context(), limit)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"screenings": records})
}

func (rt *Router) listCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": rt.catalog.Categories()})
}

type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeDomainError hides the cause of 5xx errors from the client and logs it instead.
func (rt *Router) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "screening_internal_error",
			"request_id", requestIDFromContext(r.Context()),
			"error", err,
		)
		message = "internal error"
	}
	rt.writeError(w, r, status, message, domain.KindName(err))
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, status int, message, kind string) {
	writeJSON(w, status, errorResponse{
		Error:     message,
		Kind:      kind,
		RequestID: requestIDFromContext(r.Context()),
	})
}

func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
