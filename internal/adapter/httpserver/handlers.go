package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/evaluasi/cv-evaluator/internal/config"
	"github.com/evaluasi/cv-evaluator/internal/domain"
	"github.com/evaluasi/cv-evaluator/internal/usecase"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg         config.Config
	Uploads     usecase.UploadService
	Evaluate    usecase.EvaluateService
	Results     usecase.ResultService
	DBCheck     func(ctx context.Context) error
	QueueCheck  func(ctx context.Context) error
	QdrantCheck func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, uploads usecase.UploadService, eval usecase.EvaluateService, results usecase.ResultService, dbCheck, queueCheck, qdrantCheck func(context.Context) error) *Server {
	return &Server{
		Cfg:     cfg,
		Uploads: uploads, Evaluate: eval, Results: results,
		DBCheck: dbCheck, QueueCheck: queueCheck, QdrantCheck: qdrantCheck,
	}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// UploadHandler handles multipart upload of the cv and project report files.
func (s *Server) UploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
			return
		}
		maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes*2)
		if err := r.ParseMultipartForm(maxBytes * 2); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "too large") {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
					Code: "INVALID_ARGUMENT", Message: "payload too large",
					Details: map[string]any{"max_mb": s.Cfg.MaxUploadMB},
				}})
				return
			}
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		cvContent, cvName, err := formFileBytes(r, "cv")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		projContent, projName, err := formFileBytes(r, "project")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		cvID, projID, err := s.Uploads.Ingest(r.Context(), cvContent, cvName, projContent, projName)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"cv_id": cvID, "project_id": projID})
	}
}

func formFileBytes(r *http.Request, field string) ([]byte, string, error) {
	f, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("%w: missing %s file", domain.ErrInvalidArgument, field)
	}
	defer func() { _ = f.Close() }()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, "", fmt.Errorf("%w: reading %s: %v", domain.ErrInvalidArgument, field, err)
	}
	return content, header.Filename, nil
}

// EvaluateHandler creates a QUEUED job and admits it to the queue.
func (s *Server) EvaluateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var req struct {
			Author    string `json:"author"`
			VacancyID string `json:"vacancy_id" validate:"required"`
			CVID      string `json:"cv_id" validate:"required"`
			ProjectID string `json:"project_id" validate:"required"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			verrs := map[string]string{}
			var ve validator.ValidationErrors
			if errors.As(err, &ve) {
				for _, fe := range ve {
					verrs[strings.ToLower(fe.Field())] = fe.Tag()
				}
			}
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), verrs)
			return
		}
		jobID, err := s.Evaluate.Submit(r.Context(), req.Author, req.VacancyID, req.CVID, req.ProjectID)
		if err != nil {
			writeError(w, r, fmt.Errorf("submit: %w", err), nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": jobID, "status": string(domain.JobQueued)})
	}
}

// ResultHandler returns the job status and, when completed, its result.
func (s *Server) ResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			writeError(w, r, fmt.Errorf("%w: id required", domain.ErrInvalidArgument), nil)
			return
		}
		view, err := s.Results.Fetch(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// ReadyzHandler probes the external dependencies.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name string `json:"name"`
		OK   bool   `json:"ok"`
		Err  string `json:"error,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		checks := []check{}
		ok := true
		probe := func(name string, fn func(context.Context) error) {
			c := check{Name: name, OK: true}
			if fn != nil {
				if err := fn(ctx); err != nil {
					c.OK = false
					c.Err = err.Error()
					ok = false
				}
			}
			checks = append(checks, c)
		}
		probe("db", s.DBCheck)
		probe("queue", s.QueueCheck)
		probe("qdrant", s.QdrantCheck)
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]any{"ready": ok, "checks": checks})
	}
}
