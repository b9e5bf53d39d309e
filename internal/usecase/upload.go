// Package usecase contains the application services around the pipeline:
// document ingestion, job submission, and result reads.
package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/evaluasi/cv-evaluator/internal/domain"
)

// UploadService ingests document texts and persists them. Binary extraction
// happens upstream; only plain text enters the pipeline.
type UploadService struct {
	Docs domain.DocumentRepository
}

// NewUploadService constructs an UploadService with the given repository.
func NewUploadService(d domain.DocumentRepository) UploadService { return UploadService{Docs: d} }

// Ingest validates and stores the CV and project report, returning their
// generated ids. Content that does not sniff as text is rejected.
func (s UploadService) Ingest(ctx domain.Context, cvContent []byte, cvName string, projContent []byte, projName string) (string, string, error) {
	cvText, cvMIME, err := asText(cvContent)
	if err != nil {
		return "", "", fmt.Errorf("cv: %w", err)
	}
	projText, projMIME, err := asText(projContent)
	if err != nil {
		return "", "", fmt.Errorf("project: %w", err)
	}
	now := time.Now().UTC()
	cvID, err := s.Docs.Create(ctx, domain.Document{
		Type: domain.DocumentTypeCV, Text: cvText, Filename: cvName,
		MIME: cvMIME, Size: int64(len(cvText)), CreatedAt: now,
	})
	if err != nil {
		return "", "", err
	}
	projID, err := s.Docs.Create(ctx, domain.Document{
		Type: domain.DocumentTypeProject, Text: projText, Filename: projName,
		MIME: projMIME, Size: int64(len(projText)), CreatedAt: now,
	})
	if err != nil {
		return "", "", err
	}
	return cvID, projID, nil
}

func asText(content []byte) (string, string, error) {
	text := strings.TrimSpace(string(content))
	if text == "" {
		return "", "", fmt.Errorf("%w: empty document", domain.ErrInvalidArgument)
	}
	mt := mimetype.Detect(content)
	if !strings.HasPrefix(mt.String(), "text/") {
		return "", "", fmt.Errorf("%w: unsupported content type %s", domain.ErrInvalidArgument, mt.String())
	}
	return text, mt.String(), nil
}
