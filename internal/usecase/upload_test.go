package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evaluasi/cv-evaluator/internal/domain"
	"github.com/evaluasi/cv-evaluator/internal/usecase"
)

func TestIngest_StoresBothDocuments(t *testing.T) {
	t.Parallel()
	docs := &docsStub{}
	svc := usecase.NewUploadService(docs)

	cvID, projID, err := svc.Ingest(context.Background(),
		[]byte("5 years Node.js backend, AWS, Docker"), "cv.txt",
		[]byte("Built an async evaluation service."), "report.txt")
	require.NoError(t, err)
	assert.NotEmpty(t, cvID)
	assert.NotEmpty(t, projID)

	cv := docs.docs[cvID]
	assert.Equal(t, domain.DocumentTypeCV, cv.Type)
	assert.Contains(t, cv.MIME, "text/")
}

func TestIngest_RejectsEmptyDocument(t *testing.T) {
	t.Parallel()
	svc := usecase.NewUploadService(&docsStub{})
	_, _, err := svc.Ingest(context.Background(), []byte("   "), "cv.txt", []byte("ok"), "report.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestIngest_RejectsBinaryContent(t *testing.T) {
	t.Parallel()
	svc := usecase.NewUploadService(&docsStub{})
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}
	_, _, err := svc.Ingest(context.Background(), png, "cv.png", []byte("ok"), "report.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
