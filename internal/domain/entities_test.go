package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evaluasi/cv-evaluator/internal/domain"
)

func TestJobStatus_Terminal(t *testing.T) {
	t.Parallel()
	assert.False(t, domain.JobQueued.Terminal())
	assert.False(t, domain.JobProcessing.Terminal())
	assert.True(t, domain.JobCompleted.Terminal())
	assert.True(t, domain.JobFailed.Terminal())
}
