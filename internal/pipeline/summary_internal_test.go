package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSummary(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"bare json string", `"Hire this candidate."`, "Hire this candidate."},
		{"object with overallSummary", `{"overallSummary":"Strong fit, hire."}`, "Strong fit, hire."},
		{"object with non-string overallSummary", `{"overallSummary":{"verdict":"hire"}}`, `{"verdict":"hire"}`},
		{"other json object", `{"verdict":"hire"}`, `{"verdict":"hire"}`},
		{"plain prose", "A solid candidate overall.", "A solid candidate overall."},
		{"json array", `["a","b"]`, `["a","b"]`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, parseSummary(tc.content))
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "abc", truncate("abc", 8000))
	assert.Len(t, truncate(string(make([]byte, 9000)), 8000), 8000)
}
