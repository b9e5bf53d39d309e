package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/evaluasi/cv-evaluator/internal/domain"
)

const summarySystem = "You are a hiring manager providing final candidate assessment. Be professional and decisive."

const summaryPromptFmt = `Provide a concise 3-5 sentence hiring-manager assessment based on the
weighted scores and feedback below.

CV EVALUATION:
- Match Rate: %.1f%%
- Weighted Score (0-5): %.2f
- Feedback: %s
- Strengths: %s
- Gaps: %s
- Technical Skills: %d/5
- Experience: %d/5
- Achievements: %d/5
- Cultural Fit: %d/5

PROJECT EVALUATION:
- Weighted Score (0-5): %.2f
- Feedback: %s
- Correctness: %d/5
- Code Quality: %d/5
- Resilience: %d/5
- Documentation: %d/5
- Creativity: %d/5
- Improvement Suggestions: %s

Overall Weighted Score (0-5): %.2f

Return only a polished paragraph summarizing key strengths, weaknesses,
fit for the role, and a clear hire/no-hire recommendation.
`

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}

// finalSummary issues the synthesis call and parses its loosely-shaped
// response into a plain narrative.
func (o *Orchestrator) finalSummary(ctx domain.Context, cvEval CVEvaluation, projectEval ProjectEvaluation) (string, error) {
	cvWeighted := domain.WeightedCV(cvEval.Scores)
	projectWeighted := domain.WeightedProject(projectEval.Scores)
	overall := (cvWeighted + projectWeighted) / 2

	prompt := fmt.Sprintf(summaryPromptFmt,
		cvEval.CVMatchRate*100,
		cvWeighted,
		cvEval.CVFeedback,
		joinOr(cvEval.Strengths, "None"),
		joinOr(cvEval.Gaps, ""),
		cvEval.Scores.TechnicalSkills,
		cvEval.Scores.Experience,
		cvEval.Scores.Achievements,
		cvEval.Scores.CulturalFit,
		projectWeighted,
		projectEval.ProjectFeedback,
		projectEval.Scores.Correctness,
		projectEval.Scores.CodeQuality,
		projectEval.Scores.Resilience,
		projectEval.Scores.Documentation,
		projectEval.Scores.Creativity,
		joinOr(projectEval.ImprovementSuggestions, ""),
		overall,
	)

	content, _, err := o.ai.ChatJSON(ctx, summarySystem, prompt, o.temperature)
	if err != nil {
		return "", fmt.Errorf("op=pipeline.summary: %w", err)
	}
	return parseSummary(content), nil
}

// parseSummary tolerates the two shapes a model returns for the narrative: a
// bare JSON string or an object carrying an overallSummary field. Anything
// else is passed through: non-JSON as the raw text, other JSON stringified.
func parseSummary(content string) string {
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return content
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asObject); err == nil {
		if field, ok := asObject["overallSummary"]; ok {
			if err := json.Unmarshal(field, &asString); err == nil {
				return asString
			}
			return string(field)
		}
	}
	return string(raw)
}
