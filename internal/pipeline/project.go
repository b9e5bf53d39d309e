package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/evaluasi/cv-evaluator/internal/domain"
)

// ProjectStructured is the intermediate extraction artifact of a project
// report, consumed only within one pipeline run.
type ProjectStructured struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Technologies     []string `json:"technologies"`
	Architecture     string   `json:"architecture"`
	KeyFeatures      []string `json:"keyFeatures"`
	Responsibilities []string `json:"responsibilities"`
	Challenges       []string `json:"challenges"`
	Outcomes         []string `json:"outcomes"`
}

// ProjectEvaluation is the model's verdict on a project report. ProjectScore
// is model-reported on a 0-10 scale, independent of the weighted aggregate.
type ProjectEvaluation struct {
	Scores                 domain.ProjectScores `json:"scores"`
	ProjectScore           float64              `json:"projectScore"`
	ProjectFeedback        string               `json:"projectFeedback"`
	ImprovementSuggestions []string             `json:"improvementSuggestions"`
}

const projectExtractSystem = "You are a senior software engineer summarizing a technical project. Focus on accuracy and clarity."

const projectExtractPromptFmt = `Extract a structured JSON summary of the following project report.

PROJECT REPORT:
%s

Return a **valid JSON object only** with the following schema:
{
  "name": string,
  "description": string,
  "technologies": string[],
  "architecture": string,
  "keyFeatures": string[],
  "responsibilities": string[],
  "challenges": string[],
  "outcomes": string[]
}

Guidelines:
- Keep arrays concise but informative.
- If some field is missing from the text, return an empty string or empty array.
`

const projectScoreSystem = "You are a project evaluation specialist. Be objective and adhere to the scoring rubric strictly."

const projectScorePromptFmt = `Evaluate the following project using the weighted rubric.

JOB ROLE: %s

MATCH SCORE: %.2f%%

STRUCTURED PROJECT SUMMARY:
%s

PROJECT SCORING RUBRIC:
%s

Scoring Rules (1-5):
Correctness (meets requirement):
  1 = Not implemented
  2 = Minimal attempt
  3 = Works partially
  4 = Works correctly
  5 = Fully correct + thoughtful
Code Quality (clean, modular, testable):
  1 = Poor
  2 = Some structure
  3 = Decent modularity
  4 = Good structure + some tests
  5 = Excellent quality + strong tests
Resilience (handles failures, retries):
  1 = Missing
  2 = Minimal
  3 = Partial handling
  4 = Solid handling
  5 = Robust, production-ready
Documentation (clear README, explanation of trade-offs):
  1 = Missing
  2 = Minimal
  3 = Adequate
  4 = Clear
  5 = Excellent + insightful
Creativity / Bonus (optional improvements like authentication, deployment, dashboards):
  1 = None
  2 = Very basic
  3 = Useful extras
  4 = Strong enhancements
  5 = Outstanding creativity

Return only **valid JSON**:
{
  "scores": {
    "correctness": number,
    "codeQuality": number,
    "resilience": number,
    "documentation": number,
    "creativity": number
  },
  "projectScore": number,
  "projectFeedback": string,
  "improvementSuggestions": string[]
}
`

// evaluateProject runs the project leg: retrieval, extraction, then rubric
// scoring against the vacancy's rubric text.
func (o *Orchestrator) evaluateProject(ctx domain.Context, projectText, vacancyID string) (ProjectEvaluation, error) {
	match, err := o.retrieve(ctx, projectText, vacancyID)
	if err != nil {
		return ProjectEvaluation{}, err
	}

	structured, err := GenerateStructured[ProjectStructured](ctx, o.ai, projectExtractSystem,
		fmt.Sprintf(projectExtractPromptFmt, truncate(projectText, maxPromptChars)), o.temperature)
	if err != nil {
		return ProjectEvaluation{}, fmt.Errorf("op=pipeline.project_extract: %w", err)
	}

	structuredJSON, _ := json.MarshalIndent(structured, "", "  ")
	prompt := fmt.Sprintf(projectScorePromptFmt,
		vacancyID,
		match.Similarity*100,
		structuredJSON,
		match.Vacancy.Rubric,
	)
	eval, err := GenerateStructured[ProjectEvaluation](ctx, o.ai, projectScoreSystem, prompt, o.temperature)
	if err != nil {
		return ProjectEvaluation{}, fmt.Errorf("op=pipeline.project_score: %w", err)
	}
	if err := eval.Scores.Validate(); err != nil {
		return ProjectEvaluation{}, fmt.Errorf("op=pipeline.project_score: %v: %w", err, domain.ErrMalformedResponse)
	}
	return eval, nil
}
