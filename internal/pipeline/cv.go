package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/evaluasi/cv-evaluator/internal/domain"
)

// CVStructured is the intermediate extraction artifact of a CV. It lives
// only within one pipeline run and is never persisted.
type CVStructured struct {
	Skills struct {
		Technical []string `json:"technical"`
		Soft      []string `json:"soft"`
	} `json:"skills"`
	Experience []struct {
		Role         string   `json:"role"`
		Years        float64  `json:"years"`
		Technologies []string `json:"technologies"`
	} `json:"experience"`
	Projects []struct {
		Name         string   `json:"name"`
		Description  string   `json:"description"`
		Technologies []string `json:"technologies"`
	} `json:"projects"`
}

// CVEvaluation is the model's verdict on a CV. CVMatchRate is model-reported
// and independent of the weighted aggregate over Scores.
type CVEvaluation struct {
	Scores      domain.CVScores `json:"scores"`
	CVMatchRate float64         `json:"cvMatchRate"`
	CVFeedback  string          `json:"cvFeedback"`
	Strengths   []string        `json:"strengths"`
	Gaps        []string        `json:"gaps"`
}

const cvExtractSystem = "You are an expert at extracting structured information from CVs. Be accurate and thorough."

const cvExtractPromptFmt = `Extract structured information from this CV:

CV CONTENT:
%s

Return valid JSON:
{
  "skills": {"technical": string[], "soft": string[]},
  "experience": [{"role": string, "years": number, "technologies": string[]}],
  "projects": [{"name": string, "description": string, "technologies": string[]}]
}
`

const cvScoreSystem = "You are a CV evaluation specialist. Be objective and follow the rubric precisely."

const cvScorePromptFmt = `Evaluate the candidate CV against the job requirements using this WEIGHTED rubric.

JOB TITLE: %s

MATCH SCORE: %.2f%%

JOB DESCRIPTION:
%s

STRUCTURED CV DATA:
%s

Scoring Rules (1-5):
Technical Skills Match:
  1 = Irrelevant skills
  2 = Few overlaps
  3 = Partial match
  4 = Strong match
  5 = Excellent + AI/LLM exposure
Experience Level:
  1 = <1 yr / trivial projects
  2 = 1-2 yrs
  3 = 2-3 yrs mid-scale projects
  4 = 3-4 yrs solid track record
  5 = 5+ yrs / high-impact projects
Relevant Achievements:
  1 = No clear achievements
  2 = Minimal improvements
  3 = Some measurable outcomes
  4 = Significant contributions
  5 = Major measurable impact
Cultural / Collaboration Fit:
  1 = Not demonstrated
  2 = Minimal
  3 = Average
  4 = Good
  5 = Excellent and well-demonstrated

Return only valid JSON:
{
  "scores": {
    "technicalSkills": number,
    "experience": number,
    "achievements": number,
    "culturalFit": number
  },
  "cvMatchRate": number,
  "cvFeedback": string,
  "strengths": string[],
  "gaps": string[]
}
`

// evaluateCV runs the CV leg: retrieval, extraction, then rubric scoring.
func (o *Orchestrator) evaluateCV(ctx domain.Context, cvText, vacancyID string) (CVEvaluation, error) {
	match, err := o.retrieve(ctx, cvText, vacancyID)
	if err != nil {
		return CVEvaluation{}, err
	}

	structured, err := GenerateStructured[CVStructured](ctx, o.ai, cvExtractSystem,
		fmt.Sprintf(cvExtractPromptFmt, truncate(cvText, maxPromptChars)), o.temperature)
	if err != nil {
		return CVEvaluation{}, fmt.Errorf("op=pipeline.cv_extract: %w", err)
	}

	structuredJSON, _ := json.MarshalIndent(structured, "", "  ")
	prompt := fmt.Sprintf(cvScorePromptFmt,
		match.Vacancy.Title,
		match.Similarity*100,
		match.Vacancy.Description,
		structuredJSON,
	)
	eval, err := GenerateStructured[CVEvaluation](ctx, o.ai, cvScoreSystem, prompt, o.temperature)
	if err != nil {
		return CVEvaluation{}, fmt.Errorf("op=pipeline.cv_score: %w", err)
	}
	if err := eval.Scores.Validate(); err != nil {
		return CVEvaluation{}, fmt.Errorf("op=pipeline.cv_score: %v: %w", err, domain.ErrMalformedResponse)
	}
	return eval, nil
}
