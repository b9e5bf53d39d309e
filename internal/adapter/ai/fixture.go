// Package ai holds the pieces shared by the language-model gateways: the
// deterministic fixture payload used in mock mode and as the fallback when a
// live backend fails.
package ai

import "encoding/json"

// fixture covers every field any pipeline stage might request, so a single
// payload satisfies the extraction, scoring, and summary prompts alike.
var fixture = map[string]any{
	"scores": map[string]int{
		"technicalSkills": 4,
		"experience":      5,
		"achievements":    3,
		"culturalFit":     4,
		"correctness":     4,
		"codeQuality":     3,
		"resilience":      4,
		"documentation":   3,
		"creativity":      4,
	},
	"cvMatchRate": 0.82,
	"cvFeedback":  "Strong backend development skills with excellent experience level. Good cultural fit but could benefit from more AI-specific project experience.",
	"projectScore": 7.2,
	"projectFeedback": "Good implementation of core requirements with solid error handling. Documentation could be more comprehensive and code structure could be more modular.",
	"strengths": []string{
		"5+ years backend development experience",
		"Strong Node.js and database skills",
		"Cloud platform experience",
		"Good team collaboration skills",
	},
	"gaps": []string{
		"Limited AI/ML project experience",
		"No specific vector database experience mentioned",
		"Could improve on system design documentation",
	},
	"improvementSuggestions": []string{
		"Add more detailed API documentation",
		"Improve code modularity and separation of concerns",
		"Include more comprehensive test coverage",
		"Add performance monitoring metrics",
	},
	"skills": map[string]any{
		"technical": []string{"JavaScript", "TypeScript", "Node.js", "PostgreSQL", "Redis", "Docker"},
		"soft":      []string{"Communication", "Team Leadership", "Problem Solving", "Mentoring"},
	},
	"experience": []map[string]any{
		{
			"role":         "Senior Backend Developer",
			"years":        5,
			"technologies": []string{"Node.js", "PostgreSQL", "AWS", "Docker", "Kubernetes"},
		},
		{
			"role":         "Backend Developer",
			"years":        2,
			"technologies": []string{"Python", "Django", "MySQL", "Redis"},
		},
	},
	"projects": []map[string]any{
		{
			"name":         "AI Evaluation Platform",
			"description":  "Built scalable backend for candidate assessment system",
			"technologies": []string{"Node.js", "Qdrant", "BullMQ", "OpenAI API"},
		},
	},
	"name":         "AI Evaluation Platform",
	"description":  "Built scalable backend for candidate assessment system",
	"technologies": []string{"Node.js", "Qdrant", "BullMQ", "OpenAI API"},
	"architecture": "Queue-backed worker pipeline with vector retrieval",
	"features":     []string{"Async evaluation jobs", "RAG context injection", "Weighted rubric scoring"},
	"challenges":   []string{"Bounding prompt size", "Keeping retries idempotent"},
	"outcomes":     []string{"Deterministic offline evaluation path"},
	"overallSummary": "Good candidate fit, would benefit from deeper RAG knowledge.",
}

// FixtureJSON returns the fixed, schema-valid payload as a JSON string.
func FixtureJSON() string {
	b, _ := json.Marshal(fixture)
	return string(b)
}
