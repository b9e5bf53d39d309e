package domain

import "fmt"

// Rubric weights. Each set sums to 1.0.
const (
	WeightCVTechnicalSkills = 0.40
	WeightCVExperience      = 0.25
	WeightCVAchievements    = 0.20
	WeightCVCulturalFit     = 0.15

	WeightProjectCorrectness   = 0.30
	WeightProjectCodeQuality   = 0.25
	WeightProjectResilience    = 0.20
	WeightProjectDocumentation = 0.15
	WeightProjectCreativity    = 0.10
)

// CVScores are the rubric sub-scores for the CV evaluation, each in [1,5].
type CVScores struct {
	TechnicalSkills int `json:"technicalSkills"`
	Experience      int `json:"experience"`
	Achievements    int `json:"achievements"`
	CulturalFit     int `json:"culturalFit"`
}

// ProjectScores are the rubric sub-scores for the project evaluation, each in [1,5].
type ProjectScores struct {
	Correctness   int `json:"correctness"`
	CodeQuality   int `json:"codeQuality"`
	Resilience    int `json:"resilience"`
	Documentation int `json:"documentation"`
	Creativity    int `json:"creativity"`
}

func checkSubScore(name string, v int) error {
	if v < 1 || v > 5 {
		return fmt.Errorf("%w: %s=%d outside [1,5]", ErrInvalidArgument, name, v)
	}
	return nil
}

// Validate rejects sub-scores outside [1,5].
func (s CVScores) Validate() error {
	if err := checkSubScore("technicalSkills", s.TechnicalSkills); err != nil {
		return err
	}
	if err := checkSubScore("experience", s.Experience); err != nil {
		return err
	}
	if err := checkSubScore("achievements", s.Achievements); err != nil {
		return err
	}
	return checkSubScore("culturalFit", s.CulturalFit)
}

// Validate rejects sub-scores outside [1,5].
func (s ProjectScores) Validate() error {
	if err := checkSubScore("correctness", s.Correctness); err != nil {
		return err
	}
	if err := checkSubScore("codeQuality", s.CodeQuality); err != nil {
		return err
	}
	if err := checkSubScore("resilience", s.Resilience); err != nil {
		return err
	}
	if err := checkSubScore("documentation", s.Documentation); err != nil {
		return err
	}
	return checkSubScore("creativity", s.Creativity)
}

// WeightedCV computes the 1-5 composite for a CV score breakdown.
// For sub-scores in [1,5] the result is always in [1,5].
func WeightedCV(s CVScores) float64 {
	return float64(s.TechnicalSkills)*WeightCVTechnicalSkills +
		float64(s.Experience)*WeightCVExperience +
		float64(s.Achievements)*WeightCVAchievements +
		float64(s.CulturalFit)*WeightCVCulturalFit
}

// WeightedProject computes the 1-5 composite for a project score breakdown.
func WeightedProject(s ProjectScores) float64 {
	return float64(s.Correctness)*WeightProjectCorrectness +
		float64(s.CodeQuality)*WeightProjectCodeQuality +
		float64(s.Resilience)*WeightProjectResilience +
		float64(s.Documentation)*WeightProjectDocumentation +
		float64(s.Creativity)*WeightProjectCreativity
}
