package domain

// Evaluation is the score record the evaluator produces for one
// job-description/resume pair. Fractions are in [0,1]; RedFlags keeps the
// evaluator's ordering.
type Evaluation struct {
	SkillsMatch     float64  `json:"skills_match"`
	ExperienceYears float64  `json:"experience_years"`
	DomainRelevance float64  `json:"domain_relevance"`
	RedFlags        []string `json:"red_flags"`
	Confidence      float64  `json:"confidence"`
	Summary         string   `json:"summary"`
}
