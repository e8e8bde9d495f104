package usecase

import "hiring-pipeline/domain"

// Thresholds are the cutoffs applied by the decision engine. All values
// are fractions in [0,1].
type Thresholds struct {
	ShortlistConfidence float64 `validate:"gte=0,lte=1"`
	ShortlistSkills     float64 `validate:"gte=0,lte=1"`
	RejectConfidence    float64 `validate:"gte=0,lte=1"`
}

// DefaultThresholds returns the stock policy: shortlist confident strong
// matches, reject low-confidence evaluations, route the rest to a human.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ShortlistConfidence: 0.8,
		ShortlistSkills:     0.75,
		RejectConfidence:    0.4,
	}
}

// Engine applies the threshold rule to evaluation scores.
type Engine struct {
	t Thresholds
}

func NewEngine(t Thresholds) *Engine {
	return &Engine{t: t}
}

// Decide maps a confidence/skills pair to an outcome. Rules are checked in
// order and the first match wins; every boundary is inclusive.
func (e *Engine) Decide(confidence, skillsMatch float64) domain.Decision {
	switch {
	case confidence >= e.t.ShortlistConfidence && skillsMatch >= e.t.ShortlistSkills:
		return domain.DecisionShortlist
	case confidence <= e.t.RejectConfidence:
		return domain.DecisionReject
	default:
		return domain.DecisionNeedsReview
	}
}
