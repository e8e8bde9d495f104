package domain

import (
	"fmt"
	"time"
)

// Status of a candidate's lifecycle. NEEDS_HUMAN_REVIEW is the only
// non-terminal status; FINALIZED is terminal. The single valid transition
// is NEEDS_HUMAN_REVIEW -> FINALIZED, triggered by a human decision.
// Candidates decided automatically at submission are created FINALIZED.
type Status string

const (
	StatusNeedsHumanReview Status = "NEEDS_HUMAN_REVIEW"
	StatusFinalized        Status = "FINALIZED"
)

// Decision is an outcome of the threshold rule or of a human review.
// NEEDS_HUMAN_REVIEW only ever appears as a rule outcome; a stored
// final decision is always SHORTLIST or REJECT.
type Decision string

const (
	DecisionShortlist   Decision = "SHORTLIST"
	DecisionReject      Decision = "REJECT"
	DecisionNeedsReview Decision = "NEEDS_HUMAN_REVIEW"
)

// ParseReviewDecision validates a raw decision value submitted by a
// reviewer. Values are case-sensitive and only SHORTLIST and REJECT are
// accepted.
func ParseReviewDecision(s string) (Decision, error) {
	switch Decision(s) {
	case DecisionShortlist, DecisionReject:
		return Decision(s), nil
	default:
		return "", &ValidationError{Msg: fmt.Sprintf("invalid decision %q: must be SHORTLIST or REJECT", s)}
	}
}

// Candidate is one resume submission and its decision lifecycle. The input
// snapshot and evaluation snapshot are written once at creation and never
// updated; finalization touches only FinalDecision and Status, and only
// while the candidate is pending. FinalDecision is NULL exactly while
// Status is NEEDS_HUMAN_REVIEW.
type Candidate struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	CandidateName  string `gorm:"size:255" json:"candidate_name"`
	CandidateEmail string `gorm:"size:255" json:"candidate_email"`
	JobDescription string `gorm:"type:text;not null" json:"job_description"`
	ResumeText     string `gorm:"type:text;not null" json:"resume_text"`

	SkillsMatch     float64  `json:"skills_match"`
	ExperienceYears float64  `json:"experience_years"`
	DomainRelevance float64  `json:"domain_relevance"`
	RedFlags        []string `gorm:"serializer:json" json:"red_flags"`
	Confidence      float64  `json:"confidence"`
	Summary         string   `gorm:"type:text" json:"summary"`
	EvaluationJSON  *string  `gorm:"type:text" json:"-"`

	AgentDecision Decision  `gorm:"size:32;not null" json:"agent_decision"`
	Status        Status    `gorm:"size:32;not null;index" json:"status"`
	FinalDecision *Decision `gorm:"size:32" json:"final_decision"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Finalized reports whether the candidate has reached its terminal status.
func (c *Candidate) Finalized() bool {
	return c.Status == StatusFinalized
}

// Snapshot returns the evaluation scores stored on the candidate.
func (c *Candidate) Snapshot() Evaluation {
	return Evaluation{
		SkillsMatch:     c.SkillsMatch,
		ExperienceYears: c.ExperienceYears,
		DomainRelevance: c.DomainRelevance,
		RedFlags:        c.RedFlags,
		Confidence:      c.Confidence,
		Summary:         c.Summary,
	}
}
