package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"hiring-pipeline/domain"
)

// Extractor recovers plain text from an uploaded resume file.
type Extractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

// Evaluator scores a resume against a job description.
type Evaluator interface {
	Evaluate(ctx context.Context, jobDescription, resumeText string) (*domain.Evaluation, error)
}

// Notifier delivers a decision notification for a candidate.
type Notifier interface {
	Notify(ctx context.Context, c *domain.Candidate) domain.NotificationResult
}

// Pipeline owns the candidate lifecycle: submission, the automatic or
// human-review decision path, and finalization.
type Pipeline struct {
	db        *gorm.DB
	engine    *Engine
	extractor Extractor
	evaluator Evaluator
	notifier  Notifier
	log       *zap.Logger
}

func NewPipeline(db *gorm.DB, engine *Engine, extractor Extractor, evaluator Evaluator, notifier Notifier, log *zap.Logger) *Pipeline {
	return &Pipeline{
		db:        db,
		engine:    engine,
		extractor: extractor,
		evaluator: evaluator,
		notifier:  notifier,
		log:       log,
	}
}

// SubmitInput is one resume submission as received at the boundary.
type SubmitInput struct {
	JobDescription string
	CandidateName  string
	CandidateEmail string
	Filename       string
	Resume         []byte
}

// Submit runs a submission through extraction, evaluation and the decision
// rule. Extraction and evaluation failures abort before anything is
// persisted. An automatic SHORTLIST or REJECT creates the candidate
// already finalized and notifies; NEEDS_HUMAN_REVIEW creates a pending
// candidate and returns without notifying.
func (p *Pipeline) Submit(ctx context.Context, in SubmitInput) (*domain.Candidate, error) {
	text, err := p.extractor.Extract(ctx, in.Filename, in.Resume)
	if err != nil {
		return nil, err
	}

	eval, err := p.evaluator.Evaluate(ctx, in.JobDescription, text)
	if err != nil {
		return nil, err
	}

	outcome := p.engine.Decide(eval.Confidence, eval.SkillsMatch)

	raw, _ := json.Marshal(eval)
	rawStr := string(raw)

	cand := &domain.Candidate{
		CandidateName:   in.CandidateName,
		CandidateEmail:  in.CandidateEmail,
		JobDescription:  in.JobDescription,
		ResumeText:      text,
		SkillsMatch:     eval.SkillsMatch,
		ExperienceYears: eval.ExperienceYears,
		DomainRelevance: eval.DomainRelevance,
		RedFlags:        eval.RedFlags,
		Confidence:      eval.Confidence,
		Summary:         eval.Summary,
		EvaluationJSON:  &rawStr,
		AgentDecision:   outcome,
	}

	if outcome == domain.DecisionNeedsReview {
		cand.Status = domain.StatusNeedsHumanReview
		if err := p.db.WithContext(ctx).Create(cand).Error; err != nil {
			return nil, fmt.Errorf("creating candidate: %w", err)
		}
		p.log.Info("candidate routed to human review",
			zap.Uint("candidate_id", cand.ID),
			zap.Float64("confidence", eval.Confidence),
			zap.Float64("skills_match", eval.SkillsMatch))
		return cand, nil
	}

	decision := outcome
	cand.Status = domain.StatusFinalized
	cand.FinalDecision = &decision
	if err := p.db.WithContext(ctx).Create(cand).Error; err != nil {
		return nil, fmt.Errorf("creating candidate: %w", err)
	}
	p.log.Info("candidate auto-finalized",
		zap.Uint("candidate_id", cand.ID),
		zap.String("decision", string(decision)))

	p.notify(ctx, cand)
	return cand, nil
}

// Finalize applies a human decision to a pending candidate. The status
// flip and the HumanReview audit record commit in one transaction; under
// concurrent calls the first committer wins and every other caller gets an
// InvalidStateError. The notifier runs after commit.
func (p *Pipeline) Finalize(ctx context.Context, id uint, rawDecision, comment string) (*domain.Candidate, error) {
	decision, err := domain.ParseReviewDecision(rawDecision)
	if err != nil {
		return nil, err
	}

	var cand domain.Candidate
	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Candidate{}).
			Where("id = ? AND status = ?", id, domain.StatusNeedsHumanReview).
			Updates(map[string]interface{}{
				"final_decision": string(decision),
				"status":         string(domain.StatusFinalized),
			})
		if res.Error != nil {
			return fmt.Errorf("finalizing candidate %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			var existing domain.Candidate
			if err := tx.First(&existing, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrNotFound
				}
				return fmt.Errorf("loading candidate %d: %w", id, err)
			}
			return &domain.InvalidStateError{ID: existing.ID, Status: existing.Status}
		}

		review := domain.HumanReview{
			CandidateID: id,
			Reviewer:    domain.DefaultReviewer,
			Decision:    decision,
			Comment:     comment,
		}
		if err := tx.Create(&review).Error; err != nil {
			return fmt.Errorf("recording human review: %w", err)
		}

		return tx.First(&cand, id).Error
	})
	if err != nil {
		return nil, err
	}

	p.log.Info("candidate finalized by review",
		zap.Uint("candidate_id", id),
		zap.String("decision", string(decision)))

	p.notify(ctx, &cand)
	return &cand, nil
}

// PendingCandidate loads a candidate for the review page. Candidates that
// do not exist or are already finalized both come back as ErrNotFound.
func (p *Pipeline) PendingCandidate(ctx context.Context, id uint) (*domain.Candidate, error) {
	var cand domain.Candidate
	err := p.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, domain.StatusNeedsHumanReview).
		First(&cand).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading candidate %d: %w", id, err)
	}
	return &cand, nil
}

// CandidateDetail is one candidate with its full audit trail.
type CandidateDetail struct {
	Candidate domain.Candidate
	Reviews   []domain.HumanReview
	EmailLog  []domain.EmailLog
}

// Candidate loads any candidate together with its reviews and email log.
func (p *Pipeline) Candidate(ctx context.Context, id uint) (*CandidateDetail, error) {
	var cand domain.Candidate
	if err := p.db.WithContext(ctx).First(&cand, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("loading candidate %d: %w", id, err)
	}

	var reviews []domain.HumanReview
	if err := p.db.WithContext(ctx).
		Where("candidate_id = ?", id).Order("created_at").
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("loading reviews for candidate %d: %w", id, err)
	}

	var emails []domain.EmailLog
	if err := p.db.WithContext(ctx).
		Where("candidate_id = ?", id).Order("sent_at").
		Find(&emails).Error; err != nil {
		return nil, fmt.Errorf("loading email log for candidate %d: %w", id, err)
	}

	return &CandidateDetail{Candidate: cand, Reviews: reviews, EmailLog: emails}, nil
}

// Stats summarizes the candidate table for the dashboard.
type Stats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Finalized int64 `json:"finalized"`
}

// Candidates lists all candidates newest-first with dashboard stats.
func (p *Pipeline) Candidates(ctx context.Context) ([]domain.Candidate, Stats, error) {
	var cands []domain.Candidate
	if err := p.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&cands).Error; err != nil {
		return nil, Stats{}, fmt.Errorf("listing candidates: %w", err)
	}

	stats := Stats{Total: int64(len(cands))}
	for _, c := range cands {
		if c.Finalized() {
			stats.Finalized++
		} else {
			stats.Pending++
		}
	}
	return cands, stats, nil
}

// notify runs the notifier and records the attempt. Results never
// propagate to the caller: the decision is already durable, so failures
// are logged and written to the email log only.
func (p *Pipeline) notify(ctx context.Context, c *domain.Candidate) {
	res := p.notifier.Notify(ctx, c)
	if res.Status == domain.EmailSkipped {
		p.log.Warn("notification skipped",
			zap.Uint("candidate_id", c.ID),
			zap.String("reason", res.Error))
		return
	}

	entry := domain.EmailLog{
		CandidateID: c.ID,
		Recipient:   res.Recipient,
		Subject:     res.Subject,
		Body:        res.Body,
		Status:      res.Status,
		Error:       res.Error,
	}
	if c.FinalDecision != nil {
		entry.EmailType = string(*c.FinalDecision)
	}
	if err := p.db.WithContext(ctx).Create(&entry).Error; err != nil {
		p.log.Error("recording email log entry",
			zap.Uint("candidate_id", c.ID),
			zap.Error(err))
		return
	}

	if res.Status == domain.EmailFailed {
		p.log.Warn("notification failed",
			zap.Uint("candidate_id", c.ID),
			zap.String("recipient", res.Recipient),
			zap.String("error", res.Error))
		return
	}
	p.log.Info("notification sent",
		zap.Uint("candidate_id", c.ID),
		zap.String("recipient", res.Recipient))
}
