package interfaces

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hiring-pipeline/domain"
	"hiring-pipeline/usecase"
)

// Resumes larger than this are rejected before extraction.
const maxResumeBytes = 10 << 20

type HTTPHandler struct {
	Pipeline *usecase.Pipeline
	Log      *zap.Logger
}

func NewHTTPHandler(router *gin.Engine, pipeline *usecase.Pipeline, log *zap.Logger) {
	h := &HTTPHandler{Pipeline: pipeline, Log: log}

	router.GET("/health", h.Health)
	router.POST("/submit_resume", h.SubmitResume)
	router.GET("/review/:id", h.GetReview)
	router.POST("/review/:id", h.PostReview)
	router.GET("/candidates", h.ListCandidates)
	router.GET("/candidate/:id", h.GetCandidate)
}

// SubmitResume accepts a job description plus a PDF resume and runs the
// submission pipeline.
func (h *HTTPHandler) SubmitResume(c *gin.Context) {
	jobDescription := strings.TrimSpace(c.PostForm("job_description"))
	if jobDescription == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_description is required"})
		return
	}

	fileHeader, err := c.FormFile("resume_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resume_file is required"})
		return
	}
	if fileHeader.Size > maxResumeBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resume_file exceeds the 10MB limit"})
		return
	}
	if !isPDF(fileHeader.Filename, fileHeader.Header.Get("Content-Type")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resume_file must be a PDF"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open resume file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read resume file"})
		return
	}

	cand, err := h.Pipeline.Submit(c.Request.Context(), usecase.SubmitInput{
		JobDescription: jobDescription,
		CandidateName:  strings.TrimSpace(c.PostForm("candidate_name")),
		CandidateEmail: strings.TrimSpace(c.PostForm("candidate_email")),
		Filename:       fileHeader.Filename,
		Resume:         data,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := gin.H{
		"candidate_id": cand.ID,
		"status":       cand.Status,
		"outcome":      cand.AgentDecision,
	}
	if cand.Status == domain.StatusNeedsHumanReview {
		resp["review_url"] = fmt.Sprintf("/review/%d", cand.ID)
	} else {
		resp["final_decision"] = cand.FinalDecision
	}
	c.JSON(http.StatusCreated, resp)
}

// GetReview renders the evaluation snapshot for a pending candidate.
// Unknown and already-finalized candidates both return 404.
func (h *HTTPHandler) GetReview(c *gin.Context) {
	id, ok := h.candidateID(c)
	if !ok {
		return
	}

	cand, err := h.Pipeline.PendingCandidate(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"candidate_id":    cand.ID,
		"candidate_name":  cand.CandidateName,
		"job_description": cand.JobDescription,
		"status":          cand.Status,
		"evaluation":      cand.Snapshot(),
	})
}

type reviewForm struct {
	Decision string `form:"decision" binding:"required,oneof=SHORTLIST REJECT"`
	Comment  string `form:"comment" binding:"omitempty,max=2000"`
}

// PostReview applies a human decision to a pending candidate.
func (h *HTTPHandler) PostReview(c *gin.Context) {
	id, ok := h.candidateID(c)
	if !ok {
		return
	}

	var form reviewForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "decision must be SHORTLIST or REJECT, comment at most 2000 characters"})
		return
	}

	cand, err := h.Pipeline.Finalize(c.Request.Context(), id, form.Decision, form.Comment)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"candidate_id":   cand.ID,
		"status":         cand.Status,
		"final_decision": cand.FinalDecision,
	})
}

// ListCandidates returns the dashboard view: totals plus one compact row
// per candidate, newest first.
func (h *HTTPHandler) ListCandidates(c *gin.Context) {
	cands, stats, err := h.Pipeline.Candidates(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	items := make([]gin.H, 0, len(cands))
	for _, cd := range cands {
		items = append(items, gin.H{
			"candidate_id":   cd.ID,
			"candidate_name": cd.CandidateName,
			"status":         cd.Status,
			"outcome":        cd.AgentDecision,
			"final_decision": cd.FinalDecision,
			"confidence":     cd.Confidence,
			"skills_match":   cd.SkillsMatch,
			"created_at":     cd.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats, "candidates": items})
}

// GetCandidate returns any candidate with its full audit trail.
func (h *HTTPHandler) GetCandidate(c *gin.Context) {
	id, ok := h.candidateID(c)
	if !ok {
		return
	}

	detail, err := h.Pipeline.Candidate(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"candidate": detail.Candidate,
		"reviews":   detail.Reviews,
		"email_log": detail.EmailLog,
	})
}

func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPHandler) candidateID(c *gin.Context) (uint, bool) {
	idStr := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid candidate id"})
		return 0, false
	}
	return uint(id), true
}

func isPDF(filename, contentType string) bool {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return true
	}
	return contentType == "application/pdf"
}
