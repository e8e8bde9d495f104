package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hiring-pipeline/domain"
	"hiring-pipeline/usecase"
)

type stubExtractor struct{}

func (stubExtractor) Extract(_ context.Context, _ string, _ []byte) (string, error) {
	return "eight years of Go, Postgres and Kubernetes", nil
}

type stubEvaluator struct {
	eval *domain.Evaluation
	err  error
}

func (s *stubEvaluator) Evaluate(_ context.Context, _, _ string) (*domain.Evaluation, error) {
	if s.err != nil {
		return nil, s.err
	}
	cp := *s.eval
	return &cp, nil
}

type stubNotifier struct {
	calls int
}

func (s *stubNotifier) Notify(_ context.Context, c *domain.Candidate) domain.NotificationResult {
	s.calls++
	return domain.NotificationResult{
		Recipient: c.CandidateEmail,
		Subject:   "Decision",
		Body:      "Body",
		Status:    domain.EmailSent,
	}
}

func stubEvaluation(confidence, skillsMatch float64) *domain.Evaluation {
	return &domain.Evaluation{
		SkillsMatch:     skillsMatch,
		ExperienceYears: 8,
		DomainRelevance: 0.8,
		RedFlags:        []string{},
		Confidence:      confidence,
		Summary:         "strong candidate",
	}
}

func newTestRouter(t *testing.T, ev usecase.Evaluator, n usecase.Notifier) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "handler_test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Candidate{}, &domain.HumanReview{}, &domain.EmailLog{}))

	pipeline := usecase.NewPipeline(db, usecase.NewEngine(usecase.DefaultThresholds()),
		stubExtractor{}, ev, n, zap.NewNop())

	router := gin.New()
	NewHTTPHandler(router, pipeline, zap.NewNop())
	return router, db
}

func submitBody(t *testing.T, fields map[string]string, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("resume_file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("%PDF-1.4 fake resume bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func doSubmit(t *testing.T, router *gin.Engine, fields map[string]string, filename string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := submitBody(t, fields, filename)
	req := httptest.NewRequest(http.MethodPost, "/submit_resume", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestSubmitResumeAutoShortlist(t *testing.T) {
	n := &stubNotifier{}
	router, _ := newTestRouter(t, &stubEvaluator{eval: stubEvaluation(0.9, 0.8)}, n)

	w := doSubmit(t, router, map[string]string{
		"job_description": "Senior Go engineer",
		"candidate_name":  "Sam Ortiz",
		"candidate_email": "sam@example.com",
	}, "resume.pdf")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeJSON(t, w)
	assert.Equal(t, string(domain.StatusFinalized), resp["status"])
	assert.Equal(t, string(domain.DecisionShortlist), resp["final_decision"])
	assert.NotContains(t, resp, "review_url")
	assert.Equal(t, 1, n.calls)
}

func TestSubmitResumeReviewPath(t *testing.T) {
	n := &stubNotifier{}
	router, _ := newTestRouter(t, &stubEvaluator{eval: stubEvaluation(0.5, 0.5)}, n)

	w := doSubmit(t, router, map[string]string{"job_description": "Platform engineer"}, "resume.pdf")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeJSON(t, w)
	assert.Equal(t, string(domain.StatusNeedsHumanReview), resp["status"])
	assert.Equal(t, "/review/1", resp["review_url"])
	assert.Equal(t, 0, n.calls)
}

func TestSubmitResumeMissingJobDescription(t *testing.T) {
	router, db := newTestRouter(t, &stubEvaluator{eval: stubEvaluation(0.9, 0.8)}, &stubNotifier{})

	w := doSubmit(t, router, map[string]string{}, "resume.pdf")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var count int64
	require.NoError(t, db.Model(&domain.Candidate{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitResumeMissingFile(t *testing.T) {
	router, _ := newTestRouter(t, &stubEvaluator{eval: stubEvaluation(0.9, 0.8)}, &stubNotifier{})

	w := doSubmit(t, router, map[string]string{"job_description": "Go engineer"}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "resume_file")
}

func TestSubmitResumeRejectsNonPDF(t *testing.T) {
	router, _ := newTestRouter(t, &stubEvaluator{eval: stubEvaluation(0.9, 0.8)}, &stubNotifier{})

	w := doSubmit(t, router, map[string]string{"job_description": "Go engineer"}, "resume.docx")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "PDF")
}

func TestSubmitResumeEvaluatorDown(t *testing.T) {
	router, db := newTestRouter(t, &stubEvaluator{err: &domain.EvaluationError{Err: errors.New("connection refused")}}, &stubNotifier{})

	w := doSubmit(t, router, map[string]string{"job_description": "Go engineer"}, "resume.pdf")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var count int64
	require.NoError(t, db.Model(&domain.Candidate{}).Count(&count).Error)
	assert.Zero(t, count, "failed evaluations must not persist candidates")
}

func TestGetReviewPendingCandidate(t *testing.T) {
	router, _ := newTestRouter(t, &stubEvaluator{eval: stubEvaluation(0.6, 0.9)}, &stubNotifier{})
	doSubmit(t, router, map[string]string{"job_description": "Go engineer"}, "resume.pdf")

	req := httptest.NewRequest(http.MethodGet, "/review/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeJSON(t, w)
	eval, ok := resp["evaluation"].(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 0.9, eval["skills_match"], 0.0001)
	assert.InDelta(t, 0.6, eval["confidence"], 0.0001)
}

func TestGetReviewUnknownCandidate(t *testing.T) {
	router, _ := newTestRouter(t, &stubEvaluator{eval: stubEvaluation(0.6, 0.9)}, &stubNotifier{})

	req := httptest.NewRequest(http.MethodGet, "/review/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetReviewFinalizedCandidateIs404(t *testing.T) {
	router, _ := newTestRouter(t, &stubEvaluator{eval: stubEvaluation(0.9, 0.8)}, &stubNotifier{})
	doSubmit(t, router, map[string]string{"job_description": "Go engineer"}, "resume.pdf")

	req := httptest.NewRequest(http.MethodGet, "/review/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetReviewBadID(t *testing.T) {
	router, _ := newTestRouter(t, &stubEvaluator{eval: stubEvaluation(0.6, 0.9)}, &stubNotifier{})

	req := httptest.NewRequest(http.MethodGet, "/review/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func postReview(router *gin.Engine, id, form string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/review/"+id, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPostReviewFinalizes(t *testing.T) {
	n := &stubNotifier{}
	router, db := newTestRouter(t, &stubEvaluator{eval: stubEvaluation(0.5, 0.5)}, n)
	doSubmit(t, router, map[string]string{"job_description": "Go engineer"}, "resume.pdf")

	w := postReview(router, "1", "decision=REJECT&comment=insufficient+experience")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeJSON(t, w)
	assert.Equal(t, string(domain.StatusFinalized), resp["status"])
	assert.Equal(t, string(domain.DecisionReject), resp["final_decision"])
	assert.Equal(t, 1, n.calls)

	var review domain.HumanReview
	require.NoError(t, db.Where("candidate_id = ?", 1).First(&review).Error)
	assert.Equal(t, "insufficient experience", review.Comment)
}

func TestPostReviewInvalidDecision(t *testing.T) {
	router, db := newTestRouter(t, &stubEvaluator{eval: stubEvaluation(0.5, 0.5)}, &stubNotifier{})
	doSubmit(t, router, map[string]string{"job_description": "Go engineer"}, "resume.pdf")

	w := postReview(router, "1", "decision=MAYBE")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var count int64
	require.NoError(t, db.Model(&domain.HumanReview{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPostReviewMissingDecision(t *testing.T) {
	router, _ := newTestRouter(t, &stubEvaluator{eval: stubEvaluation(0.5, 0.5)}, &stubNotifier{})
	doSubmit(t, router, map[string]string{"job_description": "Go engineer"}, "resume.pdf")

	w := postReview(router, "1", "comment=no+decision")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostReviewAlreadyFinalized(t *testing.T) {
	router, db := newTestRouter(t, &stubEvaluator{eval: stubEvaluation(0.5, 0.5)}, &stubNotifier{})
	doSubmit(t, router, map[string]string{"job_description": "Go engineer"}, "resume.pdf")

	first := postReview(router, "1", "decision=SHORTLIST")
	require.Equal(t, http.StatusOK, first.Code)

	second := postReview(router, "1", "decision=REJECT")
	assert.Equal(t, http.StatusConflict, second.Code)

	var reviews []domain.HumanReview
	require.NoError(t, db.Find(&reviews).Error)
	require.Len(t, reviews, 1)
	assert.Equal(t, domain.DecisionShortlist, reviews[0].Decision)

	var logs int64
	require.NoError(t, db.Model(&domain.EmailLog{}).Count(&logs).Error)
	assert.Equal(t, int64(1), logs)
}

func TestPostReviewUnknownCandidate(t *testing.T) {
	router, _ := newTestRouter(t, &stubEvaluator{eval: stubEvaluation(0.5, 0.5)}, &stubNotifier{})

	w := postReview(router, "42", "decision=REJECT")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCandidates(t *testing.T) {
	router, _ := newTestRouter(t, &stubEvaluator{eval: stubEvaluation(0.9, 0.8)}, &stubNotifier{})
	doSubmit(t, router, map[string]string{"job_description": "Go engineer"}, "resume.pdf")

	req := httptest.NewRequest(http.MethodGet, "/candidates", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeJSON(t, w)
	stats, ok := resp["stats"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 1, stats["total"])
	assert.EqualValues(t, 1, stats["finalized"])
	assert.EqualValues(t, 0, stats["pending"])

	cands, ok := resp["candidates"].([]interface{})
	require.True(t, ok)
	require.Len(t, cands, 1)
}

func TestGetCandidateDetail(t *testing.T) {
	router, _ := newTestRouter(t, &stubEvaluator{eval: stubEvaluation(0.5, 0.5)}, &stubNotifier{})
	doSubmit(t, router, map[string]string{"job_description": "Go engineer"}, "resume.pdf")
	postReview(router, "1", "decision=REJECT&comment=insufficient+experience")

	req := httptest.NewRequest(http.MethodGet, "/candidate/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeJSON(t, w)
	reviews, ok := resp["reviews"].([]interface{})
	require.True(t, ok)
	require.Len(t, reviews, 1)
	emails, ok := resp["email_log"].([]interface{})
	require.True(t, ok)
	require.Len(t, emails, 1)
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, &stubEvaluator{eval: stubEvaluation(0.9, 0.8)}, &stubNotifier{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"validation", &domain.ValidationError{Msg: "bad"}, http.StatusBadRequest},
		{"invalid state", &domain.InvalidStateError{ID: 1, Status: domain.StatusFinalized}, http.StatusConflict},
		{"extraction", &domain.ExtractionError{Err: errors.New("unreadable")}, http.StatusUnprocessableEntity},
		{"evaluation", &domain.EvaluationError{Err: errors.New("down")}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, httpStatus(tt.err))
		})
	}
}
