package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"hiring-pipeline/domain"
)

const evaluationSystemMessage = "You are a precise JSON output generator. Always return valid JSON."

const evaluationPrompt = `Evaluate the following resume against the job description.

Job Description:
%s

Resume:
%s

Score the candidate and return strict JSON with this structure:
{
  "skills_match": float between 0 and 1,
  "experience_years": number of years of relevant experience,
  "domain_relevance": float between 0 and 1,
  "red_flags": ["list of concerns, empty if none"],
  "confidence": float between 0 and 1,
  "summary": "short hiring recommendation"
}

Return ONLY the raw JSON without any markdown formatting, code blocks, or additional text.`

// OpenAIEvaluator scores resumes with a chat completion against a fixed
// prompt. Any transport or parse failure comes back as an EvaluationError
// so the caller persists nothing.
type OpenAIEvaluator struct {
	client *openai.Client
	model  string
	log    *zap.Logger
}

// NewOpenAIEvaluator builds an evaluator. baseURL is empty outside tests.
func NewOpenAIEvaluator(apiKey, baseURL, model string, log *zap.Logger) *OpenAIEvaluator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	if model == "" {
		model = openai.GPT4
	}
	return &OpenAIEvaluator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		log:    log,
	}
}

// Evaluate scores one resume against one job description.
func (o *OpenAIEvaluator) Evaluate(ctx context.Context, jobDescription, resumeText string) (*domain.Evaluation, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: evaluationSystemMessage},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(evaluationPrompt, jobDescription, resumeText)},
		},
	})
	if err != nil {
		return nil, &domain.EvaluationError{Err: fmt.Errorf("chat completion: %w", err)}
	}
	if len(resp.Choices) == 0 {
		return nil, &domain.EvaluationError{Err: errors.New("empty completion response")}
	}

	cleaned := cleanJSONResponse(resp.Choices[0].Message.Content)
	var eval domain.Evaluation
	if err := json.Unmarshal([]byte(cleaned), &eval); err != nil {
		return nil, &domain.EvaluationError{Err: fmt.Errorf("parsing evaluation JSON: %w", err)}
	}

	o.log.Info("resume evaluated",
		zap.String("model", o.model),
		zap.Float64("confidence", eval.Confidence),
		zap.Float64("skills_match", eval.SkillsMatch))
	return &eval, nil
}

// cleanJSONResponse strips markdown fences and any prose around the JSON
// object models wrap their answers in.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
	}
	if strings.HasSuffix(content, "```") {
		content = strings.TrimSuffix(content, "```")
	}

	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end != -1 && end > start {
		content = content[start : end+1]
	}

	return strings.TrimSpace(content)
}
