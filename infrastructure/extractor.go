package infrastructure

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
	"go.uber.org/zap"

	"hiring-pipeline/domain"
)

// Scanned resumes yield little or no text on the direct pass; anything
// shorter than this goes through the OCR fallback.
const minDirectTextChars = 300

const geminiBaseURL = "https://generativelanguage.googleapis.com"

// Models tried in order for the OCR fallback.
var geminiOCRModels = []string{
	"gemini-2.0-flash-001",
	"gemini-2.0-flash",
	"gemini-2.5-flash",
	"gemini-flash-latest",
}

const ocrPrompt = `Extract ALL text content from this PDF document. Return ONLY the raw extracted text without any additional comments, formatting, or explanations. Include personal information, education history, work experience, skills, certifications, projects and achievements. Return the text exactly as it appears in the document.`

// PDFExtractor recovers resume text. It tries direct PDF extraction first
// and falls back to a vision model for scanned documents. Without a Gemini
// API key the fallback is disabled.
type PDFExtractor struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

func NewPDFExtractor(geminiAPIKey string, log *zap.Logger) *PDFExtractor {
	return &PDFExtractor{
		apiKey:  geminiAPIKey,
		baseURL: geminiBaseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
		log:     log,
	}
}

// Extract pulls text from an uploaded resume. The direct pass wins when it
// yields enough text; otherwise the OCR fallback runs and the longer
// usable result is kept. When neither path yields text the submission
// fails with an ExtractionError.
func (e *PDFExtractor) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	direct, directErr := e.extractPDFText(data)
	if directErr == nil && len(direct) >= minDirectTextChars {
		e.log.Info("extracted resume text",
			zap.String("filename", filename),
			zap.Int("chars", len(direct)))
		return cleanResumeText(direct), nil
	}

	if directErr != nil {
		e.log.Warn("direct pdf extraction failed, trying ocr",
			zap.String("filename", filename),
			zap.Error(directErr))
	} else {
		e.log.Warn("direct pdf extraction too short, trying ocr",
			zap.String("filename", filename),
			zap.Int("chars", len(direct)))
	}

	ocr, ocrErr := e.extractWithGemini(ctx, data)
	if ocrErr == nil && strings.TrimSpace(ocr) != "" {
		e.log.Info("extracted resume text via ocr",
			zap.String("filename", filename),
			zap.Int("chars", len(ocr)))
		return cleanResumeText(ocr), nil
	}
	if ocrErr != nil {
		e.log.Warn("ocr extraction failed", zap.String("filename", filename), zap.Error(ocrErr))
	}

	// Keep whatever the direct pass found rather than failing a readable
	// but short resume.
	if directErr == nil && strings.TrimSpace(direct) != "" {
		return cleanResumeText(direct), nil
	}

	if ocrErr == nil {
		ocrErr = errors.New("ocr returned empty text")
	}
	return "", &domain.ExtractionError{Err: fmt.Errorf("direct extraction: %v; ocr: %w", directErr, ocrErr)}
}

// extractPDFText extracts text from PDF files using unipdf. Pages that
// fail to parse are skipped.
func (e *PDFExtractor) extractPDFText(data []byte) (string, error) {
	pdfReader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("failed to get page count: %w", err)
	}
	if numPages == 0 {
		return "", errors.New("PDF has no pages")
	}

	var textBuilder strings.Builder
	extractedAny := false

	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			e.log.Debug("skipping unreadable page", zap.Int("page", i), zap.Error(err))
			continue
		}

		ex, err := extractor.New(page)
		if err != nil {
			e.log.Debug("skipping page without extractor", zap.Int("page", i), zap.Error(err))
			continue
		}

		pageText, err := ex.ExtractText()
		if err != nil {
			e.log.Debug("skipping page that failed extraction", zap.Int("page", i), zap.Error(err))
			continue
		}

		if pageText != "" {
			extractedAny = true
			textBuilder.WriteString(pageText)
			textBuilder.WriteString("\n\n")
		}
	}

	if !extractedAny {
		return "", errors.New("no text could be extracted from any page")
	}
	return strings.TrimSpace(textBuilder.String()), nil
}

// extractWithGemini sends the PDF inline to a vision model and returns the
// text it reads. Models are tried in order until one answers.
func (e *PDFExtractor) extractWithGemini(ctx context.Context, data []byte) (string, error) {
	if e.apiKey == "" {
		return "", errors.New("ocr fallback disabled: no Gemini API key configured")
	}

	requestBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{"text": ocrPrompt},
					{
						"inline_data": map[string]interface{}{
							"mime_type": "application/pdf",
							"data":      base64.StdEncoding.EncodeToString(data),
						},
					},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature":     0.1,
			"maxOutputTokens": 8192,
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for _, m := range geminiOCRModels {
		text, err := e.callGeminiModel(ctx, m, jsonData)
		if err != nil {
			lastErr = err
			e.log.Debug("ocr model failed", zap.String("model", m), zap.Error(err))
			continue
		}
		if text != "" {
			return strings.TrimSpace(text), nil
		}
	}
	return "", fmt.Errorf("all OCR models failed: %w", lastErr)
}

func (e *PDFExtractor) callGeminiModel(ctx context.Context, model string, body []byte) (string, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", e.baseURL, model, e.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse API response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no candidates in response")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

var (
	newlineRuns = regexp.MustCompile(`\n+`)
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
)

// cleanResumeText collapses the whitespace noise PDF extraction leaves
// behind: blank-line runs become one newline, space runs one space.
func cleanResumeText(s string) string {
	s = newlineRuns.ReplaceAllString(s, "\n")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
