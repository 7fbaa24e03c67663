package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/spacesedan/civicpulse/internal/models"
)

const (
	defaultBaseURL        = "https://openrouter.ai/api/v1"
	defaultModel          = "qwen/qwen3-14b:free"
	defaultRequestTimeout = 60 * time.Second

	// Kept low and bounded so responses stay short and close to deterministic.
	analysisTemperature = 0.3
	analysisMaxTokens   = 500
)

// Config carries everything the analyzer needs to reach the classification
// endpoint. APIKey has no default: a missing credential is a constructor
// error, not a first-call surprise.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Temperature    float32
	MaxTokens      int
	RequestTimeout time.Duration
}

// ConfigFromEnv builds a Config from the environment, failing when the
// OpenRouter credential is absent.
func ConfigFromEnv() (Config, error) {
	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		return Config{}, errors.New("OPENROUTER_API_KEY must be set")
	}

	cfg := Config{
		APIKey:         apiKey,
		BaseURL:        defaultBaseURL,
		Model:          defaultModel,
		Temperature:    analysisTemperature,
		MaxTokens:      analysisMaxTokens,
		RequestTimeout: defaultRequestTimeout,
	}
	if v := os.Getenv("SENTIMENT_API_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("SENTIMENT_MODEL"); v != "" {
		cfg.Model = v
	}
	return cfg, nil
}

// Analyzer calls the external text-classification service and normalizes
// whatever comes back into a well-formed SentimentAnalysisResult. Analysis is
// best-effort enrichment: Analyze never returns an error, every failure path
// resolves to one of three fallback payloads. Safe for concurrent use.
type Analyzer struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("[SentimentAnalyzer] missing API key")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = analysisTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = analysisMaxTokens
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout}

	slog.Info("[SentimentAnalyzer] Initialized",
		slog.String("model", cfg.Model),
		slog.Duration("timeout", cfg.RequestTimeout))

	return &Analyzer{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// outcomeKind tags the internal result of one classification attempt. The
// three non-success kinds map to deliberately distinct fallback payloads so
// operators can tell failure modes apart from the stored sentiment text alone.
type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeServiceUnreachable
	outcomeUnparseable
	outcomeInternalError
)

type classification struct {
	kind      outcomeKind
	summary   string
	sentiment string
	keywords  []string
}

// Analyze derives a sentiment summary for one submission. It never returns an
// error: network failures, malformed payloads and internal panics all collapse
// into populated fallback results.
func (a *Analyzer) Analyze(ctx context.Context, subject, comment, fullComment string) (result models.SentimentAnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[SentimentAnalyzer] Recovered from panic during analysis",
				slog.Any("panic", r))
			result = collapse(classification{kind: outcomeInternalError}, subject, comment, fullComment)
		}
	}()

	return collapse(a.classify(ctx, subject, comment), subject, comment, fullComment)
}

func (a *Analyzer) classify(ctx context.Context, subject, comment string) classification {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildAnalysisPrompt(subject, comment),
			},
		},
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	})
	if err != nil {
		slog.Warn("[SentimentAnalyzer] Classification request failed",
			slog.String("error", err.Error()))
		return classification{kind: outcomeServiceUnreachable}
	}
	if len(resp.Choices) == 0 {
		slog.Error("[SentimentAnalyzer] Classification response carried no choices")
		return classification{kind: outcomeInternalError}
	}

	content := stripCodeFences(resp.Choices[0].Message.Content)

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		slog.Error("[SentimentAnalyzer] Failed to parse classification payload",
			slog.String("error", err.Error()),
			slog.String("raw_response", resp.Choices[0].Message.Content))
		return classification{kind: outcomeUnparseable}
	}

	summary, sentiment, keywords, err := extractFields(payload)
	if err != nil {
		// Parsed but incomplete counts as a failed service call, not an
		// unparseable response.
		slog.Warn("[SentimentAnalyzer] Classification payload incomplete",
			slog.String("error", err.Error()))
		return classification{kind: outcomeServiceUnreachable}
	}

	return classification{
		kind:      outcomeSuccess,
		summary:   summary,
		sentiment: sentiment,
		keywords:  keywords,
	}
}

func buildAnalysisPrompt(subject, comment string) string {
	return fmt.Sprintf(`Analyze the following user feedback and provide a structured response:

Subject: %s
Comment: %s

Please provide your analysis in the following JSON format (respond with ONLY the JSON, no additional text):
{
    "summary": "Brief summary of the main points in 1-2 sentences",
    "sentiment_analysis": "Overall sentiment (positive/negative/neutral) with brief explanation",
    "keywords": ["keyword1", "keyword2", "keyword3", "keyword4", "keyword5"]
}

Make sure the keywords are relevant terms extracted from the feedback that capture the main topics and concerns.
`, subject, comment)
}

// stripCodeFences removes a markdown code fence the model may wrap its JSON
// in, with or without a "json" language tag. Returns "" when the remainder
// does not even look like a JSON object, which routes the response down the
// unparseable path.
func stripCodeFences(response string) string {
	cleaned := strings.TrimSpace(response)

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "\n")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimPrefix(cleaned, "\n")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	cleaned = strings.TrimSpace(cleaned)

	if !(strings.HasPrefix(cleaned, "{") && strings.HasSuffix(cleaned, "}")) {
		return ""
	}
	return cleaned
}

func extractFields(payload map[string]json.RawMessage) (string, string, []string, error) {
	for _, field := range []string{"summary", "sentiment_analysis", "keywords"} {
		if _, ok := payload[field]; !ok {
			return "", "", nil, fmt.Errorf("missing required field: %s", field)
		}
	}

	var summary string
	if err := json.Unmarshal(payload["summary"], &summary); err != nil {
		return "", "", nil, fmt.Errorf("summary is not a string: %w", err)
	}
	var sentiment string
	if err := json.Unmarshal(payload["sentiment_analysis"], &sentiment); err != nil {
		return "", "", nil, fmt.Errorf("sentiment_analysis is not a string: %w", err)
	}

	// keywords present but not a sequence degrades to empty rather than
	// failing the whole payload.
	var keywords []string
	if err := json.Unmarshal(payload["keywords"], &keywords); err != nil {
		keywords = nil
	}

	return summary, sentiment, keywords, nil
}

// collapse turns a tagged classification into the single public result shape.
// Each fallback payload is recognizably different so the stored
// sentiment_analysis text alone tells operators which failure mode occurred.
func collapse(out classification, subject, comment, fullComment string) models.SentimentAnalysisResult {
	switch out.kind {
	case outcomeSuccess:
		return models.SentimentAnalysisResult{
			FullComment:       fullComment,
			Summary:           out.summary,
			SentimentAnalysis: out.sentiment,
			Keywords:          sanitizeKeywords(out.keywords, subject, comment),
		}
	case outcomeServiceUnreachable:
		return models.SentimentAnalysisResult{
			FullComment:       fullComment,
			Summary:           fmt.Sprintf("User feedback regarding %s. Sentiment analysis service request failed.", subject),
			SentimentAnalysis: "Unknown - sentiment analysis service request failed",
			Keywords:          ExtractKeywords(subject, comment),
		}
	case outcomeUnparseable:
		return models.SentimentAnalysisResult{
			FullComment:       fullComment,
			Summary:           fmt.Sprintf("Analysis of feedback regarding: %s", subject),
			SentimentAnalysis: "Unable to determine sentiment - analysis service error",
			Keywords:          []string{strings.ToLower(subject), "feedback", "user_input"},
		}
	default:
		return models.SentimentAnalysisResult{
			FullComment:       fullComment,
			Summary:           fmt.Sprintf("User feedback regarding %s. Automated analysis unavailable.", subject),
			SentimentAnalysis: "Neutral - Unable to analyze sentiment due to service error",
			Keywords:          ExtractKeywords(subject, comment),
		}
	}
}

// sanitizeKeywords enforces the result invariant on service-provided keywords:
// order-preserving dedupe, at most five entries, never empty. An empty set
// (including one coerced from a non-sequence payload) backfills from the
// extractor.
func sanitizeKeywords(raw []string, subject, comment string) []string {
	seen := make(map[string]struct{}, len(raw))
	var keywords []string
	for _, kw := range raw {
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
		if len(keywords) == maxKeywords {
			break
		}
	}

	if len(keywords) == 0 {
		return ExtractKeywords(subject, comment)
	}
	return keywords
}
