package models

// SentimentAnalysisResult is the normalized outcome of analyzing one
// submission's comment. The analyzer produces exactly one per submission and
// never fails: when the classification service misbehaves the fields hold one
// of the fallback payloads instead.
type SentimentAnalysisResult struct {
	FullComment       string   `json:"full_comment" dynamodbav:"full_comment"`
	Summary           string   `json:"summary" dynamodbav:"summary"`
	SentimentAnalysis string   `json:"sentiment_analysis" dynamodbav:"sentiment_analysis"`
	Keywords          []string `json:"keywords" dynamodbav:"keywords"`
}

// StoredAnalysis is a SentimentAnalysisResult as persisted, with the
// gateway-assigned identifier and creation time (unix seconds).
type StoredAnalysis struct {
	SentimentAnalysisResult
	AnalysisID string `json:"analysis_id" dynamodbav:"analysis_id"`
	CreatedAt  int64  `json:"created_at" dynamodbav:"created_at"`
}
