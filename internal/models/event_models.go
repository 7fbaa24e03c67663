package models

import "time"

// SubmissionAnalyzedEvent is published to the analytics topic after both
// records for a submission are durably stored. LocalScore and LocalLabel come
// from the in-process VADER pass and give downstream consumers a deterministic
// baseline next to the external service's judgment.
type SubmissionAnalyzedEvent struct {
	SubmissionID      string    `json:"submission_id"`
	AnalysisID        string    `json:"analysis_id"`
	Subject           string    `json:"subject"`
	SentimentAnalysis string    `json:"sentiment_analysis"`
	Keywords          []string  `json:"keywords"`
	LocalScore        float64   `json:"local_score"`
	LocalLabel        string    `json:"local_label"`
	Timestamp         time.Time `json:"timestamp"`
}
