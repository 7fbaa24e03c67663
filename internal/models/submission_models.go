package models

// Submission is the raw citizen feedback as received from the intake form.
// It is immutable once created; the orchestrator only ever reads it.
type Submission struct {
	Name     string `json:"name" dynamodbav:"name"`
	Email    string `json:"email" dynamodbav:"email"`
	District string `json:"district" dynamodbav:"district"`
	State    string `json:"state" dynamodbav:"state"`
	Subject  string `json:"subject" dynamodbav:"subject"`
	Comment  string `json:"comment" dynamodbav:"comment"`
}

// StoredSubmission is a Submission as persisted, carrying the identifiers the
// gateway assigned at write time. AnalysisID references the StoredAnalysis
// created for the same request.
type StoredSubmission struct {
	Submission
	SubmissionID string `json:"submission_id" dynamodbav:"submission_id"`
	AnalysisID   string `json:"analysis_id" dynamodbav:"analysis_id"`
	CreatedAt    int64  `json:"created_at" dynamodbav:"created_at"`
}

// SubmissionReceipt is the identifier pair returned for an accepted submission.
type SubmissionReceipt struct {
	SubmissionID string `json:"submission_id"`
	AnalysisID   string `json:"analysis_id"`
}
