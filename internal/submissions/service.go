package submissions

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/civicpulse/internal/models"
	"github.com/spacesedan/civicpulse/internal/sentiment"
)

// Analyzer derives a sentiment summary for one submission. Implementations
// never fail: degraded analysis comes back as a populated fallback result.
type Analyzer interface {
	Analyze(ctx context.Context, subject, comment, fullComment string) models.SentimentAnalysisResult
}

// Gateway persists the two linked records of one submission. Both operations
// fail when the backend does not confirm the write.
type Gateway interface {
	StoreAnalysis(ctx context.Context, result models.SentimentAnalysisResult) (string, error)
	StoreSubmission(ctx context.Context, submission models.Submission, analysisID string) (string, error)
}

// EventPublisher emits analytics events for stored submissions.
type EventPublisher interface {
	PublishSubmissionAnalyzed(event models.SubmissionAnalyzedEvent) error
}

// Service runs the submission sequence: analyze, store the analysis, store
// the submission referencing it, publish an analytics event, return the
// identifier pair. Analysis failure is absorbed by the analyzer; either
// persistence failure is fatal and leaves no partial response.
type Service struct {
	analyzer  Analyzer
	gateway   Gateway
	publisher EventPublisher // optional, nil disables analytics events
}

func NewService(analyzer Analyzer, gateway Gateway, publisher EventPublisher) *Service {
	return &Service{
		analyzer:  analyzer,
		gateway:   gateway,
		publisher: publisher,
	}
}

// Submit processes one citizen feedback submission to completion. On success
// the returned receipt's AnalysisID is the identifier the stored submission
// record references. A submission record is never written without its
// analysis record already confirmed; if the submission write fails after the
// analysis write succeeded, the analysis record is left orphaned.
func (s *Service) Submit(ctx context.Context, submission models.Submission) (models.SubmissionReceipt, error) {
	slog.Info("[Submissions] Processing submission",
		slog.String("email", submission.Email),
		slog.String("subject", submission.Subject))

	fullComment := fmt.Sprintf("Subject: %s\n\nComment: %s", submission.Subject, submission.Comment)

	result := s.analyzer.Analyze(ctx, submission.Subject, submission.Comment, fullComment)
	slog.Info("[Submissions] Sentiment analysis completed")

	analysisID, err := s.gateway.StoreAnalysis(ctx, result)
	if err != nil {
		return models.SubmissionReceipt{}, fmt.Errorf("storing sentiment analysis: %w", err)
	}

	submissionID, err := s.gateway.StoreSubmission(ctx, submission, analysisID)
	if err != nil {
		return models.SubmissionReceipt{}, fmt.Errorf("storing submission: %w", err)
	}

	s.publishAnalyzed(submission, result, submissionID, analysisID)

	return models.SubmissionReceipt{
		SubmissionID: submissionID,
		AnalysisID:   analysisID,
	}, nil
}

func (s *Service) publishAnalyzed(submission models.Submission, result models.SentimentAnalysisResult, submissionID, analysisID string) {
	if s.publisher == nil {
		return
	}

	score, label := sentiment.LocalScore(submission.Comment)
	event := models.SubmissionAnalyzedEvent{
		SubmissionID:      submissionID,
		AnalysisID:        analysisID,
		Subject:           submission.Subject,
		SentimentAnalysis: result.SentimentAnalysis,
		Keywords:          result.Keywords,
		LocalScore:        score,
		LocalLabel:        label,
		Timestamp:         time.Now().UTC(),
	}

	if err := s.publisher.PublishSubmissionAnalyzed(event); err != nil {
		slog.Warn("[Submissions] Failed to publish analytics event",
			slog.String("submission_id", submissionID),
			slog.String("error", err.Error()))
	}
}
