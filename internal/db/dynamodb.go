package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/spacesedan/civicpulse/internal/models"
)

const (
	SUBMISSIONS_TABLE_NAME        = "UserSubmissions"
	SENTIMENT_ANALYSIS_TABLE_NAME = "SentimentAnalysis"
)

// ErrNotFound is returned by the read operations when no record matches the
// given identifier.
var ErrNotFound = errors.New("record not found")

// Store is the durable home for submissions and their analysis records. Both
// record kinds are write-once: there is no update or delete path. Store
// assigns identifiers and creation timestamps at write time; a write that the
// backend does not confirm is an error. Safe for concurrent use.
type Store struct {
	client *dynamodb.Client
}

func NewStore(client *dynamodb.Client) *Store {
	return &Store{client: client}
}

// StoreAnalysis persists one sentiment analysis record and returns the
// identifier it was stored under.
func (s *Store) StoreAnalysis(ctx context.Context, result models.SentimentAnalysisResult) (string, error) {
	stored := models.StoredAnalysis{
		SentimentAnalysisResult: result,
		AnalysisID:              uuid.NewString(),
		CreatedAt:               time.Now().Unix(),
	}

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(SENTIMENT_ANALYSIS_TABLE_NAME),
		Item:      AnalysisToItem(stored),
	})
	if err != nil {
		return "", fmt.Errorf("[DynamoDB] Failed to store sentiment analysis: %w", err)
	}

	slog.Info("[DynamoDB] Stored sentiment analysis",
		slog.String("analysis_id", stored.AnalysisID))
	return stored.AnalysisID, nil
}

// StoreSubmission persists one submission referencing an already stored
// analysis record and returns the identifier it was stored under. Callers
// must hold a confirmed analysisID before invoking this.
func (s *Store) StoreSubmission(ctx context.Context, submission models.Submission, analysisID string) (string, error) {
	stored := models.StoredSubmission{
		Submission:   submission,
		SubmissionID: uuid.NewString(),
		AnalysisID:   analysisID,
		CreatedAt:    time.Now().Unix(),
	}

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(SUBMISSIONS_TABLE_NAME),
		Item:      SubmissionToItem(stored),
	})
	if err != nil {
		return "", fmt.Errorf("[DynamoDB] Failed to store submission: %w", err)
	}

	slog.Info("[DynamoDB] Stored submission",
		slog.String("submission_id", stored.SubmissionID),
		slog.String("analysis_id", analysisID))
	return stored.SubmissionID, nil
}

func (s *Store) GetSubmission(ctx context.Context, submissionID string) (models.StoredSubmission, error) {
	var stored models.StoredSubmission

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(SUBMISSIONS_TABLE_NAME),
		Key: map[string]types.AttributeValue{
			"submission_id": &types.AttributeValueMemberS{Value: submissionID},
		},
	})
	if err != nil {
		return stored, fmt.Errorf("[DynamoDB] Failed to get submission: %w", err)
	}
	if len(out.Item) == 0 {
		return stored, fmt.Errorf("no submission with id %s: %w", submissionID, ErrNotFound)
	}

	if err := attributevalue.UnmarshalMap(out.Item, &stored); err != nil {
		return stored, fmt.Errorf("[DynamoDB] Failed to unmarshal submission: %w", err)
	}
	return stored, nil
}

func (s *Store) GetAnalysis(ctx context.Context, analysisID string) (models.StoredAnalysis, error) {
	var stored models.StoredAnalysis

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(SENTIMENT_ANALYSIS_TABLE_NAME),
		Key: map[string]types.AttributeValue{
			"analysis_id": &types.AttributeValueMemberS{Value: analysisID},
		},
	})
	if err != nil {
		return stored, fmt.Errorf("[DynamoDB] Failed to get sentiment analysis: %w", err)
	}
	if len(out.Item) == 0 {
		return stored, fmt.Errorf("no sentiment analysis with id %s: %w", analysisID, ErrNotFound)
	}

	if err := attributevalue.UnmarshalMap(out.Item, &stored); err != nil {
		return stored, fmt.Errorf("[DynamoDB] Failed to unmarshal sentiment analysis: %w", err)
	}
	return stored, nil
}

// AnalysisToItem maps a stored analysis record onto its DynamoDB attributes.
// Keywords keep their insertion order.
func AnalysisToItem(stored models.StoredAnalysis) map[string]types.AttributeValue {
	keywords := make([]types.AttributeValue, 0, len(stored.Keywords))
	for _, kw := range stored.Keywords {
		keywords = append(keywords, &types.AttributeValueMemberS{Value: kw})
	}

	return map[string]types.AttributeValue{
		"analysis_id":        &types.AttributeValueMemberS{Value: stored.AnalysisID},
		"full_comment":       &types.AttributeValueMemberS{Value: stored.FullComment},
		"summary":            &types.AttributeValueMemberS{Value: stored.Summary},
		"sentiment_analysis": &types.AttributeValueMemberS{Value: stored.SentimentAnalysis},
		"keywords":           &types.AttributeValueMemberL{Value: keywords},
		"created_at":         &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", stored.CreatedAt)},
	}
}

// SubmissionToItem maps a stored submission onto its DynamoDB attributes.
func SubmissionToItem(stored models.StoredSubmission) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"submission_id": &types.AttributeValueMemberS{Value: stored.SubmissionID},
		"name":          &types.AttributeValueMemberS{Value: stored.Name},
		"email":         &types.AttributeValueMemberS{Value: stored.Email},
		"district":      &types.AttributeValueMemberS{Value: stored.District},
		"state":         &types.AttributeValueMemberS{Value: stored.State},
		"subject":       &types.AttributeValueMemberS{Value: stored.Subject},
		"comment":       &types.AttributeValueMemberS{Value: stored.Comment},
		"analysis_id":   &types.AttributeValueMemberS{Value: stored.AnalysisID},
		"created_at":    &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", stored.CreatedAt)},
	}
}
