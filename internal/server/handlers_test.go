package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/civicpulse/internal/db"
	"github.com/spacesedan/civicpulse/internal/models"
)

type fakeSubmitter struct {
	receipt models.SubmissionReceipt
	err     error
	calls   int
}

func (f *fakeSubmitter) Submit(_ context.Context, _ models.Submission) (models.SubmissionReceipt, error) {
	f.calls++
	if f.err != nil {
		return models.SubmissionReceipt{}, f.err
	}
	return f.receipt, nil
}

type fakeRecords struct {
	submission    models.StoredSubmission
	analysis      models.StoredAnalysis
	submissionErr error
	analysisErr   error
}

func (f *fakeRecords) GetSubmission(_ context.Context, _ string) (models.StoredSubmission, error) {
	return f.submission, f.submissionErr
}

func (f *fakeRecords) GetAnalysis(_ context.Context, _ string) (models.StoredAnalysis, error) {
	return f.analysis, f.analysisErr
}

type fakeGuard struct {
	seen   bool
	marked []string
}

func (f *fakeGuard) WasRecentlySubmitted(_ context.Context, _ string) bool { return f.seen }

func (f *fakeGuard) MarkSubmissionSeen(_ context.Context, fingerprint string) error {
	f.marked = append(f.marked, fingerprint)
	return nil
}

func newTestServer(submitter *fakeSubmitter, records *fakeRecords, guard DuplicateGuard) *Server {
	return New("8080", nil, submitter, records, guard)
}

func validBody() string {
	return `{
		"name": "John Doe",
		"email": "john.doe@example.com",
		"district": "Downtown",
		"state": "California",
		"subject": "Public Transportation",
		"comment": "The bus service needs improvement in our area."
	}`
}

func doRequest(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestSubmitFeedback_Success(t *testing.T) {
	submitter := &fakeSubmitter{
		receipt: models.SubmissionReceipt{SubmissionID: "sub-1", AnalysisID: "an-1"},
	}
	srv := newTestServer(submitter, &fakeRecords{}, nil)

	rec := doRequest(srv, http.MethodPost, "/api/submit-feedback", validBody())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "sub-1", resp["submission_id"])
	assert.Equal(t, "an-1", resp["analysis_id"])
	assert.Equal(t, "Feedback submitted successfully", resp["message"])
	assert.Equal(t, 1, submitter.calls)
}

func TestSubmitFeedback_InvalidEmail(t *testing.T) {
	submitter := &fakeSubmitter{}
	srv := newTestServer(submitter, &fakeRecords{}, nil)

	body := strings.Replace(validBody(), "john.doe@example.com", "not-an-email", 1)
	rec := doRequest(srv, http.MethodPost, "/api/submit-feedback", body)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "email has an invalid format")
	assert.Equal(t, 0, submitter.calls, "validation must run before any processing")
}

func TestSubmitFeedback_MissingFields(t *testing.T) {
	submitter := &fakeSubmitter{}
	srv := newTestServer(submitter, &fakeRecords{}, nil)

	rec := doRequest(srv, http.MethodPost, "/api/submit-feedback", `{"email":"a@b.co"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "name is required")
	assert.Contains(t, rec.Body.String(), "comment is required")
	assert.Equal(t, 0, submitter.calls)
}

func TestSubmitFeedback_MalformedBody(t *testing.T) {
	submitter := &fakeSubmitter{}
	srv := newTestServer(submitter, &fakeRecords{}, nil)

	rec := doRequest(srv, http.MethodPost, "/api/submit-feedback", "{not json")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 0, submitter.calls)
}

func TestSubmitFeedback_ProcessingFailure(t *testing.T) {
	submitter := &fakeSubmitter{err: errors.New("storing sentiment analysis: backend unavailable")}
	srv := newTestServer(submitter, &fakeRecords{}, nil)

	rec := doRequest(srv, http.MethodPost, "/api/submit-feedback", validBody())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error processing submission")
}

func TestSubmitFeedback_DuplicateRejected(t *testing.T) {
	submitter := &fakeSubmitter{}
	srv := newTestServer(submitter, &fakeRecords{}, &fakeGuard{seen: true})

	rec := doRequest(srv, http.MethodPost, "/api/submit-feedback", validBody())

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 0, submitter.calls)
}

func TestSubmitFeedback_MarksFingerprintAfterSuccess(t *testing.T) {
	guard := &fakeGuard{}
	submitter := &fakeSubmitter{
		receipt: models.SubmissionReceipt{SubmissionID: "sub-1", AnalysisID: "an-1"},
	}
	srv := newTestServer(submitter, &fakeRecords{}, guard)

	rec := doRequest(srv, http.MethodPost, "/api/submit-feedback", validBody())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, guard.marked, 1)
}

func TestSubmitFeedback_NoFingerprintOnFailure(t *testing.T) {
	guard := &fakeGuard{}
	submitter := &fakeSubmitter{err: errors.New("backend unavailable")}
	srv := newTestServer(submitter, &fakeRecords{}, guard)

	rec := doRequest(srv, http.MethodPost, "/api/submit-feedback", validBody())
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, guard.marked)
}

func TestGetSubmission_Found(t *testing.T) {
	records := &fakeRecords{
		submission: models.StoredSubmission{
			Submission: models.Submission{
				Name:    "John Doe",
				Subject: "Public Transportation",
			},
			SubmissionID: "sub-1",
			AnalysisID:   "an-1",
		},
	}
	srv := newTestServer(&fakeSubmitter{}, records, nil)

	rec := doRequest(srv, http.MethodGet, "/api/submissions/sub-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"submission_id":"sub-1"`)
	assert.Contains(t, rec.Body.String(), `"analysis_id":"an-1"`)
}

func TestGetSubmission_NotFound(t *testing.T) {
	records := &fakeRecords{
		submissionErr: fmt.Errorf("no submission with id x: %w", db.ErrNotFound),
	}
	srv := newTestServer(&fakeSubmitter{}, records, nil)

	rec := doRequest(srv, http.MethodGet, "/api/submissions/x", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSubmission_BackendError(t *testing.T) {
	records := &fakeRecords{submissionErr: errors.New("backend unavailable")}
	srv := newTestServer(&fakeSubmitter{}, records, nil)

	rec := doRequest(srv, http.MethodGet, "/api/submissions/x", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetAnalysis_Found(t *testing.T) {
	records := &fakeRecords{
		analysis: models.StoredAnalysis{
			SentimentAnalysisResult: models.SentimentAnalysisResult{
				Summary:  "Bus service is inadequate.",
				Keywords: []string{"bus", "service"},
			},
			AnalysisID: "an-1",
		},
	}
	srv := newTestServer(&fakeSubmitter{}, records, nil)

	rec := doRequest(srv, http.MethodGet, "/api/analysis/an-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bus service is inadequate.")
}

func TestGetAnalysis_NotFound(t *testing.T) {
	records := &fakeRecords{
		analysisErr: fmt.Errorf("no sentiment analysis with id x: %w", db.ErrNotFound),
	}
	srv := newTestServer(&fakeSubmitter{}, records, nil)

	rec := doRequest(srv, http.MethodGet, "/api/analysis/x", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRootAndHealth(t *testing.T) {
	srv := newTestServer(&fakeSubmitter{}, &fakeRecords{}, nil)

	rec := doRequest(srv, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "CivicPulse API is running")

	rec = doRequest(srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestSchemaExample(t *testing.T) {
	srv := newTestServer(&fakeSubmitter{}, &fakeRecords{}, nil)

	rec := doRequest(srv, http.MethodGet, "/api/schema-example", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "example_request")
	assert.Contains(t, rec.Body.String(), "john.doe@example.com")
}

func TestValidateSubmission(t *testing.T) {
	valid := models.Submission{
		Name:     "John Doe",
		Email:    "john.doe@example.com",
		District: "Downtown",
		State:    "California",
		Subject:  "Public Transportation",
		Comment:  "The bus service needs improvement.",
	}
	assert.Empty(t, validateSubmission(valid))

	missingName := valid
	missingName.Name = "  "
	assert.Contains(t, validateSubmission(missingName), "name is required")

	badEmail := valid
	badEmail.Email = "john.doe@"
	assert.Contains(t, validateSubmission(badEmail), "email has an invalid format")
}
